package bel

import "regexp"

var (
	// Pattern: <anything> input|output|inout <anything> <name>;
	verilogPortPattern = regexp.MustCompile(`(?i)\b(input|output|inout)\b.*?(\w+)\s*;`)

	// Pattern: (*FABulous,<payload>*) on a whitespace-stripped line
	verilogAttrPattern = regexp.MustCompile(`\(\*FABulous,(.*?)\*\)`)

	// Pattern: NoConfigBits ... = <n>
	noConfigBitsPattern = regexp.MustCompile(`(?i)NoConfigBits.*?=.*?(\d+)`)

	// Pattern: port ( <declarations> );
	vhdlPortSectionPattern = regexp.MustCompile(`(?is)port.*?\((.*?)\);`)

	// Pattern: STD_LOGIC and everything after it
	vhdlTypePattern = regexp.MustCompile(`(?i)STD_LOGIC.*`)

	// Pattern: (* FABulous, BelMap, <entries> *), optionally behind VHDL comments
	verilogBelMapPattern = regexp.MustCompile(`(?s)\(\*.*?FABulous,.*?BelMap,(.*?)\*\)`)
	vhdlBelMapPattern    = regexp.MustCompile(`(?s)--.*?\(\*.*?FABulous,.*?BelMap,(.*?)\*\)`)

	// Pattern: (* FABulous, BelEnum, <entries> *)
	verilogBelEnumPattern = regexp.MustCompile(`(?s)\(\*.*?FABulous,.*?BelEnum,(.*?)\*\)`)
	vhdlBelEnumPattern    = regexp.MustCompile(`(?s)--.*?\(\*.*?FABulous,.*?BelEnum,(.*?)\*\)`)

	// Pattern: <name>[<hi>:<lo>] enum field declaration
	enumRangePattern = regexp.MustCompile(`^(.*?)\[(\d+):(\d+)\]$`)
)
