package bel

import "strings"

// attrSet is the closed set of classification flags a port declaration can
// carry. Classification is driven by these flags only, never by free-form
// substring search on the raw line.
type attrSet struct {
	External bool
	Config   bool
	Shared   bool
	Global   bool
	Carry    bool
}

// parseAttributes tokenizes an attribute payload (the body of a Verilog
// (* FABulous, ... *) attribute, or a VHDL trailing comment) into the
// recognized flag set. Unrecognized tokens are ignored; the payload of a
// BelMap/BelEnum block is handled separately in belmap.go.
func parseAttributes(payload string) attrSet {
	var a attrSet
	for _, tok := range strings.FieldsFunc(payload, isAttrSeparator) {
		switch tok {
		case "EXTERNAL":
			a.External = true
		case "CONFIG", "CONFIG_PORT":
			a.Config = true
		case "SHARED_PORT":
			a.Shared = true
		case "GLOBAL":
			a.Global = true
		case "CARRY":
			a.Carry = true
		}
	}
	return a
}

func isAttrSeparator(r rune) bool {
	return r == ',' || r == ' ' || r == '\t' || r == '-'
}
