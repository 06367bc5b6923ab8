// Package bel extracts the port interface and configuration bit map of a
// basic logic element from its Verilog or VHDL source. Declarations are
// classified by a closed attribute set (EXTERNAL, CONFIG, SHARED_PORT,
// GLOBAL, CARRY); scanning stops entirely at a GLOBAL marker.
package bel

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/openfpga-tools/fabricgen/internal/fabric"
)

// userClockMarker flags a port as the fabric-wide user clock.
const userClockMarker = "UserCLK"

// ParseVerilog reads and extracts a Verilog bel source. prefix is
// prepended to every port name except shared ports.
func ParseVerilog(path, prefix string) (*fabric.Bel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bel file: %w", err)
	}
	b, err := ParseVerilogText(string(data), path, prefix)
	if err != nil {
		return nil, err
	}
	b.Src = path
	return b, nil
}

// ParseVHDL reads and extracts a VHDL bel source.
func ParseVHDL(path, prefix string) (*fabric.Bel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bel file: %w", err)
	}
	b, err := ParseVHDLText(string(data), path, prefix)
	if err != nil {
		return nil, err
	}
	b.Src = path
	return b, nil
}

// ParseVerilogText extracts a bel from Verilog source text. name is used
// in diagnostics only.
func ParseVerilogText(text, name, prefix string) (*fabric.Bel, error) {
	b, err := newBel(text, name, prefix, flavorVerilog)
	if err != nil {
		return nil, err
	}

	for _, line := range strings.Split(text, "\n") {
		decl := verilogPortPattern.FindStringSubmatch(line)
		if decl == nil {
			continue
		}

		var attrs attrSet
		stripped := strings.NewReplacer(" ", "", "\t", "").Replace(line)
		if m := verilogAttrPattern.FindStringSubmatch(stripped); m != nil {
			attrs = parseAttributes(m[1])
		}
		// Everything after the GLOBAL marker is outside the bel interface.
		if attrs.Global {
			break
		}

		io, ok := fabric.IOFromString(decl[1])
		if !ok {
			continue
		}
		if err := classify(b, prefix, decl[2], io, attrs, name); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// ParseVHDLText extracts a bel from VHDL source text. The port section is
// the bounded region of a port ( ... ); clause, cut at the -- GLOBAL
// marker.
func ParseVHDLText(text, name, prefix string) (*fabric.Bel, error) {
	b, err := newBel(text, name, prefix, flavorVHDL)
	if err != nil {
		return nil, err
	}

	section := vhdlPortSectionPattern.FindStringSubmatch(text)
	if section == nil {
		return nil, fmt.Errorf("%w: no port section in %s", fabric.ErrMissingSection, name)
	}
	declarations, _, _ := strings.Cut(section[1], "-- GLOBAL")

	for _, line := range strings.Split(declarations, "\n") {
		if strings.Contains(line, "IMPORTANT") {
			continue
		}

		var attrs attrSet
		if _, comment, ok := strings.Cut(line, "--"); ok {
			attrs = parseAttributes(comment)
		}

		cleaned := vhdlTypePattern.ReplaceAllString(line, "")
		if i := strings.IndexByte(cleaned, ';'); i >= 0 {
			cleaned = cleaned[:i]
		}
		if i := strings.Index(cleaned, "--"); i >= 0 {
			cleaned = cleaned[:i]
		}
		cleaned = strings.NewReplacer(" ", "", "\t", "").Replace(cleaned)

		portName, direction, found := strings.Cut(cleaned, ":")
		if !found || portName == "" {
			continue
		}
		io, ok := fabric.IOFromString(direction)
		if !ok {
			continue
		}
		if err := classify(b, prefix, portName, io, attrs, name); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// newBel parses the parts shared by both source flavors: the BelMap block
// and the declared NoConfigBits literal, which must agree.
func newBel(text, name, prefix string, fl flavor) (*fabric.Bel, error) {
	belMap, err := parseBelMap(text, name, fl)
	if err != nil {
		return nil, err
	}

	declaredBits := 0
	if m := noConfigBitsPattern.FindStringSubmatch(text); m != nil {
		declaredBits, _ = strconv.Atoi(m[1])
	} else {
		slog.Warn("NoConfigBits not found, assuming 0 config bits", "file", name)
	}
	if len(belMap) != declaredBits {
		return nil, fmt.Errorf("%w: %s declares %d config bits but BelMap has %d features",
			fabric.ErrConfigBitCountMismatch, name, declaredBits, len(belMap))
	}

	return &fabric.Bel{
		Prefix:     prefix,
		Carry:      make(map[fabric.IO]string),
		ConfigBits: declaredBits,
		Map:        belMap,
	}, nil
}

// classify routes one declaration into the bel's port lists.
// Precedence: EXTERNAL without SHARED_PORT wins, then CONFIG, then
// SHARED_PORT; anything else is an internal port.
func classify(b *fabric.Bel, prefix, name string, io fabric.IO, attrs attrSet, src string) error {
	full := prefix + name
	decl := fabric.PortDecl{Name: full, IO: io}

	switch {
	case attrs.External && !attrs.Shared:
		b.External = append(b.External, decl)
	case attrs.Config:
		b.ConfigPort = append(b.ConfigPort, decl)
	case attrs.Shared:
		// Shared ports are fabric-wide and carry no bel prefix.
		b.Shared = append(b.Shared, fabric.PortDecl{Name: name, IO: io})
	default:
		b.Internal = append(b.Internal, decl)
	}

	if attrs.Carry {
		if io == fabric.InOut {
			return fmt.Errorf("%w: port %s in %s", fabric.ErrInvalidCarryDirection, full, src)
		}
		if existing, ok := b.Carry[io]; ok {
			return fmt.Errorf("%w: %s cannot be a carry %s, %s already is (%s)",
				fabric.ErrDuplicateCarryPort, full, io, existing, src)
		}
		b.Carry[io] = full
	}

	if strings.Contains(full, userClockMarker) {
		b.UserCLK = true
	}
	return nil
}
