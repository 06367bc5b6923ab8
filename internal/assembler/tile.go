package assembler

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/openfpga-tools/fabricgen/internal/bel"
	"github.com/openfpga-tools/fabricgen/internal/fabric"
	"github.com/openfpga-tools/fabricgen/internal/listfile"
	"github.com/openfpga-tools/fabricgen/internal/matrix"
	"github.com/openfpga-tools/fabricgen/internal/switchmatrix"
)

// generateMarker selects switch matrix synthesis instead of a stored
// connectivity source.
const generateMarker = "GENERATE"

var numberOfConfigBitsPattern = regexp.MustCompile(`NumberOfConfigBits: (\d+)`)

// parseTile parses one TILE block into a catalog prototype, returning the
// tile together with the (begin, end) wire pairs its directional
// declarations contribute.
func parseTile(block, baseDir string, logger *slog.Logger) (*fabric.Tile, []fabric.WirePair, error) {
	lines := strings.Split(block, "\n")
	nameFields := splitRecord(lines[0])
	if len(nameFields) == 0 {
		return nil, nil, fmt.Errorf("%w: TILE block with no name", fabric.ErrMissingSection)
	}
	tileName := nameFields[0]

	var (
		ports      []fabric.Port
		bels       []*fabric.Bel
		wirePairs  []fabric.WirePair
		tileCarry  = make(map[fabric.IO]string)
		matrixDir  string
		userCLK    bool
		configBits int
		generate   bool
	)

	for _, line := range lines[1:] {
		fields := splitFields(line)
		if len(fields) == 0 || fields[0] == "" {
			continue
		}
		tag := strings.ToUpper(fields[0])

		if dir, ok := fabric.DirectionFromString(tag); ok {
			p, err := parsePortRecord(dir, fields, tileName)
			if err != nil {
				return nil, nil, err
			}
			ports = append(ports, p...)

			if dir != fabric.Jump {
				if len(fields) > 6 && strings.ToUpper(fields[6]) == "CARRY" {
					if len(tileCarry) > 0 {
						return nil, nil, fmt.Errorf("%w: tile %s already chains %s/%s, cannot add %s/%s",
							fabric.ErrDuplicateCarryDeclaration, tileName,
							tileCarry[fabric.Output], tileCarry[fabric.Input], fields[1], fields[4])
					}
					tileCarry[fabric.Output] = fields[1] + "0"
					tileCarry[fabric.Input] = fields[4] + "0"
				}
				wirePairs = append(wirePairs, fabric.WirePair{Source: fields[1], Sink: fields[4]})
			}
			continue
		}

		switch tag {
		case "BEL":
			if len(fields) < 2 {
				return nil, nil, fmt.Errorf("%w: BEL record in tile %s names no file",
					fabric.ErrUnknownEntryKind, tileName)
			}
			prefix := ""
			if len(fields) > 2 {
				prefix = fields[2]
			}
			b, err := parseBel(filepath.Join(baseDir, fields[1]), fields[1], prefix)
			if err != nil {
				return nil, nil, err
			}
			bels = append(bels, b)
			userCLK = userCLK || b.UserCLK
			configBits += b.ConfigBits

		case "MATRIX":
			if len(fields) < 2 {
				return nil, nil, fmt.Errorf("%w: MATRIX record in tile %s names no source",
					fabric.ErrUnknownEntryKind, tileName)
			}
			if fields[1] == generateMarker {
				matrixDir = filepath.Join(baseDir, "Tile", tileName,
					tileName+"_generated_switchmatrix.list")
				generate = true
				continue
			}
			matrixDir = filepath.Join(baseDir, fields[1])
			bits, err := matrixConfigBits(matrixDir, fields[1], tileName, logger)
			if err != nil {
				return nil, nil, err
			}
			configBits += bits

		default:
			return nil, nil, fmt.Errorf("%w: %q in tile %s", fabric.ErrUnknownEntryKind, tag, tileName)
		}
	}

	// Generation needs the complete bel inventory, so it runs after the
	// whole block is read.
	if generate {
		bits, err := switchmatrix.Generate(tileName, bels, matrixDir, tileCarry, logger)
		if err != nil {
			return nil, nil, err
		}
		configBits += bits
	}

	return &fabric.Tile{
		Name:       tileName,
		Ports:      ports,
		Bels:       bels,
		MatrixDir:  matrixDir,
		UserCLK:    userCLK,
		ConfigBits: configBits,
		Carry:      tileCarry,
	}, wirePairs, nil
}

// parsePortRecord turns one directional declaration into its two Port
// records: an output on the declared side and an input on the opposite
// side. Jump wires sit on no boundary, both records use SideAny.
func parsePortRecord(dir fabric.Direction, fields []string, tileName string) ([]fabric.Port, error) {
	if len(fields) < 6 {
		return nil, fmt.Errorf("%w: %s record in tile %s has %d fields, want 6",
			fabric.ErrMalformedExpression, dir, tileName, len(fields))
	}
	x, err1 := strconv.Atoi(fields[2])
	y, err2 := strconv.Atoi(fields[3])
	wires, err3 := strconv.Atoi(fields[5])
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, fmt.Errorf("%w: %s record in tile %s has non-numeric offsets",
			fabric.ErrMalformedExpression, dir, tileName)
	}

	outSide, inSide := fabric.SideOf(dir), fabric.SideOf(dir.Opposite())
	if dir == fabric.Jump {
		outSide, inSide = fabric.SideAny, fabric.SideAny
	}
	return []fabric.Port{
		{Direction: dir, SourceName: fields[1], XOffset: x, YOffset: y,
			DestinationName: fields[4], Wires: wires,
			Name: fields[1], IO: fabric.Output, Side: outSide},
		{Direction: dir, SourceName: fields[1], XOffset: x, YOffset: y,
			DestinationName: fields[4], Wires: wires,
			Name: fields[4], IO: fabric.Input, Side: inSide},
	}, nil
}

// parseBel dispatches a bel source reference on its file extension.
func parseBel(path, ref, prefix string) (*fabric.Bel, error) {
	switch {
	case strings.HasSuffix(ref, ".vhdl"):
		return bel.ParseVHDL(path, prefix)
	case strings.HasSuffix(ref, ".v"):
		return bel.ParseVerilog(path, prefix)
	}
	return nil, fmt.Errorf("%w: bel source %s, want a .vhdl or .v file",
		fabric.ErrUnknownEntryKind, ref)
}

// matrixConfigBits resolves a stored connectivity source reference and
// returns the configuration bits its multiplexers need. HDL sources carry
// a pre-computed count in a NumberOfConfigBits comment.
func matrixConfigBits(path, ref, tileName string, logger *slog.Logger) (int, error) {
	switch {
	case strings.HasSuffix(ref, ".list"):
		grouping, err := listfile.ParseSource(path)
		if err != nil {
			return 0, err
		}
		bits := 0
		for _, source := range grouping.Keys {
			bits += fabric.MuxConfigBits(len(grouping.Members[source]))
		}
		return bits, nil

	case strings.HasSuffix(ref, "_matrix.csv"):
		m, err := matrix.Parse(path, tileName)
		if err != nil {
			return 0, err
		}
		bits := 0
		for _, source := range m.Sources {
			bits += fabric.MuxConfigBits(len(m.Conns[source]))
		}
		return bits, nil

	case strings.HasSuffix(ref, ".vhdl"), strings.HasSuffix(ref, ".v"):
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("reading switch matrix source: %w", err)
		}
		if m := numberOfConfigBitsPattern.FindStringSubmatch(string(data)); m != nil {
			bits, _ := strconv.Atoi(m[1])
			return bits, nil
		}
		logger.Warn("NumberOfConfigBits not found, assuming 0 config bits", "file", path)
		return 0, nil
	}
	return 0, fmt.Errorf("%w: switch matrix source %s, want .list, _matrix.csv, .vhdl, .v or GENERATE",
		fabric.ErrUnknownEntryKind, ref)
}

// splitRecord splits a comma separated record, trimming each field and
// dropping empties.
func splitRecord(line string) []string {
	var fields []string
	for _, f := range strings.Split(line, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// splitFields splits a record keeping field positions, so that positional
// fields after an empty cell stay addressable.
func splitFields(line string) []string {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) == 1 && fields[0] == "" {
		return nil
	}
	return fields
}
