// Package assembler orchestrates the fabric description parsers: it reads
// the topology csv, builds the tile and super tile catalogs, places deep
// copies of the catalog prototypes into the grid and resolves the global
// parameter block into the final fabric model.
package assembler

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/openfpga-tools/fabricgen/internal/fabric"
	"github.com/openfpga-tools/fabricgen/internal/orderedset"
)

// The block keywords are matched case sensitively: the SuperTileEnable
// parameter key must not open a SuperTILE block.
var (
	commentPattern      = regexp.MustCompile(`#.*`)
	fabricRegionPattern = regexp.MustCompile(`(?s)FabricBegin(.*?)FabricEnd`)
	paramsRegionPattern = regexp.MustCompile(`(?s)ParametersBegin(.*?)ParametersEnd`)
	superTilePattern    = regexp.MustCompile(`(?s)SuperTILE(.*?)EndSuperTILE`)
	tilePattern         = regexp.MustCompile(`(?s)TILE(.*?)EndTILE`)
)

// emptyCell reports whether a grid or placement cell marks an empty spot.
func emptyCell(s string) bool {
	return s == "Null" || s == "NULL" || s == "None"
}

// Parse reads the fabric description csv at fileName and assembles the
// complete fabric model. BEL and MATRIX references inside the description
// are resolved relative to the description file's directory.
func Parse(fileName string, logger *slog.Logger) (*fabric.Fabric, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !strings.HasSuffix(fileName, ".csv") {
		return nil, fmt.Errorf("fabric description must be a csv file: %s", fileName)
	}

	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("reading fabric description: %w", err)
	}
	baseDir := filepath.Dir(fileName)
	text := commentPattern.ReplaceAllString(string(data), "")

	fabricRegion := fabricRegionPattern.FindStringSubmatch(text)
	if fabricRegion == nil {
		return nil, fmt.Errorf("%w: no FabricBegin/FabricEnd region in %s",
			fabric.ErrMissingSection, fileName)
	}
	paramsRegion := paramsRegionPattern.FindStringSubmatch(text)
	if paramsRegion == nil {
		return nil, fmt.Errorf("%w: no ParametersBegin/ParametersEnd region in %s",
			fabric.ErrMissingSection, fileName)
	}

	// Super tile blocks embed the TILE keyword, so they are cut out before
	// the tile blocks are collected.
	superBlocks := superTilePattern.FindAllStringSubmatch(text, -1)
	tileBlocks := tilePattern.FindAllStringSubmatch(superTilePattern.ReplaceAllString(text, ""), -1)

	tileDic := make(map[string]*fabric.Tile)
	var tileOrder []string
	wirePairs := orderedset.New[fabric.WirePair]()
	for _, block := range tileBlocks {
		tile, pairs, err := parseTile(block[1], baseDir, logger)
		if err != nil {
			return nil, err
		}
		tileDic[tile.Name] = tile
		tileOrder = append(tileOrder, tile.Name)
		for _, p := range pairs {
			// NULL endpoints are placeholder wires, not real connections.
			if !strings.Contains(p.Source, "NULL") && !strings.Contains(p.Sink, "NULL") {
				wirePairs.Add(p)
			}
		}
	}

	superTileDic := make(map[string]*fabric.SuperTile)
	var superTileOrder []string
	for _, block := range superBlocks {
		st, err := parseSuperTile(block[1], baseDir, tileDic)
		if err != nil {
			return nil, err
		}
		superTileDic[st.Name] = st
		superTileOrder = append(superTileOrder, st.Name)
	}

	grid, used, err := parseGrid(fabricRegion[1], tileDic)
	if err != nil {
		return nil, err
	}

	for _, name := range tileOrder {
		if !used.Has(name) {
			logger.Info("tile unused by the fabric, pruning", "tile", name)
			delete(tileDic, name)
		}
	}
	for _, name := range superTileOrder {
		for _, t := range superTileDic[name].Tiles {
			if !used.Has(t.Name) {
				logger.Info("super tile unused by the fabric, pruning", "superTile", name)
				delete(superTileDic, name)
				break
			}
		}
	}

	f := &fabric.Fabric{
		Tiles:           grid,
		NumberOfRows:    len(grid),
		NumberOfColumns: len(grid[0]),
		NumberOfBRAMs:   len(grid) / 2,
		TileDic:         tileDic,
		SuperTileDic:    superTileDic,
		CommonWirePair:  wirePairs.Items(),
	}
	if err := parseParameters(paramsRegion[1], f); err != nil {
		return nil, err
	}
	return f, nil
}

// parseGrid builds the rectangular placement grid, deep-copying a catalog
// prototype into every non-empty cell, and returns the set of tile names
// the grid references.
func parseGrid(region string, tileDic map[string]*fabric.Tile) ([][]*fabric.Tile, *orderedset.Set[string], error) {
	used := orderedset.New[string]()
	var grid [][]*fabric.Tile
	for _, line := range strings.Split(region, "\n") {
		var row []*fabric.Tile
		for _, cell := range strings.Split(line, ",") {
			cell = strings.TrimSpace(cell)
			switch {
			case cell == "":
			case emptyCell(cell):
				row = append(row, nil)
			default:
				proto, ok := tileDic[cell]
				if !ok {
					return nil, nil, fmt.Errorf("%w: tile %s in fabric grid",
						fabric.ErrUnknownTileReference, cell)
				}
				row = append(row, proto.Clone())
				used.Add(cell)
			}
		}
		if len(row) == 0 {
			continue
		}
		if len(grid) > 0 && len(row) != len(grid[0]) {
			return nil, nil, fmt.Errorf("%w: fabric grid row %d has %d cells, row 1 has %d",
				fabric.ErrDimensionMismatch, len(grid)+1, len(row), len(grid[0]))
		}
		grid = append(grid, row)
	}
	if len(grid) == 0 {
		return nil, nil, fmt.Errorf("%w: fabric grid region is empty", fabric.ErrMissingSection)
	}
	return grid, used, nil
}

// parseParameters resolves the parameter region against the default set.
// Keys are matched by prefix; anything unrecognized is fatal.
func parseParameters(region string, f *fabric.Fabric) error {
	f.ConfigBitMode = fabric.FrameBased
	f.FrameBitsPerRow = 32
	f.MaxFramesPerCol = 20
	f.Package = "use work.my_package.all;"
	f.GenerateDelayInSwitchMatrix = 80
	f.MultiplexerStyle = fabric.StyleCustom
	f.SuperTileEnable = true

	for _, line := range strings.Split(region, "\n") {
		var fields []string
		for _, cell := range strings.Split(line, ",") {
			if cell = strings.TrimSpace(cell); cell != "" {
				fields = append(fields, cell)
			}
		}
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return fmt.Errorf("%w: parameter %q has no value", fabric.ErrUnknownParameter, fields[0])
		}

		key, value := fields[0], fields[1]
		switch {
		case strings.HasPrefix(key, "ConfigBitMode"):
			switch value {
			case "frame_based":
				f.ConfigBitMode = fabric.FrameBased
			case "FlipFlopChain":
				f.ConfigBitMode = fabric.FlipFlopChain
			default:
				return fmt.Errorf("%w: ConfigBitMode %q, want frame_based or FlipFlopChain",
					fabric.ErrUnknownParameter, value)
			}
		case strings.HasPrefix(key, "FrameBitsPerRow"):
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%w: FrameBitsPerRow %q", fabric.ErrUnknownParameter, value)
			}
			f.FrameBitsPerRow = n
		case strings.HasPrefix(key, "MaxFramesPerCol"):
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%w: MaxFramesPerCol %q", fabric.ErrUnknownParameter, value)
			}
			f.MaxFramesPerCol = n
		case strings.HasPrefix(key, "Package"):
			f.Package = value
		case strings.HasPrefix(key, "GenerateDelayInSwitchMatrix"):
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%w: GenerateDelayInSwitchMatrix %q", fabric.ErrUnknownParameter, value)
			}
			f.GenerateDelayInSwitchMatrix = n
		case strings.HasPrefix(key, "MultiplexerStyle"):
			switch value {
			case "custom":
				f.MultiplexerStyle = fabric.StyleCustom
			case "generic":
				f.MultiplexerStyle = fabric.StyleGeneric
			default:
				return fmt.Errorf("%w: MultiplexerStyle %q, want custom or generic",
					fabric.ErrUnknownParameter, value)
			}
		case strings.HasPrefix(key, "SuperTileEnable"):
			f.SuperTileEnable = value == "TRUE"
		default:
			return fmt.Errorf("%w: %q", fabric.ErrUnknownParameter, key)
		}
	}
	return nil
}
