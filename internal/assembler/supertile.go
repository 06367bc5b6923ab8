package assembler

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/openfpga-tools/fabricgen/internal/fabric"
)

// parseSuperTile parses one SuperTILE block: its own BEL records plus a
// placement grid of tile references resolved against the tile catalog.
// Placement cells receive independent copies of the catalog prototypes;
// only the copies carry the super tile membership flag.
func parseSuperTile(block, baseDir string, tileDic map[string]*fabric.Tile) (*fabric.SuperTile, error) {
	lines := strings.Split(block, "\n")
	nameFields := splitRecord(lines[0])
	if len(nameFields) == 0 {
		return nil, fmt.Errorf("%w: SuperTILE block with no name", fabric.ErrMissingSection)
	}

	st := &fabric.SuperTile{Name: nameFields[0]}
	constituents := make(map[string]bool)

	for _, line := range lines[1:] {
		fields := splitRecord(line)
		if len(fields) == 0 {
			continue
		}

		if strings.ToUpper(fields[0]) == "BEL" {
			if len(fields) < 2 {
				return nil, fmt.Errorf("%w: BEL record in super tile %s names no file",
					fabric.ErrUnknownEntryKind, st.Name)
			}
			prefix := ""
			if len(fields) > 2 {
				prefix = fields[2]
			}
			b, err := parseBel(filepath.Join(baseDir, fields[1]), fields[1], prefix)
			if err != nil {
				return nil, err
			}
			st.Bels = append(st.Bels, b)
			st.UserCLK = st.UserCLK || b.UserCLK
			continue
		}

		var row []*fabric.Tile
		for _, cell := range fields {
			if emptyCell(cell) {
				row = append(row, nil)
				continue
			}
			proto, ok := tileDic[cell]
			if !ok {
				return nil, fmt.Errorf("%w: %s in super tile %s is not a tile or Null",
					fabric.ErrUnknownTileReference, cell, st.Name)
			}
			placed := proto.Clone()
			placed.PartOfSuperTile = true
			row = append(row, placed)
			if !constituents[cell] {
				constituents[cell] = true
				st.Tiles = append(st.Tiles, placed)
			}
		}
		st.TileMap = append(st.TileMap, row)
	}
	return st, nil
}
