package facts

import (
	"sort"

	"github.com/openfpga-tools/fabricgen/internal/fabric"
)

// Tables is the relational fact model of an assembled fabric. Each slice
// is a relation (table) with flat rows, ready for Datalog engines and for
// JSON export.
type Tables struct {
	Parameters []ParameterRow `json:"parameters"`
	Tiles      []TileRow      `json:"tiles"`
	SuperTiles []SuperTileRow `json:"super_tiles"`
	Ports      []PortRow      `json:"ports"`
	Bels       []BelRow       `json:"bels"`
	GridCells  []GridCellRow  `json:"grid_cells"`
	WirePairs  []WirePairRow  `json:"wire_pairs"`
}

// ParameterRow is the single row of fabric-wide parameters.
type ParameterRow struct {
	ConfigBitMode               string `json:"config_bit_mode"`
	FrameBitsPerRow             int    `json:"frame_bits_per_row"`
	MaxFramesPerCol             int    `json:"max_frames_per_col"`
	Package                     string `json:"package"`
	GenerateDelayInSwitchMatrix int    `json:"generate_delay_in_switch_matrix"`
	MultiplexerStyle            string `json:"multiplexer_style"`
	NumberOfBRAMs               int    `json:"number_of_brams"`
	SuperTileEnable             bool   `json:"super_tile_enable"`
	Rows                        int    `json:"rows"`
	Columns                     int    `json:"columns"`
}

type TileRow struct {
	Name       string `json:"name"`
	ConfigBits int    `json:"config_bits"`
	UserCLK    bool   `json:"user_clk"`
	MatrixDir  string `json:"matrix_dir"`
	Bels       int    `json:"bels"`
	HasCarry   bool   `json:"has_carry"`
}

type SuperTileRow struct {
	Name         string `json:"name"`
	Constituents int    `json:"constituents"`
	Rows         int    `json:"rows"`
	Columns      int    `json:"columns"`
	Bels         int    `json:"bels"`
	UserCLK      bool   `json:"user_clk"`
}

type PortRow struct {
	Tile            string `json:"tile"`
	Direction       string `json:"direction"`
	SourceName      string `json:"source_name"`
	XOffset         int    `json:"x_offset"`
	YOffset         int    `json:"y_offset"`
	DestinationName string `json:"destination_name"`
	Wires           int    `json:"wires"`
	Name            string `json:"name"`
	IO              string `json:"io"`
	Side            string `json:"side"`
}

type BelRow struct {
	Tile       string `json:"tile"`
	Src        string `json:"src"`
	Prefix     string `json:"prefix"`
	ConfigBits int    `json:"config_bits"`
	Inputs     int    `json:"inputs"`
	Outputs    int    `json:"outputs"`
	UserCLK    bool   `json:"user_clk"`
	HasCarry   bool   `json:"has_carry"`
}

type GridCellRow struct {
	Row             int    `json:"row"`
	Col             int    `json:"col"`
	Tile            string `json:"tile"`
	PartOfSuperTile bool   `json:"part_of_super_tile"`
}

type WirePairRow struct {
	Source string `json:"source"`
	Sink   string `json:"sink"`
}

// Build converts an assembled fabric into the normalized relational model.
// Catalog-derived relations are sorted by tile name for deterministic
// output; port and bel rows keep their declaration order within a tile.
func Build(f *fabric.Fabric) Tables {
	tables := Tables{
		Parameters: []ParameterRow{{
			ConfigBitMode:               f.ConfigBitMode.String(),
			FrameBitsPerRow:             f.FrameBitsPerRow,
			MaxFramesPerCol:             f.MaxFramesPerCol,
			Package:                     f.Package,
			GenerateDelayInSwitchMatrix: f.GenerateDelayInSwitchMatrix,
			MultiplexerStyle:            f.MultiplexerStyle.String(),
			NumberOfBRAMs:               f.NumberOfBRAMs,
			SuperTileEnable:             f.SuperTileEnable,
			Rows:                        f.NumberOfRows,
			Columns:                     f.NumberOfColumns,
		}},
		Tiles:      []TileRow{},
		SuperTiles: []SuperTileRow{},
		Ports:      []PortRow{},
		Bels:       []BelRow{},
		GridCells:  []GridCellRow{},
		WirePairs:  []WirePairRow{},
	}

	tileNames := make([]string, 0, len(f.TileDic))
	for name := range f.TileDic {
		tileNames = append(tileNames, name)
	}
	sort.Strings(tileNames)

	for _, name := range tileNames {
		t := f.TileDic[name]
		tables.Tiles = append(tables.Tiles, TileRow{
			Name:       t.Name,
			ConfigBits: t.ConfigBits,
			UserCLK:    t.UserCLK,
			MatrixDir:  t.MatrixDir,
			Bels:       len(t.Bels),
			HasCarry:   len(t.Carry) > 0,
		})

		for _, p := range t.Ports {
			tables.Ports = append(tables.Ports, PortRow{
				Tile:            t.Name,
				Direction:       p.Direction.String(),
				SourceName:      p.SourceName,
				XOffset:         p.XOffset,
				YOffset:         p.YOffset,
				DestinationName: p.DestinationName,
				Wires:           p.Wires,
				Name:            p.Name,
				IO:              p.IO.String(),
				Side:            p.Side.String(),
			})
		}

		for _, b := range t.Bels {
			tables.Bels = append(tables.Bels, BelRow{
				Tile:       t.Name,
				Src:        b.Src,
				Prefix:     b.Prefix,
				ConfigBits: b.ConfigBits,
				Inputs:     len(b.Inputs()),
				Outputs:    len(b.Outputs()),
				UserCLK:    b.UserCLK,
				HasCarry:   len(b.Carry) > 0,
			})
		}
	}

	superNames := make([]string, 0, len(f.SuperTileDic))
	for name := range f.SuperTileDic {
		superNames = append(superNames, name)
	}
	sort.Strings(superNames)

	for _, name := range superNames {
		st := f.SuperTileDic[name]
		columns := 0
		if len(st.TileMap) > 0 {
			columns = len(st.TileMap[0])
		}
		tables.SuperTiles = append(tables.SuperTiles, SuperTileRow{
			Name:         st.Name,
			Constituents: len(st.Tiles),
			Rows:         len(st.TileMap),
			Columns:      columns,
			Bels:         len(st.Bels),
			UserCLK:      st.UserCLK,
		})
	}

	for row, cells := range f.Tiles {
		for col, t := range cells {
			cell := GridCellRow{Row: row, Col: col}
			if t != nil {
				cell.Tile = t.Name
				cell.PartOfSuperTile = t.PartOfSuperTile
			}
			tables.GridCells = append(tables.GridCells, cell)
		}
	}

	for _, wp := range f.CommonWirePair {
		tables.WirePairs = append(tables.WirePairs, WirePairRow{
			Source: wp.Source,
			Sink:   wp.Sink,
		})
	}

	return tables
}
