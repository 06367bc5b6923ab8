package facts

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/openfpga-tools/fabricgen/internal/fabric"
)

func sampleFabric() *fabric.Fabric {
	clb := &fabric.Tile{
		Name:       "CLB",
		ConfigBits: 2,
		UserCLK:    true,
		MatrixDir:  "clb.list",
		Ports: []fabric.Port{
			{Direction: fabric.North, SourceName: "N1BEG", XOffset: 0, YOffset: 1,
				DestinationName: "N1END", Wires: 4, Name: "N1BEG",
				IO: fabric.Output, Side: fabric.SideNorth},
			{Direction: fabric.North, SourceName: "N1BEG", XOffset: 0, YOffset: 1,
				DestinationName: "N1END", Wires: 4, Name: "N1END",
				IO: fabric.Input, Side: fabric.SideSouth},
		},
		Bels: []*fabric.Bel{{
			Src: "lut.v", Prefix: "L_", ConfigBits: 2, UserCLK: true,
			Internal: []fabric.PortDecl{
				{Name: "L_I0", IO: fabric.Input},
				{Name: "L_O", IO: fabric.Output},
			},
			Carry: map[fabric.IO]string{
				fabric.Input:  "L_Ci",
				fabric.Output: "L_Co",
			},
		}},
		Carry: map[fabric.IO]string{
			fabric.Output: "N1BEG0",
			fabric.Input:  "N1END0",
		},
	}
	term := &fabric.Tile{Name: "TERM", Carry: map[fabric.IO]string{}}

	placed := clb.Clone()
	placed.PartOfSuperTile = true
	super := &fabric.SuperTile{
		Name:    "DSP",
		Tiles:   []*fabric.Tile{placed},
		TileMap: [][]*fabric.Tile{{placed}, {placed}},
		UserCLK: true,
	}

	grid := [][]*fabric.Tile{
		{clb.Clone(), term.Clone()},
		{clb.Clone(), nil},
	}
	grid[0][0].PartOfSuperTile = true

	return &fabric.Fabric{
		Tiles:                       grid,
		NumberOfRows:                2,
		NumberOfColumns:             2,
		ConfigBitMode:               fabric.FrameBased,
		FrameBitsPerRow:             32,
		MaxFramesPerCol:             20,
		Package:                     "use work.my_package.all;",
		GenerateDelayInSwitchMatrix: 80,
		MultiplexerStyle:            fabric.StyleCustom,
		NumberOfBRAMs:               1,
		SuperTileEnable:             true,
		TileDic:                     map[string]*fabric.Tile{"CLB": clb, "TERM": term},
		SuperTileDic:                map[string]*fabric.SuperTile{"DSP": super},
		CommonWirePair:              []fabric.WirePair{{Source: "N1BEG", Sink: "N1END"}},
	}
}

func TestBuild(t *testing.T) {
	got := Build(sampleFabric())

	want := Tables{
		Parameters: []ParameterRow{{
			ConfigBitMode:               "FRAME_BASED",
			FrameBitsPerRow:             32,
			MaxFramesPerCol:             20,
			Package:                     "use work.my_package.all;",
			GenerateDelayInSwitchMatrix: 80,
			MultiplexerStyle:            "CUSTOM",
			NumberOfBRAMs:               1,
			SuperTileEnable:             true,
			Rows:                        2,
			Columns:                     2,
		}},
		Tiles: []TileRow{
			{Name: "CLB", ConfigBits: 2, UserCLK: true, MatrixDir: "clb.list", Bels: 1, HasCarry: true},
			{Name: "TERM"},
		},
		SuperTiles: []SuperTileRow{
			{Name: "DSP", Constituents: 1, Rows: 2, Columns: 1, UserCLK: true},
		},
		Ports: []PortRow{
			{Tile: "CLB", Direction: "NORTH", SourceName: "N1BEG", YOffset: 1,
				DestinationName: "N1END", Wires: 4, Name: "N1BEG", IO: "OUTPUT", Side: "NORTH"},
			{Tile: "CLB", Direction: "NORTH", SourceName: "N1BEG", YOffset: 1,
				DestinationName: "N1END", Wires: 4, Name: "N1END", IO: "INPUT", Side: "SOUTH"},
		},
		Bels: []BelRow{
			{Tile: "CLB", Src: "lut.v", Prefix: "L_", ConfigBits: 2,
				Inputs: 1, Outputs: 1, UserCLK: true, HasCarry: true},
		},
		GridCells: []GridCellRow{
			{Row: 0, Col: 0, Tile: "CLB", PartOfSuperTile: true},
			{Row: 0, Col: 1, Tile: "TERM"},
			{Row: 1, Col: 0, Tile: "CLB"},
			{Row: 1, Col: 1},
		},
		WirePairs: []WirePairRow{
			{Source: "N1BEG", Sink: "N1END"},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Build mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeDelta(t *testing.T) {
	prev := Build(sampleFabric())

	changed := sampleFabric()
	changed.TileDic["CLB"].ConfigBits = 5
	next := Build(changed)

	delta := ComputeDelta(prev, next)

	if len(delta.Added.Tiles) != 1 || delta.Added.Tiles[0].ConfigBits != 5 {
		t.Fatalf("added tiles = %+v", delta.Added.Tiles)
	}
	if len(delta.Removed.Tiles) != 1 || delta.Removed.Tiles[0].ConfigBits != 2 {
		t.Fatalf("removed tiles = %+v", delta.Removed.Tiles)
	}
	if len(delta.Added.Ports) != 0 || len(delta.Added.Bels) != 0 || len(delta.Added.WirePairs) != 0 {
		t.Fatalf("unchanged relations leaked into the delta: %+v", delta.Added)
	}

	empty := ComputeDelta(prev, prev)
	if len(empty.Added.Tiles)+len(empty.Removed.Tiles)+len(empty.Added.Ports) != 0 {
		t.Fatalf("self delta is not empty: %+v", empty)
	}
}

func TestFilterTablesByTiles(t *testing.T) {
	tables := Build(sampleFabric())

	filtered := FilterTablesByTiles(tables, map[string]bool{"CLB": true})
	if len(filtered.Tiles) != 1 || filtered.Tiles[0].Name != "CLB" {
		t.Fatalf("filtered tiles = %+v", filtered.Tiles)
	}
	if len(filtered.Ports) != 2 || len(filtered.Bels) != 1 {
		t.Fatalf("filtered ports/bels = %d/%d", len(filtered.Ports), len(filtered.Bels))
	}
	if len(filtered.SuperTiles) != 0 {
		t.Fatalf("DSP should not pass a CLB-only filter: %+v", filtered.SuperTiles)
	}
	// Fabric-wide relations always pass through.
	if len(filtered.Parameters) != 1 || len(filtered.WirePairs) != 1 {
		t.Fatalf("fabric-wide rows dropped: %+v", filtered)
	}

	none := FilterTablesByTiles(tables, nil)
	if len(none.Tiles) != 0 || len(none.Parameters) != 1 {
		t.Fatalf("empty filter = %+v", none)
	}
}
