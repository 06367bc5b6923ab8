package validator

import (
	"strings"
	"testing"

	"github.com/openfpga-tools/fabricgen/internal/facts"
)

func validTables() facts.Tables {
	return facts.Tables{
		Parameters: []facts.ParameterRow{{
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
		Tiles: []facts.TileRow{
			{Name: "CLB", ConfigBits: 2, UserCLK: true, MatrixDir: "clb.list", Bels: 1, HasCarry: true},
		},
		SuperTiles: []facts.SuperTileRow{},
		Ports: []facts.PortRow{
			{Tile: "CLB", Direction: "NORTH", SourceName: "N1BEG", YOffset: 1,
				DestinationName: "N1END", Wires: 4, Name: "N1BEG", IO: "OUTPUT", Side: "NORTH"},
		},
		Bels: []facts.BelRow{
			{Tile: "CLB", Src: "lut.v", Prefix: "L_", ConfigBits: 2, Inputs: 1, Outputs: 1},
		},
		GridCells: []facts.GridCellRow{
			{Row: 0, Col: 0, Tile: "CLB"},
			{Row: 0, Col: 1},
		},
		WirePairs: []facts.WirePairRow{
			{Source: "N1BEG", Sink: "N1END"},
		},
	}
}

func TestValidateAcceptsBuiltTables(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := v.Validate(validTables()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsBadEnum(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tables := validTables()
	tables.Ports[0].IO = "SIDEWAYS"
	if err := v.Validate(tables); err == nil {
		t.Fatal("expected a validation error for a bad io enum")
	}

	tables = validTables()
	tables.Parameters[0].ConfigBitMode = "frame_based"
	if err := v.Validate(tables); err == nil {
		t.Fatal("expected a validation error for an unnormalized config bit mode")
	}
}

func TestValidateRejectsEmptyTileName(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tables := validTables()
	tables.Tiles[0].Name = ""
	if err := v.Validate(tables); err == nil {
		t.Fatal("expected a validation error for an empty tile name")
	}
}

func TestValidateJSONRejectsUnknownField(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	payload := `{
		"parameters": [],
		"tiles": [],
		"super_tiles": [],
		"ports": [],
		"bels": [],
		"grid_cells": [],
		"wire_pairs": [],
		"extra_relation": []
	}`
	if err := v.ValidateJSON([]byte(payload)); err == nil {
		t.Fatal("expected a validation error for an unknown relation")
	}
}

func TestValidationErrors(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if errs := v.ValidationErrors(validTables()); errs != nil {
		t.Fatalf("valid tables produced errors: %v", errs)
	}

	tables := validTables()
	tables.Ports[0].Direction = "UP"
	errs := v.ValidationErrors(tables)
	if len(errs) == 0 {
		t.Fatal("expected validation errors")
	}
	found := false
	for _, e := range errs {
		if strings.Contains(e, "direction") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no error mentions the direction field: %v", errs)
	}
}
