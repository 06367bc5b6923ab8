package facts

import "strconv"

// Delta captures added and removed fact rows between two snapshots of the
// same fabric, for example before and after a description change.
type Delta struct {
	Added   Tables `json:"added"`
	Removed Tables `json:"removed"`
}

// ComputeDelta computes row-level additions and removals between two
// snapshots.
func ComputeDelta(prev, next Tables) Delta {
	return Delta{
		Added:   diffTables(prev, next),
		Removed: diffTables(next, prev),
	}
}

func diffTables(from, to Tables) Tables {
	out := emptyTables()

	out.Parameters = diffRows(from.Parameters, to.Parameters, func(r ParameterRow) string {
		return r.ConfigBitMode + "|" + strconv.Itoa(r.FrameBitsPerRow) + "|" + strconv.Itoa(r.MaxFramesPerCol) +
			"|" + r.Package + "|" + strconv.Itoa(r.GenerateDelayInSwitchMatrix) + "|" + r.MultiplexerStyle +
			"|" + strconv.Itoa(r.NumberOfBRAMs) + "|" + boolKey(r.SuperTileEnable) +
			"|" + strconv.Itoa(r.Rows) + "|" + strconv.Itoa(r.Columns)
	})
	out.Tiles = diffRows(from.Tiles, to.Tiles, func(r TileRow) string {
		return r.Name + "|" + strconv.Itoa(r.ConfigBits) + "|" + boolKey(r.UserCLK) +
			"|" + r.MatrixDir + "|" + strconv.Itoa(r.Bels) + "|" + boolKey(r.HasCarry)
	})
	out.SuperTiles = diffRows(from.SuperTiles, to.SuperTiles, func(r SuperTileRow) string {
		return r.Name + "|" + strconv.Itoa(r.Constituents) + "|" + strconv.Itoa(r.Rows) +
			"|" + strconv.Itoa(r.Columns) + "|" + strconv.Itoa(r.Bels) + "|" + boolKey(r.UserCLK)
	})
	out.Ports = diffRows(from.Ports, to.Ports, func(r PortRow) string {
		return r.Tile + "|" + r.Direction + "|" + r.SourceName + "|" + strconv.Itoa(r.XOffset) +
			"|" + strconv.Itoa(r.YOffset) + "|" + r.DestinationName + "|" + strconv.Itoa(r.Wires) +
			"|" + r.Name + "|" + r.IO + "|" + r.Side
	})
	out.Bels = diffRows(from.Bels, to.Bels, func(r BelRow) string {
		return r.Tile + "|" + r.Src + "|" + r.Prefix + "|" + strconv.Itoa(r.ConfigBits) +
			"|" + strconv.Itoa(r.Inputs) + "|" + strconv.Itoa(r.Outputs) +
			"|" + boolKey(r.UserCLK) + "|" + boolKey(r.HasCarry)
	})
	out.GridCells = diffRows(from.GridCells, to.GridCells, func(r GridCellRow) string {
		return strconv.Itoa(r.Row) + "|" + strconv.Itoa(r.Col) + "|" + r.Tile + "|" + boolKey(r.PartOfSuperTile)
	})
	out.WirePairs = diffRows(from.WirePairs, to.WirePairs, func(r WirePairRow) string {
		return r.Source + "|" + r.Sink
	})

	return out
}

func emptyTables() Tables {
	return Tables{
		Parameters: []ParameterRow{},
		Tiles:      []TileRow{},
		SuperTiles: []SuperTileRow{},
		Ports:      []PortRow{},
		Bels:       []BelRow{},
		GridCells:  []GridCellRow{},
		WirePairs:  []WirePairRow{},
	}
}

func diffRows[T any](from, to []T, key func(T) string) []T {
	fromSet := make(map[string]T, len(from))
	for _, row := range from {
		fromSet[key(row)] = row
	}
	diff := []T{}
	for _, row := range to {
		if _, ok := fromSet[key(row)]; !ok {
			diff = append(diff, row)
		}
	}
	return diff
}

func boolKey(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
