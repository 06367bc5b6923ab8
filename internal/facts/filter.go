package facts

// FilterTablesByTiles returns a new Tables object containing only the
// tile-scoped rows whose tile name is present in the provided set.
// Fabric-wide relations (parameters, wire pairs) pass through unchanged.
func FilterTablesByTiles(tables Tables, tiles map[string]bool) Tables {
	out := emptyTables()
	out.Parameters = append(out.Parameters, tables.Parameters...)
	out.WirePairs = append(out.WirePairs, tables.WirePairs...)
	if len(tiles) == 0 {
		return out
	}

	for _, row := range tables.Tiles {
		if tiles[row.Name] {
			out.Tiles = append(out.Tiles, row)
		}
	}
	for _, row := range tables.Ports {
		if tiles[row.Tile] {
			out.Ports = append(out.Ports, row)
		}
	}
	for _, row := range tables.Bels {
		if tiles[row.Tile] {
			out.Bels = append(out.Bels, row)
		}
	}
	for _, row := range tables.GridCells {
		if tiles[row.Tile] {
			out.GridCells = append(out.GridCells, row)
		}
	}
	for _, row := range tables.SuperTiles {
		if tiles[row.Name] {
			out.SuperTiles = append(out.SuperTiles, row)
		}
	}

	return out
}

// FilterDeltaByTiles returns a new Delta containing only rows for the
// specified tiles.
func FilterDeltaByTiles(delta Delta, tiles map[string]bool) Delta {
	return Delta{
		Added:   FilterTablesByTiles(delta.Added, tiles),
		Removed: FilterTablesByTiles(delta.Removed, tiles),
	}
}
