// Package matrix reads square adjacency matrix files describing a tile's
// switch matrix. The header row carries the tile name followed by the
// destination port names; each data row carries a source port name and a
// 0/1 cell per destination.
package matrix

import (
	"fmt"
	"os"
	"strings"

	"github.com/openfpga-tools/fabricgen/internal/fabric"
)

// Matrix is the destination-grouped connectivity of one tile.
type Matrix struct {
	Tile string
	// Sources lists the row names in file order.
	Sources []string
	// Conns maps a source port to the ordered destinations it connects to.
	Conns map[string][]string
}

// Parse reads the matrix file at path. The top-left header cell must match
// tileName, otherwise the file belongs to a different tile.
func Parse(path, tileName string) (*Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading matrix file: %w", err)
	}
	return ParseText(string(data), path, tileName)
}

// ParseText parses matrix content. name is used in error messages only.
func ParseText(text, name, tileName string) (*Matrix, error) {
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		if i := strings.IndexByte(raw, '#'); i >= 0 {
			raw = raw[:i]
		}
		lines = append(lines, raw)
	}
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, fmt.Errorf("%w: %s has no header row", fabric.ErrMissingSection, name)
	}

	header := splitRow(lines[0])
	if header[0] != tileName {
		return nil, fmt.Errorf("%w: %s names tile %q, want %q",
			fabric.ErrTileNameMismatch, name, header[0], tileName)
	}
	destinations := header[1:]

	m := &Matrix{Tile: tileName, Conns: make(map[string][]string)}
	for _, line := range lines[1:] {
		row := splitRow(line)
		source := row[0]
		if source == "" {
			continue
		}
		var conns []string
		for col, cell := range row[1:] {
			if cell == "1" && col < len(destinations) {
				conns = append(conns, destinations[col])
			}
		}
		m.Sources = append(m.Sources, source)
		m.Conns[source] = conns
	}
	return m, nil
}

func splitRow(line string) []string {
	cells := strings.Split(line, ",")
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}
