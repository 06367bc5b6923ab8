// Package listfile reads two-column switch matrix connectivity lists.
// Each non-comment line holds two comma-separated port expressions; both
// columns are expanded and paired positionally into (source, sink)
// connections.
package listfile

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/openfpga-tools/fabricgen/internal/expr"
	"github.com/openfpga-tools/fabricgen/internal/fabric"
	"github.com/openfpga-tools/fabricgen/internal/orderedset"
)

// Pair is one (source, sink) connection.
type Pair struct {
	Source string
	Sink   string
}

// Grouping holds connections grouped by one endpoint, preserving the order
// in which keys were first seen.
type Grouping struct {
	Keys    []string
	Members map[string][]string
}

// Parse reads the list file at path and returns its deduplicated
// (source, sink) pairs in first-occurrence order.
func Parse(path string) ([]Pair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading list file: %w", err)
	}
	return ParseText(string(data), path)
}

// ParseText parses list file content. name is used in error messages only.
func ParseText(text, name string) ([]Pair, error) {
	pairs := orderedset.New[Pair]()

	for lineNo, raw := range strings.Split(text, "\n") {
		line := stripComment(raw)
		line = strings.ReplaceAll(line, " ", "")
		line = strings.ReplaceAll(line, "\t", "")

		var fields []string
		for _, f := range strings.Split(line, ",") {
			if f != "" {
				fields = append(fields, f)
			}
		}
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: %s line %d has %d fields, want 2",
				fabric.ErrInvalidListLine, name, lineNo+1, len(fields))
		}

		sources, err := expr.Expand(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", name, lineNo+1, err)
		}
		sinks, err := expr.Expand(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", name, lineNo+1, err)
		}

		// Positional pairing truncates to the shorter expansion. This
		// silently drops the excess of the longer side, so report it.
		if len(sources) != len(sinks) {
			slog.Warn("unbalanced list line, excess entries dropped",
				"file", name, "line", lineNo+1,
				"sources", len(sources), "sinks", len(sinks))
		}
		n := min(len(sources), len(sinks))
		for i := 0; i < n; i++ {
			pairs.Add(Pair{Source: sources[i], Sink: sinks[i]})
		}
	}

	return pairs.Items(), nil
}

// ParseSource reads the list file and groups sinks by source.
func ParseSource(path string) (*Grouping, error) {
	pairs, err := Parse(path)
	if err != nil {
		return nil, err
	}
	return GroupBySource(pairs), nil
}

// ParseSink reads the list file and groups sources by sink.
func ParseSink(path string) (*Grouping, error) {
	pairs, err := Parse(path)
	if err != nil {
		return nil, err
	}
	return GroupBySink(pairs), nil
}

// GroupBySource groups the pair list into source -> []sink.
func GroupBySource(pairs []Pair) *Grouping {
	g := &Grouping{Members: make(map[string][]string)}
	for _, p := range pairs {
		if _, ok := g.Members[p.Source]; !ok {
			g.Keys = append(g.Keys, p.Source)
		}
		g.Members[p.Source] = append(g.Members[p.Source], p.Sink)
	}
	return g
}

// GroupBySink inverts the pair list into sink -> []source.
func GroupBySink(pairs []Pair) *Grouping {
	g := &Grouping{Members: make(map[string][]string)}
	for _, p := range pairs {
		if _, ok := g.Members[p.Sink]; !ok {
			g.Keys = append(g.Keys, p.Sink)
		}
		g.Members[p.Sink] = append(g.Members[p.Sink], p.Source)
	}
	return g
}

// stripComment removes a '#' comment from the line, if any.
func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}
