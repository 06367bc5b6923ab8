// Package switchmatrix synthesizes a concrete switch matrix connectivity
// list for a tile from a generic template and the tile's actual bel port
// inventory. The template provides 32 generic input slots (groups of 4)
// and 8 generic output slots; unused input slots drop their multiplexer,
// unused output slots are redirected to the least loaded real sink.
package switchmatrix

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/openfpga-tools/fabricgen/internal/fabric"
	"github.com/openfpga-tools/fabricgen/internal/listfile"
)

//go:embed template.list
var templateList string

const (
	maxInputs     = 32
	maxOutputs    = 8
	inputsPerSlot = 4
)

var slotPattern = regexp.MustCompile(`^CLB\d+_(I\d+|O)$`)

// Generate writes the synthesized connectivity list for the tile to
// outPath and returns the number of configuration bits the generated
// multiplexers need. tileCarry is the tile-level carry pair, if declared.
func Generate(tileName string, bels []*fabric.Bel, outPath string, tileCarry map[fabric.IO]string, logger *slog.Logger) (int, error) {
	return generate(templateList, tileName, bels, outPath, tileCarry, logger)
}

func generate(template, tileName string, bels []*fabric.Bel, outPath string, tileCarry map[fabric.IO]string, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var belIns, belOuts, carryIns, carryOuts []string
	for _, b := range bels {
		belIns = append(belIns, b.Inputs()...)
		belOuts = append(belOuts, b.Outputs()...)
	}
	// Carry ports route through the dedicated chain, not the matrix.
	for _, b := range bels {
		if name, ok := b.Carry[fabric.Input]; ok {
			carryIns = append(carryIns, name)
			belIns = remove(belIns, name)
		}
		if name, ok := b.Carry[fabric.Output]; ok {
			carryOuts = append(carryOuts, name)
			belOuts = remove(belOuts, name)
		}
	}

	if len(belIns) > maxInputs {
		return 0, fmt.Errorf("%w: tile %s has %d bel inputs, generation handles at most %d",
			fabric.ErrCapacityExceeded, tileName, len(belIns), maxInputs)
	}
	if len(belOuts) > maxOutputs {
		return 0, fmt.Errorf("%w: tile %s has %d bel outputs, generation handles at most %d",
			fabric.ErrCapacityExceeded, tileName, len(belOuts), maxOutputs)
	}

	pairs, err := listfile.ParseText(template, "switch matrix template")
	if err != nil {
		return 0, err
	}

	subst := make(map[string]string)
	for i, port := range belIns {
		subst[fmt.Sprintf("CLB%d_I%d", i/inputsPerSlot, i%inputsPerSlot)] = port
	}
	for i, port := range belOuts {
		subst[fmt.Sprintf("CLB%d_O", i%maxOutputs)] = port
	}

	// Incoming connection counts per real sink, used to pick redirect
	// targets for unsubstituted output slots.
	var sinkOrder []string
	sinkCount := make(map[string]int)
	for _, p := range pairs {
		source := substitute(subst, p.Source)
		sink := substitute(subst, p.Sink)
		if isSlot(source) || isSlot(sink) {
			continue
		}
		if _, seen := sinkCount[sink]; !seen {
			sinkOrder = append(sinkOrder, sink)
		}
		sinkCount[sink]++
	}

	var sourceOrder []string
	connections := make(map[string][]string)
	for _, p := range pairs {
		source := substitute(subst, p.Source)
		if isSlot(source) {
			// Unused multiplexer, drop it entirely.
			continue
		}
		sink := substitute(subst, p.Sink)
		if isSlot(sink) {
			sink = leastLoadedSink(sinkOrder, sinkCount)
			if sink == "" {
				logger.Warn("no real sink available for redirect", "tile", tileName, "source", source)
				continue
			}
			sinkCount[sink]++
		}
		if _, seen := connections[source]; !seen {
			sourceOrder = append(sourceOrder, source)
		}
		connections[source] = append(connections[source], sink)
	}

	configBits := 0
	var lines []string
	for _, source := range sourceOrder {
		sinks := connections[source]
		muxSize := len(sinks)
		if muxSize == 1 {
			lines = append(lines, source+","+sinks[0])
			continue
		}

		configBits += fabric.MuxConfigBits(muxSize)
		left := "[" + source + strings.Repeat("|"+source, muxSize-1) + "]"
		right := "[" + strings.Join(sinks, "|") + "]"
		lines = append(lines, left+","+right)

		if muxSize%2 != 0 {
			logger.Warn("odd multiplexer size", "tile", tileName, "source", source, "size", muxSize)
			lines = append(lines, fmt.Sprintf("# WARNING: Muxsize %d for source %s", muxSize, source))
		}
	}

	if len(tileCarry) > 0 && len(carryIns)+len(carryOuts) > 0 {
		// The tile carry input feeds the first bel carry input; the last
		// bel carry output feeds the tile carry output.
		outs := append([]string{tileCarry[fabric.Input]}, carryOuts...)
		ins := append(append([]string(nil), carryIns...), tileCarry[fabric.Output])
		if len(ins) != len(outs) {
			return 0, fmt.Errorf("%w: tile %s chain has %d inputs and %d outputs",
				fabric.ErrCarryPortCountMismatch, tileName, len(ins), len(outs))
		}
		lines = append(lines, "# Connect carrychain")
		for i := range ins {
			lines = append(lines, ins[i]+","+outs[i])
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return 0, fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		return 0, fmt.Errorf("writing switch matrix list: %w", err)
	}

	return configBits, nil
}

func substitute(subst map[string]string, name string) string {
	if real, ok := subst[name]; ok {
		return real
	}
	return name
}

// isSlot reports whether name is still an unsubstituted template slot.
func isSlot(name string) bool {
	return slotPattern.MatchString(name)
}

// leastLoadedSink returns the sink with the fewest recorded connections,
// ties broken by first encounter.
func leastLoadedSink(order []string, count map[string]int) string {
	best := ""
	for _, sink := range order {
		if best == "" || count[sink] < count[best] {
			best = sink
		}
	}
	return best
}

func remove(names []string, name string) []string {
	out := names[:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
