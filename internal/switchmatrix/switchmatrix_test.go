package switchmatrix

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openfpga-tools/fabricgen/internal/fabric"
	"github.com/openfpga-tools/fabricgen/internal/listfile"
)

// logicBel builds a bel with the given number of plain inputs and outputs.
func logicBel(prefix string, inputs, outputs int) *fabric.Bel {
	b := &fabric.Bel{Prefix: prefix, Carry: make(map[fabric.IO]string)}
	for i := 0; i < inputs; i++ {
		b.Internal = append(b.Internal, fabric.PortDecl{
			Name: fmt.Sprintf("%sI%d", prefix, i), IO: fabric.Input,
		})
	}
	for i := 0; i < outputs; i++ {
		b.Internal = append(b.Internal, fabric.PortDecl{
			Name: fmt.Sprintf("%sO%d", prefix, i), IO: fabric.Output,
		})
	}
	return b
}

// carryBel builds a bel whose carry ports route around the matrix.
func carryBel(prefix string) *fabric.Bel {
	b := logicBel(prefix, 1, 1)
	ci := prefix + "Ci"
	co := prefix + "Co"
	b.Internal = append(b.Internal,
		fabric.PortDecl{Name: ci, IO: fabric.Input},
		fabric.PortDecl{Name: co, IO: fabric.Output},
	)
	b.Carry[fabric.Input] = ci
	b.Carry[fabric.Output] = co
	return b
}

func TestGenerateFullInventory(t *testing.T) {
	var bels []*fabric.Bel
	for i := 0; i < 8; i++ {
		bels = append(bels, logicBel(fmt.Sprintf("B%d_", i), 4, 1))
	}

	out := filepath.Join(t.TempDir(), "clb_switchmatrix.list")
	bits, err := Generate("CLB", bels, out, nil, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// 32 fully used input muxes of size 4, 16 begin wire muxes of size 4,
	// 8 jump muxes of size 2.
	if want := 32*2 + 16*2 + 8*1; bits != want {
		t.Fatalf("config bits = %d, want %d", bits, want)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if strings.Contains(string(data), "CLB") {
		t.Fatal("output still contains unsubstituted template slots")
	}

	// The written list must account for the same bit total when read back
	// through the list parser, the way tile parsing consumes it.
	grouped, err := listfile.ParseSource(out)
	if err != nil {
		t.Fatalf("re-parsing output: %v", err)
	}
	reparsed := 0
	for _, key := range grouped.Keys {
		reparsed += fabric.MuxConfigBits(len(grouped.Members[key]))
	}
	if reparsed != bits {
		t.Fatalf("re-parsed bits = %d, Generate returned %d", reparsed, bits)
	}
}

func TestGenerateRedirectsUnusedSlots(t *testing.T) {
	bels := []*fabric.Bel{logicBel("L_", 4, 1)}

	out := filepath.Join(t.TempDir(), "min_switchmatrix.list")
	bits, err := Generate("MIN", bels, out, nil, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// 4 input muxes of size 4; begin and jump muxes keep their size, the
	// unused output slots are redirected to real sinks.
	if want := 4*2 + 16*2 + 8*1; bits != want {
		t.Fatalf("config bits = %d, want %d", bits, want)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if strings.Contains(string(data), "CLB") {
		t.Fatal("output still contains unsubstituted template slots")
	}
}

func TestGenerateOddMultiplexer(t *testing.T) {
	// A template whose only mux has five drivers. The embedded template
	// keeps power-of-two sizes, so the odd case needs its own list.
	template := `N1BEG0,E1END0
N1BEG0,E1END1
N1BEG0,E1END2
N1BEG0,E1END3
N1BEG0,W1END0
`

	out := filepath.Join(t.TempDir(), "odd_switchmatrix.list")
	bits, err := generate(template, "ODD", nil, out, nil, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if bits != 3 {
		t.Fatalf("config bits = %d, want 3", bits)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	text := string(data)

	mux := "[N1BEG0|N1BEG0|N1BEG0|N1BEG0|N1BEG0],[E1END0|E1END1|E1END2|E1END3|W1END0]"
	if !strings.Contains(text, mux) {
		t.Fatalf("bracketed mux line missing in:\n%s", text)
	}
	warning := "# WARNING: Muxsize 5 for source N1BEG0"
	if strings.Index(text, warning) < strings.Index(text, mux) {
		t.Fatalf("warning comment missing or not after the mux line in:\n%s", text)
	}
}

func TestGenerateCapacityExceeded(t *testing.T) {
	var bels []*fabric.Bel
	for i := 0; i < 9; i++ {
		bels = append(bels, logicBel(fmt.Sprintf("B%d_", i), 4, 1))
	}

	out := filepath.Join(t.TempDir(), "big_switchmatrix.list")
	_, err := Generate("BIG", bels, out, nil, nil)
	if !errors.Is(err, fabric.ErrCapacityExceeded) {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}
}

func TestGenerateCarryChain(t *testing.T) {
	bels := []*fabric.Bel{carryBel("A_"), carryBel("B_")}
	tileCarry := map[fabric.IO]string{
		fabric.Input:  "Cin0",
		fabric.Output: "Cout0",
	}

	out := filepath.Join(t.TempDir(), "carry_switchmatrix.list")
	if _, err := Generate("CARRY", bels, out, tileCarry, nil); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	text := string(data)

	// Chain order: tile carry in feeds the first bel, each bel feeds the
	// next, the last bel feeds the tile carry out.
	wantLines := []string{
		"# Connect carrychain",
		"A_Ci,Cin0",
		"B_Ci,A_Co",
		"Cout0,B_Co",
	}
	idx := -1
	for _, line := range wantLines {
		next := strings.Index(text, line)
		if next < 0 || next < idx {
			t.Fatalf("carry chain lines out of order or missing %q in:\n%s", line, text)
		}
		idx = next
	}

	// Carry ports stay off the matrix itself.
	matrixPart, _, _ := strings.Cut(text, "# Connect carrychain")
	for _, port := range []string{"A_Ci", "A_Co", "B_Ci", "B_Co"} {
		if strings.Contains(matrixPart, port) {
			t.Fatalf("carry port %s appears in the matrix section", port)
		}
	}
}

func TestGenerateCarryCountMismatch(t *testing.T) {
	b := logicBel("A_", 1, 1)
	b.Internal = append(b.Internal, fabric.PortDecl{Name: "A_Ci", IO: fabric.Input})
	b.Carry[fabric.Input] = "A_Ci"
	tileCarry := map[fabric.IO]string{
		fabric.Input:  "Cin0",
		fabric.Output: "Cout0",
	}

	out := filepath.Join(t.TempDir(), "bad_switchmatrix.list")
	_, err := Generate("BAD", []*fabric.Bel{b}, out, tileCarry, nil)
	if !errors.Is(err, fabric.ErrCarryPortCountMismatch) {
		t.Fatalf("err = %v, want ErrCarryPortCountMismatch", err)
	}
}
