package matrix

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/openfpga-tools/fabricgen/internal/fabric"
)

func TestParseText(t *testing.T) {
	text := `CLB,P1,P2,P3
S1,1,0,1
S2,0,0,0
,,,
S3,0,1,0
`
	m, err := ParseText(text, "clb_matrix.csv", "CLB")
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if m.Tile != "CLB" {
		t.Fatalf("Tile = %q, want CLB", m.Tile)
	}
	if diff := cmp.Diff([]string{"S1", "S2", "S3"}, m.Sources); diff != "" {
		t.Fatalf("sources mismatch (-want +got):\n%s", diff)
	}
	want := map[string][]string{
		"S1": {"P1", "P3"},
		"S2": nil,
		"S3": {"P2"},
	}
	if diff := cmp.Diff(want, m.Conns); diff != "" {
		t.Fatalf("conns mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTextTileNameMismatch(t *testing.T) {
	_, err := ParseText("CLB,P1\nS1,1\n", "clb_matrix.csv", "DSP")
	if !errors.Is(err, fabric.ErrTileNameMismatch) {
		t.Fatalf("err = %v, want ErrTileNameMismatch", err)
	}
}

func TestParseTextEmpty(t *testing.T) {
	for _, text := range []string{"", "   \nS1,1\n", "# only a comment\n"} {
		_, err := ParseText(text, "empty.csv", "CLB")
		if !errors.Is(err, fabric.ErrMissingSection) {
			t.Fatalf("ParseText(%q) err = %v, want ErrMissingSection", text, err)
		}
	}
}
