package expr

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/openfpga-tools/fabricgen/internal/fabric"
)

func TestExpand(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "no brackets",
			in:   "N1END0",
			want: []string{"N1END0"},
		},
		{
			name: "single group",
			in:   "A[x|y]B",
			want: []string{"AxB", "AyB"},
		},
		{
			name: "two groups cross product",
			in:   "[N|S]1BEG[0|1]",
			want: []string{"N1BEG0", "N1BEG1", "S1BEG0", "S1BEG1"},
		},
		{
			name: "nested group",
			in:   "A[x|y[1|2]]B",
			want: []string{"AxB", "Ay1B", "Ay2B"},
		},
		{
			name: "empty alternative",
			in:   "A[|x]",
			want: []string{"A", "Ax"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(tt.in)
			if err != nil {
				t.Fatalf("Expand(%q): %v", tt.in, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Expand(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestExpandUnbalanced(t *testing.T) {
	for _, in := range []string{"A[x|y", "A[x|y[1|2]B"} {
		_, err := Expand(in)
		if !errors.Is(err, fabric.ErrMalformedExpression) {
			t.Fatalf("Expand(%q) = %v, want ErrMalformedExpression", in, err)
		}
	}
}
