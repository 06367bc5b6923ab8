package main

import "testing"

func TestTileSet(t *testing.T) {
	tests := []struct {
		value string
		want  []string
	}{
		{"", nil},
		{" , ", nil},
		{"CLB", []string{"CLB"}},
		{"CLB, TERM", []string{"CLB", "TERM"}},
		{"CLB,CLB", []string{"CLB"}},
	}
	for _, tt := range tests {
		got := tileSet(tt.value)
		if tt.want == nil {
			if got != nil {
				t.Errorf("tileSet(%q) = %v, want nil", tt.value, got)
			}
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("tileSet(%q) = %v, want %v", tt.value, got, tt.want)
			continue
		}
		for _, name := range tt.want {
			if !got[name] {
				t.Errorf("tileSet(%q) is missing %s", tt.value, name)
			}
		}
	}
}
