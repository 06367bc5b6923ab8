package fabric

import "testing"

func TestMuxConfigBits(t *testing.T) {
	tests := []struct {
		fanIn int
		want  int
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{8, 3},
		{9, 4},
	}
	for _, tt := range tests {
		if got := MuxConfigBits(tt.fanIn); got != tt.want {
			t.Errorf("MuxConfigBits(%d) = %d, want %d", tt.fanIn, got, tt.want)
		}
	}
}

func TestDirectionOpposite(t *testing.T) {
	tests := []struct {
		in, want Direction
	}{
		{North, South},
		{South, North},
		{East, West},
		{West, East},
		{Jump, Jump},
	}
	for _, tt := range tests {
		if got := tt.in.Opposite(); got != tt.want {
			t.Errorf("%s.Opposite() = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestTileCloneIsolation(t *testing.T) {
	proto := &Tile{
		Name:  "CLB",
		Ports: []Port{{Direction: North, SourceName: "N1BEG"}},
		Bels: []*Bel{{
			Prefix:   "L_",
			Internal: []PortDecl{{Name: "L_I0", IO: Input}},
			Carry:    map[IO]string{Input: "L_Ci"},
			Map:      BelMap{"INIT": Feature{"0": BitMap{0: "1"}}},
		}},
		Carry: map[IO]string{Output: "Co0"},
	}

	c := proto.Clone()
	c.PartOfSuperTile = true
	c.Ports[0].SourceName = "changed"
	c.Bels[0].Carry[Input] = "changed"
	c.Bels[0].Map["INIT"]["0"][0] = "0"
	c.Carry[Output] = "changed"

	if proto.PartOfSuperTile {
		t.Fatal("clone flag leaked into the prototype")
	}
	if proto.Ports[0].SourceName != "N1BEG" {
		t.Fatal("clone port mutation leaked into the prototype")
	}
	if proto.Bels[0].Carry[Input] != "L_Ci" {
		t.Fatal("clone bel carry mutation leaked into the prototype")
	}
	if proto.Bels[0].Map["INIT"]["0"][0] != "1" {
		t.Fatal("clone bel map mutation leaked into the prototype")
	}
	if proto.Carry[Output] != "Co0" {
		t.Fatal("clone tile carry mutation leaked into the prototype")
	}
}

func TestIOFromString(t *testing.T) {
	tests := []struct {
		in   string
		want IO
		ok   bool
	}{
		{"in", Input, true},
		{"INPUT", Input, true},
		{"out", Output, true},
		{"OUTPUT", Output, true},
		{"inout", InOut, true},
		{"buffer", 0, false},
	}
	for _, tt := range tests {
		got, ok := IOFromString(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("IOFromString(%q) = %v, %v", tt.in, got, ok)
		}
	}
}
