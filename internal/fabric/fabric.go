// Package fabric holds the in-memory model of a reconfigurable fabric:
// tiles, bels, super tiles, the placement grid and the configuration
// memory layout. The model is assembled by internal/assembler and consumed
// read-only by the downstream RTL and bitstream emitters.
package fabric

import (
	"fmt"
	"math/bits"
	"strings"
)

// Direction is the wire direction of a tile port declaration.
type Direction int

const (
	North Direction = iota
	South
	East
	West
	Jump
)

// Opposite returns the geometrically opposite direction. Jump wires have
// no opposite and map to themselves.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	}
	return d
}

func (d Direction) String() string {
	switch d {
	case North:
		return "NORTH"
	case South:
		return "SOUTH"
	case East:
		return "EAST"
	case West:
		return "WEST"
	case Jump:
		return "JUMP"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// DirectionFromString parses a direction keyword. The keyword comparison is
// case-insensitive to match the fabric description grammar.
func DirectionFromString(s string) (Direction, bool) {
	switch strings.ToUpper(s) {
	case "NORTH":
		return North, true
	case "SOUTH":
		return South, true
	case "EAST":
		return East, true
	case "WEST":
		return West, true
	case "JUMP":
		return Jump, true
	}
	return 0, false
}

// IO is the declared kind of a port.
type IO int

const (
	Input IO = iota
	Output
	InOut
)

func (io IO) String() string {
	switch io {
	case Input:
		return "INPUT"
	case Output:
		return "OUTPUT"
	case InOut:
		return "INOUT"
	}
	return fmt.Sprintf("IO(%d)", int(io))
}

// IOFromString parses an I/O keyword (INPUT/OUTPUT/INOUT, or the HDL
// spellings in/out/inout).
func IOFromString(s string) (IO, bool) {
	switch strings.ToUpper(s) {
	case "INPUT", "IN":
		return Input, true
	case "OUTPUT", "OUT":
		return Output, true
	case "INOUT":
		return InOut, true
	}
	return 0, false
}

// Side is the tile boundary a port sits on. Jump wires sit on no
// particular boundary and use Any.
type Side int

const (
	SideNorth Side = iota
	SideSouth
	SideEast
	SideWest
	SideAny
)

func (s Side) String() string {
	switch s {
	case SideNorth:
		return "NORTH"
	case SideSouth:
		return "SOUTH"
	case SideEast:
		return "EAST"
	case SideWest:
		return "WEST"
	case SideAny:
		return "ANY"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// SideOf maps a wire direction onto the tile boundary it leaves from.
func SideOf(d Direction) Side {
	switch d {
	case North:
		return SideNorth
	case South:
		return SideSouth
	case East:
		return SideEast
	case West:
		return SideWest
	}
	return SideAny
}

// ConfigBitMode selects how configuration bits reach the fabric.
type ConfigBitMode int

const (
	FrameBased ConfigBitMode = iota
	FlipFlopChain
)

func (m ConfigBitMode) String() string {
	if m == FlipFlopChain {
		return "FLIPFLOP_CHAIN"
	}
	return "FRAME_BASED"
}

// MultiplexerStyle selects the mux implementation used by the RTL emitter.
type MultiplexerStyle int

const (
	StyleCustom MultiplexerStyle = iota
	StyleGeneric
)

func (m MultiplexerStyle) String() string {
	if m == StyleGeneric {
		return "GENERIC"
	}
	return "CUSTOM"
}

// Port is one boundary port of a tile. Every directional declaration in a
// tile block produces exactly two Port records: an Output on the declared
// side and an Input on the opposite side (Jump declarations produce two
// SideAny records).
type Port struct {
	Direction       Direction
	SourceName      string
	XOffset         int
	YOffset         int
	DestinationName string
	Wires           int
	// Name is the externally visible port name: SourceName for the
	// Output record, DestinationName for the Input record.
	Name string
	IO   IO
	Side Side
}

// PortDecl is a (name, I/O kind) pair of a bel port list.
type PortDecl struct {
	Name string
	IO   IO
}

// BitMap maps a range position within a feature to the character driven at
// that position.
type BitMap map[int]string

// Feature maps a selectable value label to its bit distribution.
type Feature map[string]BitMap

// BelMap maps a feature name to its encodings. The number of distinct
// feature names is the bel's configuration bit count.
type BelMap map[string]Feature

// Bel is a basic logic element instantiated inside a tile.
type Bel struct {
	Src        string
	Prefix     string
	Internal   []PortDecl
	External   []PortDecl
	ConfigPort []PortDecl
	Shared     []PortDecl
	// Carry holds at most one carry endpoint per I/O kind.
	Carry      map[IO]string
	ConfigBits int
	Map        BelMap
	UserCLK    bool
}

// Inputs returns the routable input port names of the bel, in declaration
// order. Only internal ports take part in switch matrix routing.
func (b *Bel) Inputs() []string {
	var names []string
	for _, p := range b.Internal {
		if p.IO == Input {
			names = append(names, p.Name)
		}
	}
	return names
}

// Outputs returns the routable output port names of the bel, in
// declaration order.
func (b *Bel) Outputs() []string {
	var names []string
	for _, p := range b.Internal {
		if p.IO == Output {
			names = append(names, p.Name)
		}
	}
	return names
}

// Clone returns a deep copy of the bel.
func (b *Bel) Clone() *Bel {
	c := *b
	c.Internal = append([]PortDecl(nil), b.Internal...)
	c.External = append([]PortDecl(nil), b.External...)
	c.ConfigPort = append([]PortDecl(nil), b.ConfigPort...)
	c.Shared = append([]PortDecl(nil), b.Shared...)
	c.Carry = make(map[IO]string, len(b.Carry))
	for k, v := range b.Carry {
		c.Carry[k] = v
	}
	c.Map = make(BelMap, len(b.Map))
	for feature, values := range b.Map {
		f := make(Feature, len(values))
		for label, bm := range values {
			m := make(BitMap, len(bm))
			for pos, ch := range bm {
				m[pos] = ch
			}
			f[label] = m
		}
		c.Map[feature] = f
	}
	return &c
}

// Tile is a fabric cell type: a fixed port boundary, a set of bels and a
// switch matrix connectivity source.
type Tile struct {
	Name       string
	Ports      []Port
	Bels       []*Bel
	MatrixDir  string
	UserCLK    bool
	ConfigBits int
	// Carry holds the tile-level carry pair (at most one per tile).
	Carry map[IO]string
	// PartOfSuperTile is per-instance state: it is set on placement
	// copies inside a super tile, never on the catalog prototype.
	PartOfSuperTile bool
}

// Clone returns a deep copy of the tile. Catalog prototypes are never
// aliased into the grid: every grid cell and super tile placement cell
// owns its own copy.
func (t *Tile) Clone() *Tile {
	c := *t
	c.Ports = append([]Port(nil), t.Ports...)
	c.Bels = make([]*Bel, len(t.Bels))
	for i, b := range t.Bels {
		c.Bels[i] = b.Clone()
	}
	c.Carry = make(map[IO]string, len(t.Carry))
	for k, v := range t.Carry {
		c.Carry[k] = v
	}
	return &c
}

// SuperTile is a named group of tile instances placed together as one
// composite unit.
type SuperTile struct {
	Name string
	// Tiles are the constituent tile copies, one per distinct tile type.
	Tiles []*Tile
	// TileMap is the placement grid; nil cells are empty.
	TileMap [][]*Tile
	Bels    []*Bel
	UserCLK bool
}

// WirePair is a canonical (begin, end) wire name pair from a directional
// port declaration.
type WirePair struct {
	Source string
	Sink   string
}

// Fabric is the fully assembled fabric model.
type Fabric struct {
	// Tiles is the placement grid; nil cells are empty.
	Tiles           [][]*Tile
	NumberOfRows    int
	NumberOfColumns int

	ConfigBitMode               ConfigBitMode
	FrameBitsPerRow             int
	MaxFramesPerCol             int
	Package                     string
	GenerateDelayInSwitchMatrix int
	MultiplexerStyle            MultiplexerStyle
	NumberOfBRAMs               int
	SuperTileEnable             bool

	TileDic        map[string]*Tile
	SuperTileDic   map[string]*SuperTile
	CommonWirePair []WirePair
}

// ConfigMem is one frame of configuration memory together with the global
// configuration bit indices it carries.
type ConfigMem struct {
	FrameName       string
	FrameIndex      int
	BitsUsedInFrame int
	UsedBitMask     string
	ConfigBitRanges []int
}

// MuxConfigBits returns the number of configuration bits needed to select
// between fanIn inputs: ceil(log2(fanIn)) for fanIn >= 2, otherwise 0.
func MuxConfigBits(fanIn int) int {
	if fanIn < 2 {
		return 0
	}
	return bits.Len(uint(fanIn - 1))
}
