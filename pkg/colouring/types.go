package colouring

import (
	"fmt"
	"sort"
)

// Colour is a single colour identifier. Colours are small non-negative
// integers; ColourUnset marks a node that currently holds no colour.
type Colour int

// ColourUnset is the sentinel for "no colour committed". A node whose stored
// colour falls outside the active palette is demoted to ColourUnset rather
// than rejected (malformed input is not fatal).
const ColourUnset Colour = -1

// IsSet reports whether the colour is a real colour rather than the unset
// sentinel.
func (c Colour) IsSet() bool {
	return c != ColourUnset
}

// String implements fmt.Stringer.
func (c Colour) String() string {
	if !c.IsSet() {
		return "unset"
	}
	return fmt.Sprintf("C%d", int(c))
}

// NodeID is the stable, unique identifier of a graph node. Agent identity is
// the node id.
type NodeID int

// Palette is the ordered set of colours currently legal for agents to commit.
// Within one experiment run a palette only ever shrinks or stays fixed; the
// driver owns mutation and agents treat it as read-only during a round.
type Palette []Colour

// NewPalette returns the palette {0, 1, ..., size-1}.
func NewPalette(size int) Palette {
	p := make(Palette, size)
	for i := range p {
		p[i] = Colour(i)
	}
	return p
}

// Contains reports whether the colour is a member of the palette.
func (p Palette) Contains(c Colour) bool {
	for _, pc := range p {
		if pc == c {
			return true
		}
	}
	return false
}

// Without returns a copy of the palette with the given colour removed.
// Removing a colour that is not present returns an unchanged copy.
func (p Palette) Without(c Colour) Palette {
	out := make(Palette, 0, len(p))
	for _, pc := range p {
		if pc != c {
			out = append(out, pc)
		}
	}
	return out
}

// Clone returns an independent copy of the palette.
func (p Palette) Clone() Palette {
	out := make(Palette, len(p))
	copy(out, p)
	return out
}

// GraphStore is the read/write view of the graph the core consumes. The
// committed colour of every node lives in the store - it is the single source
// of truth, so an auditor and the agents always observe the same assignment.
//
// Implementations must make Colour/SetColour safe for concurrent use; the
// concurrent round model reads neighbour colours while other agents commit.
type GraphStore interface {
	// Nodes returns all node ids in ascending order. The stable enumeration
	// is what makes sequential rounds reproducible.
	Nodes() []NodeID

	// Neighbours returns the ids adjacent to the given node. A node with no
	// neighbours returns an empty slice, not an error.
	Neighbours(id NodeID) []NodeID

	// Degree returns the number of neighbours of the given node.
	Degree(id NodeID) int

	// Colour returns the committed colour of the node, or ColourUnset.
	Colour(id NodeID) Colour

	// SetColour commits a colour for the node.
	SetColour(id NodeID, c Colour)

	// EdgeCount returns the number of undirected edges.
	EdgeCount() int

	// Edges returns every undirected edge exactly once.
	Edges() []Edge
}

// Edge is one undirected edge. By convention A < B in edges returned by a
// GraphStore, but the core does not rely on it.
type Edge struct {
	A NodeID
	B NodeID
}

// SortNodeIDs sorts the ids ascending in place and returns the slice.
// Deterministic iteration over map-backed sets is what keeps sequential
// rounds reproducible.
func SortNodeIDs(ids []NodeID) []NodeID {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
