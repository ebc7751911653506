package graph

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcalpine/prism/pkg/colouring"
)

func TestGraphBasics(t *testing.T) {
	g := New()
	g.AddNode(0, colouring.Colour(2))
	g.AddNode(1, colouring.ColourUnset)
	require.NoError(t, g.AddEdge(0, 1))
	require.NoError(t, g.AddEdge(1, 2)) // creates node 2 implicitly

	assert.Equal(t, []colouring.NodeID{0, 1, 2}, g.Nodes())
	assert.Equal(t, []colouring.NodeID{0, 2}, g.Neighbours(1))
	assert.Equal(t, 2, g.Degree(1))
	assert.Equal(t, 1, g.Degree(0))
	assert.Equal(t, 2, g.EdgeCount())

	assert.Equal(t, colouring.Colour(2), g.Colour(0))
	assert.Equal(t, colouring.ColourUnset, g.Colour(1))
	assert.Equal(t, colouring.ColourUnset, g.Colour(2))
	assert.Equal(t, colouring.ColourUnset, g.Colour(99), "unknown node reads unset")

	g.SetColour(1, colouring.Colour(0))
	assert.Equal(t, colouring.Colour(0), g.Colour(1))
}

func TestGraphRejectsSelfLoop(t *testing.T) {
	g := New()
	err := g.AddEdge(3, 3)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "self-loop")
}

func TestGraphEdges(t *testing.T) {
	g := New()
	require.NoError(t, g.AddEdge(2, 1))
	require.NoError(t, g.AddEdge(0, 2))
	require.NoError(t, g.AddEdge(0, 1))

	assert.Equal(t, []colouring.Edge{
		{A: 0, B: 1},
		{A: 0, B: 2},
		{A: 1, B: 2},
	}, g.Edges())
}

func TestGraphRemoveEdge(t *testing.T) {
	g := New()
	require.NoError(t, g.AddEdge(0, 1))
	require.NoError(t, g.AddEdge(1, 2))

	g.RemoveEdge(0, 1)
	assert.False(t, g.HasEdge(0, 1))
	assert.True(t, g.HasEdge(1, 2))
	assert.Equal(t, 1, g.EdgeCount())

	// Removing a missing edge is a no-op.
	g.RemoveEdge(0, 1)
	assert.Equal(t, 1, g.EdgeCount())
}

func TestGraphClone(t *testing.T) {
	g := New()
	g.AddNode(0, colouring.Colour(1))
	require.NoError(t, g.AddEdge(0, 1))

	clone := g.Clone()
	clone.SetColour(0, colouring.Colour(5))
	require.NoError(t, clone.AddEdge(1, 2))

	assert.Equal(t, colouring.Colour(1), g.Colour(0), "clone writes must not leak back")
	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, 2, clone.EdgeCount())
}

func TestGenerate(t *testing.T) {
	t.Run("produces a regular graph", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		palette := colouring.NewPalette(14)

		g, err := Generate(100, 6, palette, rng)
		require.NoError(t, err)

		assert.Len(t, g.Nodes(), 100)
		assert.Equal(t, 300, g.EdgeCount())
		for _, id := range g.Nodes() {
			assert.Equal(t, 6, g.Degree(id), "node %d", id)
			c := g.Colour(id)
			assert.True(t, c.IsSet())
			assert.True(t, palette.Contains(c))
		}
	})

	t.Run("rejects impossible dimensions", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		palette := colouring.NewPalette(2)

		_, err := Generate(0, 3, palette, rng)
		assert.Error(t, err)

		_, err = Generate(4, 4, palette, rng)
		assert.Error(t, err, "degree must be below size")

		_, err = Generate(5, 3, palette, rng)
		assert.Error(t, err, "odd stub count cannot pair")

		_, err = Generate(4, 2, colouring.Palette{}, rng)
		assert.Error(t, err, "empty palette has no initial colours")
	})

	t.Run("reproducible from the seed", func(t *testing.T) {
		palette := colouring.NewPalette(5)
		a, err := Generate(20, 4, palette, rand.New(rand.NewSource(9)))
		require.NoError(t, err)
		b, err := Generate(20, 4, palette, rand.New(rand.NewSource(9)))
		require.NoError(t, err)

		assert.Equal(t, a.Edges(), b.Edges())
		for _, id := range a.Nodes() {
			assert.Equal(t, a.Colour(id), b.Colour(id))
		}
	})
}
