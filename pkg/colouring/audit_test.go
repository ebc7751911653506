package colouring_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcalpine/prism/internal/graph"
	"github.com/mcalpine/prism/pkg/colouring"
)

func TestCountConflicts(t *testing.T) {
	t.Run("counts each conflicting edge once", func(t *testing.T) {
		g := buildGraph(t,
			map[int]int{0: 0, 1: 0, 2: 1, 3: 0},
			[][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}},
		)
		// Conflicts: edge (0,1) and edge (3,0).
		assert.Equal(t, 2, colouring.CountConflicts(g))
	})

	t.Run("unset endpoints never conflict", func(t *testing.T) {
		g := buildGraph(t, map[int]int{0: -1, 1: -1}, [][2]int{{0, 1}})
		assert.Zero(t, colouring.CountConflicts(g))
	})

	t.Run("conflict-free graph counts zero", func(t *testing.T) {
		g := cycleGraph(t)
		assert.Zero(t, colouring.CountConflicts(g))
	})
}

func TestCountConflictsConsistency(t *testing.T) {
	// The edge-scan count must equal the sum of independent per-edge
	// conflict predicates, for arbitrary graphs and assignments.
	rng := rand.New(rand.NewSource(7))
	palette := colouring.NewPalette(3)

	g, err := graph.Generate(30, 4, palette, rng)
	require.NoError(t, err)

	perEdge := 0
	for _, e := range g.Edges() {
		a, b := g.Colour(e.A), g.Colour(e.B)
		if a.IsSet() && b.IsSet() && a == b {
			perEdge++
		}
	}

	assert.Equal(t, perEdge, colouring.CountConflicts(g))
}
