// Package perturb implements the perturbation the experiments apply between
// rounds: shrinking the colour palette and rewiring a fraction of edges while
// preserving the edge count.
package perturb

import (
	"math/rand"

	"github.com/mcalpine/prism/internal/graph"
	"github.com/mcalpine/prism/pkg/colouring"
)

// Controller applies random perturbation using an injected seeded source so
// experiment runs are reproducible.
type Controller struct {
	rng *rand.Rand
}

// NewController creates a perturbation controller backed by the given source.
func NewController(rng *rand.Rand) *Controller {
	return &Controller{rng: rng}
}

// ShrinkPalette removes one uniformly chosen colour and returns the smaller
// palette. An empty palette is returned unchanged.
func (c *Controller) ShrinkPalette(p colouring.Palette) colouring.Palette {
	if len(p) == 0 {
		return p
	}
	return p.Without(p[c.rng.Intn(len(p))])
}

// RewireEdges detaches fraction*edgeCount edge pairs and crosses their
// endpoints: edges (a1,b1) and (a2,b2) become (a1,b2) and (a2,b1). A swap
// that would produce a duplicate edge or a self-loop is skipped, so the edge
// count is always preserved and the adjacency stays simple. Colours are
// untouched; only topology moves.
func (c *Controller) RewireEdges(g *graph.Graph, fraction float64) {
	edges := g.Edges()
	toRewire := int(float64(len(edges)) * fraction)

	for i := 0; i < toRewire; i++ {
		if len(edges) < 2 {
			return
		}

		i1 := c.rng.Intn(len(edges))
		i2 := c.rng.Intn(len(edges))
		if i1 == i2 {
			continue
		}
		e1, e2 := edges[i1], edges[i2]

		n1 := colouring.Edge{A: e1.A, B: e2.B}
		n2 := colouring.Edge{A: e2.A, B: e1.B}
		if n1.A == n1.B || n2.A == n2.B {
			continue
		}
		if g.HasEdge(n1.A, n1.B) || g.HasEdge(n2.A, n2.B) {
			continue
		}

		g.RemoveEdge(e1.A, e1.B)
		g.RemoveEdge(e2.A, e2.B)
		if err := g.AddEdge(n1.A, n1.B); err != nil {
			continue
		}
		if err := g.AddEdge(n2.A, n2.B); err != nil {
			continue
		}

		edges[i1] = n1
		edges[i2] = n2
	}
}
