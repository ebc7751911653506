// Package graph provides the in-memory graph store the colouring core runs
// against: an undirected adjacency structure with a per-node committed
// colour, plus YAML persistence and random regular graph generation for
// setting up experiments.
package graph

import (
	"fmt"
	"sync"

	"github.com/mcalpine/prism/pkg/colouring"
)

// Graph is an undirected graph with per-node colours. It implements
// colouring.GraphStore. Colour reads and writes are guarded so the
// concurrent round model can perceive neighbours while other agents commit;
// structural mutation (adding or removing edges) must happen between rounds.
type Graph struct {
	mu      sync.RWMutex
	adj     map[colouring.NodeID]map[colouring.NodeID]bool
	colours map[colouring.NodeID]colouring.Colour
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		adj:     make(map[colouring.NodeID]map[colouring.NodeID]bool),
		colours: make(map[colouring.NodeID]colouring.Colour),
	}
}

// AddNode adds a node with the given colour. Adding an existing node updates
// its colour.
func (g *Graph) AddNode(id colouring.NodeID, c colouring.Colour) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.adj[id] == nil {
		g.adj[id] = make(map[colouring.NodeID]bool)
	}
	g.colours[id] = c
}

// AddEdge adds an undirected edge, creating missing endpoints as unset
// nodes. Self-loops are rejected.
func (g *Graph) AddEdge(a, b colouring.NodeID) error {
	if a == b {
		return fmt.Errorf("self-loop on node %d not allowed", a)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range []colouring.NodeID{a, b} {
		if g.adj[id] == nil {
			g.adj[id] = make(map[colouring.NodeID]bool)
			g.colours[id] = colouring.ColourUnset
		}
	}
	g.adj[a][b] = true
	g.adj[b][a] = true
	return nil
}

// RemoveEdge removes an undirected edge. Removing a missing edge is a no-op.
func (g *Graph) RemoveEdge(a, b colouring.NodeID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.adj[a], b)
	delete(g.adj[b], a)
}

// HasEdge reports whether the undirected edge exists.
func (g *Graph) HasEdge(a, b colouring.NodeID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.adj[a][b]
}

// Nodes returns all node ids in ascending order.
func (g *Graph) Nodes() []colouring.NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ids := make([]colouring.NodeID, 0, len(g.adj))
	for id := range g.adj {
		ids = append(ids, id)
	}
	return colouring.SortNodeIDs(ids)
}

// Neighbours returns the ids adjacent to the node, in ascending order.
func (g *Graph) Neighbours(id colouring.NodeID) []colouring.NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]colouring.NodeID, 0, len(g.adj[id]))
	for n := range g.adj[id] {
		out = append(out, n)
	}
	return colouring.SortNodeIDs(out)
}

// Degree returns the number of neighbours of the node.
func (g *Graph) Degree(id colouring.NodeID) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.adj[id])
}

// Colour returns the node's committed colour, or ColourUnset for unknown
// nodes.
func (g *Graph) Colour(id colouring.NodeID) colouring.Colour {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if c, ok := g.colours[id]; ok {
		return c
	}
	return colouring.ColourUnset
}

// SetColour commits a colour for the node.
func (g *Graph) SetColour(id colouring.NodeID, c colouring.Colour) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.colours[id] = c
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	total := 0
	for _, ns := range g.adj {
		total += len(ns)
	}
	return total / 2
}

// Edges returns every undirected edge exactly once with A < B, ordered by
// (A, B) ascending.
func (g *Graph) Edges() []colouring.Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	edges := make([]colouring.Edge, 0, len(g.adj))
	for a, ns := range g.adj {
		for b := range ns {
			if a < b {
				edges = append(edges, colouring.Edge{A: a, B: b})
			}
		}
	}
	return sortEdges(edges)
}

// Clone returns a deep copy. Experiment runs mutate a clone so the loaded
// baseline graph can seed every run identically.
func (g *Graph) Clone() *Graph {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := New()
	for id, c := range g.colours {
		out.colours[id] = c
	}
	for id, ns := range g.adj {
		copied := make(map[colouring.NodeID]bool, len(ns))
		for n := range ns {
			copied[n] = true
		}
		out.adj[id] = copied
	}
	return out
}
