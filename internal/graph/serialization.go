package graph

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/mcalpine/prism/pkg/colouring"
)

// Document is the YAML form of a graph. Each node carries an integer colour
// attribute; -1 means unset. Edges are [a, b] pairs.
type Document struct {
	Version string     `yaml:"version"`
	Nodes   []NodeSpec `yaml:"nodes"`
	Edges   [][]int    `yaml:"edges"`
}

// NodeSpec is one node entry in the YAML document.
type NodeSpec struct {
	ID     int `yaml:"id"`
	Colour int `yaml:"colour"`
}

// Validate performs strict validation on the document.
func (d *Document) Validate() error {
	if d.Version != "1.0" {
		return fmt.Errorf("unsupported graph file version: %s (expected: 1.0)", d.Version)
	}

	if len(d.Nodes) == 0 {
		return fmt.Errorf("graph has no nodes")
	}

	seen := make(map[int]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		if seen[n.ID] {
			return fmt.Errorf("duplicate node id %d", n.ID)
		}
		seen[n.ID] = true
	}

	for i, e := range d.Edges {
		if len(e) != 2 {
			return fmt.Errorf("edge %d: expected [a, b] pair, got %v", i, e)
		}
		if e[0] == e[1] {
			return fmt.Errorf("edge %d: self-loop on node %d", i, e[0])
		}
		if !seen[e[0]] || !seen[e[1]] {
			return fmt.Errorf("edge %d: references unknown node", i)
		}
	}
	return nil
}

// Load reads and validates a graph YAML file and builds the in-memory graph.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse graph file: %w", err)
	}

	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid graph file %s: %w", path, err)
	}

	g := New()
	for _, n := range doc.Nodes {
		colour := colouring.Colour(n.Colour)
		if n.Colour < 0 {
			colour = colouring.ColourUnset
		}
		g.AddNode(colouring.NodeID(n.ID), colour)
	}
	for _, e := range doc.Edges {
		if err := g.AddEdge(colouring.NodeID(e[0]), colouring.NodeID(e[1])); err != nil {
			return nil, fmt.Errorf("invalid edge %v: %w", e, err)
		}
	}
	return g, nil
}

// Save writes the graph to a YAML file in Document form.
func Save(g *Graph, path string) error {
	doc := Document{Version: "1.0"}

	for _, id := range g.Nodes() {
		doc.Nodes = append(doc.Nodes, NodeSpec{ID: int(id), Colour: int(g.Colour(id))})
	}
	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, []int{int(e.A), int(e.B)})
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write graph file: %w", err)
	}
	return nil
}

func sortEdges(edges []colouring.Edge) []colouring.Edge {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].A != edges[j].A {
			return edges[i].A < edges[j].A
		}
		return edges[i].B < edges[j].B
	})
	return edges
}
