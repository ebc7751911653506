package graph

import (
	"fmt"
	"math/rand"

	"github.com/mcalpine/prism/pkg/colouring"
)

// maxPairingAttempts bounds the stub-pairing retry loop in Generate. Regular
// graphs of modest degree pair successfully well within this.
const maxPairingAttempts = 100

// Generate builds a random regular graph of the given size and degree via
// the pairing model: every node gets degree stubs, the stubs are shuffled and
// matched pairwise, and a matching containing a self-loop or duplicate edge
// is discarded and retried. Each node receives a uniform random initial
// colour from the palette.
func Generate(size, degree int, palette colouring.Palette, rng *rand.Rand) (*Graph, error) {
	if size <= 0 || degree <= 0 {
		return nil, fmt.Errorf("invalid graph dimensions: size=%d degree=%d", size, degree)
	}
	if degree >= size {
		return nil, fmt.Errorf("degree %d must be smaller than size %d", degree, size)
	}
	if size*degree%2 != 0 {
		return nil, fmt.Errorf("size*degree must be even, got %d*%d", size, degree)
	}
	if len(palette) == 0 {
		return nil, fmt.Errorf("palette must not be empty")
	}

	stubs := make([]colouring.NodeID, 0, size*degree)
	for id := 0; id < size; id++ {
		for d := 0; d < degree; d++ {
			stubs = append(stubs, colouring.NodeID(id))
		}
	}

	for attempt := 0; attempt < maxPairingAttempts; attempt++ {
		rng.Shuffle(len(stubs), func(i, j int) { stubs[i], stubs[j] = stubs[j], stubs[i] })

		g := New()
		for id := 0; id < size; id++ {
			g.AddNode(colouring.NodeID(id), palette[rng.Intn(len(palette))])
		}

		ok := true
		for i := 0; i < len(stubs); i += 2 {
			a, b := stubs[i], stubs[i+1]
			if a == b || g.HasEdge(a, b) {
				ok = false
				break
			}
			if err := g.AddEdge(a, b); err != nil {
				return nil, err
			}
		}
		if ok {
			return g, nil
		}
	}
	return nil, fmt.Errorf("failed to pair a %d-regular graph of %d nodes after %d attempts",
		degree, size, maxPairingAttempts)
}
