package colouring

import (
	"math/rand"
	"sync"
)

// ScoreBoard is the shared per-colour reputation state. Every agent consults
// it when ranking candidate colours and applies a reward or penalty after each
// commit. Scores are unbounded integers and only ever move by the configured
// reward magnitude per commit.
//
// Implementations must serialize concurrent updates per colour; the
// concurrent round model has every agent mutating the board in the same round.
type ScoreBoard interface {
	// Score returns the current reputation of the colour. Unknown colours
	// score zero.
	Score(c Colour) int

	// Apply adds delta to the colour's reputation.
	Apply(c Colour, delta int)

	// Snapshot returns a copy of all known scores.
	Snapshot() map[Colour]int
}

// Board is the in-memory ScoreBoard. A single mutex guards the map; updates
// are a handful of integer ops, so one exclusive section covers the per-colour
// serialization requirement without sharding.
type Board struct {
	mu     sync.Mutex
	scores map[Colour]int
}

// NewBoard creates a board with every palette colour scored zero.
func NewBoard(palette Palette) *Board {
	scores := make(map[Colour]int, len(palette))
	for _, c := range palette {
		scores[c] = 0
	}
	return &Board{scores: scores}
}

// NewSeededBoard creates a board with every palette colour given a uniform
// random score in [0, 10]. This is the starting state of the scored
// sequential experiment: initial reputations are noise the reward system
// then shapes.
func NewSeededBoard(palette Palette, rng *rand.Rand) *Board {
	scores := make(map[Colour]int, len(palette))
	for _, c := range palette {
		scores[c] = rng.Intn(11)
	}
	return &Board{scores: scores}
}

// Score returns the current reputation of the colour.
func (b *Board) Score(c Colour) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.scores[c]
}

// Apply adds delta to the colour's reputation.
func (b *Board) Apply(c Colour, delta int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scores[c] += delta
}

// Snapshot returns a copy of all known scores.
func (b *Board) Snapshot() map[Colour]int {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[Colour]int, len(b.scores))
	for c, s := range b.scores {
		out[c] = s
	}
	return out
}
