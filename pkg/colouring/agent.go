package colouring

import (
	"log"
	"math/rand"
	"sync"
)

// Agent is the per-node decision entity. Its identity is the node id; its
// committed colour lives in the GraphStore (the store is the single source of
// truth for the assignment), while the tentative intended colour for the
// current round is held locally and cleared between rounds.
//
// Agents are created fresh at the start of every experiment run. The only
// state that survives structural perturbation within a run is the shared
// ScoreBoard.
type Agent struct {
	id     NodeID
	store  GraphStore
	board  ScoreBoard
	arena  *Arena
	reward int
	rng    *rand.Rand

	mu       sync.Mutex
	intended Colour
}

// ID returns the agent's node id.
func (a *Agent) ID() NodeID {
	return a.id
}

// Colour returns the agent's committed colour from the store.
func (a *Agent) Colour() Colour {
	return a.store.Colour(a.id)
}

// Intent returns the agent's intended colour for the current round, or
// ColourUnset when it has not proposed yet.
func (a *Agent) Intent() Colour {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.intended
}

// SetIntent installs a tentative proposal. Round drivers call this through
// ProposeIntent; it is exported so negotiation can be exercised against
// hand-built intents.
func (a *Agent) SetIntent(c Colour) {
	a.mu.Lock()
	a.intended = c
	a.mu.Unlock()
}

// Perceive returns the committed colours of all neighbours, in neighbour
// order. Unset colours are valid observations; a node with no neighbours
// perceives an empty slice. Perceive never fails.
func (a *Agent) Perceive() []Colour {
	neighbours := a.store.Neighbours(a.id)
	colours := make([]Colour, len(neighbours))
	for i, n := range neighbours {
		colours[i] = a.store.Colour(n)
	}
	return colours
}

// Decide runs one sequential-model decision against the perceived neighbour
// colours. It returns true when the agent ended the step without knowingly
// accepting a conflict, false when the palette was exhausted and the agent
// fell back to a conflicting colour. A false return means "this round did not
// fully resolve", not a fatal condition: the agent always ends the step with
// a committed colour.
func (a *Agent) Decide(neighbourColours []Colour) bool {
	palette := a.arena.Palette()
	current := a.Colour()

	candidates := subtract(palette, neighbourColours, current)

	if len(candidates) == 0 {
		// Palette exhausted. Retry without excluding the current colour: if
		// the current colour is the only non-conflicting option, keeping it
		// is the right move.
		free := subtract(palette, neighbourColours, ColourUnset)
		if len(free) > 0 {
			a.commit(a.bestAssessed(free))
			return true
		}
		// Every palette colour is held by a neighbour. Knowingly accept the
		// least-bad conflict rather than holding no colour at all.
		a.commit(a.bestAssessed(setColours(neighbourColours)))
		return false
	}

	if current.IsSet() && !containsColour(neighbourColours, current) {
		// Already conflict-free, nothing to do.
		return true
	}

	a.commit(a.bestAssessed(candidates))
	return true
}

// commit writes the colour to the store and applies the reward or penalty.
func (a *Agent) commit(c Colour) {
	if !c.IsSet() {
		return
	}
	a.store.SetColour(a.id, c)
	a.updateScore(c)
}

// updateScore penalizes the colour's reputation when any neighbour currently
// holds it, and rewards it otherwise. The magnitude is the arena's configured
// reward parameter.
func (a *Agent) updateScore(c Colour) {
	for _, n := range a.store.Neighbours(a.id) {
		if a.store.Colour(n) == c {
			a.board.Apply(c, -a.reward)
			return
		}
	}
	a.board.Apply(c, a.reward)
}

// Assess returns the agent's locally adjusted desirability score for the
// colour: the board score, decremented once for every neighbour that outranks
// this agent for the colour and incremented otherwise. A neighbour outranks
// on strictly higher degree, then strictly higher score at equal degree, then
// higher node id at equal degree and score. The result approximates a global
// fairness rank without global coordination.
func (a *Agent) Assess(c Colour) int {
	myDegree := a.store.Degree(a.id)
	myScore := a.board.Score(c)

	assessed := myScore
	for _, n := range a.store.Neighbours(a.id) {
		neighbourDegree := a.store.Degree(n)
		neighbourScore := a.arena.boardOf(n).Score(c)

		outranked := myDegree < neighbourDegree ||
			(myDegree == neighbourDegree && myScore < neighbourScore) ||
			(myDegree == neighbourDegree && myScore == neighbourScore && a.id < n)
		if outranked {
			assessed--
		} else {
			assessed++
		}
	}
	return assessed
}

// bestAssessed picks the candidate with the highest assessed score. Ties
// among equal-top candidates break by uniform random choice from the agent's
// seeded source, so runs are reproducible.
func (a *Agent) bestAssessed(candidates []Colour) Colour {
	return pickBest(candidates, a.Assess, a.rng)
}

// bestScored picks the candidate with the highest raw board score with a
// deterministic lowest-colour tie-break. Used where idempotence matters
// (negotiation re-runs must not consume randomness).
func (a *Agent) bestScored(candidates []Colour) Colour {
	return pickBest(candidates, a.board.Score, nil)
}

// ProposeIntent forms the agent's tentative colour for a concurrent round:
// the best-scoring palette colour no neighbour currently holds, or, when the
// palette is exhausted, the best-scoring colour among the neighbours' own
// colours. Returns false in the exhausted case.
func (a *Agent) ProposeIntent(neighbourColours []Colour) bool {
	palette := a.arena.Palette()

	available := subtract(palette, neighbourColours, ColourUnset)
	if len(available) > 0 {
		a.SetIntent(a.bestAssessed(available))
		return true
	}

	held := setColours(neighbourColours)
	if len(held) == 0 {
		// No neighbours and an empty palette; keep whatever we have.
		a.SetIntent(a.Colour())
		return false
	}
	a.SetIntent(a.bestScored(held))
	return false
}

// ChangeIntent is the negotiation loser's move: recompute the neighbour-free
// palette complement, drop the just-conflicted colour, and re-pick by board
// score. When nothing conflict-free remains the agent knowingly re-enters
// conflict with the best-scoring neighbour colour, logged as a degraded
// outcome. Idempotent: same inputs produce the same intent, so repeated
// pairwise negotiation terminates.
func (a *Agent) ChangeIntent() {
	conflicted := a.Intent()
	neighbourColours := a.Perceive()
	palette := a.arena.Palette()

	available := subtract(palette, neighbourColours, conflicted)
	if len(available) > 0 {
		next := a.bestScored(available)
		a.SetIntent(next)
		log.Printf("[Agent %d] changed intent %v -> %v after negotiation", a.id, conflicted, next)
		return
	}

	held := setColours(neighbourColours)
	if len(held) == 0 {
		return
	}
	next := a.bestScored(held)
	a.SetIntent(next)
	log.Printf("[Agent %d] no conflict-free colour left, degraded intent %v -> %v", a.id, conflicted, next)
}

// DecideRandom runs one decision of the unscored baseline policy: a uniform
// random pick among the conflict-free candidates, no reputation involved. An
// agent whose colour already conflicts with nothing keeps it. When no
// candidate exists the colour is left as it was and false is returned; the
// baseline has no least-bad fallback, which is exactly what the scored
// policies improve on.
func (a *Agent) DecideRandom(neighbourColours []Colour) bool {
	current := a.Colour()
	if current.IsSet() && !containsColour(neighbourColours, current) {
		return true
	}

	candidates := subtract(a.arena.Palette(), neighbourColours, current)
	if len(candidates) == 0 {
		return false
	}
	a.store.SetColour(a.id, candidates[a.rng.Intn(len(candidates))])
	return true
}

// subtract returns palette minus the excluded colours minus the extra colour.
// Pass ColourUnset as extra to exclude nothing beyond the listed colours.
func subtract(palette Palette, excluded []Colour, extra Colour) []Colour {
	drop := make(map[Colour]bool, len(excluded)+1)
	for _, c := range excluded {
		if c.IsSet() {
			drop[c] = true
		}
	}
	if extra.IsSet() {
		drop[extra] = true
	}

	out := make([]Colour, 0, len(palette))
	for _, c := range palette {
		if !drop[c] {
			out = append(out, c)
		}
	}
	return out
}

// setColours returns the distinct set colours from an observation, in first-
// seen order.
func setColours(colours []Colour) []Colour {
	seen := make(map[Colour]bool, len(colours))
	out := make([]Colour, 0, len(colours))
	for _, c := range colours {
		if c.IsSet() && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func containsColour(colours []Colour, c Colour) bool {
	for _, nc := range colours {
		if nc == c {
			return true
		}
	}
	return false
}

// pickBest returns the candidate maximizing score. With a random source, ties
// among equal-top candidates break uniformly at random; without one, the
// first (lowest-ordered) top candidate wins deterministically.
func pickBest(candidates []Colour, score func(Colour) int, rng *rand.Rand) Colour {
	if len(candidates) == 0 {
		return ColourUnset
	}

	best := []Colour{candidates[0]}
	bestScore := score(candidates[0])
	for _, c := range candidates[1:] {
		s := score(c)
		switch {
		case s > bestScore:
			best = []Colour{c}
			bestScore = s
		case s == bestScore:
			best = append(best, c)
		}
	}

	if rng == nil || len(best) == 1 {
		return best[0]
	}
	return best[rng.Intn(len(best))]
}
