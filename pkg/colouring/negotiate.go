package colouring

import (
	"context"
	"sync"
)

// Negotiation resolves colliding intents between neighbouring agents. The
// tie-break is deterministic and evaluated once per colliding pair: higher
// degree wins; at equal degree the higher score for the contested colour
// wins; at equal degree and score the higher node id wins. Only the loser
// changes intent, so a pair settles in one exchange and repeated exchanges
// are stable.

// NegotiateIntent compares this agent's intent against a neighbour's
// announced intent and, on collision, makes the loser recompute. A collision
// is two equal, set intents; unset intents never collide.
func (a *Agent) NegotiateIntent(neighbour *Agent) {
	mine := a.Intent()
	theirs := neighbour.Intent()
	if !mine.IsSet() || mine != theirs {
		return
	}

	if a.outranks(neighbour, mine) {
		neighbour.ChangeIntent()
	} else {
		a.ChangeIntent()
	}
}

// outranks reports whether this agent wins the pairwise tie-break against the
// other agent for the contested colour.
func (a *Agent) outranks(other *Agent, c Colour) bool {
	myDegree := a.store.Degree(a.id)
	otherDegree := other.store.Degree(other.id)
	if myDegree != otherDegree {
		return myDegree > otherDegree
	}

	myScore := a.board.Score(c)
	otherScore := other.board.Score(c)
	if myScore != otherScore {
		return myScore > otherScore
	}

	return a.id > other.id
}

// BroadcastIntent fans the agent's intent out to every neighbour
// concurrently; each neighbour negotiates the announced intent against its
// own. Returns early if the round deadline expires mid-fan-out.
func (a *Agent) BroadcastIntent(ctx context.Context) error {
	neighbours := a.store.Neighbours(a.id)

	var wg sync.WaitGroup
	for _, n := range neighbours {
		neighbour := a.arena.agent(n)
		if neighbour == nil {
			continue
		}
		wg.Add(1)
		go func(other *Agent) {
			defer wg.Done()
			other.NegotiateIntent(a)
		}(neighbour)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NegotiateWithNeighbours walks the agent's neighbours in order and
// negotiates against each one's already-announced intent. No ordering is
// guaranteed between two agents' concurrent negotiations beyond what the
// pairwise tie-break enforces; conflicts among three or more agents may need
// further rounds to settle.
func (a *Agent) NegotiateWithNeighbours() {
	for _, n := range a.store.Neighbours(a.id) {
		neighbour := a.arena.agent(n)
		if neighbour == nil {
			continue
		}
		a.NegotiateIntent(neighbour)
	}
}
