package colouring

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
)

// Arena owns the agents of one experiment run, indexed by stable node id.
// Neighbour lookups resolve through the GraphStore rather than direct object
// aliasing, so topology perturbation between rounds is safe: agents never
// hold live references into each other's state beyond the arena index.
type Arena struct {
	store  GraphStore
	board  ScoreBoard
	agents map[NodeID]*Agent
	order  []NodeID
	reward int
	seed   int64

	mu      sync.RWMutex
	palette Palette
}

// ArenaConfig carries everything needed to populate an arena.
type ArenaConfig struct {
	Store   GraphStore
	Board   ScoreBoard
	Palette Palette

	// Reward is the score magnitude applied on every commit: +Reward for a
	// conflict-free commit, -Reward for a knowing conflict.
	Reward int

	// Seed feeds each agent's private random source, keeping tie-breaks
	// reproducible across runs with the same inputs.
	Seed int64
}

// NewArena creates one agent per store node. A stored colour outside the
// palette is treated as unset rather than rejected.
func NewArena(cfg ArenaConfig) (*Arena, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("arena requires a graph store")
	}
	if cfg.Board == nil {
		return nil, fmt.Errorf("arena requires a score board")
	}
	if cfg.Reward <= 0 {
		return nil, fmt.Errorf("invalid reward magnitude %d: must be positive", cfg.Reward)
	}

	a := &Arena{
		store:   cfg.Store,
		board:   cfg.Board,
		agents:  make(map[NodeID]*Agent),
		palette: cfg.Palette.Clone(),
		reward:  cfg.Reward,
		seed:    cfg.Seed,
	}

	a.order = SortNodeIDs(cfg.Store.Nodes())
	for _, id := range a.order {
		if c := cfg.Store.Colour(id); c.IsSet() && !a.palette.Contains(c) {
			cfg.Store.SetColour(id, ColourUnset)
		}
		a.agents[id] = &Agent{
			id:       id,
			store:    cfg.Store,
			board:    cfg.Board,
			arena:    a,
			reward:   cfg.Reward,
			rng:      rand.New(rand.NewSource(cfg.Seed + int64(id))),
			intended: ColourUnset,
		}
	}
	return a, nil
}

// Palette returns the palette active this round.
func (a *Arena) Palette() Palette {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.palette
}

// SetPalette installs the palette for the next round. Any agent whose
// committed colour fell out of the palette is demoted to unset, preserving
// the containment invariant at every observation point. Must only be called
// between rounds.
func (a *Arena) SetPalette(p Palette) {
	a.mu.Lock()
	a.palette = p.Clone()
	a.mu.Unlock()

	for _, id := range a.order {
		if c := a.store.Colour(id); c.IsSet() && !p.Contains(c) {
			a.store.SetColour(id, ColourUnset)
		}
	}
}

// Agent returns the agent for a node id, or nil when the id is unknown.
func (a *Arena) Agent(id NodeID) *Agent {
	return a.agents[id]
}

func (a *Arena) agent(id NodeID) *Agent {
	return a.agents[id]
}

// boardOf returns the board a neighbour scores with. Agents usually share
// one board, but assessment always asks the owning agent's board so
// per-agent boards behave correctly too.
func (a *Arena) boardOf(id NodeID) ScoreBoard {
	if ag := a.agents[id]; ag != nil {
		return ag.board
	}
	return a.board
}

// RunSequentialRound visits every agent once in ascending node id order and
// runs the scored decision. Because agents visited later observe the commits
// of agents visited earlier in the same pass, the sequential model has an
// inherent first-mover bias; the fixed order makes results reproducible.
// Returns false when any agent could not resolve without a conflict.
func (a *Arena) RunSequentialRound() bool {
	resolved := true
	for _, id := range a.order {
		ag := a.agents[id]
		if !ag.Decide(ag.Perceive()) {
			resolved = false
		}
	}
	return resolved
}

// RunRandomRound visits every agent once in ascending node id order and runs
// the unscored baseline policy: a uniform random pick among the conflict-free
// candidates. An agent with no candidate keeps its colour and the round
// reports unresolved.
func (a *Arena) RunRandomRound() bool {
	resolved := true
	for _, id := range a.order {
		ag := a.agents[id]
		if !ag.DecideRandom(ag.Perceive()) {
			resolved = false
		}
	}
	return resolved
}

// RunConcurrentRound spawns one goroutine per agent, gates them all on a
// fresh RoundBarrier, and lets them propose, broadcast and negotiate
// concurrently once the barrier opens. After every task finishes, intents are
// committed in ascending id order and the score board updated. The context
// deadline bounds the whole round: a stalled task surfaces as a fatal
// ErrBarrierStall-wrapped error rather than hanging the round forever.
//
// No global consistency is guaranteed when three or more neighbours collide
// on the same colour in one round; residual collisions carry into the next
// round's perception.
func (a *Arena) RunConcurrentRound(ctx context.Context) (bool, error) {
	barrier := NewRoundBarrier()

	var wg sync.WaitGroup
	errCh := make(chan error, len(a.order))
	unresolved := make(chan NodeID, len(a.order))

	for _, id := range a.order {
		ag := a.agents[id]
		wg.Add(1)
		go func(ag *Agent) {
			defer wg.Done()
			if err := ag.runConcurrentStep(ctx, barrier); err != nil {
				errCh <- fmt.Errorf("agent %d: %w", ag.id, err)
				return
			}
			if !ag.Intent().IsSet() || !ag.intentConflictFree() {
				unresolved <- ag.id
			}
		}(ag)
	}

	// Every task is registered; release them all at once.
	barrier.Open()
	wg.Wait()
	close(errCh)
	close(unresolved)

	if err := <-errCh; err != nil {
		return false, err
	}

	// All negotiations have settled; commit final intents in id order.
	for _, id := range a.order {
		a.agents[id].commitIntent()
	}

	return len(unresolved) == 0, nil
}

// runConcurrentStep is one agent's share of a concurrent round: block on the
// barrier, form an intent from the perceived neighbourhood, announce it to
// every neighbour, then negotiate against each neighbour's announcement.
func (ag *Agent) runConcurrentStep(ctx context.Context, barrier *RoundBarrier) error {
	if err := barrier.Wait(ctx); err != nil {
		return err
	}

	ag.ProposeIntent(ag.Perceive())

	if err := ag.BroadcastIntent(ctx); err != nil {
		return err
	}
	ag.NegotiateWithNeighbours()
	return nil
}

// intentConflictFree reports whether the agent's current intent collides with
// any neighbour's current intent.
func (ag *Agent) intentConflictFree() bool {
	mine := ag.Intent()
	if !mine.IsSet() {
		return false
	}
	for _, n := range ag.store.Neighbours(ag.id) {
		if other := ag.arena.agent(n); other != nil && other.Intent() == mine {
			return false
		}
	}
	return true
}

// commitIntent commits the negotiated intent and clears it for the next
// round. An intent equal to the committed colour is a no-op: no write, no
// score movement.
func (ag *Agent) commitIntent() {
	intent := ag.Intent()
	ag.SetIntent(ColourUnset)
	if !intent.IsSet() || intent == ag.Colour() {
		return
	}
	ag.store.SetColour(ag.id, intent)
	ag.updateScore(intent)
}
