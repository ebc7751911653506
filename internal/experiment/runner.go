// Package experiment drives complete colouring experiments: repeated runs
// over a baseline graph with a shrinking palette, optional edge rewiring,
// per-round conflict auditing and results emission.
package experiment

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mcalpine/prism/internal/config"
	"github.com/mcalpine/prism/internal/graph"
	"github.com/mcalpine/prism/internal/perturb"
	"github.com/mcalpine/prism/internal/results"
	"github.com/mcalpine/prism/internal/scorestore"
	"github.com/mcalpine/prism/pkg/colouring"
)

// Perturber is the topology/palette perturbation the driver calls into
// between rounds. The concrete policy (which colour, which edges) is the
// controller's business.
type Perturber interface {
	ShrinkPalette(p colouring.Palette) colouring.Palette
	RewireEdges(g *graph.Graph, fraction float64)
}

// Runner executes one configured experiment against a baseline graph. Every
// run clones the baseline, so runs are independent and reproducible from the
// configured seed.
type Runner struct {
	cfg  *config.ExperimentConfig
	base *graph.Graph
	sink results.Sink

	// Perturber is injectable for tests; nil selects the seeded random
	// controller.
	Perturber Perturber
}

// NewRunner creates a runner over the baseline graph. The sink receives one
// record per audited round.
func NewRunner(cfg *config.ExperimentConfig, base *graph.Graph, sink results.Sink) *Runner {
	return &Runner{cfg: cfg, base: base, sink: sink}
}

// Run dispatches to the configured experiment mode. Returns the first fatal
// error; non-convergence is not an error, it surfaces through the emitted
// conflict counts.
func (r *Runner) Run(ctx context.Context) error {
	switch r.cfg.Mode {
	case config.ModeSequential, config.ModeRandom:
		return r.runSequential(ctx)
	case config.ModeConcurrent:
		return r.runConcurrent(ctx)
	case config.ModeBaseline:
		return r.runBaseline(ctx)
	default:
		return fmt.Errorf("unknown mode: %q", r.cfg.Mode)
	}
}

// runSequential executes the scored (or unscored random) sequential
// experiment: per run, shrink the palette each round down to the minimum,
// rewire once at the configured palette size, and visit every agent in fixed
// order. A run stops early once it is conflict-free and no further
// perturbation is coming.
func (r *Runner) runSequential(ctx context.Context) error {
	for run := 1; run <= r.cfg.Runs; run++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		rng := rand.New(rand.NewSource(r.cfg.Seed + int64(run)))
		g := r.base.Clone()
		palette := colouring.NewPalette(r.cfg.PaletteSize)

		board, closeBoard, err := r.boardForRun(ctx, palette, rng)
		if err != nil {
			return err
		}

		arena, err := colouring.NewArena(colouring.ArenaConfig{
			Store:   g,
			Board:   board,
			Palette: palette,
			Reward:  r.cfg.Reward,
			Seed:    r.cfg.Seed + int64(run),
		})
		if err != nil {
			closeBoard()
			return fmt.Errorf("run %d: %w", run, err)
		}

		perturber := r.perturber(rng)
		runID := uuid.New().String()
		rewired := false
		conflicts := colouring.CountConflicts(g)

		for round := 1; round <= r.cfg.MaxRounds; round++ {
			palette, rewired = r.perturbRound(perturber, arena, g, palette, rewired)

			if r.cfg.Mode == config.ModeRandom {
				arena.RunRandomRound()
			} else {
				arena.RunSequentialRound()
			}

			conflicts = colouring.CountConflicts(g)
			if err := r.sink.Emit(results.Record{
				RunID:       runID,
				Run:         run,
				Round:       round,
				PaletteSize: len(palette),
				Conflicts:   conflicts,
			}); err != nil {
				closeBoard()
				return fmt.Errorf("run %d round %d: %w", run, round, err)
			}

			if conflicts == 0 && len(palette) <= r.cfg.MinPalette {
				break
			}
		}

		log.Printf("[Runner] run %d/%d: palette=%d conflicts=%d", run, r.cfg.Runs, len(palette), conflicts)
		if err := closeBoard(); err != nil {
			return err
		}
	}
	return nil
}

// runConcurrent executes the barrier-synchronized experiment. Each round is
// bounded by the configured round timeout; a round that fails to finish is a
// fatal barrier stall, not a retryable condition.
func (r *Runner) runConcurrent(ctx context.Context) error {
	timeout, err := r.cfg.ParseRoundTimeout()
	if err != nil {
		return err
	}

	for run := 1; run <= r.cfg.Runs; run++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		rng := rand.New(rand.NewSource(r.cfg.Seed + int64(run)))
		g := r.base.Clone()
		palette := colouring.NewPalette(r.cfg.PaletteSize)

		board, closeBoard, err := r.boardForConcurrentRun(ctx, palette)
		if err != nil {
			return err
		}

		arena, err := colouring.NewArena(colouring.ArenaConfig{
			Store:   g,
			Board:   board,
			Palette: palette,
			Reward:  r.cfg.Reward,
			Seed:    r.cfg.Seed + int64(run),
		})
		if err != nil {
			closeBoard()
			return fmt.Errorf("run %d: %w", run, err)
		}

		perturber := r.perturber(rng)
		runID := uuid.New().String()
		rewired := false
		conflicts := colouring.CountConflicts(g)

		for round := 1; round <= r.cfg.MaxRounds; round++ {
			palette, rewired = r.perturbRound(perturber, arena, g, palette, rewired)

			roundCtx, cancel := context.WithTimeout(ctx, timeout)
			_, err := arena.RunConcurrentRound(roundCtx)
			cancel()
			if err != nil {
				closeBoard()
				return fmt.Errorf("run %d round %d: %w", run, round, err)
			}

			conflicts = colouring.CountConflicts(g)
			if err := r.sink.Emit(results.Record{
				RunID:       runID,
				Run:         run,
				Round:       round,
				PaletteSize: len(palette),
				Conflicts:   conflicts,
			}); err != nil {
				closeBoard()
				return fmt.Errorf("run %d round %d: %w", run, round, err)
			}

			log.Printf("[Runner] run %d round %d: palette=%d conflicts=%d", run, round, len(palette), conflicts)
		}

		if err := closeBoard(); err != nil {
			return err
		}
	}
	return nil
}

// perturbRound applies the between-round perturbation: shrink the palette
// while it is above the minimum, and rewire edges once when the palette first
// reaches the configured size.
func (r *Runner) perturbRound(p Perturber, arena *colouring.Arena, g *graph.Graph,
	palette colouring.Palette, rewired bool) (colouring.Palette, bool) {

	if len(palette) > r.cfg.MinPalette {
		palette = p.ShrinkPalette(palette)
		arena.SetPalette(palette)
	}

	if !rewired && r.cfg.Rewire.Fraction > 0 && len(palette) == r.cfg.Rewire.AtPaletteSize {
		log.Printf("[Runner] rewiring %.0f%% of edges at palette size %d",
			r.cfg.Rewire.Fraction*100, len(palette))
		p.RewireEdges(g, r.cfg.Rewire.Fraction)
		rewired = true
	}

	return palette, rewired
}

// runBaseline grows the palette from one colour until a greedy random pass
// produces a conflict-free colouring, reporting the palette size each
// attempt needed. No agents or scores are involved; this is the yardstick
// the scored protocols are measured against.
func (r *Runner) runBaseline(ctx context.Context) error {
	for run := 1; run <= r.cfg.Runs; run++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		rng := rand.New(rand.NewSource(r.cfg.Seed + int64(run)))
		g := r.base.Clone()
		runID := uuid.New().String()

		nodes := g.Nodes()
		conflicts := -1

		// A palette larger than the maximum degree always succeeds, so the
		// loop is bounded by the node count.
		for numColours := 1; numColours <= len(nodes)+1; numColours++ {
			palette := colouring.NewPalette(numColours)

			for _, id := range nodes {
				g.SetColour(id, palette[rng.Intn(len(palette))])
			}
			greedyRecolour(g, palette, rng)

			conflicts = colouring.CountConflicts(g)
			if err := r.sink.Emit(results.Record{
				RunID:       runID,
				Run:         run,
				Round:       numColours,
				PaletteSize: numColours,
				Conflicts:   conflicts,
			}); err != nil {
				return fmt.Errorf("run %d: %w", run, err)
			}

			if conflicts == 0 {
				log.Printf("[Runner] run %d/%d: conflict-free with %d colours", run, r.cfg.Runs, numColours)
				break
			}
		}

		if conflicts != 0 {
			return fmt.Errorf("run %d: baseline did not converge", run)
		}
	}
	return nil
}

// greedyRecolour gives every node, in order, a random colour no neighbour
// currently holds, when one exists.
func greedyRecolour(g *graph.Graph, palette colouring.Palette, rng *rand.Rand) {
	for _, id := range g.Nodes() {
		taken := make(map[colouring.Colour]bool)
		for _, n := range g.Neighbours(id) {
			if c := g.Colour(n); c.IsSet() {
				taken[c] = true
			}
		}

		available := make([]colouring.Colour, 0, len(palette))
		for _, c := range palette {
			if !taken[c] {
				available = append(available, c)
			}
		}
		if len(available) > 0 {
			g.SetColour(id, available[rng.Intn(len(available))])
		}
	}
}

// perturber returns the injected perturbation controller, or the default
// seeded random one.
func (r *Runner) perturber(rng *rand.Rand) Perturber {
	if r.Perturber != nil {
		return r.Perturber
	}
	return perturb.NewController(rng)
}

// boardForRun builds the score board for a scored sequential run: Redis when
// configured, otherwise the in-memory board. Sequential runs start from
// random reputations in [0, 10].
func (r *Runner) boardForRun(ctx context.Context, palette colouring.Palette, rng *rand.Rand) (colouring.ScoreBoard, func() error, error) {
	seeded := colouring.NewSeededBoard(palette, rng)
	if r.cfg.Redis == nil {
		return seeded, func() error { return nil }, nil
	}

	board, err := scorestore.NewRedisBoard(ctx, &redis.Options{Addr: r.cfg.Redis.Addr}, r.cfg.Redis.RunKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Redis score board: %w", err)
	}
	if err := board.Reset(seeded.Snapshot()); err != nil {
		board.Close()
		return nil, nil, err
	}
	return board, board.Close, nil
}

// boardForConcurrentRun is boardForRun with the concurrent starting state:
// every colour scored zero.
func (r *Runner) boardForConcurrentRun(ctx context.Context, palette colouring.Palette) (colouring.ScoreBoard, func() error, error) {
	if r.cfg.Redis == nil {
		return colouring.NewBoard(palette), func() error { return nil }, nil
	}

	board, err := scorestore.NewRedisBoard(ctx, &redis.Options{Addr: r.cfg.Redis.Addr}, r.cfg.Redis.RunKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Redis score board: %w", err)
	}
	if err := board.Reset(colouring.NewBoard(palette).Snapshot()); err != nil {
		board.Close()
		return nil, nil, err
	}
	return board, board.Close, nil
}
