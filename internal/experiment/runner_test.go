package experiment

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcalpine/prism/internal/config"
	"github.com/mcalpine/prism/internal/graph"
	"github.com/mcalpine/prism/internal/results"
	"github.com/mcalpine/prism/pkg/colouring"
)

// ringGraph builds an uncoloured cycle of n nodes.
func ringGraph(t *testing.T, n int) *graph.Graph {
	t.Helper()
	g := graph.New()
	for i := 0; i < n; i++ {
		g.AddNode(colouring.NodeID(i), colouring.ColourUnset)
	}
	for i := 0; i < n; i++ {
		require.NoError(t, g.AddEdge(colouring.NodeID(i), colouring.NodeID((i+1)%n)))
	}
	return g
}

func testConfig(mode config.Mode) *config.ExperimentConfig {
	cfg := &config.ExperimentConfig{
		Version:     "1.0",
		Graph:       "unused.yml",
		Mode:        mode,
		Runs:        2,
		MaxRounds:   10,
		PaletteSize: 2,
		MinPalette:  2,
		Seed:        1,
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestRunSequentialConverges(t *testing.T) {
	// An even cycle is 2-colourable; the fixed-order sequential pass settles
	// it in the first round, so every run ends conflict-free.
	cfg := testConfig(config.ModeSequential)
	sink := results.NewMemorySink()

	runner := NewRunner(cfg, ringGraph(t, 6), sink)
	require.NoError(t, runner.Run(context.Background()))

	records := sink.Records()
	require.NotEmpty(t, records)

	summary := results.Summarize(records)
	assert.Equal(t, cfg.Runs, summary.Runs)
	assert.Equal(t, cfg.Runs, summary.ConflictFreeRuns)
}

func TestRunEmitsWellFormedRecords(t *testing.T) {
	cfg := testConfig(config.ModeSequential)
	cfg.PaletteSize = 4
	sink := results.NewMemorySink()

	runner := NewRunner(cfg, ringGraph(t, 6), sink)
	require.NoError(t, runner.Run(context.Background()))

	runIDs := make(map[int]string)
	lastRound := make(map[int]int)
	for _, r := range sink.Records() {
		assert.GreaterOrEqual(t, r.Run, 1)
		assert.LessOrEqual(t, r.Run, cfg.Runs)
		assert.Equal(t, lastRound[r.Run]+1, r.Round, "rounds must be contiguous within a run")
		lastRound[r.Run] = r.Round

		assert.GreaterOrEqual(t, r.PaletteSize, cfg.MinPalette)
		assert.LessOrEqual(t, r.PaletteSize, cfg.PaletteSize)
		assert.GreaterOrEqual(t, r.Conflicts, 0)

		if prev, ok := runIDs[r.Run]; ok {
			assert.Equal(t, prev, r.RunID, "one run id per run")
		}
		runIDs[r.Run] = r.RunID
	}

	assert.NotEqual(t, runIDs[1], runIDs[2], "distinct runs carry distinct run ids")
}

func TestRunSequentialDeterministicFromSeed(t *testing.T) {
	run := func() []results.Record {
		cfg := testConfig(config.ModeSequential)
		cfg.PaletteSize = 4
		sink := results.NewMemorySink()
		require.NoError(t, NewRunner(cfg, ringGraph(t, 8), sink).Run(context.Background()))

		records := sink.Records()
		for i := range records {
			records[i].RunID = "" // fresh UUID per run, everything else is seeded
		}
		return records
	}

	assert.Equal(t, run(), run())
}

func TestRunRandomMode(t *testing.T) {
	cfg := testConfig(config.ModeRandom)
	sink := results.NewMemorySink()

	runner := NewRunner(cfg, ringGraph(t, 6), sink)
	require.NoError(t, runner.Run(context.Background()))
	assert.NotEmpty(t, sink.Records())
}

func TestRunConcurrentMode(t *testing.T) {
	cfg := testConfig(config.ModeConcurrent)
	cfg.Runs = 1
	cfg.MaxRounds = 5
	cfg.Reward = config.DefaultConcurrentReward
	sink := results.NewMemorySink()

	runner := NewRunner(cfg, ringGraph(t, 4), sink)
	require.NoError(t, runner.Run(context.Background()))

	// Concurrent runs audit every configured round.
	assert.Len(t, sink.Records(), cfg.MaxRounds)
}

func TestRunBaselineMode(t *testing.T) {
	cfg := testConfig(config.ModeBaseline)
	cfg.Runs = 3
	sink := results.NewMemorySink()

	runner := NewRunner(cfg, ringGraph(t, 6), sink)
	require.NoError(t, runner.Run(context.Background()))

	records := sink.Records()
	require.NotEmpty(t, records)

	// A palette one larger than the maximum degree always suffices, so no
	// baseline run on a cycle needs more than three colours.
	finals := make(map[int]results.Record)
	for _, r := range records {
		finals[r.Run] = r
	}
	for run, r := range finals {
		assert.Zero(t, r.Conflicts, "run %d must end conflict-free", run)
		assert.LessOrEqual(t, r.PaletteSize, 3, "run %d", run)
	}
}

func TestRunUnknownMode(t *testing.T) {
	cfg := testConfig("turbo")
	err := NewRunner(cfg, ringGraph(t, 4), results.NewMemorySink()).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestRunHonoursCancellation(t *testing.T) {
	cfg := testConfig(config.ModeSequential)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewRunner(cfg, ringGraph(t, 4), results.NewMemorySink()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// frozenPerturber never shrinks or rewires; it pins the palette so the
// perturbation schedule can be observed from the emitted records.
type frozenPerturber struct{}

func (frozenPerturber) ShrinkPalette(p colouring.Palette) colouring.Palette { return p }
func (frozenPerturber) RewireEdges(*graph.Graph, float64)                   {}

func TestRunWithInjectedPerturber(t *testing.T) {
	cfg := testConfig(config.ModeSequential)
	cfg.PaletteSize = 6
	cfg.MinPalette = 2
	sink := results.NewMemorySink()

	runner := NewRunner(cfg, ringGraph(t, 6), sink)
	runner.Perturber = frozenPerturber{}
	require.NoError(t, runner.Run(context.Background()))

	for _, r := range sink.Records() {
		assert.Equal(t, cfg.PaletteSize, r.PaletteSize, "frozen perturber must keep the palette full")
	}
}

func TestRunWithRedisBoard(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	cfg := testConfig(config.ModeSequential)
	cfg.Runs = 1
	cfg.Redis = &config.RedisConfig{Addr: mr.Addr(), RunKey: "runner-test"}
	sink := results.NewMemorySink()

	runner := NewRunner(cfg, ringGraph(t, 6), sink)
	require.NoError(t, runner.Run(context.Background()))

	summary := results.Summarize(sink.Records())
	assert.Equal(t, 1, summary.ConflictFreeRuns)
}

func TestRunWithUnreachableRedis(t *testing.T) {
	cfg := testConfig(config.ModeSequential)
	cfg.Redis = &config.RedisConfig{Addr: "localhost:1", RunKey: "runner-test"}

	err := NewRunner(cfg, ringGraph(t, 4), results.NewMemorySink()).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open Redis score board")
}
