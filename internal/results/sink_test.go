package results

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")

	sink, err := NewCSVSink(path)
	require.NoError(t, err)

	require.NoError(t, sink.Emit(Record{RunID: "abc", Run: 1, Round: 1, PaletteSize: 14, Conflicts: 3}))
	require.NoError(t, sink.Emit(Record{RunID: "abc", Run: 1, Round: 2, PaletteSize: 13, Conflicts: 0}))
	require.NoError(t, sink.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"Experiment Run", "Round", "Number of Colours", "Number of Conflicts", "Run ID"},
		{"1", "1", "14", "3", "abc"},
		{"1", "2", "13", "0", "abc"},
	}, rows)
}

func TestCSVSinkBadPath(t *testing.T) {
	_, err := NewCSVSink(filepath.Join(t.TempDir(), "missing", "results.csv"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create results file")
}

func TestMemorySink(t *testing.T) {
	sink := NewMemorySink()
	require.NoError(t, sink.Emit(Record{Run: 1, Round: 1, Conflicts: 5}))
	require.NoError(t, sink.Emit(Record{Run: 1, Round: 2, Conflicts: 2}))

	records := sink.Records()
	assert.Len(t, records, 2)

	records[0].Conflicts = 99
	assert.Equal(t, 5, sink.Records()[0].Conflicts, "Records must return a copy")

	assert.NoError(t, sink.Close())
}

func TestMultiSink(t *testing.T) {
	a := NewMemorySink()
	b := NewMemorySink()
	multi := NewMultiSink(a, b)

	require.NoError(t, multi.Emit(Record{Run: 2, Round: 3, Conflicts: 1}))
	require.NoError(t, multi.Close())

	assert.Equal(t, a.Records(), b.Records())
	assert.Len(t, a.Records(), 1)
}

func TestSummarize(t *testing.T) {
	t.Run("takes the last record per run", func(t *testing.T) {
		records := []Record{
			{Run: 1, Round: 1, Conflicts: 10},
			{Run: 1, Round: 2, Conflicts: 0},
			{Run: 2, Round: 1, Conflicts: 4},
			{Run: 3, Round: 1, Conflicts: 2},
		}

		s := Summarize(records)
		assert.Equal(t, 3, s.Runs)
		assert.Equal(t, 1, s.ConflictFreeRuns)
		assert.Equal(t, 0, s.MinConflicts)
		assert.Equal(t, 4, s.MaxConflicts)
		assert.InDelta(t, 2.0, s.MeanConflicts, 1e-9)
		assert.InDelta(t, 2.0, s.StdDevConflicts, 1e-9)
	})

	t.Run("empty input", func(t *testing.T) {
		s := Summarize(nil)
		assert.Zero(t, s.Runs)
		assert.Zero(t, s.ConflictFreeFraction())
	})

	t.Run("single run has no deviation", func(t *testing.T) {
		s := Summarize([]Record{{Run: 1, Round: 1, Conflicts: 7}})
		assert.Equal(t, 1, s.Runs)
		assert.Equal(t, 7, s.MinConflicts)
		assert.Equal(t, 7, s.MaxConflicts)
		assert.Zero(t, s.StdDevConflicts)
	})
}
