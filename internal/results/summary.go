package results

import (
	"fmt"
	"io"
	"math"
)

// Summary aggregates the final state of every experiment run.
type Summary struct {
	Runs             int     // number of experiment runs
	ConflictFreeRuns int     // runs that ended with zero conflicts
	MinConflicts     int     // minimum final conflict count
	MaxConflicts     int     // maximum final conflict count
	MeanConflicts    float64 // mean final conflict count
	StdDevConflicts  float64 // sample standard deviation of final conflicts
}

// ConflictFreeFraction returns the share of runs that ended conflict-free.
func (s Summary) ConflictFreeFraction() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.ConflictFreeRuns) / float64(s.Runs)
}

// Summarize computes summary statistics over the final round of every run.
// Records must carry at least one round per run; the last record of each run
// index is taken as that run's final state.
func Summarize(records []Record) Summary {
	finals := make(map[int]int) // run index -> final conflicts
	for _, r := range records {
		finals[r.Run] = r.Conflicts
	}

	s := Summary{Runs: len(finals)}
	if s.Runs == 0 {
		return s
	}

	s.MinConflicts = math.MaxInt
	sum := 0
	for _, conflicts := range finals {
		if conflicts == 0 {
			s.ConflictFreeRuns++
		}
		if conflicts < s.MinConflicts {
			s.MinConflicts = conflicts
		}
		if conflicts > s.MaxConflicts {
			s.MaxConflicts = conflicts
		}
		sum += conflicts
	}
	s.MeanConflicts = float64(sum) / float64(s.Runs)

	if s.Runs > 1 {
		var sq float64
		for _, conflicts := range finals {
			d := float64(conflicts) - s.MeanConflicts
			sq += d * d
		}
		s.StdDevConflicts = math.Sqrt(sq / float64(s.Runs-1))
	}
	return s
}

// FormatSummary writes the summary as an aligned text table.
func FormatSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "%-22s %d\n", "Runs", s.Runs)
	fmt.Fprintf(w, "%-22s %d (%.0f%%)\n", "Conflict-free runs", s.ConflictFreeRuns, s.ConflictFreeFraction()*100)
	fmt.Fprintf(w, "%-22s %d\n", "Min final conflicts", s.MinConflicts)
	fmt.Fprintf(w, "%-22s %d\n", "Max final conflicts", s.MaxConflicts)
	fmt.Fprintf(w, "%-22s %.2f\n", "Mean final conflicts", s.MeanConflicts)
	fmt.Fprintf(w, "%-22s %.2f\n", "Std dev", s.StdDevConflicts)
}
