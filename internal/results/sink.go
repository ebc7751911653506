// Package results collects and persists per-round experiment measurements:
// one record per audited round, CSV persistence in the tabular format the
// experiments consume, and summary statistics across a whole experiment.
package results

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
)

// Record is one audited round of one experiment run.
type Record struct {
	RunID       string // UUID of the experiment run this round belongs to
	Run         int    // 1-based experiment run index
	Round       int    // 1-based round index within the run
	PaletteSize int    // palette size when the round was audited
	Conflicts   int    // conflicting edges after the round
}

// Sink receives per-round records. Implementations must tolerate Emit being
// called once per round for the whole experiment before a single Close.
type Sink interface {
	Emit(r Record) error
	Close() error
}

// CSVSink streams records to a CSV file. The column layout matches the
// tabular records the plotting pipeline consumes.
type CSVSink struct {
	f *os.File
	w *csv.Writer
}

// NewCSVSink creates the output file and writes the header row.
func NewCSVSink(path string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create results file: %w", err)
	}

	w := csv.NewWriter(f)
	header := []string{"Experiment Run", "Round", "Number of Colours", "Number of Conflicts", "Run ID"}
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write results header: %w", err)
	}

	return &CSVSink{f: f, w: w}, nil
}

// Emit writes one record row.
func (s *CSVSink) Emit(r Record) error {
	row := []string{
		strconv.Itoa(r.Run),
		strconv.Itoa(r.Round),
		strconv.Itoa(r.PaletteSize),
		strconv.Itoa(r.Conflicts),
		r.RunID,
	}
	if err := s.w.Write(row); err != nil {
		return fmt.Errorf("failed to write results row: %w", err)
	}
	return nil
}

// Close flushes buffered rows and closes the file. Implements io.Closer.
func (s *CSVSink) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		s.f.Close()
		return fmt.Errorf("failed to flush results: %w", err)
	}
	return s.f.Close()
}

// MemorySink retains records in memory. Used by tests and by the summary
// printing path. Safe for concurrent Emit.
type MemorySink struct {
	mu      sync.Mutex
	records []Record
}

// NewMemorySink returns an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Emit appends the record.
func (s *MemorySink) Emit(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	return nil
}

// Close is a no-op. Implements io.Closer.
func (s *MemorySink) Close() error {
	return nil
}

// Records returns a copy of everything emitted so far.
func (s *MemorySink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// MultiSink fans every record out to all wrapped sinks.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink wraps the given sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Emit forwards the record to every sink, stopping at the first failure.
func (s *MultiSink) Emit(r Record) error {
	for _, sink := range s.sinks {
		if err := sink.Emit(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink, returning the first failure.
func (s *MultiSink) Close() error {
	var firstErr error
	for _, sink := range s.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
