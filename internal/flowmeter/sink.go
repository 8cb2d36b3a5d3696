package flowmeter

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
)

// Sink is the minimal interface the engine needs to persist finished flow
// records, mirroring the FlowWriter/Clicker abstraction the teacher uses
// for its own batch sinks.
type Sink interface {
	WriteRecords(records []FeatureRecord) error
	Close() error
}

// CSVSink writes FeatureRecords as CSV, header first, via gocsv's
// struct-tag marshaling. The header is written once, at construction, so
// empty input still produces a header-only file per spec.md §6.2.
type CSVSink struct {
	w io.Writer
}

// NewCSVSink opens path and returns a CSVSink backed by it, writing the CSV
// header immediately. Callers must call Close when done to release the
// file handle.
func NewCSVSink(path string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv output: %w", err)
	}
	return newCSVSink(f)
}

// NewCSVSinkWriter wraps an arbitrary io.Writer (used by tests and by
// stdout output), writing the CSV header immediately.
func NewCSVSinkWriter(w io.Writer) (*CSVSink, error) {
	return newCSVSink(w)
}

func newCSVSink(w io.Writer) (*CSVSink, error) {
	if err := gocsv.Marshal([]FeatureRecord{}, w); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	return &CSVSink{w: w}, nil
}

// WriteRecords appends records to the CSV output.
func (s *CSVSink) WriteRecords(records []FeatureRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, s.w); err != nil {
		return fmt.Errorf("failed to marshal csv rows: %w", err)
	}
	return nil
}

// Close closes the underlying file, if the sink owns one.
func (s *CSVSink) Close() error {
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
