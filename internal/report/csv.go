// Package report writes run reports as CSV, one row per processed site,
// written incrementally as results arrive.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/halcyonops/spoadmin/internal/core/ports/driven"
)

// Ensure CSVSink implements the port.
var _ driven.ReportSink = (*CSVSink)(nil)

// CSVSink writes rows to a CSV stream. Rows are flushed as they arrive so
// a partial report survives an interrupted run.
type CSVSink struct {
	writer *csv.Writer
	closer io.Closer
}

// NewCSVSink wraps an open writer. The header row is written immediately.
func NewCSVSink(w io.Writer, header []string) (*CSVSink, error) {
	sink := &CSVSink{writer: csv.NewWriter(w)}
	if closer, ok := w.(io.Closer); ok {
		sink.closer = closer
	}
	if len(header) > 0 {
		if err := sink.Write(header); err != nil {
			return nil, fmt.Errorf("write report header: %w", err)
		}
	}
	return sink, nil
}

// NewFileSink creates the report file and writes the header row.
func NewFileSink(path string, header []string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create report file: %w", err)
	}
	sink, err := NewCSVSink(f, header)
	if err != nil {
		f.Close()
		return nil, err
	}
	return sink, nil
}

// Write appends one row and flushes it.
func (s *CSVSink) Write(row []string) error {
	if err := s.writer.Write(row); err != nil {
		return fmt.Errorf("write report row: %w", err)
	}
	s.writer.Flush()
	return s.writer.Error()
}

// Close flushes pending rows and closes the underlying file if any.
func (s *CSVSink) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return err
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// Discard is a sink that drops every row. Used when a command runs without
// a report file.
type Discard struct{}

func (Discard) Write([]string) error { return nil }
func (Discard) Close() error         { return nil }
