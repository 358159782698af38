// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/gitcat/internal/contract"
	"github.com/huangsam/gitcat/schema"
)

// PrintContent writes the result of a single resolution in the configured format.
// Text output is the content itself, byte for byte.
func PrintContent(outcome schema.ResolutionOutcome, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeContentJSON(w, outcome)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBatchCSV(w, schema.BatchRows([]schema.ResolutionOutcome{outcome}, true))
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBatchParquet(w, schema.BatchRows([]schema.ResolutionOutcome{outcome}, true))
		}, "Wrote Parquet")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			_, err := io.WriteString(w, outcome.Result.Content)
			return err
		}, "Wrote content")
	}
}

// PrintBatchResults writes the outcomes of a batch in the configured format.
func PrintBatchResults(outcomes []schema.ResolutionOutcome, cfg *contract.Config, duration time.Duration) error {
	rows := schema.BatchRows(outcomes, cfg.WithContent)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, rows)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBatchCSV(w, rows)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBatchParquet(w, rows)
		}, "Wrote Parquet")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBatchTable(w, rows, outcomes, cfg, duration)
		}, "Wrote table")
	}
}

// NewWatchPrinter returns the callback the watch loop uses to report each
// new version of the watched file.
func NewWatchPrinter(req schema.ContentRequest, cfg *contract.Config) func(schema.ContentResult, error) {
	return newWatchPrinter(os.Stdout, os.Stderr, req, cfg, time.Now)
}

// errorLine formats err for a single-line report.
func errorLine(path string, err error) string {
	return fmt.Sprintf("%s: %v", path, err)
}
