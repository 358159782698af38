package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/gitcat/internal/contract"
	"github.com/huangsam/gitcat/internal/parquet"
	"github.com/huangsam/gitcat/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// batchCSVHeader is the column order of batch CSV output.
var batchCSVHeader = []string{"index", "file_path", "source_revision", "source", "bytes", "status", "error", "content"}

// writeBatchCSV writes rows as CSV with a header.
func writeBatchCSV(w io.Writer, rows []schema.BatchRow) error {
	return writeCSVWithHeader(w, batchCSVHeader, func(csvWriter *csv.Writer) error {
		for _, row := range rows {
			rec := []string{
				strconv.Itoa(row.Index),
				row.FilePath,
				row.SourceRevision,
				string(row.Source),
				strconv.Itoa(row.Bytes),
				string(row.Status),
				row.Error,
				row.Content,
			}
			if err := csvWriter.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}

// writeBatchParquet writes rows as a Parquet file.
func writeBatchParquet(w io.Writer, rows []schema.BatchRow) error {
	return parquet.WriteBatchResults(w, parquet.ConvertBatchRows(rows))
}

// writeBatchTable renders rows as a human-readable table followed by a summary.
func writeBatchTable(w io.Writer, rows []schema.BatchRow, outcomes []schema.ResolutionOutcome, cfg *contract.Config, duration time.Duration) error {
	failed := 0
	for _, row := range rows {
		if row.Status == schema.StatusFailed {
			failed++
		}
	}
	withErrors := failed > 0

	table := tablewriter.NewWriter(w)
	headers := []string{"#", "Path", "Source", "Bytes", "Status"}
	if withErrors {
		headers = append(headers, "Error")
	}
	table.Header(headers)
	alignments := []tw.Align{tw.AlignRight, tw.AlignLeft, tw.AlignLeft, tw.AlignRight, tw.AlignLeft, tw.AlignLeft}
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignLeft
		c.Row.Alignment.PerColumn = alignments[:len(headers)]
	})

	pathWidth := GetMaxTablePathWidth(cfg, withErrors)
	var data [][]string
	for i, row := range rows {
		line := []string{
			strconv.Itoa(row.Index),
			contract.TruncatePath(displayPath(outcomes[i].Request), pathWidth),
			contract.GetColorSource(row.Source),
			formatBytes(row.Bytes),
			contract.GetColorStatus(row.Status),
		}
		if withErrors {
			line = append(line, firstLine(row.Error))
		}
		data = append(data, line)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	revision := cfg.Revision
	if revision == "" {
		revision = "index/HEAD"
	}
	if _, err := fmt.Fprintf(w, "Resolved %d files at %s (%d failed)\n", len(rows), revision, failed); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Batch completed in %s with %d workers. Runs backend: %s\n", formatDuration(duration), cfg.Workers, cfg.RunsBackend); err != nil {
		return err
	}
	return nil
}

// displayPath prefers the repository-relative path when the root is known.
func displayPath(req schema.ContentRequest) string {
	if req.RepoRoot == "" {
		return req.FilePath
	}
	return req.RelativePath()
}

// firstLine trims a multi-line diagnostic to its first line.
func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' || r == '\r' {
			return s[:i]
		}
	}
	return s
}
