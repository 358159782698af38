// Package parquet provides data structures and functions for exporting gitcat
// run and resolution data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/gitcat/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single gitcat invocation that was tracked.
// This struct maps to the gitcat_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// Command is the CLI command that produced the run (show, batch)
	Command string `parquet:"command,snappy,dict"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalFiles is the number of files the run resolved
	TotalFiles int32 `parquet:"total_files,snappy"`

	// FailedFiles is the number of files that could not be resolved
	FailedFiles int32 `parquet:"failed_files,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// Resolution represents the outcome of resolving one file within a run.
// This struct maps to the gitcat_resolutions database table.
type Resolution struct {
	RunID          int64     `parquet:"run_id,snappy"`
	FilePath       string    `parquet:"file_path,snappy"`
	RepoRoot       string    `parquet:"repo_root,snappy,dict"`
	SourceRevision *string   `parquet:"source_revision,optional,snappy"`
	Source         string    `parquet:"source,snappy,dict"`
	Status         string    `parquet:"status,snappy,dict"`
	ByteCount      int64     `parquet:"byte_count,snappy"`
	ErrorMessage   *string   `parquet:"error_message,optional,snappy"`
	ResolveTimeMs  int32     `parquet:"resolve_time_ms,snappy"`
	ResolvedAt     time.Time `parquet:"resolved_at,snappy"`
}

// BatchResult is one row of batch output written directly as Parquet.
type BatchResult struct {
	Index          int32   `parquet:"index,snappy"`
	FilePath       string  `parquet:"file_path,snappy"`
	SourceRevision *string `parquet:"source_revision,optional,snappy"`
	Source         string  `parquet:"source,snappy,dict"`
	Bytes          int64   `parquet:"bytes,snappy"`
	Status         string  `parquet:"status,snappy,dict"`
	Error          *string `parquet:"error,optional,snappy"`
	Content        *string `parquet:"content,optional,snappy"`
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteResolutionsParquet writes a slice of Resolution structs to a Parquet file.
func WriteResolutionsParquet(data []Resolution, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteBatchResults writes batch rows as Parquet to w.
func WriteBatchResults(w io.Writer, data []BatchResult) error {
	return write(w, data)
}

// writeFile creates outputPath and writes data to it.
func writeFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return write(file, data)
}

// write encodes data with a schema inferred from T's struct tags.
func write[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			Command:       record.Command,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalFiles:    record.TotalFiles,
			FailedFiles:   record.FailedFiles,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertResolutionRecords converts schema.ResolutionRecord to Resolution for Parquet export.
func ConvertResolutionRecords(records []schema.ResolutionRecord) []Resolution {
	result := make([]Resolution, len(records))
	for i, record := range records {
		result[i] = Resolution{
			RunID:          record.RunID,
			FilePath:       record.FilePath,
			RepoRoot:       record.RepoRoot,
			SourceRevision: record.SourceRevision,
			Source:         record.Source,
			Status:         record.Status,
			ByteCount:      record.ByteCount,
			ErrorMessage:   record.ErrorMessage,
			ResolveTimeMs:  record.ResolveTimeMs,
			ResolvedAt:     record.ResolvedAt,
		}
	}
	return result
}

// ConvertBatchRows converts schema.BatchRow to BatchResult. Empty optional
// columns are written as nulls.
func ConvertBatchRows(rows []schema.BatchRow) []BatchResult {
	result := make([]BatchResult, len(rows))
	for i, row := range rows {
		result[i] = BatchResult{
			Index:          int32(row.Index),
			FilePath:       row.FilePath,
			SourceRevision: optional(row.SourceRevision),
			Source:         string(row.Source),
			Bytes:          int64(row.Bytes),
			Status:         string(row.Status),
			Error:          optional(row.Error),
			Content:        optional(row.Content),
		}
	}
	return result
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
