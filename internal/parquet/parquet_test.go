package parquet

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/gitcat/schema"
)

// sampleRuns returns runs with and without the nullable fields set.
func sampleRuns() []Run {
	now := time.Now()
	start1 := now.Add(-2 * time.Hour)
	end1 := now.Add(-2*time.Hour + 1500*time.Millisecond)
	duration1 := int32(1500)
	params1 := `{"revision":"HEAD~1","workers":4}`

	return []Run{
		{
			RunID:         1,
			Command:       "batch",
			StartTime:     start1,
			EndTime:       &end1,
			RunDurationMs: &duration1,
			TotalFiles:    12,
			FailedFiles:   1,
			ConfigParams:  &params1,
		},
		{
			RunID:     2,
			Command:   "show",
			StartTime: now.Add(-time.Minute),
		},
	}
}

// sampleResolutions returns resolutions for the runs above.
func sampleResolutions() []Resolution {
	now := time.Now()
	rev := "v1.0.0"
	msg := "fatal: invalid object name 'v9'."

	return []Resolution{
		{RunID: 1, FilePath: "/repo/a.go", RepoRoot: "/repo", Source: "index", Status: "ok", ByteCount: 42, ResolveTimeMs: 3, ResolvedAt: now},
		{RunID: 1, FilePath: "/repo/b.go", RepoRoot: "/repo", SourceRevision: &rev, Source: "none", Status: "failed", ErrorMessage: &msg, ResolveTimeMs: 2, ResolvedAt: now},
		{RunID: 2, FilePath: "/repo/gone.go", RepoRoot: "/repo", Source: "history", Status: "ok", ByteCount: 7, ResolveTimeMs: 4, ResolvedAt: now},
	}
}

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{"run", new(Run), []string{"run_id", "command", "start_time", "end_time", "run_duration_ms", "total_files", "failed_files", "config_params"}},
		{"resolution", new(Resolution), []string{"run_id", "file_path", "repo_root", "source_revision", "source", "status", "byte_count", "error_message", "resolve_time_ms", "resolved_at"}},
		{"batch result", new(BatchResult), []string{"index", "file_path", "source_revision", "source", "bytes", "status", "error", "content"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			require.NotNil(t, s)
			for _, colName := range tt.columns {
				_, ok := s.Lookup(colName)
				assert.True(t, ok, "Column %s should exist in schema", colName)
			}
		})
	}
}

func TestWriteRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")
	data := sampleRuns()

	require.NoError(t, WriteRunsParquet(data, outputPath))

	readData := readAll[Run](t, outputPath)
	require.Len(t, readData, len(data))
	for i := range data {
		assert.Equal(t, data[i].RunID, readData[i].RunID)
		assert.Equal(t, data[i].Command, readData[i].Command)
		assert.Equal(t, data[i].TotalFiles, readData[i].TotalFiles)
		assert.Equal(t, data[i].FailedFiles, readData[i].FailedFiles)
		if data[i].EndTime == nil {
			assert.Nil(t, readData[i].EndTime)
		} else {
			require.NotNil(t, readData[i].EndTime)
			assert.WithinDuration(t, *data[i].EndTime, *readData[i].EndTime, time.Microsecond)
		}
		assert.Equal(t, data[i].RunDurationMs, readData[i].RunDurationMs)
		assert.Equal(t, data[i].ConfigParams, readData[i].ConfigParams)
	}
}

func TestWriteResolutionsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "resolutions.parquet")
	data := sampleResolutions()

	require.NoError(t, WriteResolutionsParquet(data, outputPath))

	readData := readAll[Resolution](t, outputPath)
	require.Len(t, readData, len(data))
	for i := range data {
		assert.Equal(t, data[i].FilePath, readData[i].FilePath)
		assert.Equal(t, data[i].Source, readData[i].Source)
		assert.Equal(t, data[i].Status, readData[i].Status)
		assert.Equal(t, data[i].ByteCount, readData[i].ByteCount)
		assert.Equal(t, data[i].SourceRevision, readData[i].SourceRevision)
		assert.Equal(t, data[i].ErrorMessage, readData[i].ErrorMessage)
	}
}

func TestWriteParquet_EmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty_runs.parquet")
	require.NoError(t, WriteRunsParquet([]Run{}, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "Output file should contain schema even if empty")
}

func TestWriteParquet_InvalidPath(t *testing.T) {
	err := WriteResolutionsParquet(sampleResolutions(), "/nonexistent/directory/output.parquet")
	require.Error(t, err)
}

func TestWriteBatchResults(t *testing.T) {
	rows := []schema.BatchRow{
		{Index: 1, FilePath: "/repo/a.go", Source: schema.SourceIndex, Bytes: 3, Status: schema.StatusOK, Content: "abc"},
		{Index: 2, FilePath: "/repo/b.go", SourceRevision: "v2", Source: schema.SourceNone, Status: schema.StatusFailed, Error: "boom"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBatchResults(&buf, ConvertBatchRows(rows)))

	reader := parquet.NewGenericReader[BatchResult](bytes.NewReader(buf.Bytes()))
	defer func() { _ = reader.Close() }()
	readData := make([]BatchResult, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, 2, n)

	assert.Equal(t, int32(1), readData[0].Index)
	assert.Nil(t, readData[0].SourceRevision)
	assert.Nil(t, readData[0].Error)
	require.NotNil(t, readData[0].Content)
	assert.Equal(t, "abc", *readData[0].Content)

	require.NotNil(t, readData[1].SourceRevision)
	assert.Equal(t, "v2", *readData[1].SourceRevision)
	require.NotNil(t, readData[1].Error)
	assert.Equal(t, "boom", *readData[1].Error)
	assert.Nil(t, readData[1].Content)
	assert.Equal(t, "failed", readData[1].Status)
}

func TestConvertRecords(t *testing.T) {
	duration := int32(10)
	runs := ConvertRunRecords([]schema.RunRecord{{RunID: 5, Command: "batch", TotalFiles: 3, FailedFiles: 1, RunDurationMs: &duration}})
	require.Len(t, runs, 1)
	assert.Equal(t, int64(5), runs[0].RunID)
	assert.Equal(t, "batch", runs[0].Command)
	assert.Equal(t, &duration, runs[0].RunDurationMs)

	resolutions := ConvertResolutionRecords([]schema.ResolutionRecord{{RunID: 5, FilePath: "/r/a", Source: "disk", Status: "ok", ByteCount: 9}})
	require.Len(t, resolutions, 1)
	assert.Equal(t, "disk", resolutions[0].Source)
	assert.Equal(t, int64(9), resolutions[0].ByteCount)
}

// readAll reads every row of a Parquet file.
func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}
