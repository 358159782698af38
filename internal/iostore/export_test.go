package iostore

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/gitcat/schema"
)

func TestExecuteRunsExport(t *testing.T) {
	store := newSQLiteStore(t)
	runID, err := store.BeginRun("show", time.Now(), map[string]any{"revision": ""})
	require.NoError(t, err)
	require.NoError(t, store.RecordResolution(schema.ResolutionRecord{
		RunID: runID, FilePath: "/repo/a.go", RepoRoot: "/repo", Source: "disk", Status: "ok", ByteCount: 5, ResolvedAt: time.Now(),
	}))
	require.NoError(t, store.EndRun(runID, time.Now(), 1, 0))

	prefix := filepath.Join(t.TempDir(), "export")
	var out bytes.Buffer
	require.NoError(t, ExecuteRunsExport(&out, store, prefix))

	assert.Contains(t, out.String(), "Exported 1 runs")
	assert.Contains(t, out.String(), "Exported 1 resolutions")
	for _, suffix := range []string{".runs.parquet", ".resolutions.parquet"} {
		info, err := os.Stat(prefix + suffix)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestExecuteRunsExport_Errors(t *testing.T) {
	var out bytes.Buffer

	err := ExecuteRunsExport(&out, new(MockRunStore), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--output-file is required")

	err = ExecuteRunsExport(&out, nil, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")

	empty := new(MockRunStore)
	empty.On("GetStatus").Return(schema.RunStoreStatus{Backend: "sqlite", Connected: true}, nil)
	err = ExecuteRunsExport(&out, empty, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no run data found")

	broken := new(MockRunStore)
	broken.On("GetStatus").Return(schema.RunStoreStatus{Backend: "sqlite", TotalRuns: 1}, nil)
	broken.On("GetAllRuns").Return(nil, errors.New("disk I/O error"))
	err = ExecuteRunsExport(&out, broken, filepath.Join(t.TempDir(), "x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to retrieve runs")
	broken.AssertExpectations(t)
}

func TestPrintRunsStatus(t *testing.T) {
	var out bytes.Buffer
	PrintRunsStatus(&out, schema.RunStoreStatus{Backend: "none"})
	assert.Equal(t, "Runs Backend: none\nConnected: false\n", out.String())

	out.Reset()
	PrintRunsStatus(&out, schema.RunStoreStatus{
		Backend:          "sqlite",
		Connected:        true,
		TotalRuns:        2,
		LastRunID:        7,
		LastRunTime:      time.Now(),
		OldestRunTime:    time.Now(),
		TotalResolutions: 5,
		FailedCount:      1,
		TableSizes:       map[string]int64{resolutionsTable: 5, runsTable: 2},
	})
	text := out.String()
	assert.Contains(t, text, "Last Run ID: 7")
	assert.Contains(t, text, "Total Resolutions: 5 (1 failed)")
	// Tables are listed alphabetically.
	assert.Less(t, bytes.Index(out.Bytes(), []byte(resolutionsTable)), bytes.Index(out.Bytes(), []byte("  "+runsTable)))
}
