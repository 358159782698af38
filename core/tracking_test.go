package core

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/huangsam/gitcat/internal/contract"
	"github.com/huangsam/gitcat/internal/iostore"
	"github.com/huangsam/gitcat/internal/logging"
	"github.com/huangsam/gitcat/schema"
)

func trackedOutcomes() []schema.ResolutionOutcome {
	return []schema.ResolutionOutcome{
		{
			Request: schema.ContentRequest{FilePath: "/repo/a.go", RepoRoot: "/repo"},
			Result:  schema.ContentResult{Content: "abc", Source: schema.SourceIndex},
		},
		{
			Request: schema.ContentRequest{FilePath: "/repo/b.go", RepoRoot: "/repo", SourceRevision: "v2"},
			Err:     errors.New("fatal: bad revision"),
		},
	}
}

func TestTrackRun(t *testing.T) {
	cfg := &contract.Config{Revision: "v2", Workers: 3, Timeout: time.Second, Output: schema.TextOut}
	start := time.Now()

	store := &iostore.MockRunStore{}
	mgr := &iostore.MockStoreManager{}
	mgr.On("GetRunStore").Return(store)

	store.On("BeginRun", "batch", start, mock.MatchedBy(func(params map[string]any) bool {
		return params["revision"] == "v2" && params["workers"] == 3 && params["timeout"] == "1s"
	})).Return(int64(7), nil)
	store.On("RecordResolution", mock.MatchedBy(func(rec schema.ResolutionRecord) bool {
		return rec.RunID == 7 && rec.FilePath == "/repo/a.go" && rec.Status == "ok" && rec.ByteCount == 3
	})).Return(nil).Once()
	store.On("RecordResolution", mock.MatchedBy(func(rec schema.ResolutionRecord) bool {
		return rec.RunID == 7 && rec.FilePath == "/repo/b.go" && rec.Status == "failed" &&
			rec.ErrorMessage != nil && *rec.ErrorMessage == "fatal: bad revision"
	})).Return(nil).Once()
	store.On("EndRun", int64(7), mock.AnythingOfType("time.Time"), 2, 1).Return(nil)

	trackRun(mgr, "batch", cfg, start, trackedOutcomes())

	mgr.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestTrackRun_Disabled(t *testing.T) {
	assert.NotPanics(t, func() {
		trackRun(nil, "show", &contract.Config{}, time.Now(), trackedOutcomes())
	})

	mgr := &iostore.MockStoreManager{}
	mgr.On("GetRunStore").Return(nil)
	trackRun(mgr, "show", &contract.Config{}, time.Now(), trackedOutcomes())
	mgr.AssertExpectations(t)
}

func TestTrackRun_BeginFailureSkipsRecording(t *testing.T) {
	store := &iostore.MockRunStore{}
	mgr := &iostore.MockStoreManager{}
	mgr.On("GetRunStore").Return(store)
	store.On("BeginRun", "show", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))

	trackRun(mgr, "show", &contract.Config{}, time.Now(), trackedOutcomes())

	store.AssertExpectations(t)
	store.AssertNotCalled(t, "RecordResolution", mock.Anything)
	store.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTrackRun_RecordFailureStillEndsRun(t *testing.T) {
	store := &iostore.MockRunStore{}
	mgr := &iostore.MockStoreManager{}
	mgr.On("GetRunStore").Return(store)
	store.On("BeginRun", "batch", mock.Anything, mock.Anything).Return(int64(1), nil)
	store.On("RecordResolution", mock.Anything).Return(errors.New("insert failed"))
	store.On("EndRun", int64(1), mock.Anything, 2, 1).Return(nil)

	trackRun(mgr, "batch", &contract.Config{}, time.Now(), trackedOutcomes())

	store.AssertNumberOfCalls(t, "RecordResolution", 2)
	store.AssertExpectations(t)
}

func TestCountFailed(t *testing.T) {
	assert.Equal(t, 0, countFailed(nil))
	assert.Equal(t, 1, countFailed(trackedOutcomes()))
}

// unreachableGitConfig points at a git binary that does not exist, so no
// repository can be discovered for any path.
func unreachableGitConfig(t *testing.T) *contract.Config {
	return &contract.Config{
		GitBinary: filepath.Join(t.TempDir(), "missing-git"),
		Timeout:   time.Second,
		Workers:   2,
		Output:    schema.TextOut,
	}
}

func TestGetFileContent_TracksRequestFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")

	store := &iostore.MockRunStore{}
	mgr := &iostore.MockStoreManager{}
	mgr.On("GetRunStore").Return(store)
	store.On("BeginRun", "show", mock.Anything, mock.Anything).Return(int64(3), nil).Once()
	store.On("RecordResolution", mock.MatchedBy(func(rec schema.ResolutionRecord) bool {
		return rec.RunID == 3 && rec.Status == "failed" && rec.ErrorMessage != nil
	})).Return(nil).Once()
	store.On("EndRun", int64(3), mock.AnythingOfType("time.Time"), 1, 1).Return(nil).Once()

	outcome, err := GetFileContent(context.Background(), unreachableGitConfig(t), mgr, logging.Nop(), path)
	assert.ErrorContains(t, err, "cannot find the Git repository")
	assert.Equal(t, err, outcome.Err)

	store.AssertExpectations(t)
}

func TestGetFileContents_TracksRequestFailures(t *testing.T) {
	dir := t.TempDir()
	paths := []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")}

	store := &iostore.MockRunStore{}
	mgr := &iostore.MockStoreManager{}
	mgr.On("GetRunStore").Return(store)
	store.On("BeginRun", "batch", mock.Anything, mock.Anything).Return(int64(4), nil).Once()
	store.On("RecordResolution", mock.Anything).Return(nil).Twice()
	store.On("EndRun", int64(4), mock.AnythingOfType("time.Time"), 2, 2).Return(nil).Once()

	outcomes := GetFileContents(context.Background(), unreachableGitConfig(t), mgr, logging.Nop(), paths)
	assert.Len(t, outcomes, 2)
	assert.Equal(t, 2, countFailed(outcomes))

	store.AssertExpectations(t)
}
