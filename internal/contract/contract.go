// Package contract provides interfaces and shared utilities for gitcat's internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/gitcat/schema"
)

// Executor runs a git subcommand as a subprocess.
// This allows the resolver to be tested without needing a real git executable.
type Executor interface {
	// Execute runs `git <subcommand> <args...>` with dir as the working directory
	// and returns stdout verbatim. Failures are returned as *CommandError.
	Execute(ctx context.Context, dir string, subcommand string, args ...string) (string, error)
}

// FileSystem is the slice of the working tree the resolver needs.
type FileSystem interface {
	// Exists reports whether a file is present at path.
	Exists(path string) bool

	// ReadFile returns the raw bytes of the file at path.
	ReadFile(path string) ([]byte, error)
}

// RunStore defines the interface for tracking CLI runs and their resolutions.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(command string, startTime time.Time, configParams map[string]any) (int64, error)

	// RecordResolution stores the outcome of one resolution
	RecordResolution(record schema.ResolutionRecord) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalFiles, failedFiles int) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStoreStatus, error)

	// GetAllRuns returns every tracked run
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllResolutions returns every tracked resolution
	GetAllResolutions() ([]schema.ResolutionRecord, error)

	// Close closes the underlying connection
	Close() error
}

// StoreManager hands out the run store.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetRunStore() RunStore
}
