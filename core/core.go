// Package core has the content resolution logic and the command entry points.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/gitcat/internal/contract"
	"github.com/huangsam/gitcat/internal/logging"
	"github.com/huangsam/gitcat/internal/outwriter"
	"github.com/huangsam/gitcat/schema"
)

// NewExecutor builds the traced git executor described by cfg.
func NewExecutor(cfg *contract.Config, logger *logging.Logger) contract.Executor {
	return contract.NewLoggingExecutor(cfg.NewExecutor(), logger)
}

// ExecuteShow resolves a single file and prints its content.
// It serves as the main entry point for the 'show' command.
func ExecuteShow(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, logger *logging.Logger, path string) error {
	outcome, err := GetFileContent(ctx, cfg, mgr, logger, path)
	if err != nil {
		return err
	}
	return outwriter.PrintContent(outcome, cfg)
}

// ExecuteBatch resolves many files concurrently and prints a summary.
// It serves as the main entry point for the 'batch' command.
func ExecuteBatch(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, logger *logging.Logger, paths []string) error {
	start := time.Now()
	outcomes := GetFileContents(ctx, cfg, mgr, logger, paths)

	if err := outwriter.PrintBatchResults(outcomes, cfg, time.Since(start)); err != nil {
		return err
	}
	if failed := countFailed(outcomes); failed > 0 {
		return fmt.Errorf("%d of %d files could not be resolved", failed, len(outcomes))
	}
	return nil
}

// GetFileContent resolves a single file and records the run, including runs
// whose path could not be turned into a request.
// The returned error is the resolution error, if any.
func GetFileContent(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, logger *logging.Logger, path string) (schema.ResolutionOutcome, error) {
	start := time.Now()
	ctx = logging.WithRequestID(ctx)
	executor := NewExecutor(cfg, logger)
	resolver := NewResolver(executor, contract.OSFileSystem{})

	outcome := resolvePaths(ctx, cfg, executor, resolver, []string{path})[0]
	trackRun(mgr, "show", cfg, start, []schema.ResolutionOutcome{outcome})
	return outcome, outcome.Err
}

// GetFileContents resolves paths on the worker pool and records the run.
// Outcomes are in the order of paths.
func GetFileContents(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, logger *logging.Logger, paths []string) []schema.ResolutionOutcome {
	start := time.Now()
	ctx = logging.WithRequestID(ctx)
	executor := NewExecutor(cfg, logger)
	resolver := NewResolver(executor, contract.OSFileSystem{})

	outcomes := resolvePaths(ctx, cfg, executor, resolver, paths)
	trackRun(mgr, "batch", cfg, start, outcomes)
	return outcomes
}

// ExecuteWatch prints the content of a file every time it changes.
// It serves as the main entry point for the 'watch' command.
func ExecuteWatch(ctx context.Context, cfg *contract.Config, logger *logging.Logger, path string) error {
	executor := NewExecutor(cfg, logger)
	req, err := contract.BuildRequest(ctx, cfg, executor, path)
	if err != nil {
		return err
	}
	resolver := NewResolver(executor, contract.OSFileSystem{})
	return Watch(ctx, resolver, req, cfg.Debounce, logger, outwriter.NewWatchPrinter(req, cfg))
}

// resolvePaths builds a request per path and resolves them on the worker pool.
// Paths whose request cannot be built keep their position with the build error.
func resolvePaths(ctx context.Context, cfg *contract.Config, executor contract.Executor, resolver ContentResolver, paths []string) []schema.ResolutionOutcome {
	outcomes := make([]schema.ResolutionOutcome, len(paths))
	requests := make([]schema.ContentRequest, 0, len(paths))
	positions := make([]int, 0, len(paths))

	for i, path := range paths {
		req, err := contract.BuildRequest(ctx, cfg, executor, path)
		if err != nil {
			outcomes[i] = schema.ResolutionOutcome{Request: schema.ContentRequest{FilePath: path}, Err: err}
			continue
		}
		requests = append(requests, req)
		positions = append(positions, i)
	}

	for j, outcome := range ResolveAll(ctx, resolver, requests, cfg.Workers) {
		outcomes[positions[j]] = outcome
	}
	return outcomes
}

func countFailed(outcomes []schema.ResolutionOutcome) int {
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	return failed
}
