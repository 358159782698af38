package core

import (
	"context"
	"path/filepath"

	"github.com/huangsam/gitcat/internal/contract"
	"github.com/huangsam/gitcat/schema"
)

// Resolver returns the content of a file at an optional revision by asking,
// in order, the working tree, the index and the object database.
// It keeps no state between calls and is safe for concurrent use.
type Resolver struct {
	executor contract.Executor
	fs       contract.FileSystem
}

// NewResolver creates a resolver over the given executor and filesystem.
func NewResolver(executor contract.Executor, fs contract.FileSystem) *Resolver {
	return &Resolver{executor: executor, fs: fs}
}

// Resolve returns the content described by req.
//
// A file missing from disk is read from history at the requested revision
// (HEAD by default) using its repository-relative path. A file present on
// disk is read from the index (stage 0 by default) or the requested revision
// using its absolute path. When git reports that the path has no entry
// there, the result is empty for an explicit revision and the raw disk bytes
// otherwise. A revision that fails to resolve because the repository has no
// commits yet counts as having no entry. Every other failure is returned
// unchanged.
func (r *Resolver) Resolve(ctx context.Context, req schema.ContentRequest) (schema.ContentResult, error) {
	if req.IsEmpty() {
		return schema.ContentResult{Source: schema.SourceNone}, nil
	}

	dir := filepath.Dir(req.FilePath)

	if !r.fs.Exists(req.FilePath) {
		inv := schema.ShowInvocation(dir, historySpec(req.SourceRevision), req.RelativePath())
		out, err := r.run(ctx, inv)
		if err != nil {
			return schema.ContentResult{}, err
		}
		return schema.ContentResult{Content: out, Source: schema.SourceHistory}, nil
	}

	inv := schema.ShowInvocation(dir, indexSpec(req.SourceRevision), req.FilePath)
	out, err := r.run(ctx, inv)
	if err == nil {
		return schema.ContentResult{Content: out, Source: schema.SourceIndex}, nil
	}
	if !contract.IsNoIndexYet(err) && !r.unbornRevision(ctx, dir, req.SourceRevision, err) {
		return schema.ContentResult{}, err
	}
	if req.SourceRevision != "" {
		return schema.ContentResult{Source: schema.SourceNone}, nil
	}

	data, readErr := r.fs.ReadFile(req.FilePath)
	if readErr != nil {
		return schema.ContentResult{}, readErr
	}
	return schema.ContentResult{Content: string(data), Source: schema.SourceDisk}, nil
}

// Content is Resolve without the source annotation.
func (r *Resolver) Content(ctx context.Context, filePath, repoRoot, sourceRevision string) (string, error) {
	res, err := r.Resolve(ctx, schema.ContentRequest{
		FilePath:       filePath,
		RepoRoot:       repoRoot,
		SourceRevision: sourceRevision,
	})
	return res.Content, err
}

// unbornRevision reports whether err is an explicit revision failing to
// resolve in a repository whose HEAD has no commit yet.
func (r *Resolver) unbornRevision(ctx context.Context, dir, rev string, err error) bool {
	if rev == "" || !contract.IsInvalidObject(err) {
		return false
	}
	hasCommits, headErr := contract.HasCommits(ctx, r.executor, dir)
	return headErr == nil && !hasCommits
}

func (r *Resolver) run(ctx context.Context, inv schema.Invocation) (string, error) {
	return r.executor.Execute(ctx, inv.Dir, inv.Subcommand, inv.Args...)
}

// historySpec picks the revision for a file that is gone from disk.
func historySpec(rev string) string {
	if rev == "" {
		return schema.HistoryRevision
	}
	return rev
}

// indexSpec picks the stage or revision for a file present on disk.
func indexSpec(rev string) string {
	if rev == "" {
		return schema.IndexStageMarker
	}
	return rev
}
