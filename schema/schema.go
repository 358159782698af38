// Package schema has models and constants shared by all parts of gitcat.
package schema

import (
	"path/filepath"
	"strings"
	"time"
)

// ContentRequest asks for the content of one file.
// An empty SourceRevision means the current working or staged state.
type ContentRequest struct {
	FilePath       string `json:"file_path"`
	RepoRoot       string `json:"repo_root"`
	SourceRevision string `json:"source_revision,omitempty"`
}

// IsEmpty reports whether the request lacks a file path or a repository root.
func (r ContentRequest) IsEmpty() bool {
	return r.FilePath == "" || r.RepoRoot == ""
}

// RelativePath strips RepoRoot and a single leading separator from FilePath
// and converts the remainder to forward slashes for git.
func (r ContentRequest) RelativePath() string {
	rel := strings.TrimPrefix(r.FilePath, r.RepoRoot)
	if rel != "" && (rel[0] == '/' || rel[0] == '\\') {
		rel = rel[1:]
	}
	return filepath.ToSlash(rel)
}

// Invocation describes one git subprocess call.
type Invocation struct {
	Dir        string   `json:"dir"`
	Subcommand string   `json:"subcommand"`
	Args       []string `json:"args"`
}

// ShowInvocation builds `git show <spec>:<path>` run from dir.
func ShowInvocation(dir, spec, path string) Invocation {
	return Invocation{
		Dir:        dir,
		Subcommand: ShowSubcommand,
		Args:       []string{spec + ":" + path},
	}
}

// ContentResult is the content of a file along with the source that produced it.
type ContentResult struct {
	Content string        `json:"content"`
	Source  ContentSource `json:"source"`
}

// ResolutionOutcome pairs a request with its result or error.
type ResolutionOutcome struct {
	Request  ContentRequest
	Result   ContentResult
	Err      error
	Duration time.Duration
}

// Status returns the resolution status of the outcome.
func (o ResolutionOutcome) Status() ResolutionStatus {
	if o.Err != nil {
		return StatusFailed
	}
	return StatusOK
}
