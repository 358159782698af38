package outwriter

import (
	"io"

	"github.com/huangsam/gitcat/schema"
)

// contentJSON is the JSON document for a single resolution.
type contentJSON struct {
	FilePath       string               `json:"file_path"`
	RepoRoot       string               `json:"repo_root"`
	RelativePath   string               `json:"relative_path"`
	SourceRevision string               `json:"source_revision,omitempty"`
	Source         schema.ContentSource `json:"source"`
	Bytes          int                  `json:"bytes"`
	Content        string               `json:"content"`
	DurationMs     int64                `json:"duration_ms"`
}

// writeContentJSON writes outcome as a single JSON document.
// The content field is always present, even when empty.
func writeContentJSON(w io.Writer, outcome schema.ResolutionOutcome) error {
	req := outcome.Request
	return writeJSON(w, contentJSON{
		FilePath:       req.FilePath,
		RepoRoot:       req.RepoRoot,
		RelativePath:   req.RelativePath(),
		SourceRevision: req.SourceRevision,
		Source:         outcome.Result.Source,
		Bytes:          len(outcome.Result.Content),
		Content:        outcome.Result.Content,
		DurationMs:     outcome.Duration.Milliseconds(),
	})
}
