package schema

import "time"

// RunRecord represents a row from the gitcat_runs table.
type RunRecord struct {
	RunID         int64
	Command       string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalFiles    int32
	FailedFiles   int32
	ConfigParams  *string
}

// ResolutionRecord represents a row from the gitcat_resolutions table.
type ResolutionRecord struct {
	RunID          int64
	FilePath       string
	RepoRoot       string
	SourceRevision *string
	Source         string
	Status         string
	ByteCount      int64
	ErrorMessage   *string
	ResolveTimeMs  int32
	ResolvedAt     time.Time
}

// NewResolutionRecord converts an outcome into a storable record.
func NewResolutionRecord(runID int64, o ResolutionOutcome, at time.Time) ResolutionRecord {
	rec := ResolutionRecord{
		RunID:         runID,
		FilePath:      o.Request.FilePath,
		RepoRoot:      o.Request.RepoRoot,
		Source:        string(o.Result.Source),
		Status:        string(o.Status()),
		ByteCount:     int64(len(o.Result.Content)),
		ResolveTimeMs: int32(o.Duration.Milliseconds()),
		ResolvedAt:    at,
	}
	if o.Request.SourceRevision != "" {
		rev := o.Request.SourceRevision
		rec.SourceRevision = &rev
	}
	if o.Err != nil {
		msg := o.Err.Error()
		rec.ErrorMessage = &msg
	}
	return rec
}
