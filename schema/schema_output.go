package schema

// BatchRow is one rendered line of a batch resolution.
type BatchRow struct {
	Index          int              `json:"index"`
	FilePath       string           `json:"file_path"`
	SourceRevision string           `json:"source_revision,omitempty"`
	Source         ContentSource    `json:"source"`
	Bytes          int              `json:"bytes"`
	Status         ResolutionStatus `json:"status"`
	Error          string           `json:"error,omitempty"`
	Content        string           `json:"content,omitempty"`
}

// BatchRows converts outcomes into rows, keeping their order.
// Content is only carried when withContent is set.
func BatchRows(outcomes []ResolutionOutcome, withContent bool) []BatchRow {
	rows := make([]BatchRow, len(outcomes))
	for i, o := range outcomes {
		rows[i] = BatchRow{
			Index:          i + 1,
			FilePath:       o.Request.FilePath,
			SourceRevision: o.Request.SourceRevision,
			Source:         o.Result.Source,
			Bytes:          len(o.Result.Content),
			Status:         o.Status(),
		}
		if o.Err != nil {
			rows[i].Error = o.Err.Error()
		}
		if withContent {
			rows[i].Content = o.Result.Content
		}
	}
	return rows
}
