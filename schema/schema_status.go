package schema

import "time"

// RunStoreStatus represents the status of the run tracking store.
type RunStoreStatus struct {
	Backend          string           `json:"backend"`
	Connected        bool             `json:"connected"`
	TotalRuns        int              `json:"total_runs"`
	LastRunID        int64            `json:"last_run_id"`
	LastRunTime      time.Time        `json:"last_run_time"`
	OldestRunTime    time.Time        `json:"oldest_run_time"`
	TotalResolutions int              `json:"total_resolutions"`
	FailedCount      int              `json:"failed_resolutions"`
	TableSizes       map[string]int64 `json:"table_sizes"`
}
