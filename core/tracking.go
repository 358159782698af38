package core

import (
	"fmt"
	"time"

	"github.com/huangsam/gitcat/internal/contract"
	"github.com/huangsam/gitcat/schema"
)

// trackRun records a finished run and its outcomes when run tracking is configured.
// Tracking failures are reported as warnings and never fail the command.
func trackRun(mgr contract.StoreManager, command string, cfg *contract.Config, start time.Time, outcomes []schema.ResolutionOutcome) {
	if mgr == nil {
		return
	}
	store := mgr.GetRunStore()
	if store == nil {
		return
	}

	configParams := map[string]any{
		"repo_path": cfg.RepoPath,
		"revision":  cfg.Revision,
		"workers":   cfg.Workers,
		"timeout":   cfg.Timeout.String(),
		"output":    string(cfg.Output),
	}
	runID, err := store.BeginRun(command, start, configParams)
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return
	}

	resolvedAt := time.Now()
	for _, o := range outcomes {
		if err := store.RecordResolution(schema.NewResolutionRecord(runID, o, resolvedAt)); err != nil {
			logTrackingError(o.Request.FilePath, err)
		}
	}

	if err := store.EndRun(runID, time.Now(), len(outcomes), countFailed(outcomes)); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// logTrackingError logs a failure to record one resolution.
func logTrackingError(path string, err error) {
	contract.LogWarn(fmt.Sprintf("Run tracking failed for %s", path), err)
}
