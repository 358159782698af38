package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/huangsam/gitcat/internal/logging"
	"github.com/huangsam/gitcat/schema"
)

// gitStateFiles are the entries under .git whose changes can alter a resolution.
var gitStateFiles = map[string]struct{}{
	"index": {},
	"HEAD":  {},
}

// EmitFunc receives each distinct result produced while watching.
type EmitFunc func(schema.ContentResult, error)

// Watch resolves req once, then again after every burst of changes to the
// file or to the repository's index, calling emit only when the result
// differs from the previous one. It returns nil when ctx is done.
func Watch(ctx context.Context, resolver ContentResolver, req schema.ContentRequest, debounce time.Duration, logger *logging.Logger, emit EmitFunc) error {
	if req.IsEmpty() {
		return errors.New("watch needs both a file path and a repository root")
	}
	if logger == nil {
		logger = logging.Nop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	for _, target := range watchTargets(req) {
		if err := watcher.Add(target); err != nil {
			logger.Warn("watcher add failed", zap.String("path", target), zap.Error(err))
		}
	}
	if len(watcher.WatchList()) == 0 {
		return errors.New("nothing to watch for " + req.FilePath)
	}

	publish := newPublisher(ctx, resolver, req, emit)
	publish()

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isRelevantEvent(req, ev) {
				continue
			}
			logger.Debug("watch event", zap.String("path", ev.Name), zap.Stringer("op", ev.Op))
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		case <-timer.C:
			publish()
		}
	}
}

// newPublisher returns a function that resolves req and emits the result
// when it differs from the last one emitted.
func newPublisher(ctx context.Context, resolver ContentResolver, req schema.ContentRequest, emit EmitFunc) func() {
	var (
		emitted bool
		lastRes schema.ContentResult
		lastErr string
	)
	return func() {
		res, err := resolver.Resolve(ctx, req)
		if ctx.Err() != nil {
			return
		}
		errText := ""
		if err != nil {
			errText = err.Error()
		}
		if emitted && errText == lastErr && res == lastRes {
			return
		}
		emitted, lastRes, lastErr = true, res, errText
		emit(res, err)
	}
}

// watchTargets lists the directories whose events can change the result.
func watchTargets(req schema.ContentRequest) []string {
	var targets []string
	if info, err := os.Stat(filepath.Dir(req.FilePath)); err == nil && info.IsDir() {
		targets = append(targets, filepath.Dir(req.FilePath))
	}
	gitDir := filepath.Join(req.RepoRoot, ".git")
	if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
		targets = append(targets, gitDir)
	}
	return targets
}

// isRelevantEvent reports whether ev touches the watched file or git state.
func isRelevantEvent(req schema.ContentRequest, ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) == filepath.Clean(req.FilePath) {
		return true
	}
	if filepath.Dir(ev.Name) == filepath.Join(req.RepoRoot, ".git") {
		_, ok := gitStateFiles[filepath.Base(ev.Name)]
		return ok
	}
	return false
}
