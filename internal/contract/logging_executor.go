package contract

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/huangsam/gitcat/internal/logging"
)

// LoggingExecutor traces every invocation of the wrapped Executor at debug level.
// Results pass through untouched.
type LoggingExecutor struct {
	next   Executor
	logger *logging.Logger
}

var _ Executor = &LoggingExecutor{} // Compile-time check

// NewLoggingExecutor wraps next with debug tracing.
func NewLoggingExecutor(next Executor, logger *logging.Logger) *LoggingExecutor {
	if logger == nil {
		logger = logging.Nop()
	}
	return &LoggingExecutor{next: next, logger: logger}
}

// Execute implements the Executor interface.
func (e *LoggingExecutor) Execute(ctx context.Context, dir string, subcommand string, args ...string) (string, error) {
	ctx = logging.WithRequestID(ctx)
	start := time.Now()
	out, err := e.next.Execute(ctx, dir, subcommand, args...)

	fields := []zap.Field{
		zap.String("dir", dir),
		zap.String("subcommand", subcommand),
		zap.Strings("args", args),
		zap.Duration("duration", time.Since(start)),
	}
	log := e.logger.ForContext(ctx)
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) {
			fields = append(fields,
				zap.Stringer("kind", cmdErr.Kind),
				zap.Int("exit_code", cmdErr.ExitCode),
				zap.Bool("canceled", cmdErr.Canceled()),
			)
		}
		log.Debug("git invocation failed", append(fields, zap.Error(err))...)
		return out, err
	}
	log.Debug("git invocation", append(fields, zap.Int("bytes", len(out)))...)
	return out, nil
}
