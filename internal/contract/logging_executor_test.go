package contract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/huangsam/gitcat/internal/logging"
)

func TestLoggingExecutor(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	logger := &logging.Logger{Logger: zap.New(core)}

	mockExec := new(MockExecutor)
	failure := NewCommandError("/repo", "show", []string{"HEAD:gone"}, 128, "fatal: gone", nil)
	mockExec.On("Execute", mock.Anything, "/repo", "show", "HEAD:a.txt").Return("hello", nil).Once()
	mockExec.On("Execute", mock.Anything, "/repo", "show", "HEAD:gone").Return("", failure).Once()

	executor := NewLoggingExecutor(mockExec, logger)

	out, err := executor.Execute(context.Background(), "/repo", "show", "HEAD:a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	_, err = executor.Execute(context.Background(), "/repo", "show", "HEAD:gone")
	assert.Same(t, failure, err, "errors must pass through untouched")

	entries := recorded.All()
	require.Len(t, entries, 2)

	ok := entries[0].ContextMap()
	assert.Equal(t, "git invocation", entries[0].Message)
	assert.Equal(t, "show", ok["subcommand"])
	assert.Equal(t, int64(5), ok["bytes"])
	assert.NotEmpty(t, ok["request_id"])

	failed := entries[1].ContextMap()
	assert.Equal(t, "git invocation failed", entries[1].Message)
	assert.Equal(t, "CommandFailure", failed["kind"])
	assert.Equal(t, int64(128), failed["exit_code"])
	assert.Equal(t, false, failed["canceled"])

	mockExec.AssertExpectations(t)
}

func TestLoggingExecutor_KeepsRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	logger := &logging.Logger{Logger: zap.New(core)}

	ctx := logging.WithRequestID(context.Background())
	id, _ := logging.RequestID(ctx)

	mockExec := new(MockExecutor)
	mockExec.On("Execute", ctx, "/repo", "show", ":0:/repo/a").Return("", nil).Once()

	_, err := NewLoggingExecutor(mockExec, logger).Execute(ctx, "/repo", "show", ":0:/repo/a")
	require.NoError(t, err)
	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, id, recorded.All()[0].ContextMap()["request_id"])
}

func TestNewLoggingExecutor_NilLogger(t *testing.T) {
	mockExec := new(MockExecutor)
	mockExec.On("Execute", mock.Anything, "/repo", "status").Return("clean", nil)

	out, err := NewLoggingExecutor(mockExec, nil).Execute(context.Background(), "/repo", "status")
	require.NoError(t, err)
	assert.Equal(t, "clean", out)
}
