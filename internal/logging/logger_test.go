package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger(DefaultLevel)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	_, err = NewLogger("loud")
	assert.Error(t, err)
}

func TestWithRequestID(t *testing.T) {
	ctx := context.Background()
	_, ok := RequestID(ctx)
	assert.False(t, ok)

	ctx = WithRequestID(ctx)
	first, ok := RequestID(ctx)
	require.True(t, ok)
	assert.Len(t, first, 36)

	// An existing id is kept.
	ctx = WithRequestID(ctx)
	second, _ := RequestID(ctx)
	assert.Equal(t, first, second)
}

func TestLogger_ForContext(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	logger := &Logger{zap.New(core)}

	logger.ForContext(context.Background()).Debug("plain")
	ctx := WithRequestID(context.Background())
	logger.ForContext(ctx).Debug("tagged")

	entries := recorded.All()
	require.Len(t, entries, 2)
	assert.NotContains(t, entries[0].ContextMap(), "request_id")
	id, _ := RequestID(ctx)
	assert.Equal(t, id, entries[1].ContextMap()["request_id"])
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Debug("ignored")
	})
}
