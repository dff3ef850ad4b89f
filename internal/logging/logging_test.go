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

func TestNewLevels(t *testing.T) {
	logger, err := New("")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	logger, err = New("debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = New("chatty")
	assert.Error(t, err)
}

func TestContextRoundTrip(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core).With(zap.String("run", "r1"))

	ctx := NewContext(context.Background(), logger)
	FromContext(ctx).Debug("spawned", zap.Int("pid", 42))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "spawned", entries[0].Message)
	assert.Equal(t, "r1", entries[0].ContextMap()["run"])
	assert.Equal(t, int64(42), entries[0].ContextMap()["pid"])
}

func TestFromContextWithoutLogger(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel))
}

func TestWithRun(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := WithRun(context.Background(), zap.New(core), "run-7")

	assert.Equal(t, "run-7", RunID(ctx))
	FromContext(ctx).Info("evaluated")
	require.Len(t, logs.All(), 1)
	assert.Equal(t, "run-7", logs.All()[0].ContextMap()["run"])

	assert.Equal(t, "", RunID(context.Background()))
}
