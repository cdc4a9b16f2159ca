package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"WARN":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		" error ": zapcore.ErrorLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok, s)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestConfigure_UnknownLevel asserts that Configure rejects unknown names.
func TestConfigure_UnknownLevel(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Configure("loud"), ErrUnknownLevel)
}

// TestContextHelpers checks that WithName and WithKV decorate the context logger.
func TestContextHelpers(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())

	ctx = WithName(ctx, "loop")
	ctx = WithKV(ctx, "uptime_ms", 42)

	InfoKV(ctx, "tick", "tasks", 2)

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "loop", entries[0].LoggerName)
	require.Equal(t, "tick", entries[0].Message)
	require.EqualValues(t, 42, entries[0].ContextMap()["uptime_ms"])
	require.EqualValues(t, 2, entries[0].ContextMap()["tasks"])
}

// TestFromContext_FallsBackToGlobal ensures a bare context yields the global logger.
func TestFromContext_FallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}
