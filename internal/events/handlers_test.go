package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogHandler_FailureAtWarn(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	handler := LogHandler(zap.New(core))

	handler(NewEvent(CallTimedOut, "b1").WithReviewer("codex-gpt").WithError("codex-gpt: Timed out after 450s"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "codex-gpt: Timed out after 450s", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "review.call.timed_out", fields["type"])
	assert.Equal(t, "codex-gpt", fields["reviewer"])
	assert.Equal(t, "b1", fields["batch"])
}

func TestLogHandler_NormalAtDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	handler := LogHandler(zap.New(core))

	handler(NewEvent(RoundStarted, "s1").WithRound(2))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, int64(2), entries[0].ContextMap()["round"])
}

func TestLogHandler_NilLogger(t *testing.T) {
	handler := LogHandler(nil)
	assert.NotPanics(t, func() { handler(NewEvent(BatchStarted, "")) })
}
