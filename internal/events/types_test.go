package events

import (
	"bytes"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_Builders(t *testing.T) {
	e := NewEvent(CallFailed, "batch-1").
		WithReviewer("claude-sonnet").
		WithRound(3).
		WithPayload(map[string]any{"attempts": 3}).
		WithError("boom")

	assert.Equal(t, CallFailed, e.Type)
	assert.Equal(t, "batch-1", e.Batch)
	require.NotNil(t, e.Round)
	assert.Equal(t, 3, *e.Round)
	assert.True(t, e.IsFailure())
	assert.Equal(t, `[review.call.failed] claude-sonnet round=3 error="boom"`, e.String())
}

func TestEvent_IsFailure(t *testing.T) {
	assert.True(t, Event{Type: CallTimedOut}.IsFailure())
	assert.False(t, Event{Type: CallSucceeded}.IsFailure())
	assert.False(t, Event{Type: BatchCompleted}.IsFailure())
}

func TestBus_DeliversInOrder(t *testing.T) {
	bus := NewBus(16)
	handler, collected := CollectHandler()
	bus.Subscribe(handler)

	bus.Emit(NewEvent(BatchStarted, "b"))
	bus.Emit(NewEvent(CallStarted, "b").WithReviewer("r1"))
	bus.Emit(NewEvent(BatchCompleted, "b"))
	require.NoError(t, bus.Close())

	got := collected()
	require.Len(t, got, 3)
	assert.Equal(t, BatchStarted, got[0].Type)
	assert.Equal(t, CallStarted, got[1].Type)
	assert.Equal(t, BatchCompleted, got[2].Type)
	assert.False(t, got[0].Time.IsZero())
}

func TestBus_DropsWhenFull(t *testing.T) {
	bus := NewBus(1)
	release := make(chan struct{})
	var once sync.Once
	started := make(chan struct{})
	bus.Subscribe(func(Event) {
		once.Do(func() { close(started) })
		<-release
	})

	bus.Emit(NewEvent(BatchStarted, ""))
	<-started // dispatcher is now blocked in the handler
	bus.Emit(NewEvent(CallStarted, ""))
	bus.Emit(NewEvent(CallStarted, ""))

	assert.Equal(t, int64(1), bus.Dropped())
	close(release)
	require.NoError(t, bus.Close())
}

func TestBus_EmitAfterCloseIgnored(t *testing.T) {
	bus := NewBus(4)
	require.NoError(t, bus.Close())
	assert.NotPanics(t, func() { bus.Emit(NewEvent(BatchStarted, "")) })
	require.NoError(t, bus.Close())
}

func TestJSONEmitter_WireFormat(t *testing.T) {
	var buf bytes.Buffer
	emitter := NewJSONEmitter(&buf)

	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, emitter.Emit(Event{
		Time:     ts,
		Type:     CallSucceeded,
		Batch:    "b",
		Reviewer: "codex-gpt",
		Payload:  42,
	}))
	require.NoError(t, emitter.Emit(NewEvent(BatchCompleted, "b").WithPayload(map[string]any{"succeeded": 1})))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first, second Record
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))
	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, "review.call.succeeded", first.Type)
	assert.Equal(t, ts, first.Timestamp)
	assert.Equal(t, "codex-gpt", first.Reviewer)
	assert.Equal(t, float64(42), first.Payload["value"])

	assert.Equal(t, uint64(2), second.Seq)
	assert.Equal(t, float64(1), second.Payload["succeeded"])
	assert.Empty(t, second.Reviewer)
}
