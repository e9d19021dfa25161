package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesTopicSubscribers(t *testing.T) {
	hub := NewHub()

	runs, cleanupRuns := hub.Subscribe("payroll-runs")
	defer cleanupRuns()
	other, cleanupOther := hub.Subscribe("other")
	defer cleanupOther()

	hub.Publish("payroll-runs", Event{Event: "run.created", Data: "PR-2025-0001"})

	select {
	case ev := <-runs:
		assert.Equal(t, "payroll-runs", ev.Topic)
		assert.Equal(t, "run.created", ev.Event)
		assert.Equal(t, "PR-2025-0001", ev.Data)
	default:
		t.Fatal("expected an event on payroll-runs")
	}

	select {
	case ev := <-other:
		t.Fatalf("unexpected event on other topic: %+v", ev)
	default:
	}
}

func TestHub_CleanupIsIdempotent(t *testing.T) {
	hub := NewHub()

	_, cleanup := hub.Subscribe("payroll-runs")
	_, cleanup2 := hub.Subscribe("payroll-runs")
	require.Equal(t, 2, hub.SubscriberCount("payroll-runs"))

	cleanup()
	cleanup()
	assert.Equal(t, 1, hub.SubscriberCount("payroll-runs"))

	cleanup2()
	assert.Equal(t, 0, hub.TotalSubscribers())
}

func TestHub_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("payroll-runs")
	defer cleanup()

	for i := 0; i < hub.bufferSize+5; i++ {
		hub.Publish("payroll-runs", Event{Event: "run.transitioned"})
	}
	assert.Len(t, ch, hub.bufferSize)
}

func TestHub_CloseEndsSubscriptions(t *testing.T) {
	hub := NewHub()
	events, cleanup := hub.Subscribe("runs")

	hub.Close()

	_, ok := <-events
	assert.False(t, ok)
	assert.Equal(t, 0, hub.TotalSubscribers())
	assert.NotPanics(t, cleanup)

	late, _ := hub.Subscribe("runs")
	_, ok = <-late
	assert.False(t, ok)
}
