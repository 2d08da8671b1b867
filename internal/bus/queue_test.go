package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailstop/internal/event"
	"trailstop/internal/model"
)

func TestQueuePublishAndRun(t *testing.T) {
	q := NewQueue(4)

	require.NoError(t, q.TryPublish(event.Start{}))
	require.NoError(t, q.TryPublish(event.BarReceived{Bar: model.Bar{Close: 100}}))
	require.NoError(t, q.TryPublish(event.Stop{}))
	q.Close()

	var got []event.Event
	done := make(chan struct{})
	go func() {
		defer close(done)
		q.Run(context.Background(), func(e event.Event) {
			got = append(got, e)
		})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("queue did not drain")
	}

	require.Len(t, got, 3)
	assert.IsType(t, event.Start{}, got[0])
	assert.IsType(t, event.BarReceived{}, got[1])
	assert.IsType(t, event.Stop{}, got[2])
}

func TestQueueFull(t *testing.T) {
	q := NewQueue(1)

	require.NoError(t, q.TryPublish(event.Start{}))
	assert.ErrorIs(t, q.TryPublish(event.Stop{}), ErrQueueFull)
}

func TestQueueClosed(t *testing.T) {
	q := NewQueue(1)
	q.Close()
	q.Close() // safe to close twice

	assert.ErrorIs(t, q.TryPublish(event.Start{}), ErrQueueClosed)
}

func TestQueueRunStopsOnContext(t *testing.T) {
	q := NewQueue(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		q.Run(ctx, func(event.Event) {})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("run did not observe context cancellation")
	}
}
