package broker

import (
	"context"
	"testing"
	"time"

	"github.com/stemsi/exstem-proctor/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewMemoryBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := bus.Subscribe(ctx)
	require.NoError(t, err)
	b, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	ev := model.ProctorEvent{Type: model.ProctorEventWarning, UserName: "Ann", WarningCount: 1}
	require.NoError(t, bus.Publish(context.Background(), ev))

	for _, ch := range []<-chan model.ProctorEvent{a, b} {
		select {
		case got := <-ch:
			assert.Equal(t, ev, got)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestMemoryBusUnsubscribesOnCancel(t *testing.T) {
	bus := NewMemoryBus()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := bus.Subscribe(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, bus.Subscribers())

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
	assert.Equal(t, 0, bus.Subscribers())
}

func TestMemoryBusDropsForSlowSubscriber(t *testing.T) {
	bus := NewMemoryBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	for i := 0; i < subscriberBuffer+10; i++ {
		require.NoError(t, bus.Publish(context.Background(), model.ProctorEvent{WarningCount: i}))
	}

	assert.Len(t, ch, subscriberBuffer)
}
