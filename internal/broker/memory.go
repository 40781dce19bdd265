package broker

import (
	"context"
	"sync"

	"github.com/stemsi/exstem-proctor/internal/model"
)

// MemoryBus is an in-process Bus used when no Redis URL is configured.
type MemoryBus struct {
	mu   sync.RWMutex
	subs map[chan model.ProctorEvent]struct{}
}

// NewMemoryBus creates an empty MemoryBus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[chan model.ProctorEvent]struct{})}
}

// Publish delivers ev to every subscriber with room in its buffer.
func (b *MemoryBus) Publish(ctx context.Context, ev model.ProctorEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Subscriber is lagging; drop for this one only.
		}
	}
	return nil
}

// Subscribe registers a new subscriber until ctx is cancelled.
func (b *MemoryBus) Subscribe(ctx context.Context) (<-chan model.ProctorEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := make(chan model.ProctorEvent, subscriberBuffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}

// Subscribers reports the current subscriber count.
func (b *MemoryBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
