// Package broker fans proctoring events out to admins watching the monitor.
package broker

import (
	"context"

	"github.com/stemsi/exstem-proctor/internal/model"
)

// Bus publishes proctoring events and hands out subscriptions.
//
// Subscribe returns a channel that is closed once ctx is cancelled. Delivery
// is best-effort: a subscriber that falls behind loses events rather than
// stalling publishers.
type Bus interface {
	Publish(ctx context.Context, ev model.ProctorEvent) error
	Subscribe(ctx context.Context) (<-chan model.ProctorEvent, error)
}

// subscriberBuffer bounds how far a slow SSE client may lag.
const subscriberBuffer = 64
