// Package pubsub fans registry change notifications out to in-process
// subscribers. Publishing never blocks: a subscriber whose buffer is full
// misses the event and the broker counts it as dropped.
package pubsub

import (
	"context"
	"time"
)

// EventType says what happened to the payload.
type EventType string

const (
	CreatedEvent EventType = "created"
	UpdatedEvent EventType = "updated"
	DeletedEvent EventType = "deleted"
)

// Event is one notification. Seq increases by one per Publish on a broker,
// so a subscriber can tell whether it missed anything.
type Event[T any] struct {
	Seq       uint64
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber hands out event channels.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher accepts events.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}

// Drain returns the events already buffered on ch without waiting for more.
// It stops early if ch is closed.
func Drain[T any](ch <-chan Event[T]) []Event[T] {
	var out []Event[T]
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}
