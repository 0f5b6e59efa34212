package audit

import (
	"context"
	"time"
)

// Event is one lifecycle fact worth keeping a trail of.
type Event struct {
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   int64          `json:"entity_id"`
	ActorID    int64          `json:"actor_id,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
	At         time.Time      `json:"at"`
}

// Sink receives events fire-and-forget. Implementations must not block the
// caller on storage and must never fail a booking.
type Sink interface {
	Record(ctx context.Context, ev Event)
}

type nopSink struct{}

func (nopSink) Record(context.Context, Event) {}

// Nop discards every event.
func Nop() Sink { return nopSink{} }

type actorKey struct{}

func WithActor(ctx context.Context, actorID int64) context.Context {
	return context.WithValue(ctx, actorKey{}, actorID)
}

func ActorFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(actorKey{}).(int64)
	return id
}
