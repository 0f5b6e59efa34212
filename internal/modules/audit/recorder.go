package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"carrental/internal/domain"

	"gorm.io/gorm"
)

// Recorder persists events as audit_entries rows and pushes them to live
// subscribers. Writes happen on their own goroutine.
type Recorder struct {
	db  *gorm.DB
	hub *Hub
	log *slog.Logger
	wg  sync.WaitGroup
}

func NewRecorder(db *gorm.DB, hub *Hub, log *slog.Logger) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{db: db, hub: hub, log: log}
}

func (r *Recorder) Record(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	if ev.ActorID == 0 {
		ev.ActorID = ActorFrom(ctx)
	}

	// the request context is cancelled once the response is written
	ctx = context.WithoutCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error("audit record panicked", "action", ev.Action, "panic", rec)
			}
		}()
		r.write(ctx, ev)
	}()
}

func (r *Recorder) write(ctx context.Context, ev Event) {
	entry := domain.AuditEntry{
		Action:     ev.Action,
		EntityType: ev.EntityType,
		EntityID:   ev.EntityID,
		ActorID:    ev.ActorID,
		CreatedAt:  ev.At,
	}
	if ev.Payload != nil {
		raw, err := json.Marshal(ev.Payload)
		if err != nil {
			r.log.Error("audit payload encode failed", "action", ev.Action, "error", err)
		} else {
			entry.Payload = raw
		}
	}

	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		r.log.Error("audit entry write failed",
			"action", ev.Action,
			"entity_type", ev.EntityType,
			"entity_id", ev.EntityID,
			"error", err,
		)
	}

	if r.hub != nil {
		r.hub.Broadcast(ev)
	}
}

// Wait blocks until every queued event has been written.
func (r *Recorder) Wait() {
	r.wg.Wait()
}
