package audit

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"carrental/internal/database/dbtest"
	"carrental/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderPersistsEntry(t *testing.T) {
	db := dbtest.Open(t)
	rec := NewRecorder(db, nil, nil)

	ctx := WithActor(context.Background(), 77)
	rec.Record(ctx, Event{
		Action:     "reservation.created",
		EntityType: "reservation",
		EntityID:   12,
		Payload:    map[string]any{"vehicle_id": 3},
	})
	rec.Wait()

	var entries []domain.AuditEntry
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, "reservation.created", entries[0].Action)
	assert.Equal(t, int64(12), entries[0].EntityID)
	assert.Equal(t, int64(77), entries[0].ActorID)
	assert.JSONEq(t, `{"vehicle_id":3}`, string(entries[0].Payload))
}

func TestRecorderSurvivesCancelledContext(t *testing.T) {
	db := dbtest.Open(t)
	rec := NewRecorder(db, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Record(ctx, Event{Action: "rental.completed", EntityType: "rental", EntityID: 1})
	rec.Wait()

	var n int64
	require.NoError(t, db.Model(&domain.AuditEntry{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestRecorderDoesNotPanicOnStorageFailure(t *testing.T) {
	db := dbtest.Open(t)
	require.NoError(t, db.Migrator().DropTable(&domain.AuditEntry{}))

	rec := NewRecorder(db, nil, nil)
	assert.NotPanics(t, func() {
		rec.Record(context.Background(), Event{Action: "rental.cancelled", EntityType: "rental", EntityID: 2})
		rec.Wait()
	})
}

func TestHubStreamsEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := dbtest.Open(t)
	hub := NewHub()
	t.Cleanup(hub.Close)

	r := gin.New()
	NewWSHandler(hub).RegisterRoutes(r.Group(""))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	rec := NewRecorder(db, hub, nil)
	rec.Record(context.Background(), Event{Action: "reservation.picked_up", EntityType: "reservation", EntityID: 9})
	rec.Wait()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal(raw, &ev))
	assert.Equal(t, "reservation.picked_up", ev.Action)
	assert.Equal(t, int64(9), ev.EntityID)
}

func TestActorFromEmptyContext(t *testing.T) {
	assert.Zero(t, ActorFrom(context.Background()))
}
