package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkratz/huntboard/go/internal/events"
	"github.com/pkratz/huntboard/go/internal/models"
)

func startTestManager(t *testing.T) (*ConnectionManager, *httptest.Server) {
	t.Helper()

	cm := NewConnectionManager(DefaultConnectionConfig())

	ctx, cancel := context.WithCancel(context.Background())
	go cm.Start(ctx)
	t.Cleanup(cancel)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		eventID, err := uuid.Parse(r.URL.Query().Get("event_id"))
		if err != nil {
			http.Error(w, "bad event_id", http.StatusBadRequest)
			return
		}
		if _, err := cm.UpgradeConnection(w, r, eventID); err != nil {
			t.Logf("upgrade failed: %v", err)
		}
	}))
	t.Cleanup(srv.Close)

	return cm, srv
}

func dialSubscriber(t *testing.T, srv *httptest.Server, eventID uuid.UUID) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?event_id=" + eventID.String()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForSubscribers(t *testing.T, cm *ConnectionManager, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(cm.ActiveEvents()) >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d subscribed events", want)
}

func snapshotEvent(t *testing.T, eventID uuid.UUID) *ScoreboardEvent {
	t.Helper()

	event, err := NewScoreboardSnapshotEvent(&models.Scoreboard{
		EventID:    eventID,
		Entries:    []models.ScoreboardEntry{{Rank: 1, TeamName: "Rubber Ducks", TotalPoints: 214}},
		ComputedAt: time.Now(),
	}, time.Now())
	require.NoError(t, err)
	return event
}

func TestBroadcastReachesSubscriber(t *testing.T) {
	cm, srv := startTestManager(t)
	eventID := uuid.New()

	conn := dialSubscriber(t, srv, eventID)
	waitForSubscribers(t, cm, 1)

	cm.BroadcastToEvent(eventID, snapshotEvent(t, eventID))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got ScoreboardEvent
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, events.TypeScoreboardUpdated, got.Type)
	assert.Equal(t, eventID.String(), got.EventID)

	var board models.Scoreboard
	require.NoError(t, json.Unmarshal(got.Data, &board))
	require.Len(t, board.Entries, 1)
	assert.Equal(t, 214, board.Entries[0].TotalPoints)
}

func TestBroadcastIsScopedToEvent(t *testing.T) {
	cm, srv := startTestManager(t)
	eventA := uuid.New()
	eventB := uuid.New()

	connA := dialSubscriber(t, srv, eventA)
	connB := dialSubscriber(t, srv, eventB)
	waitForSubscribers(t, cm, 2)

	cm.BroadcastToEvent(eventA, snapshotEvent(t, eventA))

	connA.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := connA.ReadMessage()
	require.NoError(t, err)

	connB.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	_, _, err = connB.ReadMessage()
	assert.Error(t, err, "subscriber of another event must not receive the push")
}

func TestRefreshCommandReturnsSnapshot(t *testing.T) {
	cm, srv := startTestManager(t)
	eventID := uuid.New()

	cm.SetRefreshFunc(func(_ context.Context, id uuid.UUID) (*ScoreboardEvent, error) {
		return snapshotEvent(t, id), nil
	})

	conn := dialSubscriber(t, srv, eventID)
	waitForSubscribers(t, cm, 1)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"refresh"}`)))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got ScoreboardEvent
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, eventID.String(), got.EventID)
	assert.Equal(t, events.TypeScoreboardUpdated, got.Type)
}

func TestMalformedClientMessageIsIgnored(t *testing.T) {
	cm, srv := startTestManager(t)
	eventID := uuid.New()

	conn := dialSubscriber(t, srv, eventID)
	waitForSubscribers(t, cm, 1)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	// The connection must stay subscribed and still receive broadcasts.
	cm.BroadcastToEvent(eventID, snapshotEvent(t, eventID))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	require.NoError(t, err)
}

func TestConnectionStats(t *testing.T) {
	cm, srv := startTestManager(t)
	eventID := uuid.New()

	dialSubscriber(t, srv, eventID)
	dialSubscriber(t, srv, eventID)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cm.GetConnectionStats()["total_connections"] == 2 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	stats := cm.GetConnectionStats()
	assert.Equal(t, 2, stats["total_connections"])
	assert.Equal(t, 1, stats["active_events"])
}
