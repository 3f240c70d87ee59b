package output

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/rbright/livescribe/internal/transcript"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestHubBroadcastsTranscriptEvents(t *testing.T) {
	hub := NewHub(nil)
	hub.SetSession("session-1")
	conn := dialHub(t, hub)

	hub.Preview(transcript.Utterance{Index: 0, Text: "hel"})
	hub.Finalize(transcript.Utterance{Index: 0, Text: "hello", Final: true})
	hub.Status("stopped")

	require.Equal(t, Event{Type: EventPreview, Index: 0, Text: "hel", Session: "session-1"}, readEvent(t, conn))
	require.Equal(t, Event{Type: EventFinal, Index: 0, Text: "hello", Session: "session-1"}, readEvent(t, conn))
	require.Equal(t, Event{Type: EventStatus, Text: "stopped", Session: "session-1"}, readEvent(t, conn))
}

func TestHubDropsDisconnectedClient(t *testing.T) {
	hub := NewHub(nil)
	conn := dialHub(t, hub)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)

	require.NotPanics(t, func() { hub.Status("nobody listening") })
}

func TestHubCloseDisconnectsClients(t *testing.T) {
	hub := NewHub(nil)
	conn := dialHub(t, hub)

	hub.Close()
	require.Zero(t, hub.Clients())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
}
