package ws_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kopisahaja/kopisahaja/pkg/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestHub spins up a hub behind an httptest server. Clients that send
// "join:<room>" are subscribed to that room.
func newTestHub(t *testing.T) (*ws.Hub, string) {
	t.Helper()

	hub := ws.NewHub()
	hub.OnMessage = func(h *ws.Hub, msg ws.Message) {
		if room, ok := strings.CutPrefix(string(msg.Data), "join:"); ok {
			h.Join(msg.Client, room)
		}
	}
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws.Upgrade(w, r, hub)
	}))
	t.Cleanup(srv.Close)

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readOne(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	return string(data)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestBroadcastReachesEveryClient(t *testing.T) {
	hub, url := newTestHub(t)

	a := dial(t, url)
	b := dial(t, url)
	waitFor(t, func() bool { return hub.ClientCount() == 2 })

	hub.Broadcast <- []byte("hello")

	assert.Equal(t, "hello", readOne(t, a))
	assert.Equal(t, "hello", readOne(t, b))
}

func TestRoomMessageReachesOnlyMembers(t *testing.T) {
	hub, url := newTestHub(t)

	member := dial(t, url)
	outsider := dial(t, url)
	waitFor(t, func() bool { return hub.ClientCount() == 2 })

	require.NoError(t, member.WriteMessage(websocket.TextMessage, []byte("join:order-1")))
	// Give the join a moment to pass through the event loop.
	time.Sleep(50 * time.Millisecond)

	hub.ToRoom("order-1", []byte("update"))
	assert.Equal(t, "update", readOne(t, member))

	outsider.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := outsider.ReadMessage()
	assert.Error(t, err, "outsider should not receive room traffic")
}

func TestToUnknownRoomIsNoOp(t *testing.T) {
	hub, url := newTestHub(t)

	conn := dial(t, url)
	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	hub.ToRoom("nobody-home", []byte("lost"))
	hub.Broadcast <- []byte("still alive")

	assert.Equal(t, "still alive", readOne(t, conn))
}
