package notify

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wsPair dials a real websocket connection through a test server and
// returns both ends
func wsPair(t *testing.T) (client, server *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	serverConns := make(chan *websocket.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverConns <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	select {
	case server = <-serverConns:
	case <-time.After(time.Second):
		t.Fatal("server connection never arrived")
	}
	t.Cleanup(func() { server.Close() })

	return client, server
}

func TestHubPushDeliversToUser(t *testing.T) {
	hub := NewHub()
	client, server := wsPair(t)

	hub.Add(42, server)
	hub.Push(42, map[string]interface{}{"unread_count": 3})

	var payload map[string]interface{}
	client.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, client.ReadJSON(&payload))
	assert.Equal(t, float64(3), payload["unread_count"])
}

func TestHubPushToUnknownUserIsNoop(t *testing.T) {
	hub := NewHub()
	// Must not panic or block
	hub.Push(999, map[string]string{"hello": "nobody"})
}

func TestHubFansOutToAllTabs(t *testing.T) {
	hub := NewHub()
	client1, server1 := wsPair(t)
	client2, server2 := wsPair(t)

	hub.Add(7, server1)
	hub.Add(7, server2)
	hub.Push(7, map[string]interface{}{"unread_count": 1})

	for _, client := range []*websocket.Conn{client1, client2} {
		var payload map[string]interface{}
		client.SetReadDeadline(time.Now().Add(time.Second))
		require.NoError(t, client.ReadJSON(&payload))
		assert.Equal(t, float64(1), payload["unread_count"])
	}
}

func TestHubRemoveStopsDelivery(t *testing.T) {
	hub := NewHub()
	client, server := wsPair(t)

	hub.Add(42, server)
	hub.Remove(42, server)
	hub.Push(42, map[string]interface{}{"unread_count": 1})

	client.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	var payload map[string]interface{}
	assert.Error(t, client.ReadJSON(&payload), "removed connection must not receive pushes")
}

func TestHubDropsDeadConnections(t *testing.T) {
	hub := NewHub()
	_, server := wsPair(t)

	hub.Add(42, server)
	server.Close()

	// The write fails and the connection is discarded
	hub.Push(42, map[string]interface{}{"unread_count": 1})

	hub.mu.Lock()
	_, exists := hub.conns[42]
	hub.mu.Unlock()
	assert.False(t, exists)
}

func TestHubUsersAreIsolated(t *testing.T) {
	hub := NewHub()
	clientA, serverA := wsPair(t)
	_, serverB := wsPair(t)

	hub.Add(1, serverA)
	hub.Add(2, serverB)

	hub.Push(2, map[string]interface{}{"unread_count": 5})

	clientA.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	var payload map[string]interface{}
	assert.Error(t, clientA.ReadJSON(&payload), "user 1 must not see user 2's pushes")
}
