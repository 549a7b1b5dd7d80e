package broadcast

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Georgeandrew7/DRL-Simulator-Community/internal/domain"
	"github.com/Georgeandrew7/DRL-Simulator-Community/internal/registry"
)

// testHub wires a hub to a real registry store and a test WebSocket server.
// Returns the hub, the store, and a dial function for clients.
func testHub(t *testing.T) (*Hub, *registry.Store, func() *ws.Conn) {
	t.Helper()

	clock := clockwork.NewRealClock()

	var store *registry.Store
	hub := NewHub(func() []*domain.Session {
		return store.List("", false)
	}, clock, 50)
	store = registry.NewStore(clock, hub)

	t.Cleanup(func() { hub.Stop() })

	upgrader := ws.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		if err := hub.Register(conn); err != nil {
			return
		}

		// Read loop: answer pings, detect disconnects
		go func() {
			defer hub.Unregister(conn)
			for {
				_, data, err := conn.ReadMessage()
				if err != nil {
					break
				}
				var msg struct {
					Type string `json:"type"`
				}
				if json.Unmarshal(data, &msg) == nil && msg.Type == "ping" {
					hub.SendPong(conn)
				}
			}
		}()
	}))
	t.Cleanup(func() { server.Close() })

	dial := func() *ws.Conn {
		t.Helper()
		url := "ws" + strings.TrimPrefix(server.URL, "http")
		conn, _, err := ws.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		return conn
	}

	return hub, store, dial
}

func readEvent(t *testing.T, conn *ws.Conn) domain.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event domain.Event
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

func waitForCount(hub *Hub, expected int) bool {
	for range 200 {
		if hub.Count() == expected {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestHub_InitialSnapshotOnConnect(t *testing.T) {
	_, store, dial := testHub(t)

	created := store.Create(domain.CreateSessionRequest{HostSteamID: "S1"})

	conn := dial()
	event := readEvent(t, conn)

	assert.Equal(t, domain.EventInitial, event.Type)

	data, err := json.Marshal(event.Data)
	require.NoError(t, err)
	var snapshot domain.SnapshotData
	require.NoError(t, json.Unmarshal(data, &snapshot))
	require.Len(t, snapshot.Sessions, 1)
	assert.Equal(t, created.SessionID, snapshot.Sessions[0].SessionID)
}

func TestHub_FanOutToAllSubscribers(t *testing.T) {
	hub, store, dial := testHub(t)

	conn1 := dial()
	conn2 := dial()
	require.True(t, waitForCount(hub, 2))
	assert.Equal(t, domain.EventInitial, readEvent(t, conn1).Type)
	assert.Equal(t, domain.EventInitial, readEvent(t, conn2).Type)

	created := store.Create(domain.CreateSessionRequest{HostSteamID: "S1"})

	for _, conn := range []*ws.Conn{conn1, conn2} {
		event := readEvent(t, conn)
		assert.Equal(t, domain.EventSessionCreated, event.Type)

		data, err := json.Marshal(event.Data)
		require.NoError(t, err)
		var session domain.Session
		require.NoError(t, json.Unmarshal(data, &session))
		assert.Equal(t, created.SessionID, session.SessionID)
	}
}

func TestHub_MutationOrderPreservedPerSubscriber(t *testing.T) {
	hub, store, dial := testHub(t)

	conn := dial()
	require.True(t, waitForCount(hub, 1))
	assert.Equal(t, domain.EventInitial, readEvent(t, conn).Type)

	created := store.Create(domain.CreateSessionRequest{HostSteamID: "S1"})
	_, _, err := store.Join(created.SessionID, domain.JoinRequest{SteamID: "S2"})
	require.NoError(t, err)
	require.NoError(t, store.Leave(created.SessionID, "S2"))
	require.True(t, store.Delete(created.SessionID))

	expected := []string{
		domain.EventSessionCreated,
		domain.EventPlayerJoined,
		domain.EventPlayerLeft,
		domain.EventSessionDeleted,
	}
	for _, want := range expected {
		assert.Equal(t, want, readEvent(t, conn).Type)
	}
}

func TestHub_PingPong(t *testing.T) {
	hub, _, dial := testHub(t)

	conn := dial()
	require.True(t, waitForCount(hub, 1))
	assert.Equal(t, domain.EventInitial, readEvent(t, conn).Type)

	require.NoError(t, conn.WriteMessage(ws.TextMessage, []byte(`{"type":"ping"}`)))
	assert.Equal(t, domain.EventPong, readEvent(t, conn).Type)
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	hub, store, dial := testHub(t)

	conn := dial()
	require.True(t, waitForCount(hub, 1))

	conn.Close()
	require.True(t, waitForCount(hub, 0))

	// a mutation after disconnect must not fail
	store.Create(domain.CreateSessionRequest{HostSteamID: "S1"})
}

func TestHub_SlowSubscriberEvicted(t *testing.T) {
	hub, store, dial := testHub(t)

	conn := dial()
	require.True(t, waitForCount(hub, 1))

	// Replace the subscriber's writer with one that can never accept a
	// message, simulating a wedged connection with a full buffer.
	hub.mu.Lock()
	for c := range hub.subscribers {
		hub.subscribers[c] = &subscriberWriter{
			connection:  hub.subscribers[c].connection,
			clock:       hub.clock,
			sendChannel: make(chan []byte),
			doneChannel: make(chan struct{}),
		}
	}
	hub.mu.Unlock()

	store.Create(domain.CreateSessionRequest{HostSteamID: "S1"})

	require.True(t, waitForCount(hub, 0), "slow subscriber should be dropped")
	_ = conn
}

func TestHub_MaxSubscribers(t *testing.T) {
	clock := clockwork.NewRealClock()

	var store *registry.Store
	hub := NewHub(func() []*domain.Session { return store.List("", false) }, clock, 1)
	store = registry.NewStore(clock, hub)
	t.Cleanup(func() { hub.Stop() })

	upgrader := ws.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	registerErr := make(chan error, 2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		registerErr <- hub.Register(conn)
	}))
	t.Cleanup(func() { server.Close() })

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn1, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn1.Close() })
	require.NoError(t, <-registerErr)

	conn2, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn2.Close() })
	assert.Error(t, <-registerErr)
	assert.Equal(t, 1, hub.Count())
}
