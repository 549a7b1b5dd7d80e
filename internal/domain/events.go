package domain

import "time"

// Event types delivered to real-time subscribers.
const (
	EventInitial        = "initial"
	EventSessionCreated = "session_created"
	EventSessionUpdated = "session_updated"
	EventSessionDeleted = "session_deleted"
	EventPlayerJoined   = "player_joined"
	EventPlayerLeft     = "player_left"
	EventPong           = "pong"
)

// Event is the envelope fanned out over the real-time channel.
type Event struct {
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PlayerJoinedData is the payload of a player_joined event.
type PlayerJoinedData struct {
	SessionID string `json:"session_id"`
	Player    Player `json:"player"`
}

// PlayerLeftData is the payload of a player_left event.
type PlayerLeftData struct {
	SessionID string `json:"session_id"`
	SteamID   string `json:"steam_id"`
}

// SessionDeletedData is the payload of a session_deleted event. Only the id
// survives deletion.
type SessionDeletedData struct {
	SessionID string `json:"session_id"`
}

// SnapshotData is the payload of the initial event sent to a subscriber on
// connect.
type SnapshotData struct {
	Sessions []*Session `json:"sessions"`
}
