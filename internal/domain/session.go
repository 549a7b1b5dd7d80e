package domain

import (
	"encoding/json"
	"time"
)

// Session status values.
const (
	StatusLobby    = "lobby"
	StatusInRace   = "in_race"
	StatusFinished = "finished"
)

// Hard capacity ceilings. Create clamps client-supplied values against these.
const (
	MaxPilotsCeiling     = 6
	MaxSpectatorsCeiling = 15
)

// Player is a participant in a session. The host is always the first entry
// of Session.Players and is never reassigned after creation.
type Player struct {
	SteamID     string    `json:"steam_id"`
	Name        string    `json:"name"`
	AvatarURL   string    `json:"avatar_url"`
	IsHost      bool      `json:"is_host"`
	IsSpectator bool      `json:"is_spectator"`
	JoinedAt    time.Time `json:"joined_at"`
}

// Session is one advertised multiplayer lobby. The coordinator only hands out
// the host endpoint; race traffic flows peer-to-peer.
type Session struct {
	SessionID     string `json:"session_id"`
	HostSteamID   string `json:"host_steam_id"`
	HostName      string `json:"host_name"`
	HostAvatarURL string `json:"host_avatar_url"`
	HostIP        string `json:"host_ip"`
	HostPort      int    `json:"host_port"`

	RoomName      string `json:"room_name"`
	MapID         string `json:"map_id"`
	TrackID       string `json:"track_id"`
	IsCustomTrack bool   `json:"is_custom_track"`
	GameMode      string `json:"game_mode"`

	MaxPilots         int `json:"max_pilots"`
	MaxSpectators     int `json:"max_spectators"`
	CurrentPilots     int `json:"current_pilots"`
	CurrentSpectators int `json:"current_spectators"`

	Laps               int    `json:"laps"`
	PhysicsMode        string `json:"physics_mode"`
	AllowTrackDownload bool   `json:"allow_track_download"`

	// PasswordDigest is the SHA-256 hex digest of the session password.
	// Never serialized; clients only see the derived has_password flag.
	PasswordDigest string `json:"-"`

	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	LastHeartbeat time.Time `json:"last_heartbeat"`

	Players []Player `json:"players"`
}

// MarshalJSON adds the derived has_password flag while keeping the digest out
// of every serialized form.
func (s Session) MarshalJSON() ([]byte, error) {
	type alias Session
	return json.Marshal(struct {
		alias
		HasPassword bool `json:"has_password"`
	}{
		alias:       alias(s),
		HasPassword: s.PasswordDigest != "",
	})
}

// IsFull reports whether the pilot capacity is exhausted.
func (s *Session) IsFull() bool {
	return s.CurrentPilots >= s.MaxPilots
}

// IsSpectatorFull reports whether the spectator capacity is exhausted.
func (s *Session) IsSpectatorFull() bool {
	return s.CurrentSpectators >= s.MaxSpectators
}

// Clone returns a deep copy safe to use outside the registry lock.
func (s *Session) Clone() *Session {
	out := *s
	out.Players = make([]Player, len(s.Players))
	copy(out.Players, s.Players)
	return &out
}
