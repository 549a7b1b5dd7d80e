package domain

// CreateSessionRequest is the payload for registering a new session.
// HostIP is never bound from the body; the router derives it from the
// connection peer (or a trusted forwarding header) and sets it explicitly.
type CreateSessionRequest struct {
	HostSteamID   string `json:"host_steam_id"`
	HostName      string `json:"host_name"`
	HostAvatarURL string `json:"host_avatar_url"`
	HostIP        string `json:"-"`
	HostPort      int    `json:"host_port"`

	RoomName      string `json:"room_name"`
	MapID         string `json:"map_id"`
	TrackID       string `json:"track_id"`
	IsCustomTrack bool   `json:"is_custom_track"`
	GameMode      string `json:"game_mode"`

	MaxPilots     int `json:"max_pilots"`
	MaxSpectators int `json:"max_spectators"`

	Laps               int    `json:"laps"`
	PhysicsMode        string `json:"physics_mode"`
	AllowTrackDownload *bool  `json:"allow_track_download"`
	Password           string `json:"password"`
}

// UpdateSessionRequest carries the explicit allow-list of mutable fields.
// Anything else a client sends is dropped during binding, so protected fields
// (password digest, host identity, endpoint, ids) can never be overwritten.
// Nil pointers mean "leave unchanged".
type UpdateSessionRequest struct {
	Status            *string `json:"status"`
	CurrentPilots     *int    `json:"current_pilots"`
	CurrentSpectators *int    `json:"current_spectators"`
	MapID             *string `json:"map_id"`
	TrackID           *string `json:"track_id"`
	IsCustomTrack     *bool   `json:"is_custom_track"`
	Laps              *int    `json:"laps"`
	RoomName          *string `json:"room_name"`
}

// JoinRequest is the payload for joining an existing session.
type JoinRequest struct {
	SteamID     string `json:"steam_id"`
	Name        string `json:"name"`
	AvatarURL   string `json:"avatar_url"`
	AsSpectator bool   `json:"as_spectator"`
	Password    string `json:"password"`
}

// LeaveRequest is the payload for leaving a session.
type LeaveRequest struct {
	SteamID string `json:"steam_id"`
}
