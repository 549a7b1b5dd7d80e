// Package registry owns the authoritative table of live sessions. Every
// mutation runs inside a single mutual-exclusion lock and hands its event to
// the sink before the lock is released, so fan-out order always matches
// commit order.
package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/Georgeandrew7/DRL-Simulator-Community/internal/domain"
	"github.com/Georgeandrew7/DRL-Simulator-Community/internal/metrics"
)

// Deletion reasons recorded in metrics.
const (
	deleteReasonExplicit = "explicit"
	deleteReasonHostLeft = "host_left"
	deleteReasonExpired  = "expired"
)

// EventSink receives registry mutation events. Publish must not block;
// the registry calls it while holding its lock.
type EventSink interface {
	Publish(event domain.Event)
}

// Store is the in-memory session registry.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	clock    clockwork.Clock
	sink     EventSink
}

// NewStore creates an empty registry. sink may be nil, in which case events
// are discarded.
func NewStore(clock clockwork.Clock, sink EventSink) *Store {
	return &Store{
		sessions: make(map[string]*domain.Session),
		clock:    clock,
		sink:     sink,
	}
}

// Create registers a new session, seeds the host as its first player, and
// emits session_created. Capacity values are clamped against the hard
// ceilings; unset optional fields receive the game's defaults.
func (s *Store) Create(req domain.CreateSessionRequest) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now().UTC()

	hostName := req.HostName
	if hostName == "" {
		hostName = "Player_" + tail(req.HostSteamID, 6)
	}
	roomName := req.RoomName
	if roomName == "" {
		roomName = hostName + "'s Room"
	}

	session := &domain.Session{
		SessionID:          s.newSessionID(),
		HostSteamID:        req.HostSteamID,
		HostName:           hostName,
		HostAvatarURL:      req.HostAvatarURL,
		HostIP:             defaultString(req.HostIP, "0.0.0.0"),
		HostPort:           defaultInt(req.HostPort, 5056),
		RoomName:           roomName,
		MapID:              defaultString(req.MapID, "MP-3fd"),
		TrackID:            req.TrackID,
		IsCustomTrack:      req.IsCustomTrack,
		GameMode:           defaultString(req.GameMode, "race"),
		MaxPilots:          clamp(defaultInt(req.MaxPilots, domain.MaxPilotsCeiling), domain.MaxPilotsCeiling),
		MaxSpectators:      clamp(defaultInt(req.MaxSpectators, domain.MaxSpectatorsCeiling), domain.MaxSpectatorsCeiling),
		CurrentPilots:      1, // the host counts as a pilot
		CurrentSpectators:  0,
		Laps:               defaultInt(req.Laps, 3),
		PhysicsMode:        defaultString(req.PhysicsMode, "sim"),
		AllowTrackDownload: req.AllowTrackDownload == nil || *req.AllowTrackDownload,
		Status:             domain.StatusLobby,
		CreatedAt:          now,
		LastHeartbeat:      now,
	}

	if req.Password != "" {
		session.PasswordDigest = digest(req.Password)
	}

	session.Players = []domain.Player{{
		SteamID:   session.HostSteamID,
		Name:      session.HostName,
		AvatarURL: session.HostAvatarURL,
		IsHost:    true,
		JoinedAt:  now,
	}}

	s.sessions[session.SessionID] = session

	metrics.SessionsCreatedTotal.Inc()
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	slog.Info("Session created", "session_id", session.SessionID, "host_name", session.HostName, "game_mode", session.GameMode)

	clone := session.Clone()
	s.emit(domain.EventSessionCreated, clone)
	return clone
}

// Get returns a copy of the session, or ErrSessionNotFound.
func (s *Store) Get(id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session.Clone(), nil
}

// Update applies the allow-listed fields, touches the heartbeat, and emits
// session_updated.
func (s *Store) Update(id string, req domain.UpdateSessionRequest) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	if req.Status != nil {
		session.Status = *req.Status
	}
	if req.CurrentPilots != nil {
		session.CurrentPilots = *req.CurrentPilots
	}
	if req.CurrentSpectators != nil {
		session.CurrentSpectators = *req.CurrentSpectators
	}
	if req.MapID != nil {
		session.MapID = *req.MapID
	}
	if req.TrackID != nil {
		session.TrackID = *req.TrackID
	}
	if req.IsCustomTrack != nil {
		session.IsCustomTrack = *req.IsCustomTrack
	}
	if req.Laps != nil {
		session.Laps = *req.Laps
	}
	if req.RoomName != nil {
		session.RoomName = *req.RoomName
	}

	s.touchHeartbeat(session)

	clone := session.Clone()
	s.emit(domain.EventSessionUpdated, clone)
	return clone, nil
}

// Delete removes a session and emits session_deleted carrying only the id.
// Returns false without side effects when the id is unknown.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(id, deleteReasonExplicit)
}

// Expire removes a stale session through the same deletion path as Delete.
// Called by the liveness sweeper.
func (s *Store) Expire(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(id, deleteReasonExpired)
}

func (s *Store) deleteLocked(id, reason string) bool {
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)

	metrics.SessionsDeletedTotal.WithLabelValues(reason).Inc()
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	slog.Info("Session deleted", "session_id", id, "reason", reason)

	s.emit(domain.EventSessionDeleted, domain.SessionDeletedData{SessionID: id})
	return true
}

// Join adds a non-host player. The password digest is checked before any
// other state is touched; a capacity miss leaves all counters unchanged.
// Returns the new player and the post-join session.
func (s *Store) Join(id string, req domain.JoinRequest) (*domain.Player, *domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}

	if session.PasswordDigest != "" && digest(req.Password) != session.PasswordDigest {
		return nil, nil, domain.ErrInvalidPassword
	}

	if req.AsSpectator {
		if session.IsSpectatorFull() {
			return nil, nil, domain.ErrSessionFull
		}
		session.CurrentSpectators++
	} else {
		if session.IsFull() {
			return nil, nil, domain.ErrSessionFull
		}
		session.CurrentPilots++
	}

	name := req.Name
	if name == "" {
		name = "Player_" + tail(req.SteamID, 6)
	}

	player := domain.Player{
		SteamID:     req.SteamID,
		Name:        name,
		AvatarURL:   req.AvatarURL,
		IsSpectator: req.AsSpectator,
		JoinedAt:    s.clock.Now().UTC(),
	}
	session.Players = append(session.Players, player)

	metrics.PlayersJoinedTotal.Inc()
	slog.Info("Player joined", "session_id", id, "steam_id", player.SteamID, "as_spectator", player.IsSpectator)

	s.emit(domain.EventPlayerJoined, domain.PlayerJoinedData{SessionID: id, Player: player})
	return &player, session.Clone(), nil
}

// Leave removes the player with the given steam id. Removing the host
// cascades to full session deletion; no orphaned players remain.
func (s *Store) Leave(id, steamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return domain.ErrPlayerNotFound
	}

	for i, player := range session.Players {
		if player.SteamID != steamID {
			continue
		}

		if player.IsHost {
			s.deleteLocked(id, deleteReasonHostLeft)
			return nil
		}

		session.Players = append(session.Players[:i], session.Players[i+1:]...)
		if player.IsSpectator {
			session.CurrentSpectators--
		} else {
			session.CurrentPilots--
		}

		metrics.PlayersLeftTotal.Inc()
		slog.Info("Player left", "session_id", id, "steam_id", steamID)

		s.emit(domain.EventPlayerLeft, domain.PlayerLeftData{SessionID: id, SteamID: steamID})
		return nil
	}

	return domain.ErrPlayerNotFound
}

// Heartbeat refreshes the liveness of a session. Deliberately not broadcast:
// hosts send these every few seconds and subscribers gain nothing from them.
func (s *Store) Heartbeat(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return false
	}
	s.touchHeartbeat(session)
	metrics.HeartbeatsTotal.Inc()
	return true
}

// List returns copies of live sessions, newest first. mode filters by exact
// game-mode match when non-empty; onlyAvailable excludes sessions at pilot
// capacity.
func (s *Store) List(mode string, onlyAvailable bool) []*domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*domain.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		if mode != "" && session.GameMode != mode {
			continue
		}
		if onlyAvailable && session.IsFull() {
			continue
		}
		result = append(result, session.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// Expired returns the ids of sessions whose heartbeat is older than timeout.
func (s *Store) Expired(timeout time.Duration) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	var stale []string
	for id, session := range s.sessions {
		if now.Sub(session.LastHeartbeat) > timeout {
			stale = append(stale, id)
		}
	}
	return stale
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// touchHeartbeat keeps last_heartbeat monotonically non-decreasing even if
// the wall clock steps backwards.
func (s *Store) touchHeartbeat(session *domain.Session) {
	now := s.clock.Now().UTC()
	if now.After(session.LastHeartbeat) {
		session.LastHeartbeat = now
	}
}

// newSessionID returns a short id unique among live sessions. Ids are the
// first 8 hex chars of a v4 UUID, the format the game client already shows.
func (s *Store) newSessionID() string {
	for {
		id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		if _, exists := s.sessions[id]; !exists {
			return id
		}
	}
}

func (s *Store) emit(eventType string, data any) {
	if s.sink == nil {
		return
	}
	s.sink.Publish(domain.Event{
		Type:      eventType,
		Data:      data,
		Timestamp: s.clock.Now().UTC(),
	})
}

func digest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func defaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func clamp(v, ceiling int) int {
	if v > ceiling {
		return ceiling
	}
	return v
}
