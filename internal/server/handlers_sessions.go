package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Georgeandrew7/DRL-Simulator-Community/internal/domain"
	apperrors "github.com/Georgeandrew7/DRL-Simulator-Community/internal/errors"
)

func (s *Server) handleListSessions(c echo.Context) error {
	mode := c.QueryParam("mode")

	// available defaults to true: a session browser wants joinable rooms.
	available := true
	if v := c.QueryParam("available"); v != "" {
		available = strings.EqualFold(v, "true")
	}

	sessions := s.store.List(mode, available)
	return c.JSON(http.StatusOK, map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

func (s *Server) handleCreateSession(c echo.Context) error {
	var req domain.CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("Invalid JSON")
	}

	if req.HostSteamID == "" {
		return apperrors.ValidationError("host_steam_id is required")
	}

	// The host endpoint is server-observed; RealIP honours X-Forwarded-For
	// when present, otherwise falls back to the connection peer.
	req.HostIP = c.RealIP()

	session := s.store.Create(req)
	return c.JSON(http.StatusCreated, session)
}

func (s *Server) handleGetSession(c echo.Context) error {
	session, err := s.store.Get(c.Param("id"))
	if err != nil {
		return apperrors.NotFoundError("Session not found").WithField("session_id", c.Param("id"))
	}
	return c.JSON(http.StatusOK, session)
}

func (s *Server) handleUpdateSession(c echo.Context) error {
	var req domain.UpdateSessionRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("Invalid JSON")
	}

	session, err := s.store.Update(c.Param("id"), req)
	if err != nil {
		return apperrors.NotFoundError("Session not found").WithField("session_id", c.Param("id"))
	}
	return c.JSON(http.StatusOK, session)
}

func (s *Server) handleDeleteSession(c echo.Context) error {
	if !s.store.Delete(c.Param("id")) {
		return apperrors.NotFoundError("Session not found").WithField("session_id", c.Param("id"))
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleHeartbeat(c echo.Context) error {
	if !s.store.Heartbeat(c.Param("id")) {
		return apperrors.NotFoundError("Session not found").WithField("session_id", c.Param("id"))
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleJoinSession(c echo.Context) error {
	sessionID := c.Param("id")

	var req domain.JoinRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("Invalid JSON")
	}

	if req.SteamID == "" {
		return apperrors.ValidationError("steam_id is required")
	}

	_, session, err := s.store.Join(sessionID, req)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return apperrors.NotFoundError("Session not found").WithField("session_id", sessionID)
	case errors.Is(err, domain.ErrInvalidPassword):
		return apperrors.ForbiddenError("Invalid password").WithField("session_id", sessionID)
	case errors.Is(err, domain.ErrSessionFull):
		return apperrors.ConflictError("Session is full").WithField("session_id", sessionID)
	case err != nil:
		return apperrors.InternalError("failed to join session", err)
	}

	// Hand back the host endpoint; gameplay traffic goes peer-to-peer from here.
	return c.JSON(http.StatusOK, map[string]any{
		"status": "joined",
		"connection": map[string]any{
			"host_ip":    session.HostIP,
			"host_port":  session.HostPort,
			"session_id": session.SessionID,
		},
		"track": map[string]any{
			"map_id":           session.MapID,
			"track_id":         session.TrackID,
			"is_custom":        session.IsCustomTrack,
			"download_allowed": session.AllowTrackDownload,
		},
	})
}

func (s *Server) handleLeaveSession(c echo.Context) error {
	sessionID := c.Param("id")

	var req domain.LeaveRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("Invalid JSON")
	}

	if req.SteamID == "" {
		return apperrors.ValidationError("steam_id is required")
	}

	if err := s.store.Leave(sessionID, req.SteamID); err != nil {
		return apperrors.NotFoundError("Player not in session").
			WithField("session_id", sessionID).
			WithField("steam_id", req.SteamID)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "left"})
}
