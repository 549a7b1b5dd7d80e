package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/Georgeandrew7/DRL-Simulator-Community/internal/errors"
)

type checkTrackRequest struct {
	MapID    string `json:"map_id"`
	TrackID  string `json:"track_id"`
	FileHash string `json:"file_hash"`
}

func (s *Server) handleListTracks(c echo.Context) error {
	list := s.catalog.List(c.QueryParam("map"))
	return c.JSON(http.StatusOK, map[string]any{
		"tracks": list,
		"count":  len(list),
	})
}

func (s *Server) handleGetTrack(c echo.Context) error {
	info, ok := s.catalog.Get(c.Param("map_id"), c.Param("track_id"))
	if !ok {
		return apperrors.NotFoundError("Track not found").
			WithField("map_id", c.Param("map_id")).
			WithField("track_id", c.Param("track_id"))
	}
	return c.JSON(http.StatusOK, info)
}

func (s *Server) handleCheckTrack(c echo.Context) error {
	var req checkTrackRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("Invalid JSON")
	}
	if req.MapID == "" || req.TrackID == "" {
		return apperrors.ValidationError("map_id and track_id are required")
	}

	available, hashMatch := s.catalog.Has(req.MapID, req.TrackID, req.FileHash)
	resp := map[string]any{"available": available}
	if req.FileHash != "" {
		resp["hash_match"] = available && hashMatch
	}
	return c.JSON(http.StatusOK, resp)
}
