package server

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Georgeandrew7/DRL-Simulator-Community/internal/broadcast"
	"github.com/Georgeandrew7/DRL-Simulator-Community/internal/config"
	apperrors "github.com/Georgeandrew7/DRL-Simulator-Community/internal/errors"
	"github.com/Georgeandrew7/DRL-Simulator-Community/internal/registry"
	"github.com/Georgeandrew7/DRL-Simulator-Community/internal/tracks"
)

// Server is the HTTP surface of the master server: the session API, the
// real-time endpoint, the track catalog, and observability routes.
type Server struct {
	echo      *echo.Echo
	config    *config.Config
	store     *registry.Store
	hub       *broadcast.Hub
	catalog   *tracks.Catalog
	clock     clockwork.Clock
	startTime time.Time
}

// NewServer wires the router onto the registry, hub, and catalog.
func NewServer(cfg *config.Config, store *registry.Store, hub *broadcast.Hub, catalog *tracks.Catalog, clock clockwork.Clock) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	// Wildcard CORS: the session browser runs in-browser on arbitrary origins.
	e.Use(middleware.CORS())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		store:     store,
		hub:       hub,
		catalog:   catalog,
		clock:     clock,
		startTime: clock.Now(),
	}

	srv.registerRoutes()

	return srv
}

// Start begins serving on the configured host and port.
func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf("%s:%s", s.config.Host, s.config.Port))
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
