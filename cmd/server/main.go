package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Georgeandrew7/DRL-Simulator-Community/internal/broadcast"
	"github.com/Georgeandrew7/DRL-Simulator-Community/internal/config"
	"github.com/Georgeandrew7/DRL-Simulator-Community/internal/domain"
	"github.com/Georgeandrew7/DRL-Simulator-Community/internal/logging"
	"github.com/Georgeandrew7/DRL-Simulator-Community/internal/registry"
	"github.com/Georgeandrew7/DRL-Simulator-Community/internal/server"
	"github.com/Georgeandrew7/DRL-Simulator-Community/internal/tracks"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func runGracefulShutdown(srv *server.Server, sweeper *registry.Sweeper, hub *broadcast.Hub) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		sweeper.Stop()
		hub.Stop()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Master server starting", "env", cfg.AppEnv, "port", cfg.Port)

	catalog := tracks.NewCatalog(cfg.TracksPath)

	// The hub snapshots the registry on subscriber connect, and the registry
	// publishes every mutation to the hub; wire the cycle through a closure.
	var store *registry.Store
	hub := broadcast.NewHub(func() []*domain.Session {
		return store.List("", false)
	}, clock, cfg.MaxSubscribers)
	store = registry.NewStore(clock, hub)

	sweeper := registry.NewSweeper(store, clock, cfg.SweepInterval, cfg.SessionTimeout)
	go sweeper.Start(context.Background())

	srv := server.NewServer(cfg, store, hub, catalog, clock)

	done := runGracefulShutdown(srv, sweeper, hub)

	slog.Info("Server starting",
		"addr", cfg.Host+":"+cfg.Port,
		"session_timeout", cfg.SessionTimeout,
		"sweep_interval", cfg.SweepInterval,
	)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
