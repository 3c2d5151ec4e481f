package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/parlorgames/backend/internal/api"
	"github.com/parlorgames/backend/internal/config"
	"github.com/parlorgames/backend/internal/game"
	"github.com/parlorgames/backend/internal/logging"
	"github.com/parlorgames/backend/internal/rules"
)

func main() {
	cfg := config.Load()

	logger, err := logging.NewLogger(cfg.LogfilePath, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// One manager owns all server state; the router and the sweep
	// workers share it.
	manager := game.NewManager(cfg, logger, rules.DefaultFactory())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	manager.RunSweeps(ctx)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, manager, cfg, logger)

	srv := &http.Server{
		Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		logger.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("Shutdown signal received")

	// Tell every connected player, cancel in-progress games, then give
	// the HTTP server a moment to drain.
	manager.HandleShutdown().Flush()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("Server shutdown: %v", err)
	}
	logger.Infof("Server stopped")
}
