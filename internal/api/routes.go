package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/parlorgames/backend/internal/config"
	"github.com/parlorgames/backend/internal/game"
	"github.com/parlorgames/backend/internal/middleware"
	"github.com/parlorgames/backend/internal/ws"
)

const version = "1.0.0"

var startTime = time.Now()

// SetupRoutes configures all routes: the websocket endpoint everything
// rides on, plus a health check.
func SetupRoutes(router *gin.Engine, m *game.Manager, cfg *config.Config, log *zap.SugaredLogger) {
	router.Use(middleware.CORSMiddleware(cfg))

	router.GET("/ws", ws.Handler(m, log))
	router.GET("/health", healthCheck(m))
}

// healthCheck reports server liveness with a few cheap counters.
func healthCheck(m *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		players, games := m.Counts()
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "parlorgames-server",
			"version": version,
			"uptime":  time.Since(startTime).String(),
			"players": players,
			"games":   games,
		})
	}
}
