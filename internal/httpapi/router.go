// Package httpapi assembles the HTTP surface: the two websocket upgrade
// routes, the read-only world listing, health, and metrics.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Schmarni-Dev/project-trc/internal/observability"
	"github.com/Schmarni-Dev/project-trc/internal/store"
	"github.com/Schmarni-Dev/project-trc/internal/ws"
)

// RouterConfig wires the HTTP surface.
type RouterConfig struct {
	Store         *store.Store
	TurtleHandler *ws.TurtleHandler
	ClientHandler *ws.ClientHandler
	Logger        zerolog.Logger
	CORSOrigins   []string
	// LuaDir serves device-side payload scripts when non-empty.
	LuaDir string
}

// NewRouter builds the gin engine hosting every endpoint.
func NewRouter(cfg RouterConfig) *gin.Engine {
	observability.RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(cfg.Logger))
	r.Use(observability.RequestMetrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CORSOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/turtle/ws", gin.WrapF(cfg.TurtleHandler.Handle))
	r.GET("/client/ws", gin.WrapF(cfg.ClientHandler.Handle))

	r.GET("/api/worlds", worldsHandler(cfg.Store))

	if cfg.LuaDir != "" {
		r.Static("/turtle/lua", cfg.LuaDir)
	}

	return r
}

// worldsHandler answers the stateless world listing straight from the store.
func worldsHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		worlds, err := st.Worlds(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list worlds"})
			return
		}
		c.JSON(http.StatusOK, worlds)
	}
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
