// Command trc-server runs the turtle remote-control hub: two websocket
// endpoints, the world read API, and the registry that ties them together.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Schmarni-Dev/project-trc/internal/config"
	"github.com/Schmarni-Dev/project-trc/internal/httpapi"
	"github.com/Schmarni-Dev/project-trc/internal/logging"
	"github.com/Schmarni-Dev/project-trc/internal/registry"
	"github.com/Schmarni-Dev/project-trc/internal/store"
	"github.com/Schmarni-Dev/project-trc/internal/ws"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fallback := logging.New("info")
		fallback.Fatal().Err(err).Msg("failed to load config")
	}
	logger := logging.New(cfg.LogLevel)

	st, err := store.Open(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Str("database", cfg.Database).Msg("failed to open store")
	}
	defer st.Close()

	reg := registry.New(st, logger)
	// The registry outlives the signal context: it keeps draining queued
	// messages until the final Flush below.
	regCtx, stopRegistry := context.WithCancel(context.Background())
	defer stopRegistry()
	go reg.Run(regCtx)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	turtleHandler := ws.NewTurtleHandler(ws.TurtleHandlerConfig{
		Registry:    reg,
		Store:       st,
		Logger:      logger,
		IdleTimeout: cfg.IdleTimeout(),
	})
	clientHandler := ws.NewClientHandler(ws.ClientHandlerConfig{
		Registry:    reg,
		Logger:      logger,
		IdleTimeout: cfg.IdleTimeout(),
	})

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Store:         st,
		TurtleHandler: turtleHandler,
		ClientHandler: clientHandler,
		Logger:        logger,
		CORSOrigins:   cfg.CORSOrigins,
		LuaDir:        cfg.LuaDir,
	})

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: router}
	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("hub listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown was not clean")
	}
	// Let queued registry work and trailing store writes land before exit.
	reg.Flush()
	stopRegistry()
}
