package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Sittravell/MalTrackarr/internal/server"
	"github.com/Sittravell/MalTrackarr/internal/shared"
	"github.com/Sittravell/MalTrackarr/internal/tasks"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 5 * time.Second

// Serve runs the watch-list enrichment HTTP service until interrupted.
//
// A credentials file that cannot be read is fatal before the port is bound;
// a token that cannot be warmed up only logs a warning, since the client may
// still be mid-authorization.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	store := r.credStore()
	if _, err := store.Load(); err != nil {
		return fmt.Errorf("startup credentials check failed: %w", err)
	}

	mal := r.malService(store)
	if _, err := mal.EnsureToken(ctx); err != nil {
		r.logger.Warnf("token warm-up failed, continuing %v", err)
	}

	engine := tasks.NewEnrichEngine(mal, r.datasetService(), r.logger)

	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(server.NewAnimeListHandler(engine, shared.WithLogger(r.logger, "component", "http")))
	router.Handle(http.MethodGet, "/health", server.HealthHandler{})

	addr := r.config.Server.Addr()
	if port := int(cmd.Int("port")); port > 0 {
		addr = fmt.Sprintf("%s:%d", r.config.Server.Host, port)
	} else if env := os.Getenv("PORT"); env != "" {
		if port, err := strconv.Atoi(env); err == nil {
			addr = fmt.Sprintf("%s:%d", r.config.Server.Host, port)
		}
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("listening on %s", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-quit:
		r.logger.Infof("received %s, shutting down", sig)

		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	return nil
}
