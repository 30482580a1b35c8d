package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shandysiswandi/dragonfruit/internal/pkg/goerror"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/router"
)

const maintenancePollInterval = 5 * time.Second

type healthResponse struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

func (h healthResponse) Message() string { return "Service is healthy" }

func (a *App) health(r *router.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.dbConn.Ping(ctx); err != nil {
		slog.ErrorContext(ctx, "health check failed", "component", "database", "error", err)
		return nil, goerror.NewServer(err)
	}
	if err := a.cacheConn.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "health check failed", "component", "redis", "error", err)
		return nil, goerror.NewServer(err)
	}

	return healthResponse{Database: "ok", Redis: "ok"}, nil
}

// watchMaintenance follows app.maintenance, which the config file watcher
// reloads on change.
func (a *App) watchMaintenance(ctx context.Context) error {
	ticker := time.NewTicker(maintenancePollInterval)
	defer ticker.Stop()

	current := a.config.GetBool("app.maintenance")
	a.router.SetMaintenance(current)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if on := a.config.GetBool("app.maintenance"); on != current {
				current = on
				a.router.SetMaintenance(on)
				slog.InfoContext(ctx, "maintenance mode changed", "enabled", on)
			}
		}
	}
}

// Start launches the HTTP server and returns a channel closed on shutdown.
func (a *App) Start() <-chan struct{} {
	terminateChan := make(chan struct{})

	a.goroutine.Go(a.ctx, a.watchMaintenance)

	go func() {
		slog.Info("http server listening", "address", a.httpServer.Addr)

		if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen and serve http server", "error", err)
			os.Exit(1)
		}
	}()

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		defer signal.Stop(sigint)

		<-sigint

		if a.cancel != nil {
			a.cancel()
		}

		close(terminateChan)

		slog.Info("application gracefully shutdown")
	}()

	return terminateChan
}

// Stop gracefully shuts down the server and closes resources.
func (a *App) Stop(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}

	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to close resources", "name", "HTTP Server", "error", err)
	}

	slog.InfoContext(ctx, "waiting for all goroutine to finish")
	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "error from goroutines executions", "error", err)
	}
	slog.InfoContext(ctx, "all goroutines have finished successfully")

	for _, closer := range a.closers {
		if err := closer.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", closer.name, "error", err)
		}
	}
}
