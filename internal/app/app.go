package app

import (
	"context"
	"errors"
	"net/http"
	"time"
)

type App struct {
	name       string
	httpServer *http.Server
	cleanup    func(context.Context) error
}

func newApp(name, addr string, handler http.Handler, cleanup func(context.Context) error) *App {
	return &App{
		name: name,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		cleanup: cleanup,
	}
}

func (a *App) Name() string { return a.name }

func (a *App) Addr() string { return a.httpServer.Addr }

// Run serves until Shutdown is called. A clean shutdown returns nil.
func (a *App) Run() error {
	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	if a.cleanup != nil {
		return a.cleanup(ctx)
	}
	return nil
}
