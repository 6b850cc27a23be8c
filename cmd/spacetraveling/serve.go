package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/eringen/spacetraveling"
	"github.com/eringen/spacetraveling/views"
)

func runServe() error {
	cfg := spacetraveling.LoadConfig()
	cfg.SessionSecret = spacetraveling.MustEnv("SESSION_SECRET")

	app := spacetraveling.New(cfg, views.New(cfg.WithDefaults()),
		spacetraveling.WithStaticDir(spacetraveling.EnvOr("STATIC_DIR", "public")))
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Echo.Shutdown(shutdownCtx)
}
