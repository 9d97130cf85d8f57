package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"finitefield.org/exhibit-web/internal/config"
	"finitefield.org/exhibit-web/internal/observability"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "exhibit-web: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Flags win over the environment for local runs.
	flag.StringVar(&cfg.Server.Port, "port", cfg.Server.Port, "HTTP listen port")
	flag.StringVar(&cfg.Paths.Templates, "templates", cfg.Paths.Templates, "templates directory")
	flag.StringVar(&cfg.Paths.Public, "public", cfg.Paths.Public, "public assets directory")
	flag.StringVar(&cfg.Data.URL, "data", cfg.Data.URL, "exhibit document: path, http(s):// or gs:// URL")
	flag.BoolVar(&cfg.Server.Dev, "dev", cfg.Server.Dev, "reparse templates on every request")
	flag.Parse()

	logger, err := observability.NewLogger(observability.LoggerOptions{
		Level:       cfg.Log.Level,
		Development: cfg.Server.Dev,
	})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("web listening",
			zap.String("addr", srv.Addr),
			zap.Bool("dev", cfg.Server.Dev),
			zap.String("data", a.loader.Source().Location()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return a.Close()
	})
	return g.Wait()
}
