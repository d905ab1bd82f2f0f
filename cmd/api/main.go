package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carlosandre007/escala/internal/charge/store"
	"github.com/carlosandre007/escala/internal/config"
	"github.com/carlosandre007/escala/internal/database"
	"github.com/carlosandre007/escala/internal/events"
	escalaHttp "github.com/carlosandre007/escala/internal/http"
	chargeHandler "github.com/carlosandre007/escala/internal/http/charge"
	"github.com/carlosandre007/escala/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := cfg.Logger()
	if err != nil {
		slog.Error("failed to configure logging", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logger)

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if cfg.DB.Migrate {
		if err := database.Migrate(cfg.ConnectionString()); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
	}

	db, err := database.New(context.Background(), cfg.ConnectionString(), cfg.Pool())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	publisher, closePublisher, err := events.Connect(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.RoutingKey)
	if err != nil {
		return fmt.Errorf("connecting to broker: %w", err)
	}
	defer closePublisher()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	policy, err := cfg.SuccessorPolicy()
	if err != nil {
		return err
	}

	schedulerService := scheduler.NewService(store.New(db),
		scheduler.WithPublisher(publisher),
		scheduler.WithSuccessorPolicy(policy),
		scheduler.WithLocation(loc),
	)

	router := escalaHttp.New(escalaHttp.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Timeout:        cfg.Server.Timeout,
	}, chargeHandler.NewHandler(schedulerService))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "port", srv.Addr, "policy", policy, "timezone", loc.String())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
