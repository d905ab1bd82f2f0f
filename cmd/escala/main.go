package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/carlosandre007/escala/internal/charge/store"
	"github.com/carlosandre007/escala/internal/commands"
	"github.com/carlosandre007/escala/internal/config"
	"github.com/carlosandre007/escala/internal/database"
	"github.com/carlosandre007/escala/internal/events"
	"github.com/carlosandre007/escala/internal/scheduler"
)

func main() {
	_ = godotenv.Load()

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

	rootCmd := commands.NewRootCommand(commands.Deps{
		Open: func(ctx context.Context) (*scheduler.Service, func(), error) {
			return open(ctx, cfg)
		},
		Migrate: func() error {
			return database.Migrate(cfg.ConnectionString())
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func open(ctx context.Context, cfg *config.Config) (*scheduler.Service, func(), error) {
	if cfg.DB.Migrate {
		if err := database.Migrate(cfg.ConnectionString()); err != nil {
			return nil, nil, fmt.Errorf("migrating database: %w", err)
		}
	}

	db, err := database.New(ctx, cfg.ConnectionString(), cfg.Pool())
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	publisher, closePublisher, err := events.Connect(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.RoutingKey)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("connecting to broker: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		closePublisher()
		db.Close()

		return nil, nil, err
	}

	policy, err := cfg.SuccessorPolicy()
	if err != nil {
		closePublisher()
		db.Close()

		return nil, nil, err
	}

	svc := scheduler.NewService(store.New(db),
		scheduler.WithPublisher(publisher),
		scheduler.WithSuccessorPolicy(policy),
		scheduler.WithLocation(loc),
	)

	return svc, func() {
		closePublisher()
		db.Close()
	}, nil
}
