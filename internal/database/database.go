package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Pool holds the connection pool limits. Zero values fall back to the defaults below.
type Pool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
}

func (p Pool) withDefaults() Pool {
	if p.MaxOpenConns <= 0 {
		p.MaxOpenConns = 10
	}

	if p.MaxIdleConns <= 0 {
		p.MaxIdleConns = 5
	}

	if p.ConnMaxLifetime <= 0 {
		p.ConnMaxLifetime = 5 * time.Minute
	}

	if p.ConnectTimeout <= 0 {
		p.ConnectTimeout = 5 * time.Second
	}

	return p
}

// New opens the charge database and waits up to pool.ConnectTimeout for it to answer.
func New(ctx context.Context, connStr string, pool Pool) (*sql.DB, error) {
	pool = pool.withDefaults()

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pool.ConnectTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)

	slog.DebugContext(ctx, "database connected", "max_open_conns", pool.MaxOpenConns)

	return db, nil
}
