// Package db builds the Postgres pool shared by the presale store and
// vault. The vault's retrying Serializable transactions can keep several
// connections busy at once, so the pool is sized from config rather than
// left at the driver defaults.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"tokensale/internal/config"
)

// Connection lifetimes stay short so long-running sale deployments cycle
// through load-balancer and pgbouncer restarts without stale sockets.
const (
	connLifetime = 30 * time.Minute
	connIdleTime = 10 * time.Minute
)

func Connect(ctx context.Context, cfg config.APIConfig) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pc.MaxConns = cfg.DBMaxConns
	pc.MinConns = cfg.DBMinConns
	pc.MaxConnLifetime = connLifetime
	pc.MaxConnIdleTime = connIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}
