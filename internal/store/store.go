package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mugisham37/storesync/internal/config"
)

// Connect opens the pgx pool backing the agent's event journal and
// verifies it with a ping before handing it back. Store devices run
// lean, so the pool is sized from config rather than pgx defaults.
func Connect(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(BuildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("journal db config: %w", err)
	}
	pc.MinConns = int32(cfg.MinConns)
	pc.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("journal db pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("journal db ping: %w", err)
	}
	return pool, nil
}
