package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/DjordjeVuckovic/pref-assess/internal/storage"
	"github.com/DjordjeVuckovic/pref-assess/internal/storage/in_mem"
	"github.com/DjordjeVuckovic/pref-assess/internal/storage/pg"
	"github.com/DjordjeVuckovic/pref-assess/pkg/server"
)

const healthTimeout = 2 * time.Second

// Backend bundles a store with its health check and release hook.
type Backend struct {
	Store   storage.Store
	Health  server.HealthChecker
	Release func()
}

// NewBackend creates the store selected by cfg.
func NewBackend(ctx context.Context, cfg *StorageConfig) (*Backend, error) {
	switch cfg.Type {
	case storage.PG:
		if cfg.Pg == nil {
			return nil, fmt.Errorf("missing PostgreSQL configuration")
		}

		pool, err := pg.NewConnectionPool(ctx, *cfg.Pg)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL connection pool: %w", err)
		}

		return &Backend{
			Store:   pg.NewStore(pool),
			Health:  server.WithTimeout(pg.NewHealthChecker(pool), healthTimeout),
			Release: pool.Close,
		}, nil

	case storage.InMem:
		return &Backend{
			Store:   in_mem.NewInMemStore(),
			Health:  server.NewOkHealthChecker(),
			Release: func() {},
		}, nil

	default:
		return nil, fmt.Errorf(string(storage.ErrUnsupportedStorer), cfg.Type)
	}
}
