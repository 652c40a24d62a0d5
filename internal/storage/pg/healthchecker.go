package pg

import (
	"context"
	"log/slog"
)

// HealthChecker reports the database healthy when it answers and the judgment
// schema has been migrated.
type HealthChecker struct {
	pool *ConnectionPool
}

func NewHealthChecker(pool *ConnectionPool) *HealthChecker {
	return &HealthChecker{
		pool: pool,
	}
}

func (hc *HealthChecker) Healthy(ctx context.Context) bool {
	if hc.pool == nil {
		return false
	}

	if err := hc.pool.Ping(ctx); err != nil {
		slog.Warn("Postgres health check failed", "error", err)
		return false
	}

	var migrated bool
	err := hc.pool.GetConn().QueryRow(ctx, `
		SELECT to_regclass('document_relations') IS NOT NULL
		   AND to_regclass('comments') IS NOT NULL
	`).Scan(&migrated)
	if err != nil {
		slog.Warn("Postgres schema check failed", "error", err)
		return false
	}
	if !migrated {
		slog.Warn("Postgres schema is not migrated")
	}
	return migrated
}
