package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/query-desk/internal/config"
)

// Open builds the KV backend selected by cfg.Storage.Driver.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (KV, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		logger.Warn("using in-memory storage; data will not survive restarts")
		return NewMemoryKV(), nil
	case config.StorageDriverRedis:
		return NewRedis(cfg.Redis, logger), nil
	case config.StorageDriverPostgres:
		pg, err := NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		return pg, nil
	case config.StorageDriverSQLite, "":
		return NewSQLite(ctx, cfg.Storage.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
