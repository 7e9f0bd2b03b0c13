package repository

import (
	"context"
	"log/slog"

	"github.com/taxsahaj/taxsahaj/internal/common"
)

// NewFromConfig selects the store backend: Postgres when a DSN is configured,
// otherwise the local SQLite file.
func NewFromConfig(ctx context.Context, cfg common.StoreConfig, logger *slog.Logger) (RecordStore, error) {
	if cfg.DSN != "" {
		return NewPostgresStore(ctx, cfg.DSN, logger)
	}
	return NewSQLiteStore(cfg.SQLitePath, logger)
}
