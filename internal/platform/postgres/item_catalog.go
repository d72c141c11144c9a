package postgres

import (
	"context"
	"log/slog"

	"github.com/phrazzld/kioku/internal/store"
)

// PostgresItemCatalog implements store.ItemCatalog over the items table.
type PostgresItemCatalog struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresItemCatalog creates a catalog reader.
// If logger is nil, a default logger will be used.
func NewPostgresItemCatalog(db store.DBTX, logger *slog.Logger) *PostgresItemCatalog {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresItemCatalog{
		db:     db,
		logger: logger.With(slog.String("component", "item_catalog")),
	}
}

// Ensure PostgresItemCatalog implements store.ItemCatalog interface
var _ store.ItemCatalog = (*PostgresItemCatalog)(nil)

// Exists implements store.ItemCatalog.Exists
func (c *PostgresItemCatalog) Exists(ctx context.Context, itemID string) (bool, error) {
	var exists bool
	err := c.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM items WHERE id = $1)`, itemID).Scan(&exists)
	if err != nil {
		c.logger.Error("failed to look up item",
			slog.String("item_id", itemID),
			slog.String("error", err.Error()))
		return false, store.NewStoreError("item", "exists", "failed to look up item", MapError(err))
	}
	return exists, nil
}
