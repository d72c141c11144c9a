package sqlite

import (
	"context"
	"log/slog"

	"github.com/phrazzld/kioku/internal/store"
)

// ItemCatalog implements store.ItemCatalog over the items table.
type ItemCatalog struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewItemCatalog creates a SQLite catalog reader.
func NewItemCatalog(db store.DBTX, logger *slog.Logger) *ItemCatalog {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ItemCatalog{db: db, logger: logger.With(slog.String("component", "item_catalog"))}
}

var _ store.ItemCatalog = (*ItemCatalog)(nil)

// Exists implements store.ItemCatalog.Exists
func (c *ItemCatalog) Exists(ctx context.Context, itemID string) (bool, error) {
	var exists bool
	err := c.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM items WHERE id = ?)`, itemID).Scan(&exists)
	if err != nil {
		c.logger.Error("failed to look up item",
			slog.String("item_id", itemID),
			slog.String("error", err.Error()))
		return false, store.NewStoreError("item", "exists", "failed to look up item", MapError(err))
	}
	return exists, nil
}
