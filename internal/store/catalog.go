package store

import "context"

// ItemCatalog is the read-only view of the externally managed item catalog.
// Rows are written by the import pipeline, never by this service.
type ItemCatalog interface {
	// Exists reports whether an item with the given identifier is in the catalog.
	// A missing item is reported as (false, nil); errors mean the lookup itself failed.
	Exists(ctx context.Context, itemID string) (bool, error)
}
