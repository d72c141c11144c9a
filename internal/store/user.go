package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// UserStore registers the users known to the progress engine. Identities are
// issued elsewhere; the engine only needs a row to hang progress, sessions and
// the streak from.
type UserStore interface {
	// Ensure creates the user row if it does not exist yet. It is idempotent.
	Ensure(ctx context.Context, userID uuid.UUID) error

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
