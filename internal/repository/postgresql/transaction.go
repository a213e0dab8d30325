package postgresql

import (
	"context"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/google/uuid"
)

// GetQuerier returns either transaction or pool
// Used in repositories to support both transactional and non-transactional operations
func GetQuerier(ctx context.Context, db *database.DB) database.Querier {
	if tx, ok := database.TxFromContext(ctx); ok {
		return tx
	}
	return db.Pool
}

// newID returns a time-ordered UUIDv7 string for primary keys.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
