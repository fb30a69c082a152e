package consent

import (
	"context"

	"github.com/viktorlk/healthwallet/internal/agent/models"
)

// Repository persists per-category consent records. Purely local, no
// network access; writes are atomic per category so a crash mid-write never
// leaves a half-updated record visible.
type Repository interface {
	// Get returns the record for a category, or the default disabled
	// record when none has been stored yet. It does not fail on absence.
	Get(ctx context.Context, cat models.Category) (models.ConsentRecord, error)

	// Set overwrites the record for record.Category. Persisted
	// synchronously before returning.
	Set(ctx context.Context, record models.ConsentRecord) error

	// All returns every stored record ordered by category id ascending,
	// for display purposes.
	All(ctx context.Context) ([]models.ConsentRecord, error)
}
