package shares

import (
	"context"

	"github.com/viktorlk/healthwallet/internal/agent/models"
)

// Repository persists share events. The (day, category) primary key is the
// exactly-once guard: a reading cycle that finds an event for its day and
// category, in any status except failed-with-budget-left, must not publish
// again.
type Repository interface {
	// Get returns the event for (day, cat), or nil when none exists.
	Get(ctx context.Context, day models.Day, cat models.Category) (*models.ShareEvent, error)

	// Upsert stores the event, replacing any existing one for its
	// (day, category). Persisted synchronously before returning.
	Upsert(ctx context.Context, event models.ShareEvent) error

	// Pending returns all events still awaiting ledger confirmation,
	// oldest day first. Reconciliation walks this set.
	Pending(ctx context.Context) ([]models.ShareEvent, error)

	// Range returns events with from <= day <= to ordered by day then
	// category, for history display.
	Range(ctx context.Context, from, to models.Day) ([]models.ShareEvent, error)
}
