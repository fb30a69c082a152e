package readings

import (
	"context"

	"github.com/viktorlk/healthwallet/internal/agent/models"
)

// Repository caches aggregated daily readings so the presentation layer can
// show history without re-querying the device's health store. The cache is
// disposable: it can be rebuilt from the source of record at any time.
type Repository interface {
	// Put stores the reading for reading.Day, replacing any cached one.
	// Last write wins.
	Put(ctx context.Context, reading models.HealthReading) error

	// Get returns the cached reading for a day, or nil when the day was
	// never aggregated.
	Get(ctx context.Context, day models.Day) (*models.HealthReading, error)

	// Latest returns the most recent cached reading by day, or nil when
	// the cache is empty.
	Latest(ctx context.Context) (*models.HealthReading, error)

	// Range returns cached readings with from <= day <= to, ordered by
	// day ascending.
	Range(ctx context.Context, from, to models.Day) ([]models.HealthReading, error)
}
