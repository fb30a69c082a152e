package shares

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/viktorlk/healthwallet/internal/agent/models"
	"github.com/viktorlk/healthwallet/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `day, category, data_hash, payload_ref, status, attempts, claim_id, updated_at`

func (r *SQLiteRepository) Get(ctx context.Context, day models.Day, cat models.Category) (*models.ShareEvent, error) {
	query := `SELECT ` + selectColumns + ` FROM share_events WHERE day = ? AND category = ?`
	event, err := scanEvent(r.db.QueryRowContext(ctx, query, string(day), string(cat)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get share event[%s/%s]: %w", day, cat, err)
	}
	return event, nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, event models.ShareEvent) error {
	query := `INSERT INTO share_events (day, category, data_hash, payload_ref, status, attempts, claim_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(day, category) DO UPDATE SET data_hash = excluded.data_hash,
			payload_ref = excluded.payload_ref,
			status = excluded.status,
			attempts = excluded.attempts,
			claim_id = excluded.claim_id,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		string(event.Day), string(event.Category), event.DataHash, event.PayloadRef,
		string(event.Status), event.Attempts, event.ClaimID, event.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert share event[%s/%s]: %w", event.Day, event.Category, err)
	}
	return nil
}

func (r *SQLiteRepository) Pending(ctx context.Context) ([]models.ShareEvent, error) {
	query := `SELECT ` + selectColumns + ` FROM share_events
		WHERE status = ? ORDER BY day ASC, category ASC`
	return r.selectEvents(ctx, query, string(models.SharePending))
}

func (r *SQLiteRepository) Range(ctx context.Context, from, to models.Day) ([]models.ShareEvent, error) {
	query := `SELECT ` + selectColumns + ` FROM share_events
		WHERE day >= ? AND day <= ? ORDER BY day ASC, category ASC`
	return r.selectEvents(ctx, query, string(from), string(to))
}

func (r *SQLiteRepository) selectEvents(ctx context.Context, query string, args ...any) ([]models.ShareEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select share events: %w", err)
	}
	defer rows.Close()

	var result []models.ShareEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.ShareEvent, error) {
	var (
		day, cat, status string
		event            models.ShareEvent
		updatedAt        int64
	)
	err := row.Scan(&day, &cat, &event.DataHash, &event.PayloadRef, &status,
		&event.Attempts, &event.ClaimID, &updatedAt)
	if err != nil {
		return nil, err
	}
	event.Day = models.Day(day)
	event.Category = models.Category(cat)
	event.Status = models.ShareStatus(status)
	event.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &event, nil
}
