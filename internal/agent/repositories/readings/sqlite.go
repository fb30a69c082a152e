package readings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/viktorlk/healthwallet/internal/agent/models"
	"github.com/viktorlk/healthwallet/internal/common"
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

func (r *SQLiteRepository) Put(ctx context.Context, reading models.HealthReading) error {
	query := `INSERT INTO readings (day, steps, heart_rate, sleep_hours, calories, distance, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET steps = excluded.steps,
			heart_rate = excluded.heart_rate,
			sleep_hours = excluded.sleep_hours,
			calories = excluded.calories,
			distance = excluded.distance,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		string(reading.Day), reading.Steps, reading.HeartRate, reading.SleepHours,
		reading.Calories, reading.Distance, reading.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("%w: failed to cache reading[%s]: %w", common.ErrCacheUnavailable, reading.Day, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, day models.Day) (*models.HealthReading, error) {
	query := `SELECT day, steps, heart_rate, sleep_hours, calories, distance, updated_at
		FROM readings WHERE day = ?`
	reading, err := scanReading(r.db.QueryRowContext(ctx, query, string(day)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get reading[%s]: %w", common.ErrCacheUnavailable, day, err)
	}
	return reading, nil
}

func (r *SQLiteRepository) Latest(ctx context.Context) (*models.HealthReading, error) {
	query := `SELECT day, steps, heart_rate, sleep_hours, calories, distance, updated_at
		FROM readings ORDER BY day DESC LIMIT 1`
	reading, err := scanReading(r.db.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get latest reading: %w", common.ErrCacheUnavailable, err)
	}
	return reading, nil
}

func (r *SQLiteRepository) Range(ctx context.Context, from, to models.Day) ([]models.HealthReading, error) {
	query := `SELECT day, steps, heart_rate, sleep_hours, calories, distance, updated_at
		FROM readings WHERE day >= ? AND day <= ? ORDER BY day ASC`
	rows, err := r.db.QueryContext(ctx, query, string(from), string(to))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to select readings: %w", common.ErrCacheUnavailable, err)
	}
	defer rows.Close()

	var result []models.HealthReading
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrCacheUnavailable, err)
		}
		result = append(result, *reading)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrCacheUnavailable, err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReading(row rowScanner) (*models.HealthReading, error) {
	var (
		day       string
		reading   models.HealthReading
		updatedAt int64
	)
	err := row.Scan(&day, &reading.Steps, &reading.HeartRate, &reading.SleepHours,
		&reading.Calories, &reading.Distance, &updatedAt)
	if err != nil {
		return nil, err
	}
	reading.Day = models.Day(day)
	reading.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &reading, nil
}
