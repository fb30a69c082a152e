package readings

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/viktorlk/healthwallet/internal/agent/models"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS readings (
  day         TEXT PRIMARY KEY,
  steps       INTEGER NOT NULL DEFAULT 0,
  heart_rate  REAL NOT NULL DEFAULT 0,
  sleep_hours REAL NOT NULL DEFAULT 0,
  calories    REAL NOT NULL DEFAULT 0,
  distance    REAL NOT NULL DEFAULT 0,
  updated_at  INTEGER NOT NULL DEFAULT 0
);
`)
	require.NoError(t, err)
	return db
}

func sampleReading(day models.Day) models.HealthReading {
	return models.HealthReading{
		Day:        day,
		Steps:      8421,
		HeartRate:  68.5,
		SleepHours: 7.25,
		Calories:   412.3,
		Distance:   6.1,
		UpdatedAt:  time.Unix(1735693200, 0).UTC(),
	}
}

func TestGet_NilWhenAbsent(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))

	got, err := repo.Get(context.Background(), "2025-01-01")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestPutGet_RoundTrip(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	reading := sampleReading("2025-01-01")
	require.NoError(t, repo.Put(ctx, reading))

	got, err := repo.Get(ctx, "2025-01-01")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, reading, *got)
}

func TestPut_LastWriteWins(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	reading := sampleReading("2025-01-01")
	require.NoError(t, repo.Put(ctx, reading))

	reading.Steps = 12000
	reading.UpdatedAt = reading.UpdatedAt.Add(time.Hour)
	require.NoError(t, repo.Put(ctx, reading))

	got, err := repo.Get(ctx, "2025-01-01")
	require.NoError(t, err)
	require.EqualValues(t, 12000, got.Steps)
	require.Equal(t, reading.UpdatedAt, got.UpdatedAt)
}

func TestPut_ZeroValuesAreMeasurements(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	reading := models.HealthReading{Day: "2025-01-02", UpdatedAt: time.Unix(1735779600, 0).UTC()}
	require.NoError(t, repo.Put(ctx, reading))

	got, err := repo.Get(ctx, "2025-01-02")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Zero(t, got.Steps)
	require.Zero(t, got.SleepHours)
}

func TestLatest(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	got, err := repo.Latest(ctx)
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, repo.Put(ctx, sampleReading("2025-01-03")))
	require.NoError(t, repo.Put(ctx, sampleReading("2025-01-01")))
	require.NoError(t, repo.Put(ctx, sampleReading("2025-01-02")))

	got, err = repo.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, models.Day("2025-01-03"), got.Day)
}

func TestRange(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	for _, day := range []models.Day{"2025-01-01", "2025-01-02", "2025-01-03", "2025-01-05"} {
		require.NoError(t, repo.Put(ctx, sampleReading(day)))
	}

	got, err := repo.Range(ctx, "2025-01-02", "2025-01-04")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, models.Day("2025-01-02"), got[0].Day)
	require.Equal(t, models.Day("2025-01-03"), got[1].Day)
}
