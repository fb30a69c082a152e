package consent

import (
	"context"
	"database/sql"
	"math/big"
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
CREATE TABLE IF NOT EXISTS consents (
  category        TEXT PRIMARY KEY,
  state           TEXT NOT NULL DEFAULT 'disabled',
  reward_rate     TEXT NOT NULL DEFAULT '0',
  last_settlement INTEGER NOT NULL DEFAULT 0,
  chain_enabled   INTEGER NOT NULL DEFAULT 0,
  claim_id        TEXT NOT NULL DEFAULT ''
);
`)
	require.NoError(t, err)
	return db
}

func TestGet_ReturnsDefaultWhenAbsent(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))

	got, err := repo.Get(context.Background(), models.CategorySleep)
	require.NoError(t, err)
	require.Equal(t, models.DefaultConsent(models.CategorySleep), got)
}

func TestSetGet_RoundTrip(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	record := models.ConsentRecord{
		Category:       models.CategoryActivity,
		State:          models.ConsentEnabledConfirmed,
		RewardRate:     big.NewInt(50),
		LastSettlement: time.Unix(1735689600, 0).UTC(),
		ChainEnabled:   true,
		ClaimID:        "claim-7",
	}
	require.NoError(t, repo.Set(ctx, record))

	got, err := repo.Get(ctx, models.CategoryActivity)
	require.NoError(t, err)
	require.Equal(t, record, got)
}

func TestSet_OverwritesExisting(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	record := models.DefaultConsent(models.CategoryHeart)
	record.State = models.ConsentEnabledPending
	record.ClaimID = "claim-8"
	require.NoError(t, repo.Set(ctx, record))

	record.State = models.ConsentDisabled
	record.ClaimID = ""
	require.NoError(t, repo.Set(ctx, record))

	got, err := repo.Get(ctx, models.CategoryHeart)
	require.NoError(t, err)
	require.Equal(t, models.ConsentDisabled, got.State)
	require.Empty(t, got.ClaimID)
}

func TestAll_OrderedByCategory(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	// insert out of order on purpose
	for _, cat := range []models.Category{models.CategorySleep, models.CategoryActivity, models.CategoryHeart} {
		record := models.DefaultConsent(cat)
		require.NoError(t, repo.Set(ctx, record))
	}

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, models.CategoryActivity, all[0].Category)
	require.Equal(t, models.CategoryHeart, all[1].Category)
	require.Equal(t, models.CategorySleep, all[2].Category)
}

func TestAll_EmptyStore(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))

	all, err := repo.All(context.Background())
	require.NoError(t, err)
	require.Empty(t, all)
}
