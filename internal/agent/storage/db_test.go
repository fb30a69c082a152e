package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitDatabase_AppliesMigrations(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "wallet.db")

	db, err := InitDatabase(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for _, table := range []string{"consents", "readings", "share_events"} {
		var name string
		err := db.QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		require.NoError(t, err, "table %s must exist", table)
	}
}

func TestInitDatabase_Reopen(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "wallet.db")
	ctx := context.Background()

	db, err := InitDatabase(ctx, dsn)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO consents (category, state) VALUES ('activity', 'enabled_confirmed')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// re-running migrations on an up-to-date database is a no-op
	db, err = InitDatabase(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var state string
	require.NoError(t, db.QueryRow(`SELECT state FROM consents WHERE category = 'activity'`).Scan(&state))
	require.Equal(t, "enabled_confirmed", state)
}
