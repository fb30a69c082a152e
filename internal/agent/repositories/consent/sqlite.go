package consent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
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

func (r *SQLiteRepository) Get(ctx context.Context, cat models.Category) (models.ConsentRecord, error) {
	query := `SELECT state, reward_rate, last_settlement, chain_enabled, claim_id
		FROM consents WHERE category = ?`
	row := r.db.QueryRowContext(ctx, query, string(cat))

	var (
		state, rate, claimID string
		lastSettlement       int64
		chainEnabled         bool
	)
	err := row.Scan(&state, &rate, &lastSettlement, &chainEnabled, &claimID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultConsent(cat), nil
	}
	if err != nil {
		return models.ConsentRecord{}, fmt.Errorf("failed to get consent[%s]: %w", cat, err)
	}

	return buildRecord(cat, state, rate, lastSettlement, chainEnabled, claimID)
}

// Set upserts in a single statement, so the record swap is atomic: readers
// observe either the previous record or the new one.
func (r *SQLiteRepository) Set(ctx context.Context, record models.ConsentRecord) error {
	query := `INSERT INTO consents (category, state, reward_rate, last_settlement, chain_enabled, claim_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(category) DO UPDATE SET state = excluded.state,
			reward_rate = excluded.reward_rate,
			last_settlement = excluded.last_settlement,
			chain_enabled = excluded.chain_enabled,
			claim_id = excluded.claim_id
	`
	rate := "0"
	if record.RewardRate != nil {
		rate = record.RewardRate.String()
	}
	var lastSettlement int64
	if !record.LastSettlement.IsZero() {
		lastSettlement = record.LastSettlement.Unix()
	}

	_, err := r.db.ExecContext(ctx, query,
		string(record.Category), string(record.State), rate, lastSettlement, record.ChainEnabled, record.ClaimID)
	if err != nil {
		return fmt.Errorf("failed to upsert consent[%s]: %w", record.Category, err)
	}
	return nil
}

func (r *SQLiteRepository) All(ctx context.Context) ([]models.ConsentRecord, error) {
	query := `SELECT category, state, reward_rate, last_settlement, chain_enabled, claim_id
		FROM consents ORDER BY category ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select consents: %w", err)
	}
	defer rows.Close()

	var result []models.ConsentRecord
	for rows.Next() {
		var (
			cat, state, rate, claimID string
			lastSettlement            int64
			chainEnabled              bool
		)
		if err := rows.Scan(&cat, &state, &rate, &lastSettlement, &chainEnabled, &claimID); err != nil {
			return nil, err
		}
		record, err := buildRecord(models.Category(cat), state, rate, lastSettlement, chainEnabled, claimID)
		if err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func buildRecord(cat models.Category, state, rate string, lastSettlement int64, chainEnabled bool, claimID string) (models.ConsentRecord, error) {
	rewardRate, ok := new(big.Int).SetString(rate, 10)
	if !ok {
		return models.ConsentRecord{}, fmt.Errorf("malformed reward rate %q for %s", rate, cat)
	}

	record := models.ConsentRecord{
		Category:     cat,
		State:        models.ConsentState(state),
		RewardRate:   rewardRate,
		ChainEnabled: chainEnabled,
		ClaimID:      claimID,
	}
	if lastSettlement > 0 {
		record.LastSettlement = time.Unix(lastSettlement, 0).UTC()
	}
	return record, nil
}
