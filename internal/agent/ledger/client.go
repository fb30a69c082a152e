// Package ledger is the typed RPC boundary to the external ledger node that
// fronts the health-token and data-marketplace contract pair. The agent never
// talks to the contracts directly; it submits signed transaction intents and
// polls claims to resolution.
//
// Error taxonomy at this boundary: transport problems surface as
// common.ErrLedgerUnreachable (transient, retryable), application-level
// refusals as common.ErrLedgerRejected (terminal for the intent), and
// confirmation waits that outlive their deadline as common.ErrLedgerTimeout
// with the claim left pending. A failed read is never folded into a zero
// value.
package ledger

import (
	"context"
	"math/big"
	"time"

	"github.com/viktorlk/healthwallet/internal/agent/models"
)

// ClaimKind labels what a claim is settling.
type ClaimKind string

const (
	ClaimConsent ClaimKind = "consent"
	ClaimShare   ClaimKind = "share"
)

// ClaimStatus is the settlement state of a submitted ledger operation. A
// claim moves from pending to exactly one terminal state.
type ClaimStatus string

const (
	ClaimPending   ClaimStatus = "pending"
	ClaimConfirmed ClaimStatus = "confirmed"
	ClaimFailed    ClaimStatus = "failed"
)

// Claim is the handle for a submitted-but-not-necessarily-final ledger
// operation.
type Claim struct {
	ID          string
	Kind        ClaimKind
	Category    models.Category
	Status      ClaimStatus
	SubmittedAt time.Time
}

// Terminal reports whether the claim has reached a final state.
func (c Claim) Terminal() bool {
	return c.Status == ClaimConfirmed || c.Status == ClaimFailed
}

// ConsentSnapshot is the ledger's authoritative view of one category's
// sharing consent.
type ConsentSnapshot struct {
	Enabled        bool
	RewardRate     *big.Int
	LastSettlement time.Time
}

// Client is the ledger operation surface the coordinator drives. All calls
// are remote and may fail with the taxonomy described in the package doc.
type Client interface {
	// GetBalance returns the confirmed token balance for address, in the
	// ledger's smallest unit.
	GetBalance(ctx context.Context, address string) (*big.Int, error)

	// GetConsentOnChain returns the authoritative consent snapshot for
	// (address, category).
	GetConsentOnChain(ctx context.Context, address string, cat models.Category) (ConsentSnapshot, error)

	// SubmitConsentChange submits a signed enable/disable intent. It
	// returns immediately with a pending claim; the caller awaits
	// confirmation separately.
	SubmitConsentChange(ctx context.Context, address string, cat models.Category, enabled bool, rewardRate *big.Int) (Claim, error)

	// SubmitShareAndReward records that anonymized data identified by
	// dataHash was published for the given categories and requests reward
	// issuance. Asynchronous like SubmitConsentChange.
	SubmitShareAndReward(ctx context.Context, address string, cats []models.Category, dataHash string) (Claim, error)

	// AwaitConfirmation blocks until the claim resolves or timeout
	// elapses. On timeout it fails with common.ErrLedgerTimeout and the
	// claim stays pending for later reconciliation. Cancelling ctx stops
	// the local wait only; the ledger has already received the
	// transaction.
	AwaitConfirmation(ctx context.Context, claim Claim, timeout time.Duration) (Claim, error)

	// Close releases the underlying connection.
	Close() error
}

// Signer produces signatures over transaction intents without exposing key
// material. *vault.Vault satisfies it.
type Signer interface {
	Address() string
	PublicKey() []byte
	Sign(intent []byte) ([]byte, error)
}
