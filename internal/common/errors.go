// Package common contains shared constants, helpers and sentinel errors used
// across the health wallet agent. Callers should use errors.Is to match the
// sentinel values.
package common

import "errors"

var (
	// Vault errors are fatal to the identity subsystem. They are surfaced
	// as-is and never auto-recovered: regenerating a key pair would orphan
	// any balance held by the old address.
	ErrVaultCorrupt = errors.New("vault: persisted identity is corrupt")
	ErrVaultLocked  = errors.New("vault: identity not loaded")

	// Ledger errors. Unreachable is transient and retryable; rejected and
	// timeout are terminal for the attempt in hand.
	ErrLedgerUnreachable = errors.New("ledger unreachable")
	ErrLedgerRejected    = errors.New("ledger rejected operation")
	ErrLedgerTimeout     = errors.New("ledger confirmation timed out")

	// ErrClaimInFlight is returned when a consent toggle is requested while
	// a prior claim for the same category is still pending. The request is
	// rejected, never queued.
	ErrClaimInFlight = errors.New("claim already in flight for category")

	// ErrCacheUnavailable indicates local reading storage failed. It is a
	// degraded condition: the current cycle is skipped, nothing crashes.
	ErrCacheUnavailable = errors.New("reading cache unavailable")

	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrNoData distinguishes "the acquisition layer reported no samples"
	// from a genuine all-zero reading.
	ErrNoData = errors.New("no health data for period")
)
