package models

import (
	"math/big"
	"time"
)

// ConsentState is the per-category position of the consent state machine.
type ConsentState string

const (
	// ConsentDisabled: sharing off, nothing outstanding.
	ConsentDisabled ConsentState = "disabled"
	// ConsentEnabledPending: local toggle set, ledger change submitted but
	// not yet confirmed.
	ConsentEnabledPending ConsentState = "enabled_pending"
	// ConsentEnabledConfirmed: the ledger has accepted the consent change.
	ConsentEnabledConfirmed ConsentState = "enabled_confirmed"
	// ConsentReconciling: local and on-chain values disagree and the
	// authoritative value is being fetched.
	ConsentReconciling ConsentState = "reconciling"
)

// ConsentRecord is the locally persisted consent for one category, plus the
// cached settlement metadata the presentation layer shows.
//
// ChainEnabled caches the last on-chain enabled flag observed; it exists for
// drift detection only and is always corrected toward the ledger, never the
// reverse.
type ConsentRecord struct {
	Category       Category
	State          ConsentState
	RewardRate     *big.Int // ledger base units per day of shared data
	LastSettlement time.Time
	ChainEnabled   bool
	ClaimID        string // outstanding claim, empty when none
}

// DefaultConsent is the record returned for a category that was never
// toggled: disabled, zero rate, no settlement history.
func DefaultConsent(cat Category) ConsentRecord {
	return ConsentRecord{
		Category:   cat,
		State:      ConsentDisabled,
		RewardRate: new(big.Int),
	}
}

// SharingActive reports whether readings for this category may produce share
// events. Only a ledger-confirmed enablement counts.
func (r ConsentRecord) SharingActive() bool {
	return r.State == ConsentEnabledConfirmed
}
