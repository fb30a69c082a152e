package models

import "time"

// ShareStatus is the lifecycle of one share event's reward settlement.
type ShareStatus string

const (
	// SharePending: submitted to the ledger, awaiting confirmation.
	SharePending ShareStatus = "pending"
	// ShareConfirmed: the ledger accepted the share and issued the reward.
	ShareConfirmed ShareStatus = "confirmed"
	// ShareFailed: the retry budget for the day is exhausted; surfaced to
	// the user, never silently dropped.
	ShareFailed ShareStatus = "failed"
)

// MaxShareAttempts is the per-(day, category) retry budget before a share
// event is marked failed.
const MaxShareAttempts = 3

// ShareEvent records one anonymized publication and its reward claim. At most
// one exists per (day, category); its presence is what makes reward issuance
// exactly-once across reading cycles.
type ShareEvent struct {
	Day        Day
	Category   Category
	DataHash   string // sha256 of the anonymized payload, hex
	PayloadRef string // storage key of the published payload
	Status     ShareStatus
	Attempts   int
	ClaimID    string
	UpdatedAt  time.Time
}
