// Package coordinator owns the consent and reward state machine. All
// ledger-affecting operations for the wallet address funnel through it: it
// serializes writes per category, keeps the local consent store converging
// toward ledger truth, and turns eligible daily readings into anonymized
// publications with exactly-once reward settlement.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/viktorlk/healthwallet/internal/agent/anonymize"
	"github.com/viktorlk/healthwallet/internal/agent/health"
	"github.com/viktorlk/healthwallet/internal/agent/ledger"
	"github.com/viktorlk/healthwallet/internal/agent/models"
	"github.com/viktorlk/healthwallet/internal/agent/publish"
	"github.com/viktorlk/healthwallet/internal/agent/repositories/consent"
	"github.com/viktorlk/healthwallet/internal/agent/repositories/readings"
	"github.com/viktorlk/healthwallet/internal/agent/repositories/shares"
	"github.com/viktorlk/healthwallet/internal/common"
	"github.com/viktorlk/healthwallet/internal/logging"
)

// Confirmation retry policy: up to 3 attempts per claim, exponential backoff
// starting at 2s, doubling, capped at 30s.
const (
	maxConfirmAttempts  = 3
	confirmBackoffStart = 2 * time.Second
	confirmBackoffCap   = 30 * time.Second
)

// Notifier surfaces user-visible outcomes: confirmations, reverts, exhausted
// claims. Implementations must not block.
type Notifier interface {
	Notify(message string)
}

// Deps are the collaborators the coordinator drives.
type Deps struct {
	Address  string
	Ledger   ledger.Client
	Consents consent.Repository
	Readings readings.Repository
	Shares   shares.Repository
	Source   health.Source
	Anon     anonymize.Anonymizer
	Pub      publish.Publisher
	Notifier Notifier
	Log      logging.Logger

	// ConfirmTimeout bounds a single AwaitConfirmation call.
	ConfirmTimeout time.Duration
}

// Coordinator is the single logical owner of the wallet's ledger state.
type Coordinator struct {
	deps        Deps
	backoffBase time.Duration

	mu    sync.Mutex
	locks map[models.Category]*sync.Mutex
}

// New constructs a coordinator. All Deps fields are required.
func New(deps Deps) *Coordinator {
	return &Coordinator{
		deps:        deps,
		backoffBase: confirmBackoffStart,
		locks:       make(map[models.Category]*sync.Mutex),
	}
}

// lock returns the serialization mutex for one category.
func (c *Coordinator) lock(cat models.Category) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[cat]
	if !ok {
		l = &sync.Mutex{}
		c.locks[cat] = l
	}
	return l
}

// EnableSharing turns sharing on for a category at the given reward rate.
// Returns ErrClaimInFlight when a prior toggle for the category is still
// settling. Blocks until the ledger confirms, the retry budget runs out, or
// ctx is cancelled.
func (c *Coordinator) EnableSharing(ctx context.Context, cat models.Category, rewardRate *big.Int) error {
	return c.toggle(ctx, cat, true, rewardRate)
}

// DisableSharing turns sharing off for a category. Same claim semantics as
// EnableSharing.
func (c *Coordinator) DisableSharing(ctx context.Context, cat models.Category) error {
	return c.toggle(ctx, cat, false, nil)
}

func (c *Coordinator) toggle(ctx context.Context, cat models.Category, enabled bool, rewardRate *big.Int) error {
	l := c.lock(cat)
	if !l.TryLock() {
		return fmt.Errorf("toggle %s: %w", cat, common.ErrClaimInFlight)
	}
	defer l.Unlock()

	record, err := c.deps.Consents.Get(ctx, cat)
	if err != nil {
		return fmt.Errorf("toggle %s: %w", cat, err)
	}
	// a pending record persisted by an interrupted run counts as in flight
	// until reconciliation resolves it
	if record.State == models.ConsentEnabledPending || record.State == models.ConsentReconciling {
		return fmt.Errorf("toggle %s: %w", cat, common.ErrClaimInFlight)
	}

	// resubmitting an already-applied change is a no-op; check chain truth
	// before issuing a claim
	snapshot, err := c.deps.Ledger.GetConsentOnChain(ctx, c.deps.Address, cat)
	if err != nil {
		return fmt.Errorf("toggle %s: %w", cat, err)
	}
	if snapshot.Enabled == enabled {
		c.applySnapshot(ctx, &record, snapshot)
		return c.deps.Consents.Set(ctx, record)
	}

	prevState := record.State

	claim, err := c.deps.Ledger.SubmitConsentChange(ctx, c.deps.Address, cat, enabled, rewardRate)
	if err != nil {
		return fmt.Errorf("toggle %s: %w", cat, err)
	}

	record.State = models.ConsentEnabledPending
	record.ClaimID = claim.ID
	if enabled {
		record.RewardRate = rewardRate
	}
	if err := c.deps.Consents.Set(ctx, record); err != nil {
		return fmt.Errorf("toggle %s: %w", cat, err)
	}

	resolved, err := c.awaitWithRetry(ctx, claim)
	if err != nil || resolved.Status != ledger.ClaimConfirmed {
		// transition 3: on failure or exhausted budget the local state
		// reverts; a still-pending chain claim is picked up by
		// reconciliation later
		if enabled {
			record.State = models.ConsentDisabled
			record.RewardRate = new(big.Int)
		} else {
			record.State = prevState
		}
		record.ClaimID = ""
		if setErr := c.deps.Consents.Set(ctx, record); setErr != nil {
			c.deps.Log.Error(ctx, "failed to revert consent", "category", cat, "error", setErr)
		}
		c.notify(fmt.Sprintf("consent change for %s did not settle, reverted", cat))
		if err != nil {
			return fmt.Errorf("toggle %s: %w", cat, err)
		}
		return fmt.Errorf("toggle %s: %w", cat, common.ErrLedgerRejected)
	}

	if enabled {
		record.State = models.ConsentEnabledConfirmed
	} else {
		record.State = models.ConsentDisabled
		record.RewardRate = new(big.Int)
	}
	record.ChainEnabled = enabled
	record.ClaimID = ""
	if err := c.deps.Consents.Set(ctx, record); err != nil {
		return fmt.Errorf("toggle %s: %w", cat, err)
	}

	c.deps.Log.Info(ctx, "consent change confirmed", "category", cat, "enabled", enabled, "claim", resolved.ID)
	c.notify(fmt.Sprintf("sharing %s for %s confirmed", onOff(enabled), cat))
	return nil
}

// awaitWithRetry drives one claim to resolution, retrying transient failures
// per the confirmation policy. A terminal claim comes back with nil error
// even when its status is failed.
func (c *Coordinator) awaitWithRetry(ctx context.Context, claim ledger.Claim) (ledger.Claim, error) {
	backoff := retry.WithCappedDuration(confirmBackoffCap, retry.NewExponential(c.backoffBase))
	backoff = retry.WithMaxRetries(maxConfirmAttempts-1, backoff)

	var resolved ledger.Claim
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		resolved, err = c.deps.Ledger.AwaitConfirmation(ctx, claim, c.deps.ConfirmTimeout)
		if err != nil {
			if errors.Is(err, common.ErrLedgerUnreachable) || errors.Is(err, common.ErrLedgerTimeout) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return ledger.Claim{}, err
	}
	return resolved, nil
}

// Reconcile aligns one category's local record with ledger truth. It waits
// for any in-flight claim on the category to resolve first (blocking lock).
func (c *Coordinator) Reconcile(ctx context.Context, cat models.Category) error {
	l := c.lock(cat)
	l.Lock()
	defer l.Unlock()
	return c.reconcileLocked(ctx, cat)
}

// ReconcileAll runs consent reconciliation for every category and resolves
// pending share events. Called on startup ("app resume") and opportunistically.
func (c *Coordinator) ReconcileAll(ctx context.Context) error {
	var errs []error
	for _, cat := range models.AllCategories() {
		if err := c.Reconcile(ctx, cat); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.resolvePendingShares(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// reconcileLocked must be called with the category lock held. Chain truth
// wins unconditionally.
func (c *Coordinator) reconcileLocked(ctx context.Context, cat models.Category) error {
	record, err := c.deps.Consents.Get(ctx, cat)
	if err != nil {
		return fmt.Errorf("reconcile %s: %w", cat, err)
	}

	snapshot, err := c.deps.Ledger.GetConsentOnChain(ctx, c.deps.Address, cat)
	if err != nil {
		return fmt.Errorf("reconcile %s: %w", cat, err)
	}

	before := record.State
	c.applySnapshot(ctx, &record, snapshot)
	if err := c.deps.Consents.Set(ctx, record); err != nil {
		return fmt.Errorf("reconcile %s: %w", cat, err)
	}
	if before != record.State {
		c.deps.Log.Info(ctx, "consent reconciled to chain", "category", cat, "from", before, "to", record.State)
	}
	return nil
}

// applySnapshot rewrites a record to match the ledger's view.
func (c *Coordinator) applySnapshot(_ context.Context, record *models.ConsentRecord, snapshot ledger.ConsentSnapshot) {
	record.ClaimID = ""
	record.ChainEnabled = snapshot.Enabled
	if snapshot.Enabled {
		record.State = models.ConsentEnabledConfirmed
		record.RewardRate = snapshot.RewardRate
		if !snapshot.LastSettlement.IsZero() {
			record.LastSettlement = snapshot.LastSettlement
		}
	} else {
		record.State = models.ConsentDisabled
		record.RewardRate = new(big.Int)
	}
}

// resolvePendingShares polls outstanding share claims once. Claims that are
// still pending stay pending for the next pass.
func (c *Coordinator) resolvePendingShares(ctx context.Context) error {
	pending, err := c.deps.Shares.Pending(ctx)
	if err != nil {
		return fmt.Errorf("resolve pending shares: %w", err)
	}

	for _, event := range pending {
		if event.ClaimID == "" {
			continue
		}
		claim := ledger.Claim{ID: event.ClaimID, Kind: ledger.ClaimShare, Category: event.Category, Status: ledger.ClaimPending}
		resolved, err := c.deps.Ledger.AwaitConfirmation(ctx, claim, c.deps.ConfirmTimeout)
		if err != nil {
			if errors.Is(err, common.ErrLedgerTimeout) || errors.Is(err, common.ErrLedgerUnreachable) {
				continue
			}
			return fmt.Errorf("resolve pending shares: %w", err)
		}
		if err := c.settleShare(ctx, event, resolved); err != nil {
			return err
		}
	}
	return nil
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}

func (c *Coordinator) notify(message string) {
	if c.deps.Notifier != nil {
		c.deps.Notifier.Notify(message)
	}
}
