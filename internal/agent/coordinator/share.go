package coordinator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/viktorlk/healthwallet/internal/agent/health"
	"github.com/viktorlk/healthwallet/internal/agent/ledger"
	"github.com/viktorlk/healthwallet/internal/agent/models"
	"github.com/viktorlk/healthwallet/internal/common"
)

// CollectAndShare aggregates the day's samples, caches the reading and runs
// the share pipeline for it. "No data" from the source and cache failures
// both end the cycle quietly; neither produces a share event.
func (c *Coordinator) CollectAndShare(ctx context.Context, day models.Day) error {
	reading, err := health.Aggregate(ctx, c.deps.Source, day, time.Now())
	if errors.Is(err, common.ErrNoData) {
		c.deps.Log.Debug(ctx, "no health data this cycle", "day", day)
		return nil
	}
	if err != nil {
		return fmt.Errorf("collect %s: %w", day, err)
	}

	if err := c.deps.Readings.Put(ctx, reading); err != nil {
		c.deps.Log.Warn(ctx, "reading cache unavailable, skipping cycle", "day", day, "error", err)
		return nil
	}

	return c.ProcessReading(ctx, reading)
}

// ProcessReading runs the share pipeline for every category against one
// reading. Per-category failures are collected, not fatal to the others.
func (c *Coordinator) ProcessReading(ctx context.Context, reading models.HealthReading) error {
	var errs []error
	for _, cat := range reading.Categories() {
		if err := c.shareCategory(ctx, reading, cat); err != nil {
			c.deps.Log.Error(ctx, "share pipeline failed", "day", reading.Day, "category", cat, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// shareCategory settles one (day, category) pair: reconcile, check
// eligibility, anonymize, publish, claim the reward and drive it to
// resolution. The share_events row is the exactly-once guard.
func (c *Coordinator) shareCategory(ctx context.Context, reading models.HealthReading, cat models.Category) error {
	l := c.lock(cat)
	if !l.TryLock() {
		// a toggle is settling; this category gets picked up next cycle
		c.deps.Log.Debug(ctx, "category busy, skipping", "category", cat)
		return nil
	}
	defer l.Unlock()

	// chain truth before any reward claim
	if err := c.reconcileLocked(ctx, cat); err != nil {
		return err
	}
	record, err := c.deps.Consents.Get(ctx, cat)
	if err != nil {
		return err
	}
	if !record.SharingActive() {
		return nil
	}

	event, err := c.deps.Shares.Get(ctx, reading.Day, cat)
	if err != nil {
		return err
	}
	if event != nil {
		switch event.Status {
		case models.ShareConfirmed, models.ShareFailed:
			// settled or given up; never reissue for this day
			return nil
		case models.SharePending:
			if event.ClaimID != "" {
				return c.resumeClaim(ctx, *event)
			}
			if event.Attempts >= models.MaxShareAttempts {
				return c.exhaust(ctx, *event)
			}
		}
	}

	return c.submitShare(ctx, reading, cat, event)
}

// resumeClaim picks up a share claim that was submitted but never resolved,
// typically after a crash or a local timeout.
func (c *Coordinator) resumeClaim(ctx context.Context, event models.ShareEvent) error {
	claim := ledger.Claim{
		ID:       event.ClaimID,
		Kind:     ledger.ClaimShare,
		Category: event.Category,
		Status:   ledger.ClaimPending,
	}
	resolved, err := c.awaitWithRetry(ctx, claim)
	if err != nil {
		return fmt.Errorf("resume share claim %s: %w", event.ClaimID, err)
	}
	return c.settleShare(ctx, event, resolved)
}

// submitShare runs one settlement attempt. event may be nil (first attempt
// for the pair) or a prior attempt whose claim failed.
func (c *Coordinator) submitShare(ctx context.Context, reading models.HealthReading, cat models.Category, prior *models.ShareEvent) error {
	result, err := c.deps.Anon.Anonymize(reading, cat)
	if err != nil {
		return fmt.Errorf("share %s/%s: %w", reading.Day, cat, err)
	}

	event := models.ShareEvent{Day: reading.Day, Category: cat}
	if prior != nil {
		event = *prior
	}

	// reuse the published object when the reading has not changed since
	// the prior attempt
	if event.PayloadRef == "" || event.DataHash != result.Hash {
		ref, err := c.deps.Pub.Publish(ctx, reading.Day, result.Payload)
		if err != nil {
			return fmt.Errorf("share %s/%s: publish: %w", reading.Day, cat, err)
		}
		event.PayloadRef = ref
		event.DataHash = result.Hash
	}

	claim, err := c.deps.Ledger.SubmitShareAndReward(ctx, c.deps.Address, []models.Category{cat}, result.Hash)
	if err != nil {
		return fmt.Errorf("share %s/%s: %w", reading.Day, cat, err)
	}

	event.Status = models.SharePending
	event.Attempts++
	event.ClaimID = claim.ID
	event.UpdatedAt = time.Now().UTC()
	if err := c.deps.Shares.Upsert(ctx, event); err != nil {
		return fmt.Errorf("share %s/%s: %w", reading.Day, cat, err)
	}

	resolved, err := c.awaitWithRetry(ctx, claim)
	if err != nil {
		// claim stays pending locally and on the ledger; reconciliation
		// or the next cycle resolves it
		return fmt.Errorf("share %s/%s: %w", reading.Day, cat, err)
	}
	return c.settleShare(ctx, event, resolved)
}

// settleShare records a resolved claim's outcome.
func (c *Coordinator) settleShare(ctx context.Context, event models.ShareEvent, resolved ledger.Claim) error {
	now := time.Now().UTC()
	event.UpdatedAt = now

	switch resolved.Status {
	case ledger.ClaimConfirmed:
		event.Status = models.ShareConfirmed
		if err := c.deps.Shares.Upsert(ctx, event); err != nil {
			return fmt.Errorf("settle %s/%s: %w", event.Day, event.Category, err)
		}

		record, err := c.deps.Consents.Get(ctx, event.Category)
		if err != nil {
			return fmt.Errorf("settle %s/%s: %w", event.Day, event.Category, err)
		}
		record.LastSettlement = now
		if err := c.deps.Consents.Set(ctx, record); err != nil {
			return fmt.Errorf("settle %s/%s: %w", event.Day, event.Category, err)
		}

		c.deps.Log.Info(ctx, "reward settled", "day", event.Day, "category", event.Category, "claim", resolved.ID)
		c.notify(fmt.Sprintf("reward settled for %s data on %s", event.Category, event.Day))
		return nil

	case ledger.ClaimFailed:
		event.ClaimID = ""
		if event.Attempts >= models.MaxShareAttempts {
			return c.exhaust(ctx, event)
		}
		event.Status = models.SharePending
		if err := c.deps.Shares.Upsert(ctx, event); err != nil {
			return fmt.Errorf("settle %s/%s: %w", event.Day, event.Category, err)
		}
		c.deps.Log.Warn(ctx, "share claim failed, will retry next cycle",
			"day", event.Day, "category", event.Category, "attempts", event.Attempts)
		return nil
	}

	return fmt.Errorf("settle %s/%s: claim %s still pending", event.Day, event.Category, resolved.ID)
}

// exhaust marks an event failed after its attempt budget ran out. The
// failure is surfaced, never dropped.
func (c *Coordinator) exhaust(ctx context.Context, event models.ShareEvent) error {
	event.Status = models.ShareFailed
	event.ClaimID = ""
	event.UpdatedAt = time.Now().UTC()
	if err := c.deps.Shares.Upsert(ctx, event); err != nil {
		return fmt.Errorf("mark failed %s/%s: %w", event.Day, event.Category, err)
	}
	c.deps.Log.Error(ctx, "share attempts exhausted", "day", event.Day, "category", event.Category)
	c.notify(fmt.Sprintf("sharing %s data for %s failed after %d attempts", event.Category, event.Day, models.MaxShareAttempts))
	return nil
}
