package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/viktorlk/healthwallet/internal/agent/models"
	"github.com/viktorlk/healthwallet/internal/common"
)

// status prints every category's consent state and settlement info.
func (a *App) status(ctx context.Context) {
	records, err := a.consents.All(ctx)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	byCat := make(map[models.Category]models.ConsentRecord, len(records))
	for _, r := range records {
		byCat[r.Category] = r
	}

	for _, cat := range models.AllCategories() {
		record, ok := byCat[cat]
		if !ok {
			record = models.DefaultConsent(cat)
		}
		line := fmt.Sprintf("%-10s %s", cat, describeState(record.State))
		if record.State == models.ConsentEnabledConfirmed {
			line += fmt.Sprintf("  rate %s/day", FormatAmount(record.RewardRate))
			if !record.LastSettlement.IsZero() {
				line += "  last settled " + record.LastSettlement.Format(time.RFC3339)
			}
		}
		fmt.Println(line)
	}
}

func describeState(state models.ConsentState) string {
	switch state {
	case models.ConsentEnabledPending:
		return "enabling... (awaiting ledger)"
	case models.ConsentEnabledConfirmed:
		return "sharing on"
	case models.ConsentReconciling:
		return "reconciling"
	default:
		return "sharing off"
	}
}

func (a *App) balance(ctx context.Context) {
	amount, err := a.ledger.GetBalance(ctx, a.vault.Address())
	if err != nil {
		if errors.Is(err, common.ErrLedgerUnreachable) {
			fmt.Println("Ledger unreachable, try again later")
			return
		}
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Balance:", FormatAmount(amount), "HLT")
}

func (a *App) enable(ctx context.Context, category, rate string) {
	cat, err := models.ParseCategory(category)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	rewardRate, err := ParseAmount(rate)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Printf("Enabling %s sharing, waiting for ledger confirmation...\n", cat)
	if err := a.coord.EnableSharing(ctx, cat, rewardRate); err != nil {
		a.printToggleError(cat, err)
	}
}

func (a *App) disable(ctx context.Context, category string) {
	cat, err := models.ParseCategory(category)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Printf("Disabling %s sharing, waiting for ledger confirmation...\n", cat)
	if err := a.coord.DisableSharing(ctx, cat); err != nil {
		a.printToggleError(cat, err)
	}
}

func (a *App) printToggleError(cat models.Category, err error) {
	switch {
	case errors.Is(err, common.ErrClaimInFlight):
		fmt.Printf("A change for %s is still settling; wait for it to finish\n", cat)
	case errors.Is(err, common.ErrLedgerTimeout):
		fmt.Println("The ledger did not confirm in time; run 'status' later or retry")
	case errors.Is(err, common.ErrLedgerUnreachable):
		fmt.Println("Ledger unreachable, try again later")
	default:
		fmt.Println("Error:", err)
	}
}

// collect runs one aggregation and share cycle for today.
func (a *App) collect(ctx context.Context) {
	day := models.DayOf(time.Now())
	fmt.Println("Collecting readings for", day)
	if err := a.coord.CollectAndShare(ctx, day); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Done")
}

// listReadings shows the last week of cached readings.
func (a *App) listReadings(ctx context.Context) {
	now := time.Now()
	from := models.DayOf(now.AddDate(0, 0, -7))
	to := models.DayOf(now)

	list, err := a.readings.Range(ctx, from, to)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	if len(list) == 0 {
		fmt.Println("No cached readings")
		return
	}

	for _, r := range list {
		fmt.Printf("%s  steps %d  hr %.0f bpm  sleep %.2f h  %.0f kcal  %.1f km\n",
			r.Day, r.Steps, r.HeartRate, r.SleepHours, r.Calories, r.Distance)
	}
}
