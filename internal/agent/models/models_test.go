package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDayOf(t *testing.T) {
	ts := time.Date(2025, 3, 9, 23, 59, 59, 0, time.UTC)
	require.Equal(t, Day("2025-03-09"), DayOf(ts))

	midnight := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	require.Equal(t, Day("2025-03-10"), DayOf(midnight))
}

func TestDay_Time_RoundTrip(t *testing.T) {
	d := Day("2024-12-31")
	ts, err := d.Time()
	require.NoError(t, err)
	require.Equal(t, d, DayOf(ts))
}

func TestDay_Time_Invalid(t *testing.T) {
	_, err := Day("yesterday").Time()
	require.Error(t, err)
}

func TestParseCategory(t *testing.T) {
	for _, cat := range AllCategories() {
		got, err := ParseCategory(string(cat))
		require.NoError(t, err)
		require.Equal(t, cat, got)
	}

	_, err := ParseCategory("mood")
	require.Error(t, err)
}

func TestAllCategories_Ordered(t *testing.T) {
	cats := AllCategories()
	for i := 1; i < len(cats); i++ {
		require.Less(t, string(cats[i-1]), string(cats[i]), "categories must sort ascending")
	}
}

func TestDefaultConsent(t *testing.T) {
	r := DefaultConsent(CategoryHeart)
	require.Equal(t, CategoryHeart, r.Category)
	require.Equal(t, ConsentDisabled, r.State)
	require.Zero(t, r.RewardRate.Sign())
	require.False(t, r.SharingActive())
	require.True(t, r.LastSettlement.IsZero())
}

func TestSharingActive_OnlyWhenConfirmed(t *testing.T) {
	r := DefaultConsent(CategoryActivity)

	r.State = ConsentEnabledPending
	require.False(t, r.SharingActive(), "pending enablement must not share yet")

	r.State = ConsentEnabledConfirmed
	require.True(t, r.SharingActive())

	r.State = ConsentReconciling
	require.False(t, r.SharingActive())
}
