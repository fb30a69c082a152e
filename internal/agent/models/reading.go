package models

import (
	"fmt"
	"time"
)

// Day is a calendar day in "2006-01-02" form. Readings and share events are
// keyed by it.
type Day string

// DayOf truncates t to its calendar day in t's location.
func DayOf(t time.Time) Day {
	return Day(t.Format("2006-01-02"))
}

// Time returns midnight of the day in UTC.
func (d Day) Time() (time.Time, error) {
	t, err := time.Parse("2006-01-02", string(d))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: %w", d, err)
	}
	return t, nil
}

// HealthReading is one day's aggregated health metrics. All values are
// non-negative; zero is a valid measurement, not an absence marker. A later
// aggregation for the same day replaces the cached one (last write wins).
type HealthReading struct {
	Day        Day
	Steps      int64
	HeartRate  float64 // arithmetic mean, beats per minute
	SleepHours float64
	Calories   float64 // active energy, kcal
	Distance   float64 // kilometres
	UpdatedAt  time.Time
}

// Categories returns the consent categories this reading carries data for.
// The full set: a reading always covers every category, because zero values
// are measurements too.
func (r HealthReading) Categories() []Category {
	return AllCategories()
}
