package health

import (
	"context"
	"fmt"
	"time"

	"github.com/viktorlk/healthwallet/internal/agent/models"
	"github.com/viktorlk/healthwallet/internal/common"
)

// Aggregate folds one day's raw samples into a HealthReading. Steps, calories
// and distance sum; heart rate averages; sleep sums interval hours. When
// every stream comes back empty it returns ErrNoData, which is distinct from
// a reading that is legitimately all zeros.
func Aggregate(ctx context.Context, src Source, day models.Day, now time.Time) (models.HealthReading, error) {
	start, err := day.Time()
	if err != nil {
		return models.HealthReading{}, err
	}
	end := start.Add(24 * time.Hour)

	var (
		reading = models.HealthReading{Day: day, UpdatedAt: now.UTC()}
		hasData bool
	)
	for _, kind := range AllKinds() {
		samples, err := src.Samples(ctx, kind, start, end)
		if err != nil {
			return models.HealthReading{}, fmt.Errorf("sample %s: %w", kind, err)
		}
		if len(samples) > 0 {
			hasData = true
		}

		switch kind {
		case KindSteps:
			reading.Steps = int64(sum(samples))
		case KindCalories:
			reading.Calories = sum(samples)
		case KindDistance:
			reading.Distance = sum(samples)
		case KindHeartRate:
			reading.HeartRate = mean(samples)
		case KindSleep:
			reading.SleepHours = intervalHours(samples)
		}
	}

	if !hasData {
		return models.HealthReading{}, fmt.Errorf("%w: %s", common.ErrNoData, day)
	}
	return reading, nil
}

func sum(samples []Sample) float64 {
	var total float64
	for _, s := range samples {
		total += s.Value
	}
	return total
}

func mean(samples []Sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	return sum(samples) / float64(len(samples))
}

func intervalHours(samples []Sample) float64 {
	var total float64
	for _, s := range samples {
		if s.End.After(s.Start) {
			total += s.End.Sub(s.Start).Hours()
		}
	}
	return total
}
