// Package anonymize transforms a day's health reading into the
// category-scoped payload that leaves the device. Payloads carry no identity:
// no address, no device id, no timestamps finer than the calendar day.
// Values are bucketed so a published payload cannot fingerprint its owner,
// and the encoding is canonical so the same reading always hashes the same.
package anonymize

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"

	"github.com/viktorlk/healthwallet/internal/agent/models"
)

// Result is an anonymized payload ready for publication. Hash is the sha256
// of Payload in hex; it is the only part the ledger ever sees.
type Result struct {
	Payload []byte
	Hash    string
}

// Anonymizer produces publishable payloads from readings.
type Anonymizer interface {
	Anonymize(reading models.HealthReading, cat models.Category) (Result, error)
}

// Bucketing granularity per metric.
const (
	stepsBucket    = 100
	caloriesBucket = 100
	distanceBucket = 0.1  // km
	heartBucket    = 5    // bpm
	sleepBucket    = 0.25 // hours
)

// Bucketer is the default Anonymizer: per-metric rounding to a fixed
// granularity, canonical JSON encoding.
type Bucketer struct{}

// NewBucketer returns the default anonymizer.
func NewBucketer() *Bucketer {
	return &Bucketer{}
}

// payload is the wire form. Metrics is a map so encoding/json emits keys in
// sorted order, which keeps the encoding canonical.
type payload struct {
	Category models.Category    `json:"category"`
	Day      models.Day         `json:"day"`
	Metrics  map[string]float64 `json:"metrics"`
}

func (b *Bucketer) Anonymize(reading models.HealthReading, cat models.Category) (Result, error) {
	var metrics map[string]float64
	switch cat {
	case models.CategoryActivity:
		metrics = map[string]float64{
			"steps":       bucket(float64(reading.Steps), stepsBucket),
			"calories":    bucket(reading.Calories, caloriesBucket),
			"distance_km": bucket(reading.Distance, distanceBucket),
		}
	case models.CategoryHeart:
		metrics = map[string]float64{
			"heart_rate_bpm": bucket(reading.HeartRate, heartBucket),
		}
	case models.CategorySleep:
		metrics = map[string]float64{
			"sleep_hours": bucket(reading.SleepHours, sleepBucket),
		}
	default:
		return Result{}, fmt.Errorf("no anonymization for category %q", cat)
	}

	data, err := json.Marshal(payload{Category: cat, Day: reading.Day, Metrics: metrics})
	if err != nil {
		return Result{}, fmt.Errorf("encode payload: %w", err)
	}

	digest := sha256.Sum256(data)
	return Result{Payload: data, Hash: hex.EncodeToString(digest[:])}, nil
}

// bucket rounds v to the nearest multiple of size. The float result is
// re-quantized through the division to avoid 0.30000000000000004-style
// artifacts in the encoded payload.
func bucket(v, size float64) float64 {
	n := math.Round(v / size)
	scaled := n * size
	// re-round to the bucket's own precision
	return math.Round(scaled*1e9) / 1e9
}
