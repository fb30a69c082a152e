// Package health is the boundary to the device's health data store. The
// Source interface is the seam for platform health APIs; the shipped
// implementation reads sample files dropped into a spool directory by a
// device exporter. Aggregation of raw samples into daily readings also lives
// here.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/viktorlk/healthwallet/internal/agent/models"
)

// Kind identifies one raw sample stream.
type Kind string

const (
	KindSteps     Kind = "steps"
	KindHeartRate Kind = "heart_rate"
	KindSleep     Kind = "sleep"
	KindCalories  Kind = "calories"
	KindDistance  Kind = "distance"
)

// AllKinds lists every sample stream the agent reads.
func AllKinds() []Kind {
	return []Kind{KindSteps, KindHeartRate, KindSleep, KindCalories, KindDistance}
}

// KindsFor maps a consent category to the sample streams that feed it.
func KindsFor(cat models.Category) []Kind {
	switch cat {
	case models.CategoryActivity:
		return []Kind{KindSteps, KindCalories, KindDistance}
	case models.CategoryHeart:
		return []Kind{KindHeartRate}
	case models.CategorySleep:
		return []Kind{KindSleep}
	}
	return nil
}

// Sample is one raw measurement. For point metrics End equals Start; for
// interval metrics (sleep) the value spans [Start, End).
type Sample struct {
	Value float64   `json:"value"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Source provides raw health samples.
type Source interface {
	// Available reports whether the underlying store can be read at all.
	Available(ctx context.Context) bool

	// RequestPermissions asks the platform for read access to the given
	// streams. Idempotent; a second call for granted kinds is a no-op.
	RequestPermissions(ctx context.Context, kinds []Kind) error

	// Samples returns raw samples for one stream with
	// start <= sample.Start < end, in no particular order.
	Samples(ctx context.Context, kind Kind, start, end time.Time) ([]Sample, error)
}

// FileSource reads samples from JSON files in a spool directory. Each file
// holds one day's export: a map from kind to its samples. File names are
// free-form; every *.json file in the directory is scanned.
type FileSource struct {
	dir string
}

// NewFileSource returns a FileSource over dir. The directory is created if
// missing.
func NewFileSource(dir string) (*FileSource, error) {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return nil, fmt.Errorf("create spool dir %s: %w", dir, err)
	}
	return &FileSource{dir: dir}, nil
}

func (s *FileSource) Available(_ context.Context) bool {
	info, err := os.Stat(s.dir)
	return err == nil && info.IsDir()
}

// RequestPermissions is a no-op for the file source: filesystem permissions
// are the only gate, and they were checked at construction.
func (s *FileSource) RequestPermissions(_ context.Context, _ []Kind) error {
	return nil
}

func (s *FileSource) Samples(ctx context.Context, kind Kind, start, end time.Time) ([]Sample, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read spool dir: %w", err)
	}

	var result []Sample
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		samples, err := s.readFile(filepath.Join(s.dir, entry.Name()), kind)
		if err != nil {
			// a file vanishing mid-scan is not an error, exporters
			// rotate their drops
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		for _, sample := range samples {
			if !sample.Start.Before(start) && sample.Start.Before(end) {
				result = append(result, sample)
			}
		}
	}
	return result, nil
}

func (s *FileSource) readFile(path string, kind Kind) ([]Sample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var export map[Kind][]Sample
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("malformed spool file %s: %w", filepath.Base(path), err)
	}
	return export[kind], nil
}
