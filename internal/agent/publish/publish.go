// Package publish uploads anonymized payloads to shared storage. Only the
// payload body travels; the content hash goes to the ledger separately.
package publish

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/viktorlk/healthwallet/internal/agent/models"
)

// Publisher stores one anonymized payload and returns a storage reference
// for it. References are opaque to callers.
type Publisher interface {
	Publish(ctx context.Context, day models.Day, payload []byte) (string, error)
}

// StorageKey builds the object key for a day's payload. The uuid suffix keeps
// re-publications (after a failed settlement) from overwriting each other.
func StorageKey(day models.Day) (string, error) {
	t, err := day.Time()
	if err != nil {
		return "", fmt.Errorf("storage key: %w", err)
	}
	return fmt.Sprintf("shares/%d/%02d/%02d/%v", t.Year(), t.Month(), t.Day(), uuid.New()), nil
}

// Memory is an in-process Publisher for tests and offline runs.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func (m *Memory) Publish(_ context.Context, day models.Day, payload []byte) (string, error) {
	key, err := StorageKey(day)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), payload...)
	return key, nil
}

// Get returns a stored payload, for test assertions.
func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.objects[key]
	return payload, ok
}

// Len returns the number of stored payloads.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
