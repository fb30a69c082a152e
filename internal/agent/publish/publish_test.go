package publish

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStorageKey_Layout(t *testing.T) {
	key, err := StorageKey("2025-01-07")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(key, "shares/2025/01/07/"), key)
}

func TestStorageKey_UniquePerCall(t *testing.T) {
	first, err := StorageKey("2025-01-07")
	require.NoError(t, err)
	second, err := StorageKey("2025-01-07")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestStorageKey_InvalidDay(t *testing.T) {
	_, err := StorageKey("yesterday")
	require.Error(t, err)
}

func TestMemory_PublishAndGet(t *testing.T) {
	m := NewMemory()

	key, err := m.Publish(context.Background(), "2025-01-07", []byte(`{"steps":8400}`))
	require.NoError(t, err)

	payload, ok := m.Get(key)
	require.True(t, ok)
	require.JSONEq(t, `{"steps":8400}`, string(payload))
	require.Equal(t, 1, m.Len())
}

func TestMemory_CopiesPayload(t *testing.T) {
	m := NewMemory()

	buf := []byte(`{"steps":8400}`)
	key, err := m.Publish(context.Background(), "2025-01-07", buf)
	require.NoError(t, err)

	buf[2] = 'X'
	payload, _ := m.Get(key)
	require.JSONEq(t, `{"steps":8400}`, string(payload))
}
