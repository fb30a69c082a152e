package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPassphrase_UsesTerminalSeam(t *testing.T) {
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func(fd int) ([]byte, error) {
		return []byte("hunter2"), nil
	}

	var out bytes.Buffer
	pw, err := GetPassphrase(&out)
	require.NoError(t, err)
	assert.Equal(t, []byte("hunter2"), pw)
	assert.Contains(t, out.String(), "passphrase")
}

func TestGetPassphrase_PropagatesError(t *testing.T) {
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func(fd int) ([]byte, error) {
		return nil, errors.New("not a terminal")
	}

	var out bytes.Buffer
	_, err := GetPassphrase(&out)
	require.Error(t, err)
}

func TestDescribeState(t *testing.T) {
	assert.Equal(t, "sharing off", describeState("disabled"))
	assert.Equal(t, "sharing on", describeState("enabled_confirmed"))
	assert.Equal(t, "enabling... (awaiting ledger)", describeState("enabled_pending"))
	assert.Equal(t, "reconciling", describeState("reconciling"))
}
