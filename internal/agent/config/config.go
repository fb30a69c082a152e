package config

import (
	"path/filepath"
	"time"
)

// Config holds runtime settings for the health wallet agent.
//
// Durations are time.Duration values; amounts never appear here — reward
// rates are per-toggle, not configuration.
type Config struct {
	// LedgerEndpoint is the URL of the ledger node's JSON-RPC endpoint.
	LedgerEndpoint string

	// DataDir holds everything the agent persists: the identity keystore,
	// the local sqlite database and the sample spool directory.
	DataDir string

	// CollectInterval is how often the background loop aggregates and
	// shares the current day's readings.
	CollectInterval time.Duration

	// ConfirmTimeout bounds a single ledger confirmation wait.
	ConfirmTimeout time.Duration

	// Shared-storage settings for payload publication.
	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3BaseEndpoint string
	S3Bucket       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.LedgerEndpoint = "http://127.0.0.1:8545"
	c.DataDir = "healthwallet-data"
	c.CollectInterval = 15 * time.Minute
	c.ConfirmTimeout = 45 * time.Second
	c.S3Region = "us-east-1"
	c.S3Bucket = "health-shares"
}

// VaultPath is the identity keystore location inside DataDir.
func (c *Config) VaultPath() string {
	return filepath.Join(c.DataDir, "identity.json")
}

// DatabaseDSN is the sqlite connection string for the local stores.
func (c *Config) DatabaseDSN() string {
	return filepath.Join(c.DataDir, "wallet.db")
}

// SpoolDir is where device exporters drop raw sample files.
func (c *Config) SpoolDir() string {
	return filepath.Join(c.DataDir, "spool")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
