package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/viktorlk/healthwallet/internal/flagx"
	"github.com/viktorlk/healthwallet/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "15m"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config (which uses time.Duration).
type JsonConfig struct {
	LedgerEndpoint  string         `json:"ledger_endpoint"`
	DataDir         string         `json:"data_dir"`
	CollectInterval timex.Duration `json:"collect_interval"`
	ConfirmTimeout  timex.Duration `json:"confirm_timeout"`
	S3Region        string         `json:"s3_region"`
	S3AccessKey     string         `json:"s3_access_key"`
	S3SecretKey     string         `json:"s3_secret_key"`
	S3BaseEndpoint  string         `json:"s3_base_endpoint"`
	S3Bucket        string         `json:"s3_bucket"`
}

// parseJson overlays Config with values loaded from a JSON file selected via
// the -c/-config flags. Absent file means no overlay. Only fields present in
// the JSON override their defaults. Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.LedgerEndpoint != "" {
		cfg.LedgerEndpoint = jc.LedgerEndpoint
	}
	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	if jc.CollectInterval.Duration != 0 {
		cfg.CollectInterval = time.Duration(jc.CollectInterval.Duration)
	}
	if jc.ConfirmTimeout.Duration != 0 {
		cfg.ConfirmTimeout = time.Duration(jc.ConfirmTimeout.Duration)
	}
	if jc.S3Region != "" {
		cfg.S3Region = jc.S3Region
	}
	if jc.S3AccessKey != "" {
		cfg.S3AccessKey = jc.S3AccessKey
	}
	if jc.S3SecretKey != "" {
		cfg.S3SecretKey = jc.S3SecretKey
	}
	if jc.S3BaseEndpoint != "" {
		cfg.S3BaseEndpoint = jc.S3BaseEndpoint
	}
	if jc.S3Bucket != "" {
		cfg.S3Bucket = jc.S3Bucket
	}
}
