// Package config loads runtime configuration for the health wallet agent.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-l string   URL of the ledger node RPC endpoint
//	-d string   agent data directory (keystore, local db, sample spool)
//	-i int      reading collection interval (seconds)
//	-t int      ledger confirmation timeout (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "15m" or integer nanoseconds:
//
//	{
//	  "ledger_endpoint": "http://127.0.0.1:8545",
//	  "data_dir": "healthwallet-data",
//	  "collect_interval": "15m",
//	  "confirm_timeout": "45s",
//	  "s3_region": "us-east-1",
//	  "s3_access_key": "...",
//	  "s3_secret_key": "...",
//	  "s3_base_endpoint": "http://127.0.0.1:9000",
//	  "s3_bucket": "health-shares"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
