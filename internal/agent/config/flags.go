package config

import (
	"flag"
	"os"
	"time"

	"github.com/viktorlk/healthwallet/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-l string   ledger node RPC endpoint (default from Config)
//	-d string   data directory (default from Config)
//	-i int      collection interval in seconds (default from Config)
//	-t int      confirmation timeout in seconds (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-l", "-d", "-i", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.LedgerEndpoint, "l", cfg.LedgerEndpoint, "ledger node RPC endpoint")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "agent data directory")
	collectInterval := fs.Int("i", int(cfg.CollectInterval.Seconds()), "collection interval (in seconds)")
	confirmTimeout := fs.Int("t", int(cfg.ConfirmTimeout.Seconds()), "confirmation timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.CollectInterval = time.Duration(*collectInterval) * time.Second
	cfg.ConfirmTimeout = time.Duration(*confirmTimeout) * time.Second
}
