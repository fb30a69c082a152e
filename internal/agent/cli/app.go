// Package cli is the interactive front end of the health wallet agent: a
// small REPL over the coordinator, plus the one place where base-unit token
// amounts become human-readable decimals.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/viktorlk/healthwallet/internal/agent/anonymize"
	"github.com/viktorlk/healthwallet/internal/agent/config"
	"github.com/viktorlk/healthwallet/internal/agent/coordinator"
	"github.com/viktorlk/healthwallet/internal/agent/health"
	"github.com/viktorlk/healthwallet/internal/agent/ledger"
	"github.com/viktorlk/healthwallet/internal/agent/models"
	"github.com/viktorlk/healthwallet/internal/agent/publish"
	"github.com/viktorlk/healthwallet/internal/agent/repositories/consent"
	"github.com/viktorlk/healthwallet/internal/agent/repositories/readings"
	"github.com/viktorlk/healthwallet/internal/agent/repositories/shares"
	"github.com/viktorlk/healthwallet/internal/agent/storage"
	"github.com/viktorlk/healthwallet/internal/agent/vault"
	"github.com/viktorlk/healthwallet/internal/common"
	"github.com/viktorlk/healthwallet/internal/logging"

	_ "modernc.org/sqlite"
)

// App wires the agent's service graph and drives the REPL.
type App struct {
	config   *config.Config
	vault    *vault.Vault
	ledger   ledger.Client
	coord    *coordinator.Coordinator
	consents consent.Repository
	readings readings.Repository
	shares   shares.Repository
	log      logging.Logger
}

// NewApp builds the full service graph: vault, local stores, ledger client,
// publisher and coordinator. It prompts for the vault passphrase on stdin.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if err := os.MkdirAll(c.DataDir, 0o770); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	passphrase, err := GetPassphrase(os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("read passphrase: %w", err)
	}
	v, err := vault.Open(c.VaultPath(), passphrase)
	common.WipeByteArray(passphrase)
	if err != nil {
		return nil, err
	}

	db, err := storage.InitDatabase(ctx, c.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	ledgerClient, err := ledger.Dial(ctx, c.LedgerEndpoint, v, log)
	if err != nil {
		return nil, err
	}

	source, err := health.NewFileSource(c.SpoolDir())
	if err != nil {
		return nil, err
	}

	var pub publish.Publisher
	if c.S3BaseEndpoint != "" {
		pub, err = publish.NewS3Publisher(ctx, publish.S3Config{
			Region:       c.S3Region,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
		})
		if err != nil {
			return nil, err
		}
	} else {
		log.Warn(ctx, "no shared storage configured, payloads stay in memory")
		pub = publish.NewMemory()
	}

	app := &App{
		config:   c,
		vault:    v,
		ledger:   ledgerClient,
		consents: consent.NewSQLiteRepository(db),
		readings: readings.NewSQLiteRepository(db),
		shares:   shares.NewSQLiteRepository(db),
		log:      log,
	}

	app.coord = coordinator.New(coordinator.Deps{
		Address:        v.Address(),
		Ledger:         ledgerClient,
		Consents:       app.consents,
		Readings:       app.readings,
		Shares:         app.shares,
		Source:         source,
		Anon:           anonymize.NewBucketer(),
		Pub:            pub,
		Notifier:       printNotifier{},
		Log:            log,
		ConfirmTimeout: c.ConfirmTimeout,
	})

	return app, nil
}

// printNotifier surfaces coordinator outcomes on the terminal.
type printNotifier struct{}

func (printNotifier) Notify(message string) {
	fmt.Println("!", message)
}

// Run reconciles state, starts the background collection loop and enters the
// REPL. Returns when the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.ledger.Close()

	if err := a.coord.ReconcileAll(ctx); err != nil {
		a.log.Warn(ctx, "startup reconciliation incomplete", "error", err)
	}

	go a.startCollectLoop(ctx, a.config.CollectInterval)

	a.Root(ctx)
}

// startCollectLoop aggregates and shares the current day's readings on a
// fixed interval until ctx is cancelled.
func (a *App) startCollectLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			day := models.DayOf(time.Now())
			if err := a.coord.CollectAndShare(ctx, day); err != nil {
				a.log.Error(ctx, "collection cycle failed", "day", day, "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
