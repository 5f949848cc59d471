package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jshaw/civicfeed/internal/config"
	"github.com/jshaw/civicfeed/internal/congress"
	"github.com/jshaw/civicfeed/internal/store"
	"github.com/jshaw/civicfeed/internal/sync"
	"github.com/spf13/cobra"
)

var syncLookbackHours int

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync pass against the Congress.gov API",
	Long: `Sync fetches bills and roll-call votes updated within the lookback
window, upserts them into PostgreSQL, and fans out to fetch each roll
call's per-member vote positions.

The pass is idempotent: re-running it over the same window updates
rows in place and never creates duplicates.

Examples:
  # Sync the default 24-hour window
  ./civicfeed sync

  # Sync a wider window after downtime
  ./civicfeed sync --lookback-hours 72`,
	Run: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().IntVar(&syncLookbackHours, "lookback-hours", 0, "Override the SYNC_LOOKBACK_HOURS window")
}

func runSync(cmd *cobra.Command, args []string) {
	cfg := config.FromEnv()
	if err := cfg.ValidateSync(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if syncLookbackHours > 0 {
		cfg.SyncLookback = time.Duration(syncLookbackHours) * time.Hour
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	log.Println("Connecting to database...")
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := store.EnsureSchema(db); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	engine := sync.NewEngine(
		congress.NewClient(cfg.CongressAPIKey),
		store.NewBillStore(db),
		store.NewRollCallStore(db),
		store.NewRepresentativeStore(db),
		sync.Options{
			Lookback:   cfg.SyncLookback,
			BatchSize:  cfg.SyncBatchSize,
			BatchDelay: cfg.SyncBatchDelay,
		},
	)

	log.Printf("Starting sync pass (lookback %s)", cfg.SyncLookback)
	stats, err := engine.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			log.Println("Sync cancelled")
			os.Exit(1)
		}
		engine.PrintSummary(stats)
		log.Fatalf("Sync failed: %v", err)
	}
	engine.PrintSummary(stats)

	if stats.PositionErrors > 0 {
		os.Exit(1)
	}
}
