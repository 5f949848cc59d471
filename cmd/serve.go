package cmd

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/jshaw/civicfeed/internal/auth"
	"github.com/jshaw/civicfeed/internal/config"
	"github.com/jshaw/civicfeed/internal/congress"
	"github.com/jshaw/civicfeed/internal/feed"
	"github.com/jshaw/civicfeed/internal/handlers"
	"github.com/jshaw/civicfeed/internal/store"
	"github.com/jshaw/civicfeed/internal/sync"
	"github.com/spf13/cobra"
)

var port string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the civicfeed web server",
	Long:  `Start the web server exposing the sync trigger and the activity feed.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Use PORT env var if set, otherwise use flag value
		if envPort := os.Getenv("PORT"); envPort != "" && port == "8080" {
			port = envPort
		}

		cfg := config.FromEnv()
		if err := cfg.ValidateServe(); err != nil {
			log.Fatalf("Invalid configuration: %v", err)
		}

		db, err := store.NewDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := store.EnsureSchema(db); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}

		// Initialize stores
		billStore := store.NewBillStore(db)
		rollCallStore := store.NewRollCallStore(db)
		repStore := store.NewRepresentativeStore(db)
		feedStore := store.NewFeedStore(db)
		statsStore := store.NewStatsStore(db)

		engine := sync.NewEngine(
			congress.NewClient(cfg.CongressAPIKey),
			billStore,
			rollCallStore,
			repStore,
			sync.Options{
				Lookback:   cfg.SyncLookback,
				BatchSize:  cfg.SyncBatchSize,
				BatchDelay: cfg.SyncBatchDelay,
			},
		)
		assembler := feed.NewAssembler(repStore, feedStore)
		verifier := auth.NewVerifier(cfg.JWTSecret)

		app := fiber.New(fiber.Config{
			AppName: "civicfeed",
		})

		app.Use(logger.New())

		// Routes
		app.Get("/healthz", func(c *fiber.Ctx) error {
			return c.SendString("ok")
		})
		app.Get("/stats", handlers.StatsHandler(statsStore))

		app.Post("/sync", handlers.SyncHandler(engine, cfg.SyncAuthToken))

		app.Get("/feed", handlers.FeedHandler(assembler, verifier))
		app.Post("/representatives/:repID/follow", handlers.FollowHandler(repStore, verifier))
		app.Delete("/representatives/:repID/follow", handlers.UnfollowHandler(repStore, verifier))

		log.Printf("Starting server on :%s", port)
		if err := app.Listen(":" + port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&port, "port", "p", "8080", "Port to run the server on")
}
