package handlers

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/jshaw/civicfeed/internal/store"
)

// StatsProvider calculates system-wide row counts
type StatsProvider interface {
	Counts(ctx context.Context) (*store.SystemStats, error)
}

// StatsHandler reports how much synced data the store currently holds
func StatsHandler(stats StatsProvider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		counts, err := stats.Counts(context.Background())
		if err != nil {
			log.Printf("Error calculating stats: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(errorBody{Error: "Could not calculate stats"})
		}

		return c.JSON(counts)
	}
}
