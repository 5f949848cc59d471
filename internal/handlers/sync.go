package handlers

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/jshaw/civicfeed/internal/sync"
)

// SyncRunner runs one sync pass
type SyncRunner interface {
	Run(ctx context.Context) (*sync.Stats, error)
}

// syncResponse is the JSON summary returned by the sync trigger
type syncResponse struct {
	Message            string `json:"message"`
	BillsFetched       int    `json:"billsFetched"`
	BillsUpserted      int    `json:"billsUpserted"`
	VotesFetched       int    `json:"votesFetched"`
	RollCallsUpserted  int    `json:"rollCallsUpserted"`
	PositionsProcessed int    `json:"positionsProcessed"`
	PositionErrors     int    `json:"positionErrors"`
}

// SyncHandler triggers a sync pass. When authToken is non-empty the
// caller must present it as a bearer token (the scheduler's shared
// secret); empty means the endpoint is open for local use.
func SyncHandler(engine SyncRunner, authToken string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if authToken != "" {
			presented := bearerToken(c)
			if subtle.ConstantTimeCompare([]byte(presented), []byte(authToken)) != 1 {
				return c.Status(fiber.StatusUnauthorized).JSON(errorBody{Error: "User not authenticated"})
			}
		}

		stats, err := engine.Run(context.Background())
		if stats == nil {
			stats = &sync.Stats{}
		}

		resp := syncResponse{
			BillsFetched:       stats.BillsFetched,
			BillsUpserted:      stats.BillsUpserted,
			VotesFetched:       stats.VotesFetched,
			RollCallsUpserted:  stats.RollCallsUpserted,
			PositionsProcessed: stats.PositionsProcessed,
			PositionErrors:     stats.PositionErrors,
		}

		if err != nil {
			log.Printf("Sync pass failed: %v", err)
			resp.Message = fmt.Sprintf("Sync failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(resp)
		}

		resp.Message = fmt.Sprintf(
			"Sync completed. Bills fetched: %d, upserted: %d. Votes fetched: %d, roll calls upserted: %d. Positions processed: %d (errors: %d).",
			stats.BillsFetched, stats.BillsUpserted,
			stats.VotesFetched, stats.RollCallsUpserted,
			stats.PositionsProcessed, stats.PositionErrors,
		)
		return c.JSON(resp)
	}
}
