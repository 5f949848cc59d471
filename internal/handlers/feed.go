package handlers

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jshaw/civicfeed/internal/auth"
	"github.com/jshaw/civicfeed/internal/feed"
	"github.com/jshaw/civicfeed/internal/model"
)

// FeedProvider assembles a user's paginated activity feed
type FeedProvider interface {
	GetFeed(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]model.FeedItem, error)
}

// feedResponse wraps the feed page
type feedResponse struct {
	Feed []model.FeedItem `json:"feed"`
}

// FeedHandler serves the authenticated user's activity feed
func FeedHandler(feeds FeedProvider, verifier *auth.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := authenticatedUser(c, verifier)
		if !ok {
			return nil
		}

		page := c.QueryInt("page", 1)
		limit := c.QueryInt("limit", feed.DefaultPageSize)

		items, err := feeds.GetFeed(context.Background(), userID, page, limit)
		if err != nil {
			log.Printf("Error assembling feed for user %s: %v", userID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(errorBody{Error: "Could not retrieve feed"})
		}

		return c.JSON(feedResponse{Feed: items})
	}
}
