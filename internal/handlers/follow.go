package handlers

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jshaw/civicfeed/internal/auth"
)

// FollowStore records and removes user follow relationships
type FollowStore interface {
	Follow(ctx context.Context, userID, repID uuid.UUID) error
	Unfollow(ctx context.Context, userID, repID uuid.UUID) error
}

// FollowHandler records that the authenticated user follows a representative
func FollowHandler(follows FollowStore, verifier *auth.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := authenticatedUser(c, verifier)
		if !ok {
			return nil
		}

		repID, err := uuid.Parse(c.Params("repID"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(errorBody{Error: "Invalid representative id"})
		}

		if err := follows.Follow(context.Background(), userID, repID); err != nil {
			log.Printf("Error following representative %s for user %s: %v", repID, userID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(errorBody{Error: "Could not follow representative"})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// UnfollowHandler removes a follow relationship
func UnfollowHandler(follows FollowStore, verifier *auth.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := authenticatedUser(c, verifier)
		if !ok {
			return nil
		}

		repID, err := uuid.Parse(c.Params("repID"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(errorBody{Error: "Invalid representative id"})
		}

		if err := follows.Unfollow(context.Background(), userID, repID); err != nil {
			log.Printf("Error unfollowing representative %s for user %s: %v", repID, userID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(errorBody{Error: "Could not unfollow representative"})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
