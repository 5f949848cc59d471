package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jshaw/civicfeed/internal/auth"
)

// errorBody is the JSON error envelope returned by every endpoint
type errorBody struct {
	Error string `json:"error"`
}

// bearerToken extracts the credential from an Authorization header
func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// authenticatedUser resolves the requesting user from the bearer token.
// The second return is false when the request is unauthenticated, in
// which case a 401 has already been written.
func authenticatedUser(c *fiber.Ctx, verifier *auth.Verifier) (uuid.UUID, bool) {
	token := bearerToken(c)
	if token == "" {
		c.Status(fiber.StatusUnauthorized).JSON(errorBody{Error: "User not authenticated"})
		return uuid.Nil, false
	}

	userID, err := verifier.UserID(token)
	if err != nil {
		c.Status(fiber.StatusUnauthorized).JSON(errorBody{Error: "User not authenticated"})
		return uuid.Nil, false
	}

	return userID, true
}
