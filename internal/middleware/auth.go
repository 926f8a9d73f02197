// Package middleware provides authentication, logging, metrics and tracing middleware for the API.
package middleware

import (
	"context"
	"errors"
	"strings"

	"devconnector/internal/auth"
	"devconnector/internal/models"
	"devconnector/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// Fiber locals written by AuthRequired.
const (
	LocalUserID = "userID"
	LocalClaims = "claims"
)

// TokenVerifier validates a raw bearer token and returns its claims.
type TokenVerifier interface {
	Verify(raw string) (*auth.Claims, error)
}

// AuthRequired rejects requests without a valid bearer token. On success the verified
// claims are stored in locals and the user ID is copied into the request context.
func AuthRequired(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			observability.AuthFailures.WithLabelValues("missing_token").Inc()
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := verifier.Verify(raw)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				observability.AuthFailures.WithLabelValues("expired").Inc()
				return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewTokenExpiredError())
			}
			observability.AuthFailures.WithLabelValues("invalid").Inc()
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewInvalidTokenError(nil))
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalClaims, claims)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), UserIDKey, claims.UserID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// ClaimsFrom returns the claims stored by AuthRequired.
func ClaimsFrom(c *fiber.Ctx) (*auth.Claims, bool) {
	claims, ok := c.Locals(LocalClaims).(*auth.Claims)
	return claims, ok && claims != nil
}

// UserIDFrom returns the authenticated user's ID.
func UserIDFrom(c *fiber.Ctx) (string, bool) {
	id, ok := c.Locals(LocalUserID).(string)
	return id, ok && id != ""
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
