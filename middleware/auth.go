package middleware

import (
	"strings"

	"voting-system/models/session"
	sessionService "voting-system/services/session"
	"voting-system/types"

	"github.com/gofiber/fiber/v2"
)

// SessionFromContext returns the session attached by RequireSession or
// RequireVoter.
func SessionFromContext(c *fiber.Ctx) *session.Session {
	sess, _ := c.Locals("session").(*session.Session)
	return sess
}

func extractBearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return "", false
	}
	return tokenParts[1], true
}

// resolveSession turns the bearer token into a live session. The returned
// message is a client-facing reason when resolution fails.
func resolveSession(c *fiber.Ctx, sessions *sessionService.Service) (*session.Session, string) {
	token, ok := extractBearerToken(c)
	if !ok {
		return nil, "Missing or malformed authorization header"
	}

	sessionID, err := sessions.ParseToken(token)
	if err != nil {
		return nil, "Invalid session token"
	}

	sess, err := sessions.Get(sessionID)
	if err != nil {
		return nil, "Session expired or not found, please request a new code"
	}
	return sess, ""
}

// RequireSession resolves the bearer token to a live session and stores it in
// the request context. Pending and authenticated sessions both pass.
func RequireSession(sessions *sessionService.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, reason := resolveSession(c, sessions)
		if sess == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Status:  fiber.StatusUnauthorized,
				Message: reason,
			})
		}
		c.Locals("session", sess)
		return c.Next()
	}
}

// RequireVoter additionally demands an authenticated session, only these may
// cast votes.
func RequireVoter(sessions *sessionService.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, reason := resolveSession(c, sessions)
		if sess == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Status:  fiber.StatusUnauthorized,
				Message: reason,
			})
		}
		if !sess.IsAuthenticated() {
			return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
				Status:  fiber.StatusForbidden,
				Message: "Phone number verification required before voting",
			})
		}
		c.Locals("session", sess)
		return c.Next()
	}
}
