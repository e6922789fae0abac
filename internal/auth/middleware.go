package auth

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Locals keys set by the middleware for downstream handlers.
const (
	LocalUserID = "user_id"
	LocalEmail  = "email"
)

// RequireAuth rejects requests without a valid bearer token and stores the
// principal in the request locals.
func RequireAuth(secret string) fiber.Handler {
	manager := NewManager(secret)

	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": true, "message": "missing authorization header",
			})
		}
		token, err := ExtractTokenFromHeader(authHeader)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": true, "message": "invalid authorization header format",
			})
		}
		claims, err := manager.VerifyToken(token)
		if err != nil {
			log.Printf("Rejected token from %s: %v", c.IP(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": true, "message": "invalid or expired token",
			})
		}
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalEmail, claims.Email)
		return c.Next()
	}
}

// OptionalAuth stores the principal when a valid token is present but never
// rejects the request.
func OptionalAuth(secret string) fiber.Handler {
	manager := NewManager(secret)

	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Next()
		}
		token, err := ExtractTokenFromHeader(authHeader)
		if err != nil {
			return c.Next()
		}
		claims, err := manager.VerifyToken(token)
		if err != nil {
			return c.Next()
		}
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalEmail, claims.Email)
		return c.Next()
	}
}

// PrincipalID returns the authenticated user's ID from the request locals,
// or uuid.Nil when the request is anonymous.
func PrincipalID(c *fiber.Ctx) uuid.UUID {
	raw, ok := c.Locals(LocalUserID).(string)
	if !ok {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// PrincipalEmail returns the authenticated user's email, or "".
func PrincipalEmail(c *fiber.Ctx) string {
	email, _ := c.Locals(LocalEmail).(string)
	return email
}
