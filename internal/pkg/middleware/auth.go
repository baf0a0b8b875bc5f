package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// RequireCronSecret accepts only "Authorization: Bearer <secret>". An empty
// secret rejects every request.
func RequireCronSecret(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !secretMatches(bearerToken(c), secret) {
			log.Warnf("[Auth] Rejected cron request from %s", ClientIP(c))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

func secretMatches(given, secret string) bool {
	if secret == "" || given == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(given), []byte(secret)) == 1
}
