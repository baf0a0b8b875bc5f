package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ClientIP returns the first X-Forwarded-For entry, else X-Real-IP, else
// "unknown".
func ClientIP(c *fiber.Ctx) string {
	if xff := c.Get(fiber.HeaderXForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(c.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return "unknown"
}
