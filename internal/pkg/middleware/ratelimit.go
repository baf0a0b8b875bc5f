package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/donote/donote/internal/pkg/ratelimit"
)

// RateLimit counts requests per client IP in fixed windows. Requests over
// the limit get 429 with Retry-After. storage may be nil for in-memory
// counters.
func RateLimit(cfg ratelimit.Config, storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               cfg.Max,
		Expiration:        cfg.Window,
		LimiterMiddleware: limiter.FixedWindow{},
		Storage:           storage,
		KeyGenerator:      rateLimitKey,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	})
}

func rateLimitKey(c *fiber.Ctx) string {
	if ip := ClientIP(c); ip != "unknown" {
		return ip
	}
	return c.IP()
}
