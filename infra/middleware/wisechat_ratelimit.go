package middleware

import (
	"time"

	"wisechat_server/pkg/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/google/uuid"
)

// UserRateLimit limits requests per authenticated user, falling back to the
// client IP. It must run after JWTAuth.
func UserRateLimit(max int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if uid, ok := c.Locals("user_id").(uuid.UUID); ok {
				return "user:" + uid.String()
			}
			return "ip:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return apperr.New("RATE_LIMITED", "rate limit exceeded", fiber.StatusTooManyRequests)
		},
	})
}
