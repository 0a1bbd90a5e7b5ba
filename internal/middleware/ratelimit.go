package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what happens to a request when Redis cannot count it.
type FailPolicy int

const (
	FailOpen   FailPolicy = iota // let the request through
	FailClosed                   // answer 503
)

var ErrNoRateLimitStore = errors.New("rate limit store is not configured")

// Quota is a fixed-window budget: Max requests per Window for each caller,
// counted under rl:<Name>:<caller>.
type Quota struct {
	Name   string
	Max    int
	Window time.Duration
	Policy FailPolicy
}

// Limits are off outside deployed environments so local runs and the test
// suite never need Redis.
func limitsDisabled() bool {
	switch os.Getenv("APP_ENV") {
	case "", "test", "development", "stress":
		return true
	}
	return false
}

// Take spends one unit of the caller's budget and returns how many remain.
// A negative result means the caller is over quota.
func (q Quota) Take(ctx context.Context, rdb *redis.Client, caller string) (int, error) {
	if limitsDisabled() {
		return q.Max, nil
	}
	if rdb == nil {
		return 0, ErrNoRateLimitStore
	}

	key := "rl:" + q.Name + ":" + caller
	n, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := rdb.Expire(ctx, key, q.Window).Err(); err != nil {
			return 0, err
		}
	}
	return q.Max - int(n), nil
}

// callerKey identifies the caller: the authenticated user when there is
// one, else the remote address.
func callerKey(c *fiber.Ctx) string {
	if actor, ok := ActorFrom(c); ok {
		return fmt.Sprintf("user:%d", actor.UserID)
	}
	return "ip:" + c.IP()
}

// Limit enforces q on every request it wraps.
func Limit(rdb *redis.Client, q Quota) fiber.Handler {
	retryAfter := strconv.Itoa(int(q.Window.Seconds()))
	limit := strconv.Itoa(q.Max)

	return func(c *fiber.Ctx) error {
		remaining, err := q.Take(c.UserContext(), rdb, callerKey(c))
		if err != nil {
			if q.Policy == FailOpen {
				return c.Next()
			}
			Logger.WarnContext(c.UserContext(), "rate limit store unavailable",
				slog.String("quota", q.Name),
				slog.String("error", err.Error()),
			)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "rate limit unavailable",
				"code":  "SERVICE_UNAVAILABLE",
			})
		}

		c.Set("X-RateLimit-Limit", limit)
		if remaining < 0 {
			RateLimitRejections.WithLabelValues(q.Name).Inc()
			c.Set("X-RateLimit-Remaining", "0")
			c.Set(fiber.HeaderRetryAfter, retryAfter)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
				"code":  "RATE_LIMITED",
			})
		}
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		return c.Next()
	}
}
