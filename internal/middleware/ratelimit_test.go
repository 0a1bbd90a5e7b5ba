package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

var loginQuota = Quota{Name: "login", Max: 3, Window: time.Minute}

func TestQuotaTake_DisabledOutsideDeployments(t *testing.T) {
	for _, env := range []string{"", "test", "development", "stress"} {
		t.Run("env="+env, func(t *testing.T) {
			t.Setenv("APP_ENV", env)
			remaining, err := loginQuota.Take(context.Background(), nil, "ip:1")
			assert.NoError(t, err)
			assert.Equal(t, 3, remaining)
		})
	}
}

func TestQuotaTake_NoStore(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	_, err := loginQuota.Take(context.Background(), nil, "ip:1")
	assert.ErrorIs(t, err, ErrNoRateLimitStore)
}

func TestQuotaTake_FixedWindow(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	mr, rdb := newTestRedis(t)
	ctx := context.Background()

	var got []int
	for i := 0; i < 4; i++ {
		remaining, err := loginQuota.Take(ctx, rdb, "ip:1")
		require.NoError(t, err)
		got = append(got, remaining)
	}
	assert.Equal(t, []int{2, 1, 0, -1}, got)

	remaining, err := loginQuota.Take(ctx, rdb, "ip:2")
	require.NoError(t, err)
	assert.Equal(t, 2, remaining, "callers are counted separately")

	assert.Equal(t, time.Minute, mr.TTL("rl:login:ip:1"))

	mr.FastForward(time.Minute + time.Second)
	remaining, err = loginQuota.Take(ctx, rdb, "ip:1")
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)
}

func TestLimit(t *testing.T) {
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
	call := func(t *testing.T, app *fiber.App) *http.Response {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/", nil))
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp
	}

	t.Run("store down", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		tests := []struct {
			policy FailPolicy
			want   int
		}{
			{FailOpen, http.StatusOK},
			{FailClosed, http.StatusServiceUnavailable},
		}
		for _, tt := range tests {
			app := fiber.New()
			app.Post("/", Limit(nil, Quota{Name: "login", Max: 1, Window: time.Minute, Policy: tt.policy}), ok)
			assert.Equal(t, tt.want, call(t, app).StatusCode)
		}
	})

	t.Run("over quota", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		_, rdb := newTestRedis(t)
		app := fiber.New()
		app.Post("/", Limit(rdb, Quota{Name: "login", Max: 2, Window: 30 * time.Second}), ok)

		first := call(t, app)
		assert.Equal(t, http.StatusOK, first.StatusCode)
		assert.Equal(t, "2", first.Header.Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", first.Header.Get("X-RateLimit-Remaining"))

		assert.Equal(t, http.StatusOK, call(t, app).StatusCode)

		last := call(t, app)
		assert.Equal(t, http.StatusTooManyRequests, last.StatusCode)
		assert.Equal(t, "0", last.Header.Get("X-RateLimit-Remaining"))
		assert.Equal(t, "30", last.Header.Get("Retry-After"))
	})

	t.Run("keyed by actor", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		mr, rdb := newTestRedis(t)
		app := fiber.New()
		app.Post("/", func(c *fiber.Ctx) error {
			SetActor(c, Actor{UserID: 42})
			return c.Next()
		}, Limit(rdb, Quota{Name: "apply", Max: 5, Window: time.Minute}), ok)

		call(t, app)
		val, err := mr.Get("rl:apply:user:42")
		require.NoError(t, err)
		assert.Equal(t, "1", val)
	})
}
