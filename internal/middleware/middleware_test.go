package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"brokerage-backend/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withUser(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role != "" {
			c.Locals("user", map[string]interface{}{
				"user_id": "00000000-0000-0000-0000-000000000001",
				"role":    role,
			})
		}
		return c.Next()
	}
}

func roleApp(env config.Environment, role string) *fiber.App {
	app := fiber.New()
	app.Use(withUser(role))
	app.Get("/admin", RequireRole(env, "ADMIN"), func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name string
		env  config.Environment
		role string
		want int
	}{
		{"production admin", config.Env("production"), "ADMIN", 200},
		{"production broker", config.Env("production"), "BROKER", 403},
		{"production anonymous", config.Env("production"), "", 401},
		{"production unknown role", config.Env("production"), "ROOT", 500},
		{"development bypass", config.Env("development"), "BROKER", 200},
		{"development anonymous", config.Env("development"), "", 200},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := roleApp(tc.env, tc.role).Test(httptest.NewRequest("GET", "/admin", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestSession_LoadsUserFromRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	require.NoError(t, mr.Set("session:abc", `{"user":{"user_id":"00000000-0000-0000-0000-000000000009","role":"BROKER"}}`))

	app := fiber.New()
	app.Use(Session(rdb))
	app.Get("/me", func(c *fiber.Ctx) error {
		id, ok := UserID(c)
		if !ok {
			return c.SendStatus(401)
		}
		return c.SendString(id.String() + " " + UserRole(c))
	})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", SessionCookieName+"=s:abc.signature")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", SessionCookieName+"=missing")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestHealthMarkerAndErrorHandler(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(rdb)})
	app.Use(Tracing())
	app.Use(HealthMarker(rdb))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })
	app.Get("/health/json", func(c *fiber.Ctx) error { return c.SendString("{}") })

	for _, p := range []string{"/ok", "/boom", "/health/json"} {
		resp, err := app.Test(httptest.NewRequest("GET", p, nil))
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Header.Get("X-Trace-Id"))
	}

	ctx := context.Background()
	total, _ := rdb.Get(ctx, KeyReqTotal).Int()
	failed, _ := rdb.Get(ctx, KeyReqErrors).Int()
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, failed)
	entries, err := rdb.LRange(ctx, KeyErrorLog, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0], "boom")
}

func TestTracing_ReusesIncomingID(t *testing.T) {
	app := fiber.New()
	app.Use(Tracing())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(GetTraceID(c)) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Trace-Id", "6f1c1f0e-8a4e-4d43-9c1b-1d3c2b1a0f00")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "6f1c1f0e-8a4e-4d43-9c1b-1d3c2b1a0f00", resp.Header.Get("X-Trace-Id"))
}

func TestCORS(t *testing.T) {
	app := fiber.New()
	app.Use(CORS(CORSConfig{AllowedSuffixes: ".corredora.cl, .vercel.app", DevPassword: "pw"}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	do := func(origin, pw string) int {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Origin", origin)
		if pw != "" {
			req.Header.Set("dev-password", pw)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}
	assert.Equal(t, 200, do("https://app.corredora.cl", ""))
	assert.Equal(t, 200, do("https://preview.vercel.app", ""))
	assert.Equal(t, 200, do("http://localhost:3000", ""))
	assert.Equal(t, 200, do("https://evil.example", "pw"))
	assert.Equal(t, 403, do("https://evil.example", ""))
}
