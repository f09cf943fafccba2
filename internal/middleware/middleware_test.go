package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func whoami(c *fiber.Ctx) error {
	u, ok := CurrentUser(c)
	if !ok {
		return c.SendString("anonymous")
	}
	return c.SendString(u.Name)
}

func TestSession_ReadsUserFromRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	doc, _ := json.Marshal(map[string]interface{}{
		"user": map[string]string{"id": uuid.NewString(), "name": "Asha", "email": "asha@example.com"},
	})
	mr.Set(SessionRedisPrefix+"abc", string(doc))

	app := fiber.New()
	app.Use(Session(rdb))
	app.Get("/me", whoami)

	cases := map[string]string{
		"s:abc.signature": "Asha",
		"abc":             "Asha",
		"missing":         "anonymous",
		"":                "anonymous",
	}
	for cookie, want := range cases {
		req := httptest.NewRequest("GET", "/me", nil)
		if cookie != "" {
			req.Header.Set("Cookie", SessionCookieName+"="+cookie)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		b, _ := io.ReadAll(resp.Body)
		assert.Equal(t, want, string(b), cookie)
	}
}

func TestSession_NilClientPassesThrough(t *testing.T) {
	app := fiber.New()
	app.Use(Session(nil))
	app.Get("/me", whoami)

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "anonymous", string(b))
}

func TestRequireAuth(t *testing.T) {
	app := fiber.New()
	app.Get("/open", RequireAuth(), whoami)
	app.Get("/with-user", func(c *fiber.Ctx) error {
		SetUser(c, &SessionUser{UserID: uuid.NewString(), Name: "Ravi"})
		return c.Next()
	}, RequireAuth(), whoami)

	resp, err := app.Test(httptest.NewRequest("GET", "/open", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, string(b))

	resp, err = app.Test(httptest.NewRequest("GET", "/with-user", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	app := fiber.New()
	app.Use(CORS(CORSConfig{AllowedSuffix: ".foundersbook.in", DevPassword: "letmein"}))
	app.Get("/x", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Origin", "https://app.foundersbook.in")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "https://app.foundersbook.in", resp.Header.Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)

	req.Header.Set("dev-password", "letmein")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestHealthMarker_CountsRequests(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	app := fiber.New()
	app.Use(HealthMarker(rdb))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/fail", func(c *fiber.Ctx) error { return c.SendStatus(500) })
	app.Get("/health/json", func(c *fiber.Ctx) error { return c.SendString("h") })

	for _, p := range []string{"/ok", "/ok", "/fail", "/health/json"} {
		_, err := app.Test(httptest.NewRequest("GET", p, nil))
		require.NoError(t, err)
	}
	total, _ := mr.Get(KeyReqTotal)
	errs, _ := mr.Get(KeyReqErrors)
	count, _ := mr.Get(KeyResCount)
	assert.Equal(t, "3", total)
	assert.Equal(t, "1", errs)
	assert.Equal(t, "3", count)
	assert.True(t, mr.Exists(KeyLastReq))
}

func TestHealthMarker_NilClient(t *testing.T) {
	app := fiber.New()
	app.Use(HealthMarker(nil))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestTracing_ReusesValidHeader(t *testing.T) {
	app := fiber.New()
	app.Use(Tracing())
	app.Get("/t", func(c *fiber.Ctx) error { return c.SendString(GetTraceID(c)) })

	id := uuid.NewString()
	req := httptest.NewRequest("GET", "/t", nil)
	req.Header.Set(TraceIDHeader, id)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, id, resp.Header.Get(TraceIDHeader))

	req = httptest.NewRequest("GET", "/t", nil)
	req.Header.Set(TraceIDHeader, "not-a-uuid")
	resp, err = app.Test(req)
	require.NoError(t, err)
	_, perr := uuid.Parse(resp.Header.Get(TraceIDHeader))
	assert.NoError(t, perr)
	assert.NotEqual(t, "not-a-uuid", resp.Header.Get(TraceIDHeader))
}
