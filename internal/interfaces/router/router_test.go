package router

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"foundersbook-backend/internal/app"
	"foundersbook-backend/internal/config"
	"foundersbook-backend/internal/domain"
	"foundersbook-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateApp_Routes(t *testing.T) {
	cfg := &config.Config{DatabaseURL: "sqlite://:memory:", ParitySettledPolicy: "amend", DispatchConcurrency: 1}
	a, res, err := CreateApp(cfg)
	require.NoError(t, err)
	defer res.Close()

	cases := []struct {
		method, path string
		want         int
	}{
		{"GET", "/", 200},
		{"GET", "/health/json", 200},
		{"GET", "/users", 200},
		{"GET", "/categories", 200},
		{"GET", "/projection/all", 200},
		{"GET", "/expenses/all-parities", 404},
		{"GET", "/expenses", 401},
		{"POST", "/expenses", 401},
		{"GET", "/api/equity-split", 401},
		{"GET", "/tasks", 401},
		{"GET", "/task-categories", 401},
		{"GET", "/notifications", 401},
		{"GET", "/dashboard", 401},
		{"POST", "/projection", 401},
	}
	for _, tc := range cases {
		resp, err := a.Test(httptest.NewRequest(tc.method, tc.path, nil))
		require.NoError(t, err)
		assert.Equal(t, tc.want, resp.StatusCode, tc.method+" "+tc.path)
	}
}

func TestNew_SessionCookieAuthenticates(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cfg := &config.Config{DatabaseURL: "sqlite://:memory:", ParitySettledPolicy: "amend", DispatchConcurrency: 1}
	res, err := app.Connect(cfg)
	require.NoError(t, err)
	res.Rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer res.Close()
	svc, err := app.NewServices(cfg, res.DB, res.Dispatcher())
	require.NoError(t, err)
	a := New(cfg, res, svc)

	u := domain.User{Name: "Asha", Email: "asha@example.com"}
	require.NoError(t, res.DB.Create(&u).Error)
	doc, _ := json.Marshal(map[string]interface{}{
		"user": map[string]string{"id": u.ID.String(), "name": u.Name, "email": u.Email},
	})
	sid := uuid.NewString()
	mr.Set(middleware.SessionRedisPrefix+sid, string(doc))

	req := httptest.NewRequest("GET", "/notifications", nil)
	req.Header.Set("Cookie", middleware.SessionCookieName+"=s:"+sid+".sig")
	resp, err := a.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `[]`, string(b))
	assert.NotEmpty(t, resp.Header.Get(middleware.TraceIDHeader))

	total, _ := mr.Get(middleware.KeyReqTotal)
	assert.Equal(t, "1", total)
}
