package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authhandler "github.com/Adithya-Monish-Kumar-K/learning-hub/internal/auth/handler"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/auth/ratelimit"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/auth/store"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/contact"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/content"
	contenthandler "github.com/Adithya-Monish-Kumar-K/learning-hub/internal/content/handler"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/searcher/engine"
	searchhandler "github.com/Adithya-Monish-Kumar-K/learning-hub/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/metrics"
	pkgmw "github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/middleware"
)

func newHandler(t *testing.T, authLimit int) http.Handler {
	t.Helper()
	cfg := config.Default()
	catalog, err := content.Load(content.Embedded())
	require.NoError(t, err)
	eng := engine.New(catalog)
	sessions := store.New()
	m := metrics.New(nil)

	return New(Deps{
		Content:         contenthandler.New(catalog, eng, cfg.Catalog),
		Search:          searchhandler.New(eng, nil, nil, m, cfg.Search),
		Auth:            authhandler.New(sessions, nil, m),
		Contact:         contact.NewHandler(contact.NewMemoryStore(), nil, m),
		Sessions:        sessions,
		Limiter:         ratelimit.New(authLimit, time.Minute),
		Health:          health.NewChecker(),
		Metrics:         m,
		CORS:            cfg.CORS,
		RequestTimeout:  5 * time.Second,
		RateLimitWindow: time.Minute,
	})
}

func do(h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_PublicEndpoints(t *testing.T) {
	h := newHandler(t, 10)

	for _, path := range []string{
		"/health/live",
		"/health/ready",
		"/api/topics",
		"/api/topics/react",
		"/api/articles",
		"/api/articles/latest",
		"/api/articles/react-components",
		"/api/stats",
		"/api/search?q=react",
		"/api/search/cache/stats",
		"/api/auth/users",
		"/api/contact",
	} {
		t.Run(path, func(t *testing.T) {
			rec := do(h, http.MethodGet, path, "", nil)
			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		})
	}
}

func TestRoutes_NotFound(t *testing.T) {
	h := newHandler(t, 10)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/api/articles/no-such-article", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/api/nope", "", nil).Code)
}

func TestRoutes_CacheInvalidateDisabled(t *testing.T) {
	h := newHandler(t, 10)
	rec := do(h, http.MethodPost, "/api/search/cache/invalidate", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRoutes_RequestIDEchoed(t *testing.T) {
	h := newHandler(t, 10)

	rec := do(h, http.MethodGet, "/api/topics", "", map[string]string{pkgmw.RequestIDHeader: "req-123"})
	assert.Equal(t, "req-123", rec.Header().Get(pkgmw.RequestIDHeader))

	rec = do(h, http.MethodGet, "/api/topics", "", nil)
	assert.NotEmpty(t, rec.Header().Get(pkgmw.RequestIDHeader))
}

func TestRoutes_CORSPreflight(t *testing.T) {
	h := newHandler(t, 10)
	rec := do(h, http.MethodOptions, "/api/auth/login", "", map[string]string{
		"Origin":                        "http://localhost:3000",
		"Access-Control-Request-Method": http.MethodPost,
	})
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(h, http.MethodGet, "/api/topics", "", map[string]string{"Origin": "https://evil.example"})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRoutes_SessionFlow(t *testing.T) {
	h := newHandler(t, 10)

	rec := do(h, http.MethodPost, "/api/auth/register",
		`{"name":"Ann","email":"ann@example.com","password":"secret1","confirmPassword":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var reg struct {
		Data authhandler.AuthResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	require.NotEmpty(t, reg.Data.Token)
	bearer := map[string]string{"Authorization": "Bearer " + reg.Data.Token}

	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "/api/auth/me", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/auth/me", "", bearer).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodPatch, "/api/auth/me", `{"name":"Anna"}`, bearer).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodPost, "/api/auth/logout", "", bearer).Code)
	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "/api/auth/me", "", bearer).Code)
}

func TestRoutes_AuthRateLimited(t *testing.T) {
	h := newHandler(t, 2)
	login := `{"email":"ann@example.com","password":"x"}`

	for i := 0; i < 2; i++ {
		rec := do(h, http.MethodPost, "/api/auth/login", login, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := do(h, http.MethodPost, "/api/auth/login", login, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// another client has its own budget
	rec = do(h, http.MethodPost, "/api/auth/login", login, map[string]string{"X-Real-IP": "203.0.113.9"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// reads are never limited
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/auth/users", "", nil).Code)
}

func TestRoutes_Contact(t *testing.T) {
	h := newHandler(t, 10)
	rec := do(h, http.MethodPost, "/api/contact",
		`{"name":"Ann","email":"ann@example.com","message":"Great articles, thanks!"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(h, http.MethodGet, "/api/contact", "", nil)
	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
}
