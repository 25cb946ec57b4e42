package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moredevelopers26/chattest/internal/models"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiterAuthEndpoint(t *testing.T) {
	rl := NewRateLimiter(zerolog.Nop(), RateLimiterConfig{})
	defer rl.Stop()
	h := rl.Middleware(okHandler)

	for i := 0; i < 10; i++ {
		rec := serve(h, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}

	rec := serve(h, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "10", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "6", rec.Header().Get("Retry-After"))

	// other clients have their own bucket
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.7")
	assert.Equal(t, http.StatusOK, serve(h, req).Code)
}

func TestRateLimiterKeysBySessionUser(t *testing.T) {
	rl := NewRateLimiter(zerolog.Nop(), RateLimiterConfig{})
	defer rl.Stop()
	h := rl.Middleware(okHandler)

	asUser := func(id string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/calls", nil)
		u := &models.User{ID: id}
		return req.WithContext(context.WithValue(req.Context(), UserContextKey, u))
	}

	for i := 0; i < 30; i++ {
		require.Equal(t, http.StatusOK, serve(h, asUser("user-1")).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, serve(h, asUser("user-1")).Code)
	assert.Equal(t, http.StatusOK, serve(h, asUser("user-2")).Code)
}

func TestRateLimiterWhitelist(t *testing.T) {
	rl := NewRateLimiter(zerolog.Nop(), RateLimiterConfig{
		PerMinute: 1,
		Whitelist: []string{"10.0.0.0/8", "192.0.2.1", "bogus/cidr"},
	})
	defer rl.Stop()
	h := rl.Middleware(okHandler)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(h, httptest.NewRequest(http.MethodGet, "/users", nil)).Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("X-Real-IP", "10.1.2.3")
	assert.Equal(t, http.StatusOK, serve(h, req).Code)

	other := func() *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/users", nil)
		r.Header.Set("X-Real-IP", "203.0.113.9")
		return r
	}
	assert.Equal(t, http.StatusOK, serve(h, other()).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(h, other()).Code)
}

func TestRateLimiterAutoBlock(t *testing.T) {
	rl := NewRateLimiter(zerolog.Nop(), RateLimiterConfig{PerMinute: 1, AutoBlockEnabled: true})
	defer rl.Stop()
	h := rl.Middleware(okHandler)

	require.Equal(t, http.StatusOK, serve(h, httptest.NewRequest(http.MethodGet, "/users", nil)).Code)
	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusTooManyRequests, serve(h, httptest.NewRequest(http.MethodGet, "/users", nil)).Code)
	}
	assert.Equal(t, http.StatusForbidden, serve(h, httptest.NewRequest(http.MethodGet, "/users", nil)).Code)

	rl.blocker.Unblock("192.0.2.1")
	assert.False(t, rl.blocker.IsBlocked("192.0.2.1"))
}

func TestRealIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "192.0.2.1", RealIP(req))

	req.Header.Set("X-Real-IP", "203.0.113.5")
	assert.Equal(t, "203.0.113.5", RealIP(req))

	req.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")
	assert.Equal(t, "198.51.100.1", RealIP(req))
}

func TestSession(t *testing.T) {
	src := sessionFunc(func() (models.User, bool) { return models.User{ID: "user-1", Name: "Jane"}, true })
	none := sessionFunc(func() (models.User, bool) { return models.User{}, false })

	var seen *models.User
	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserFromContext(r.Context())
	})

	serve(LoadSession(src)(capture), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, seen)
	assert.Equal(t, "user-1", seen.ID)

	rec := serve(LoadSession(none)(RequireSession(okHandler)), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"login required"}`, rec.Body.String())

	rec = serve(LoadSession(src)(RequireSession(okHandler)), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

type sessionFunc func() (models.User, bool)

func (f sessionFunc) CurrentUser() (models.User, bool) { return f() }

func TestValidateRequest(t *testing.T) {
	h := ValidateRequest(okHandler)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		ctype  string
		want   int
	}{
		{"plain get", http.MethodGet, "/rooms/global/messages", "", "", http.StatusOK},
		{"dots in search", http.MethodGet, "/rooms/global/messages?q=..", "", "", http.StatusOK},
		{"script in query", http.MethodGet, "/rooms/global/messages?q=%3Cscript%3E", "", "", http.StatusBadRequest},
		{"traversal", http.MethodGet, "/rooms/../etc", "", "", http.StatusBadRequest},
		{"json post", http.MethodPost, "/auth/login", `{}`, "application/json", http.StatusOK},
		{"form post", http.MethodPost, "/auth/login", `a=b`, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"empty post", http.MethodPost, "/auth/logout", "", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", strings.NewReader(tt.body))
			req.URL.Path, req.URL.RawQuery, _ = strings.Cut(tt.target, "?")
			if tt.ctype != "" {
				req.Header.Set("Content-Type", tt.ctype)
			}
			assert.Equal(t, tt.want, serve(h, req).Code)
		})
	}
}

func TestMaxBodySize(t *testing.T) {
	h := MaxBodySize(4)(okHandler)
	rec := serve(h, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("too large")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestSecurityHeaders(t *testing.T) {
	rec := serve(SecurityHeaders(okHandler), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "default-src 'none'", rec.Header().Get("Content-Security-Policy"))
}

func TestRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	var pattern string
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req)
			pattern = routePattern(req)
		})
	})
	r.Get("/rooms/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	serve(r, httptest.NewRequest(http.MethodGet, "/rooms/global/messages", nil))
	assert.Equal(t, "/rooms/{id}/messages", pattern)

	assert.Equal(t, "/vault/{id}", normalizePath("/vault/01HX"))
	assert.Equal(t, "/vault", normalizePath("/vault"))
}
