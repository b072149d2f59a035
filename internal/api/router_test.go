package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automarket/automarket/internal/api"
	"github.com/automarket/automarket/internal/api/middleware"
	"github.com/automarket/automarket/internal/auth"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

// keyAuthenticator maps raw keys to identities.
type keyAuthenticator map[string]*auth.Identity

func (k keyAuthenticator) Authenticate(_ context.Context, rawKey string) (*auth.Identity, error) {
	if id, ok := k[rawKey]; ok {
		return id, nil
	}
	return nil, auth.ErrInvalidKey
}

func newTestRouter(limiter *middleware.RateLimiter) http.Handler {
	return api.NewRouter(api.RouterDeps{
		DB:      stubPinger{},
		Version: "test",
		Authenticator: keyAuthenticator{
			"am_buyer":      {AccountID: uuid.New(), Name: "buyer", Role: auth.RoleBuyer},
			"am_specialist": {AccountID: uuid.New(), Name: "spec", Role: auth.RoleSpecialist},
		},
		RateLimiter: limiter,
	})
}

func do(h http.Handler, method, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var env map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	errObj, ok := env["error"].(map[string]any)
	require.True(t, ok, "expected an error object, got %s", w.Body.String())
	return errObj["code"].(string)
}

func TestRouter_HealthIsPublic(t *testing.T) {
	w := do(newTestRouter(nil), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_HealthDegraded(t *testing.T) {
	router := api.NewRouter(api.RouterDeps{DB: stubPinger{err: errors.New("down")}})

	w := do(router, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var env map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "degraded", env["data"].(map[string]any)["status"])
}

func TestRouter_MetricsIsPublic(t *testing.T) {
	w := do(newTestRouter(nil), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_RequiresAPIKey(t *testing.T) {
	router := newTestRouter(nil)

	w := do(router, http.MethodGet, "/solutions?mine=true", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(router, http.MethodGet, "/solutions?mine=true", "am_unknown")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_RoleGates(t *testing.T) {
	router := newTestRouter(nil)
	id := uuid.NewString()

	tests := []struct {
		name   string
		method string
		path   string
		key    string
	}{
		{"buyer cannot create solutions", http.MethodPost, "/solutions", "am_buyer"},
		{"buyer cannot onboard as specialist", http.MethodPost, "/specialists", "am_buyer"},
		{"specialist cannot bid", http.MethodPost, "/solutions/" + id + "/bids", "am_specialist"},
		{"specialist cannot order", http.MethodPost, "/solutions/" + id + "/orders", "am_specialist"},
		{"specialist cannot list accounts", http.MethodGet, "/accounts", "am_specialist"},
		{"buyer cannot complete orders", http.MethodPost, "/orders/" + id + "/complete", "am_buyer"},
		{"specialist cannot override commission", http.MethodPut, "/specialists/" + id + "/commission-override", "am_specialist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, tt.method, tt.path, tt.key)
			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.Equal(t, "FORBIDDEN", errorCode(t, w))
		})
	}
}

func TestRouter_RateLimitsAuthenticatedRoutes(t *testing.T) {
	router := newTestRouter(middleware.NewRateLimiter(0.01, 1))

	// The first request passes the limiter and fails later on its query.
	w := do(router, http.MethodGet, "/solutions", "am_buyer")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodGet, "/solutions", "am_buyer")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Health sits outside the limiter.
	w = do(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
