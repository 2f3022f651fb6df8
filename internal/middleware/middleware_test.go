package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"infinite-experiment/flightboard/internal/auth"
	"infinite-experiment/flightboard/internal/constants"
	"infinite-experiment/flightboard/internal/metrics"
	"infinite-experiment/flightboard/internal/models/dtos/responses"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) responses.APIResponse[any] {
	t.Helper()
	var resp responses.APIResponse[any]
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	h := rl.Middleware(okHandler)

	call := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/flights", nil)
		req.RemoteAddr = remote
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:5000").Code)
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:5001").Code)

	rr := call("10.0.0.1:5002")
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	resp := decodeError(t, rr)
	assert.Equal(t, string(constants.APIStatusError), resp.Status)
	assert.Equal(t, constants.MsgTooManyRequests, resp.Error)

	// buckets are per client
	assert.Equal(t, http.StatusNoContent, call("10.0.0.2:5000").Code)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusNoContent, call("127.0.0.1:6000").Code)
	}
}

func TestRequireOperator(t *testing.T) {
	tokens := auth.NewOperatorTokens("board-secret")
	var seen *auth.OperatorClaims
	h := RequireOperator(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.GetOperatorClaims(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/flights/f1", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	rr := call("")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, constants.MsgUnauthorized, decodeError(t, rr).Error)

	assert.Equal(t, http.StatusUnauthorized, call("Bearer nope").Code)

	signed, err := tokens.Issue("ops-desk", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, call("Bearer "+signed).Code)
	require.NotNil(t, seen)
	assert.Equal(t, "ops-desk", seen.Subject)
}

func TestRequireOperator_Disabled(t *testing.T) {
	h := RequireOperator(auth.NewOperatorTokens(""))(okHandler)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/flights", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.GetRequestID(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rr.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-1")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "upstream-1", seen)
	assert.Equal(t, "upstream-1", rr.Header().Get("X-Request-ID"))
}

func TestMetricsMiddleware_RecordsRoutePattern(t *testing.T) {
	reg := metrics.NewMetricsRegistry(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(MetricsMiddleware(reg))
	r.Get("/api/v1/flights/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/flights/5f0c6a4e-3d2b-4c1a-9e8f-7a6b5c4d3e2f", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)

	assert.Equal(t, 1.0, promtest.ToFloat64(reg.HTTPRequestsTotal.WithLabelValues("/api/v1/flights/{id}", http.MethodGet, "404")))
	assert.Equal(t, 0.0, promtest.ToFloat64(reg.HTTPRequestsInFlight.WithLabelValues("/api/v1/flights/{id}")))
}

func TestNormalizeEndpoint(t *testing.T) {
	cases := map[string]string{
		"/api/v1/flights":    "/api/v1/flights",
		"/api/v1/flights/42": "/api/v1/flights/{id}",
		"/ws/flights":        "/ws/flights",
		"/api/v1/flights/5f0c6a4e-3d2b-4c1a-9e8f-7a6b5c4d3e2f": "/api/v1/flights/{id}",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeEndpoint(in), in)
	}
}
