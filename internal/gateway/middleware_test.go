package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/soyeahso/assistloop/internal/logging"
	"github.com/soyeahso/assistloop/internal/observability"
	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("ok"))
	})
}

func TestObserveMiddleware_RecordsRoutePattern(t *testing.T) {
	m := observability.NewMetrics()
	mux := http.NewServeMux()
	mux.Handle("GET /items/{id}", okHandler())

	h := observeMiddleware(mux, logging.Nop(), m)
	for _, path := range []string{"/items/1", "/items/2", "/missing"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "GET /items/{id}", "418")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestObserveMiddleware_NilMetrics(t *testing.T) {
	rr := httptest.NewRecorder()
	observeMiddleware(okHandler(), logging.Nop(), nil).
		ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestRequestIDMiddleware(t *testing.T) {
	h := requestIDMiddleware(okHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rr.Header().Get("X-Request-ID"), 36)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "custom-id-123")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "custom-id-123", rr.Header().Get("X-Request-ID"))
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		allowed   []string
		origin    string
		wantAllow string
	}{
		{"deny when unconfigured", nil, "http://shop.example.com", ""},
		{"wildcard", []string{"*"}, "http://shop.example.com", "http://shop.example.com"},
		{"specific match", []string{"http://shop.example.com"}, "http://shop.example.com", "http://shop.example.com"},
		{"specific miss", []string{"http://shop.example.com"}, "http://evil.com", ""},
		{"no origin", []string{"*"}, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/widget/config.json", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rr := httptest.NewRecorder()
			corsMiddleware(okHandler(), tt.allowed).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantAllow, rr.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, http.StatusTeapot, rr.Code)
		})
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/settings", nil)
	req.Header.Set("Origin", "http://admin.example.com")
	rr := httptest.NewRecorder()
	corsMiddleware(okHandler(), []string{"http://admin.example.com"}).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "PUT")
	assert.Empty(t, rr.Body.String())
}

func TestWithMiddleware(t *testing.T) {
	m := observability.NewMetrics()
	h := withMiddleware(okHandler(), logging.Nop(), []string{"*"}, m)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://shop.example.com")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.Equal(t, "http://shop.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPRequests))
}
