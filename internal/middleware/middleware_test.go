package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("ok"))
})

func TestNoStoreAndSecureHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	NoStore(SecureHeaders(okHandler)).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	h := rec.Header()
	assert.Equal(t, "no-store, no-cache, must-revalidate, max-age=0", h.Get("Cache-Control"))
	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	assert.Contains(t, h.Get("Content-Security-Policy"), "img-src 'self' data:")
}

func TestCORS(t *testing.T) {
	cases := []struct {
		name    string
		origins []string
		origin  string
		method  string
		want    string
		status  int
	}{
		{"disabled", nil, "http://a.test", "GET", "", 200},
		{"allowed", []string{"http://a.test/"}, "http://a.test", "GET", "http://a.test", 200},
		{"other origin", []string{"http://a.test"}, "http://b.test", "GET", "", 200},
		{"wildcard", []string{"*"}, "http://b.test", "GET", "*", 200},
		{"preflight", []string{"http://a.test"}, "http://a.test", "OPTIONS", "http://a.test", 204},
	}
	for _, c := range cases {
		req := httptest.NewRequest(c.method, "/api/state", nil)
		req.Header.Set("Origin", c.origin)
		rec := httptest.NewRecorder()
		CORS(c.origins)(okHandler).ServeHTTP(rec, req)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != c.want {
			t.Fatalf("%s: allow-origin=%q, want %q", c.name, got, c.want)
		}
		if rec.Code != c.status {
			t.Fatalf("%s: status=%d, want %d", c.name, rec.Code, c.status)
		}
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	require.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "", RequestIDFromContext(req.Context()))
}

type observation struct {
	route, method string
	status        int
}

type fakeObserver struct {
	mu  sync.Mutex
	got []observation
}

func (f *fakeObserver) ObserveHTTP(route, method string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, observation{route, method, status})
}

func TestAccessLogUsesRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/api/state", okHandler)
	mux.HandleFunc("/api/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})
	obs := &fakeObserver{}
	h := RequestID(AccessLog(zap.NewNop(), obs)(mux))

	for _, path := range []string{"/api/state", "/api/missing", "/elsewhere"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}
	assert.Equal(t, []observation{
		{"/api/state", "GET", 200},
		{"/api/missing", "GET", 404},
		{"unmatched", "GET", 404},
	}, obs.got)
}
