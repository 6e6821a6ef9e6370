package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestTimingMiddleware(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	TimingMiddleware(okHandler()).ServeHTTP(rec, req)

	if rec.Header().Get("X-Process-Time") == "" {
		t.Error("X-Process-Time header not set")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	// 10 per minute gives a burst of 5; the window refill is too slow to
	// matter within the test.
	h := RateLimitMiddleware(10, time.Minute)(okHandler())

	doReq := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 5; i++ {
		if code := doReq("10.0.0.1:1234"); code != http.StatusOK {
			t.Fatalf("request %d: status %d, want 200", i+1, code)
		}
	}
	if code := doReq("10.0.0.1:1234"); code != http.StatusTooManyRequests {
		t.Errorf("burst exceeded: status %d, want 429", code)
	}

	// Another client has its own bucket.
	if code := doReq("10.0.0.2:1234"); code != http.StatusOK {
		t.Errorf("second IP should not be limited: status %d", code)
	}
}
