package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name     string
		remote   string
		xff      string
		trustXFF bool
		want     string
	}{
		{name: "host port", remote: "10.0.0.1:5555", want: "10.0.0.1"},
		{name: "ignores xff when untrusted", remote: "10.0.0.1:5555", xff: "1.2.3.4", want: "10.0.0.1"},
		{name: "trusted xff", remote: "10.0.0.1:5555", xff: "1.2.3.4, 10.0.0.9", trustXFF: true, want: "1.2.3.4"},
		{name: "bare remote", remote: "pipe", want: "pipe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := ClientIP(tt.trustXFF)(req); got != tt.want {
				t.Fatalf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimitPerClient(t *testing.T) {
	store := newLimiterStore(0.001, 1)
	handler := rateLimit(store, ClientIP(false))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(remote string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = remote
		handler.ServeHTTP(rec, req)
		return rec
	}

	if got := call("10.0.0.1:1").Code; got != http.StatusNoContent {
		t.Fatalf("first call = %d", got)
	}
	rec := call("10.0.0.1:2")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second call = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "1000" {
		t.Fatalf("Retry-After = %q, want 1000", got)
	}
	if got := call("10.0.0.2:1").Code; got != http.StatusNoContent {
		t.Fatalf("other client = %d, want 204", got)
	}
}

func TestLimiterCleanupDropsIdleClients(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := newLimiterStore(1, 1)
	store.now = func() time.Time { return now }

	store.get("a")
	now = now.Add(time.Hour)
	store.get("b")
	store.cleanup()

	if got := store.size(); got != 1 {
		t.Fatalf("size = %d, want 1", got)
	}
}
