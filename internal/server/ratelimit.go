package server

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/goliatone/go-signup/pkg/transport"
)

// KeyFunc identifies the client a request is throttled as.
type KeyFunc func(r *http.Request) string

// ClientIP keys requests by the remote host, optionally trusting the first
// X-Forwarded-For entry.
func ClientIP(trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if trustXFF {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
					return ip
				}
			}
		}
		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}

// limiterStore keeps one token bucket per client key and forgets idle ones.
type limiterStore struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newLimiterStore(rps float64, burst int) *limiterStore {
	if burst < 1 {
		burst = 1
	}
	return &limiterStore{
		entries: make(map[string]*limiterEntry),
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: 15 * time.Minute,
		now:     time.Now,
	}
}

func (s *limiterStore) get(key string) *rate.Limiter {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}
	lim := rate.NewLimiter(s.rps, s.burst)
	s.entries[key] = &limiterEntry{lim: lim, lastSeen: now}
	return lim
}

func (s *limiterStore) cleanup() {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, key)
		}
	}
}

func (s *limiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// janitor drops idle limiters until ctx is done.
func (s *limiterStore) janitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.cleanup()
			}
		}
	}()
}

// retryAfter is the wait, in whole seconds, until one token is available.
func (s *limiterStore) retryAfter() int {
	if s.rps <= 0 {
		return 1
	}
	return int(math.Max(1, math.Ceil(1/float64(s.rps))))
}

// rateLimit rejects requests over the per-client budget with 429, a
// Retry-After header and the standard error envelope.
func rateLimit(store *limiterStore, keyFn KeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !store.get(keyFn(r)).Allow() {
				w.Header().Set("Retry-After", strconv.Itoa(store.retryAfter()))
				writeJSON(w, http.StatusTooManyRequests, transport.Envelope{
					Message: "Too many sign up attempts. Please wait and try again.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
