package server

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-signup/pkg/form"
)

const (
	// flowField carries the id of a failed submission kept for retry.
	flowField = "_flow"
	// retryField is posted by the retry button.
	retryField = "_retry"

	defaultFlowTTL = 10 * time.Minute
)

// flowStore keeps the controllers of failed submissions so the page's retry
// button can re-send the stored input, password included, without echoing
// the password into the page. Entries expire after ttl of inactivity.
type flowStore struct {
	mu      sync.Mutex
	entries map[string]*flowEntry
	ttl     time.Duration
	now     func() time.Time
}

type flowEntry struct {
	controller *form.Controller
	lastSeen   time.Time
}

func newFlowStore(ttl time.Duration) *flowStore {
	if ttl <= 0 {
		ttl = defaultFlowTTL
	}
	return &flowStore{
		entries: make(map[string]*flowEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// put stores controller under id, minting a new id when id is empty.
func (s *flowStore) put(id string, controller *form.Controller) string {
	if id == "" {
		id = uuid.NewString()
	}
	s.mu.Lock()
	s.entries[id] = &flowEntry{controller: controller, lastSeen: s.now()}
	s.mu.Unlock()
	return id
}

func (s *flowStore) get(id string) (*form.Controller, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, false
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	ent, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	if now.Sub(ent.lastSeen) > s.ttl {
		delete(s.entries, id)
		return nil, false
	}
	ent.lastSeen = now
	return ent.controller, true
}

func (s *flowStore) drop(id string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

func (s *flowStore) cleanup() {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, id)
		}
	}
}

func (s *flowStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// janitor drops expired flows until ctx is done.
func (s *flowStore) janitor(ctx context.Context, every time.Duration) {
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
