package nav

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sessions holds one Controller per browser session.
type Sessions struct {
	router *Router
	mu     sync.Mutex
	byID   map[string]*Controller
	// OnChange, if set, is installed on every new Controller.
	OnChange func(id string, t Transition)
}

// NewSessions returns an empty session set navigating within router.
func NewSessions(router *Router) *Sessions {
	return &Sessions{router: router, byID: make(map[string]*Controller)}
}

// Router returns the router shared by all sessions.
func (s *Sessions) Router() *Router {
	return s.router
}

// Get returns the controller of session id.
func (s *Sessions) Get(id string) (*Controller, bool) {
	if len(id) == 0 {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	return c, ok
}

// New starts a session, and returns its id and idle controller.
func (s *Sessions) New() (string, *Controller) {
	id := uuid.NewString()
	c := NewController(s.router)
	if fn := s.OnChange; fn != nil {
		c.OnChange(func(t Transition) { fn(id, t) })
	}
	s.mu.Lock()
	s.byID[id] = c
	s.mu.Unlock()
	return id, c
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// Prune removes sessions idle for longer than maxIdle, and returns
// how many were removed.
func (s *Sessions) Prune(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for id, c := range s.byID {
		if c.LastSeen().Before(cutoff) {
			delete(s.byID, id)
			n++
		}
	}
	return n
}

// Run prunes idle sessions every interval, until ctx is done.
func (s *Sessions) Run(ctx context.Context, interval, maxIdle time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Prune(maxIdle); n > 0 {
				log.Printf("Pruned %d idle sessions, %d left", n, s.Len())
			}
		}
	}
}
