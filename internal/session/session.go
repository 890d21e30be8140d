// Package session tracks the one piece of discovered controller state the
// exporter needs between polls: the site identifier devices are namespaced
// under. A Session is either uninitialized or ready; EnsureReady is the only
// transition into ready, Reset the only transition out.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// SiteResolver discovers the site identifier on the controller.
// *unifi.Client satisfies it.
type SiteResolver interface {
	ResolveSiteID(ctx context.Context) (string, error)
}

// Session holds the lazily-resolved site identifier. The explicit ready flag
// (rather than an empty-string sentinel) keeps "not yet discovered"
// distinguishable from any identifier the controller could return.
//
// All methods are safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	resolver SiteResolver
	siteID   string
	ready    bool
}

// New returns an uninitialized Session backed by the given resolver.
func New(r SiteResolver) *Session {
	return &Session{resolver: r}
}

// EnsureReady resolves and stores the site identifier if it is not already
// set. It is idempotent once ready: subsequent calls return immediately
// without touching the controller.
func (s *Session) EnsureReady(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return nil
	}

	siteID, err := s.resolver.ResolveSiteID(ctx)
	if err != nil {
		return fmt.Errorf("session: discover site: %w", err)
	}

	s.siteID = siteID
	s.ready = true
	slog.Info("session: site discovered", "site", siteID)
	return nil
}

// SiteID returns the discovered site identifier. ok is false until
// EnsureReady has succeeded; callers must not build device requests before
// that.
func (s *Session) SiteID() (siteID string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.siteID, s.ready
}

// Reset clears the discovered identifier, forcing the next EnsureReady to
// re-run discovery. Used after repeated auth expiry so a stale site mapping
// does not survive a credential rotation on the controller.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		slog.Warn("session: reset, site will be re-discovered", "site", s.siteID)
	}
	s.siteID = ""
	s.ready = false
}
