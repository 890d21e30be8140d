package session

import (
	"context"
	"errors"
	"testing"
)

// fakeResolver counts calls and returns a scripted result.
type fakeResolver struct {
	siteID string
	err    error
	calls  int
}

func (f *fakeResolver) ResolveSiteID(_ context.Context) (string, error) {
	f.calls++
	return f.siteID, f.err
}

func TestEnsureReady_ResolvesOnce(t *testing.T) {
	r := &fakeResolver{siteID: "site-1"}
	s := New(r)

	for i := 0; i < 3; i++ {
		if err := s.EnsureReady(context.Background()); err != nil {
			t.Fatalf("EnsureReady() #%d error = %v", i, err)
		}
	}

	if r.calls != 1 {
		t.Errorf("resolver calls = %d, want 1 (EnsureReady must be idempotent once ready)", r.calls)
	}
	siteID, ok := s.SiteID()
	if !ok || siteID != "site-1" {
		t.Errorf("SiteID() = %q, %v, want site-1, true", siteID, ok)
	}
}

func TestSiteID_NotReadyBeforeDiscovery(t *testing.T) {
	s := New(&fakeResolver{siteID: "site-1"})

	if siteID, ok := s.SiteID(); ok {
		t.Errorf("SiteID() before EnsureReady = %q, true — want not ready", siteID)
	}
}

func TestEnsureReady_PropagatesError(t *testing.T) {
	resolveErr := errors.New("controller unreachable")
	r := &fakeResolver{err: resolveErr}
	s := New(r)

	if err := s.EnsureReady(context.Background()); !errors.Is(err, resolveErr) {
		t.Fatalf("EnsureReady() error = %v, want wrapped resolver error", err)
	}
	if _, ok := s.SiteID(); ok {
		t.Error("session must not become ready on a failed discovery")
	}

	// A failed attempt must not poison later ones.
	r.err = nil
	r.siteID = "site-2"
	if err := s.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady() after recovery error = %v", err)
	}
	if siteID, _ := s.SiteID(); siteID != "site-2" {
		t.Errorf("SiteID() = %q, want site-2", siteID)
	}
}

func TestReset_ForcesRediscovery(t *testing.T) {
	r := &fakeResolver{siteID: "site-1"}
	s := New(r)

	if err := s.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady() error = %v", err)
	}
	s.Reset()

	if _, ok := s.SiteID(); ok {
		t.Error("SiteID() after Reset must report not ready")
	}

	r.siteID = "site-rotated"
	if err := s.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady() after Reset error = %v", err)
	}
	if r.calls != 2 {
		t.Errorf("resolver calls = %d, want 2 (Reset must force re-discovery)", r.calls)
	}
	if siteID, _ := s.SiteID(); siteID != "site-rotated" {
		t.Errorf("SiteID() = %q, want site-rotated", siteID)
	}
}
