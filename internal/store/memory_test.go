package store

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSessionStoreCreateAndGet(t *testing.T) {
	s := NewSessionStore(time.Hour)

	sess := s.Create()
	if sess.ID == "" {
		t.Fatalf("expected session id")
	}
	got, err := s.Get(sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != sess {
		t.Fatalf("expected same session")
	}
	if _, _, ok := got.Location(); ok {
		t.Fatalf("new session must have no location")
	}
}

func TestSessionStoreGetUnknown(t *testing.T) {
	s := NewSessionStore(time.Hour)
	for _, id := range []string{"", "not-a-uuid", "6f1c1f9e-3b9a-4f6c-9a52-0c1e6e3c5d11"} {
		if _, err := s.Get(id); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("id %q: expected ErrSessionNotFound, got %v", id, err)
		}
	}
}

func TestSessionStoreGetOrCreate(t *testing.T) {
	s := NewSessionStore(time.Hour)

	first, created := s.GetOrCreate("")
	if !created {
		t.Fatalf("expected a new session")
	}
	again, created := s.GetOrCreate(first.ID)
	if created || again != first {
		t.Fatalf("expected existing session to be returned")
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", s.Len())
	}
}

func TestSessionStoreSweep(t *testing.T) {
	s := NewSessionStore(time.Hour)
	now := time.Now()

	stale := s.Create()
	stale.Touch(now.Add(-2 * time.Hour))
	fresh := s.Create()
	fresh.Touch(now.Add(-10 * time.Minute))

	if removed := s.Sweep(now); removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if _, err := s.Get(stale.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("stale session should be gone")
	}
	if _, err := s.Get(fresh.ID); err != nil {
		t.Fatalf("fresh session should survive: %v", err)
	}
}

func TestSessionStoreSweepWithoutMaxAge(t *testing.T) {
	s := NewSessionStore(0)
	sess := s.Create()
	sess.Touch(time.Now().Add(-1000 * time.Hour))

	if removed := s.Sweep(time.Now()); removed != 0 {
		t.Fatalf("expected nothing removed, got %d", removed)
	}
}

func TestSessionStoreConcurrentAccess(t *testing.T) {
	s := NewSessionStore(time.Hour)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, _ := s.GetOrCreate("")
			s.Get(sess.ID)
			s.Sweep(time.Now())
		}()
	}
	wg.Wait()
	if s.Len() != 50 {
		t.Fatalf("expected 50 sessions, got %d", s.Len())
	}
}
