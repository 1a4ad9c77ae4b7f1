package ephemeral

import (
	"strings"
	"testing"
	"time"
)

func TestEvictExpired(t *testing.T) {
	s := newCoreStore()
	defer s.close()

	_ = s.set("old", "", time.Millisecond)
	_ = s.set("fresh", "", time.Hour)

	if n := s.evictExpired(time.Now().Add(time.Second)); n != 1 {
		t.Errorf("expected 1 eviction, got %d", n)
	}
	if s.len() != 1 {
		t.Errorf("expected 1 item left, got %d", s.len())
	}
}

func TestSetRejectsLongKeys(t *testing.T) {
	s := newCoreStore()
	defer s.close()

	if err := s.set(strings.Repeat("k", maxKeyLength+1), "", time.Minute); err != ErrTooLong {
		t.Errorf("expected ErrTooLong, got %v", err)
	}
}

func TestSetStoreFull(t *testing.T) {
	old := maxStoreSize
	maxStoreSize = 2
	defer func() { maxStoreSize = old }()

	s := newCoreStore()
	defer s.close()

	_ = s.set("a", "", time.Minute)
	_ = s.set("b", "", time.Minute)
	if err := s.set("c", "", time.Minute); err != ErrStoreFull {
		t.Errorf("expected ErrStoreFull, got %v", err)
	}
	// Overwriting an existing key is allowed when full.
	if err := s.set("a", "v", time.Minute); err != nil {
		t.Errorf("expected overwrite to succeed, got %v", err)
	}
}
