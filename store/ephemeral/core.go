package ephemeral

import (
	"errors"
	"sync"
	"time"

	"github.com/Goofygiraffe06/signup/internal/logging"
	"github.com/Goofygiraffe06/signup/internal/utils"
)

var (
	ErrTooLong   = errors.New("key too long")
	ErrStoreFull = errors.New("ephemeral store full")
	maxKeyLength = 255
	maxStoreSize = 10_000
)

const cleanupInterval = time.Minute

type item struct {
	value     string
	expiresAt time.Time
}

type coreStore struct {
	data map[string]*item
	mu   sync.RWMutex
	done chan struct{}
	once sync.Once
}

func newCoreStore() *coreStore {
	store := &coreStore{
		data: make(map[string]*item),
		done: make(chan struct{}),
	}

	go store.cleanup()
	return store
}

func (s *coreStore) set(key, value string, ttl time.Duration) error {
	if len(key) > maxKeyLength {
		logging.DebugLog("Store set failed: key too long [%s] (length: %d)", utils.HashToken(key), len(key))
		return ErrTooLong
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; !exists && len(s.data) >= maxStoreSize {
		logging.WarnLog("Store set failed: store full (size: %d)", len(s.data))
		return ErrStoreFull
	}

	s.data[key] = &item{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (s *coreStore) get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.data[key]
	if !ok || time.Now().After(it.expiresAt) {
		return "", false
	}
	return it.value, true
}

func (s *coreStore) take(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.data[key]
	if !ok {
		return "", false
	}
	delete(s.data, key)
	if time.Now().After(it.expiresAt) {
		return "", false
	}
	return it.value, true
}

func (s *coreStore) delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

func (s *coreStore) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *coreStore) close() {
	s.once.Do(func() { close(s.done) })
}

func (s *coreStore) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.evictExpired(time.Now())
		}
	}
}

func (s *coreStore) evictExpired(now time.Time) int {
	s.mu.Lock()
	expired := 0
	for k, v := range s.data {
		if now.After(v.expiresAt) {
			delete(s.data, k)
			expired++
		}
	}
	size := len(s.data)
	s.mu.Unlock()

	if expired > 0 {
		logging.InfoLog("Store cleanup: removed %d expired items (current size: %d)", expired, size)
	}
	return expired
}
