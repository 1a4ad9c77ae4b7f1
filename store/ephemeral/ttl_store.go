package ephemeral

import "time"

// TTLStore keeps short-lived keys, optionally with a value.
type TTLStore struct {
	core *coreStore
}

func NewTTLStore() *TTLStore {
	return &TTLStore{core: newCoreStore()}
}

func (s *TTLStore) Set(key string, ttl time.Duration) error {
	return s.core.set(key, "", ttl)
}

func (s *TTLStore) SetWithValue(key, value string, ttl time.Duration) error {
	return s.core.set(key, value, ttl)
}

func (s *TTLStore) Get(key string) (string, bool) {
	return s.core.get(key)
}

func (s *TTLStore) Exists(key string) bool {
	_, exists := s.core.get(key)
	return exists
}

// Take returns the value and removes the key, so it can be consumed only once.
func (s *TTLStore) Take(key string) (string, bool) {
	return s.core.take(key)
}

func (s *TTLStore) Delete(key string) {
	s.core.delete(key)
}

func (s *TTLStore) Len() int {
	return s.core.len()
}

// Close stops the background cleanup.
func (s *TTLStore) Close() {
	s.core.close()
}
