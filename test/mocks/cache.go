package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// MockCache is an in-memory stand-in for the Redis cache.
// Keys expire against the supplied clock.
type MockCache struct {
	clock   clockwork.Clock
	data    map[string]string
	expires map[string]time.Time
	mu      sync.Mutex

	// Err, when set, is returned by every call.
	Err error
}

// NewMockCache creates a new mock cache instance
func NewMockCache(clock clockwork.Clock) *MockCache {
	return &MockCache{
		clock:   clock,
		data:    make(map[string]string),
		expires: make(map[string]time.Time),
	}
}

// SetNX claims key unless an unexpired claim exists.
func (m *MockCache) SetNX(_ context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return false, m.Err
	}

	if m.live(key) {
		return false, nil
	}
	m.store(key, value, expiration)
	return true, nil
}

// Get returns the value of key, or "" when it is missing or expired.
func (m *MockCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	if !m.live(key) {
		return "", nil
	}
	return m.data[key], nil
}

// Set stores value under key.
func (m *MockCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.store(key, value, expiration)
	return nil
}

func (m *MockCache) live(key string) bool {
	if _, ok := m.data[key]; !ok {
		return false
	}
	until, expires := m.expires[key]
	return !expires || m.clock.Now().Before(until)
}

func (m *MockCache) store(key string, value interface{}, expiration time.Duration) {
	switch v := value.(type) {
	case string:
		m.data[key] = v
	case []byte:
		m.data[key] = string(v)
	default:
		m.data[key] = fmt.Sprint(v)
	}
	delete(m.expires, key)
	if expiration > 0 {
		m.expires[key] = m.clock.Now().Add(expiration)
	}
}
