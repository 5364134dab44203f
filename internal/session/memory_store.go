package session

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps sessions for the lifetime of the process.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	lockMu   sync.Mutex
	locks    map[string]chan struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		locks:    make(map[string]chan struct{}),
	}
}

// Save stores a copy so later mutations by the caller are not observed.
func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// List returns journaled sessions, oldest first.
func (m *MemoryStore) List(_ context.Context) ([]*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		s := s
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	return out, nil
}

// LockTransaction acquires every key in order, runs fn, then releases them
// in reverse order.
func (m *MemoryStore) LockTransaction(ctx context.Context, keys []string, fn func() error) error {
	held := make([]chan struct{}, 0, len(keys))
	defer func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}()
	for _, key := range keys {
		ch := m.lockChan(key)
		select {
		case ch <- struct{}{}:
			held = append(held, ch)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fn()
}

func (m *MemoryStore) lockChan(key string) chan struct{} {
	m.lockMu.Lock()
	defer m.lockMu.Unlock()
	ch, ok := m.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		m.locks[key] = ch
	}
	return ch
}

func (m *MemoryStore) Durable() bool {
	return false
}

func (m *MemoryStore) Close() error {
	return nil
}
