package session

import (
	"sync"
	"time"
)

// MemoryStore keeps sessions in a process-wide map. Each conversation gets
// its own mutex so concurrent messages from the same sender are serialized
// while different senders run in parallel.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	sess *Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*entry)}
}

func (m *MemoryStore) Update(id string, fn func(*Session) error) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if !ok {
		e = &entry{sess: New()}
		m.sessions[id] = e
	}
	m.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.sess.LastActivity = time.Now()
	return fn(e.sess)
}

// Reap removes sessions idle longer than maxIdle to keep the map bounded.
func (m *MemoryStore) Reap(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	n := 0
	for id, e := range m.sessions {
		// Update writes LastActivity under e.mu, so read it under e.mu too.
		e.mu.Lock()
		idle := now.Sub(e.sess.LastActivity) > maxIdle
		e.mu.Unlock()
		if idle {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

func (m *MemoryStore) Close() error { return nil }
