package session

import "sync"

// Store keeps per-chat sessions. It is an explicit dependency (not hidden
// package state) so it can be backed by anything and constructed in tests.
type Store interface {
	// Get returns the chat's active session, or nil when the chat is idle.
	Get(chatID int64) *Session
	Put(s *Session)
	Delete(chatID int64)
}

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewMemoryStore creates an in-memory session store. Sessions do not survive
// a process restart; that is an accepted limitation of the design.
func NewMemoryStore() Store {
	return &memoryStore{sessions: make(map[int64]*Session)}
}

func (m *memoryStore) Get(chatID int64) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[chatID]
}

func (m *memoryStore) Put(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ChatID] = s
}

func (m *memoryStore) Delete(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
}
