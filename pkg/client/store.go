package client

import "sync"

// TokenStore persists the session token and the last verified user.
type TokenStore interface {
	Token() string
	User() *User
	Save(token string, user *User)
	SetUser(user *User)
	Clear()
}

type MemoryStore struct {
	mu    sync.RWMutex
	token string
	user  *User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *MemoryStore) User() *User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

func (m *MemoryStore) Save(token string, user *User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.user = token, user
}

func (m *MemoryStore) SetUser(user *User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = user
}

func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.user = "", nil
}
