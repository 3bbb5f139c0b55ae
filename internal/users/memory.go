package users

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store and RoleStore used by tests and
// local development. Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]*User
	roles map[uuid.UUID][]Role
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:  make(map[uuid.UUID]*User),
		roles: make(map[uuid.UUID][]Role),
	}
}

// Add inserts or replaces a user record.
func (s *MemoryStore) Add(user *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *user
	s.byID[u.ID] = &u
}

// Grant assigns a role to a user.
func (s *MemoryStore) Grant(userID uuid.UUID, role Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[userID] = append(s.roles[userID], role)
}

func (s *MemoryStore) GetByUsername(_ context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.byID {
		if strings.EqualFold(u.Username, username) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *MemoryStore) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *MemoryStore) Update(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[user.ID]; !ok {
		return ErrUserNotFound
	}
	copied := *user
	s.byID[user.ID] = &copied
	return nil
}

func (s *MemoryStore) RolesForUser(_ context.Context, userID uuid.UUID) ([]Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Role(nil), s.roles[userID]...), nil
}
