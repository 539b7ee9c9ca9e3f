package auth

import (
	"context"
	"sync"
	"time"

	"github.com/mrlokans/crudgate/internal/apperr"
	"github.com/mrlokans/crudgate/internal/entities"
)

type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*entities.LoginSession
	deleted  []string
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: make(map[string]*entities.LoginSession)}
}

func (s *memorySessionStore) Add(_ context.Context, session *entities.LoginSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *session
	s.sessions[session.ID] = &clone
	return nil
}

func (s *memorySessionStore) GetByID(_ context.Context, id string) (*entities.LoginSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, apperr.NotFound("Login session not found")
	}
	clone := *session
	return &clone, nil
}

func (s *memorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type memoryUserRepo struct {
	users       map[string]*entities.User // by email
	lastLoginAt map[uint]time.Time
}

func newMemoryUserRepo(users ...*entities.User) *memoryUserRepo {
	r := &memoryUserRepo{
		users:       make(map[string]*entities.User),
		lastLoginAt: make(map[uint]time.Time),
	}
	for _, u := range users {
		r.users[u.Email] = u
	}
	return r
}

func (r *memoryUserRepo) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	clone := *u
	return &clone, nil
}

func (r *memoryUserRepo) UpdateLastLogin(_ context.Context, id uint, at time.Time) error {
	r.lastLoginAt[id] = at
	return nil
}

func (r *memoryUserRepo) GetByUUIDWithPermissions(_ context.Context, uuid string) (*entities.User, error) {
	for _, u := range r.users {
		if u.UUID == uuid {
			clone := *u
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}
