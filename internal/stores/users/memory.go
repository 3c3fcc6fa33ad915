package users

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore provides an in-memory implementation of Store for testing
type InMemoryStore struct {
	users    map[uuid.UUID]*User
	sessions map[uuid.UUID]*Session
	resets   map[uuid.UUID]*PasswordReset
	mutex    sync.RWMutex
}

// NewInMemoryStore creates a new in-memory user store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users:    make(map[uuid.UUID]*User),
		sessions: make(map[uuid.UUID]*Session),
		resets:   make(map[uuid.UUID]*PasswordReset),
	}
}

// CreateUser stores a copy of the user row
func (s *InMemoryStore) CreateUser(_ context.Context, user *User) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now().UTC()
	row := *user
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now

	s.users[user.ID] = &row
	return nil
}

// GetUser retrieves a user by ID
func (s *InMemoryStore) GetUser(_ context.Context, id uuid.UUID) (*User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	user, exists := s.users[id]
	if !exists {
		return nil, ErrNotFound
	}
	row := *user
	return &row, nil
}

// GetUserByEmail retrieves a user by email
func (s *InMemoryStore) GetUserByEmail(_ context.Context, email string) (*User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			row := *user
			return &row, nil
		}
	}
	return nil, ErrNotFound
}

// ListUsers retrieves all users, newest first
func (s *InMemoryStore) ListUsers(_ context.Context) ([]*User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var all []*User
	for _, user := range s.users {
		row := *user
		all = append(all, &row)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	return all, nil
}

// UpdatePasswordHash replaces a user's password hash
func (s *InMemoryStore) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	user, exists := s.users[id]
	if !exists {
		return ErrNotFound
	}
	user.PasswordHash = &hash
	user.UpdatedAt = time.Now().UTC()
	return nil
}

// DeleteUser removes a user row and their sessions
func (s *InMemoryStore) DeleteUser(_ context.Context, id uuid.UUID) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.users[id]; !exists {
		return ErrNotFound
	}
	delete(s.users, id)

	for token, session := range s.sessions {
		if session.UserID == id {
			delete(s.sessions, token)
		}
	}
	return nil
}

// CreateSession creates a new login session
func (s *InMemoryStore) CreateSession(_ context.Context, session *Session) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	row := *session
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	s.sessions[session.Token] = &row
	return nil
}

// GetSession retrieves a session by token
func (s *InMemoryStore) GetSession(_ context.Context, token uuid.UUID) (*Session, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	session, exists := s.sessions[token]
	if !exists {
		return nil, ErrNotFound
	}
	row := *session
	return &row, nil
}

// DeleteSession removes a session by token
func (s *InMemoryStore) DeleteSession(_ context.Context, token uuid.UUID) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.sessions, token)
	return nil
}

// CreatePasswordReset stores a new reset token row
func (s *InMemoryStore) CreatePasswordReset(_ context.Context, reset *PasswordReset) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	row := *reset
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	s.resets[reset.ID] = &row
	return nil
}

// GetPasswordResetByTokenHash retrieves a reset row by hashed token
func (s *InMemoryStore) GetPasswordResetByTokenHash(_ context.Context, tokenHash string) (*PasswordReset, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, reset := range s.resets {
		if reset.TokenHash == tokenHash {
			row := *reset
			return &row, nil
		}
	}
	return nil, ErrNotFound
}

// InvalidatePasswordResets marks every outstanding reset for an email used
func (s *InMemoryStore) InvalidatePasswordResets(_ context.Context, email string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, reset := range s.resets {
		if reset.Email == email {
			reset.Used = true
		}
	}
	return nil
}

// MarkPasswordResetUsed consumes a reset token
func (s *InMemoryStore) MarkPasswordResetUsed(_ context.Context, id uuid.UUID) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	reset, exists := s.resets[id]
	if !exists {
		return ErrNotFound
	}
	reset.Used = true
	return nil
}
