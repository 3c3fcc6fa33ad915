package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// ErrNotFound is returned when no row exists for the given lookup
var ErrNotFound = errors.New("not found")

// Store interface defines methods for user, session, and reset-token storage
type Store interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	DeleteUser(ctx context.Context, id uuid.UUID) error

	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, token uuid.UUID) (*Session, error)
	DeleteSession(ctx context.Context, token uuid.UUID) error

	CreatePasswordReset(ctx context.Context, reset *PasswordReset) error
	GetPasswordResetByTokenHash(ctx context.Context, tokenHash string) (*PasswordReset, error)
	InvalidatePasswordResets(ctx context.Context, email string) error
	MarkPasswordResetUsed(ctx context.Context, id uuid.UUID) error
}

// MySqlStore handles user persistence using GORM
type MySqlStore struct {
	db *gorm.DB
}

// NewMySqlStore creates a new user store with GORM connection
func NewMySqlStore(databaseURL string) (*MySqlStore, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &MySqlStore{db: db}

	// Auto-migrate tables
	if err := db.AutoMigrate(&User{}, &Session{}, &PasswordReset{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	return store, nil
}

// NewMySqlStoreWithDB wraps an existing GORM connection
func NewMySqlStoreWithDB(db *gorm.DB) (*MySqlStore, error) {
	if err := db.AutoMigrate(&User{}, &Session{}, &PasswordReset{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}
	return &MySqlStore{db: db}, nil
}

// CreateUser creates a new user row
func (s *MySqlStore) CreateUser(ctx context.Context, user *User) error {
	result := s.db.WithContext(ctx).Create(user)
	if result.Error != nil {
		return fmt.Errorf("failed to create user: %w", result.Error)
	}
	return nil
}

// GetUser retrieves a user by ID
func (s *MySqlStore) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	result := s.db.WithContext(ctx).First(&user, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", result.Error)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (s *MySqlStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	result := s.db.WithContext(ctx).First(&user, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", result.Error)
	}
	return &user, nil
}

// ListUsers retrieves all users, newest first
func (s *MySqlStore) ListUsers(ctx context.Context) ([]*User, error) {
	var users []*User
	result := s.db.WithContext(ctx).Order("created_at DESC").Find(&users)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list users: %w", result.Error)
	}
	return users, nil
}

// UpdatePasswordHash replaces a user's password hash
func (s *MySqlStore) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	result := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("password_hash", hash)
	if result.Error != nil {
		return fmt.Errorf("failed to update password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes a user row and their sessions
func (s *MySqlStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&User{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	if err := s.db.WithContext(ctx).Delete(&Session{}, "user_id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

// CreateSession creates a new login session
func (s *MySqlStore) CreateSession(ctx context.Context, session *Session) error {
	result := s.db.WithContext(ctx).Create(session)
	if result.Error != nil {
		return fmt.Errorf("failed to create session: %w", result.Error)
	}
	return nil
}

// GetSession retrieves a session by token
func (s *MySqlStore) GetSession(ctx context.Context, token uuid.UUID) (*Session, error) {
	var session Session
	result := s.db.WithContext(ctx).First(&session, "token = ?", token)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", result.Error)
	}
	return &session, nil
}

// DeleteSession removes a session by token
func (s *MySqlStore) DeleteSession(ctx context.Context, token uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&Session{}, "token = ?", token)
	if result.Error != nil {
		return fmt.Errorf("failed to delete session: %w", result.Error)
	}
	return nil
}

// CreatePasswordReset stores a new reset token row
func (s *MySqlStore) CreatePasswordReset(ctx context.Context, reset *PasswordReset) error {
	result := s.db.WithContext(ctx).Create(reset)
	if result.Error != nil {
		return fmt.Errorf("failed to create password reset: %w", result.Error)
	}
	return nil
}

// GetPasswordResetByTokenHash retrieves a reset row by hashed token
func (s *MySqlStore) GetPasswordResetByTokenHash(ctx context.Context, tokenHash string) (*PasswordReset, error) {
	var reset PasswordReset
	result := s.db.WithContext(ctx).First(&reset, "token_hash = ?", tokenHash)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get password reset: %w", result.Error)
	}
	return &reset, nil
}

// InvalidatePasswordResets marks every outstanding reset for an email used
func (s *MySqlStore) InvalidatePasswordResets(ctx context.Context, email string) error {
	result := s.db.WithContext(ctx).Model(&PasswordReset{}).Where("email = ? AND used = ?", email, false).Update("used", true)
	if result.Error != nil {
		return fmt.Errorf("failed to invalidate password resets: %w", result.Error)
	}
	return nil
}

// MarkPasswordResetUsed consumes a reset token
func (s *MySqlStore) MarkPasswordResetUsed(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Model(&PasswordReset{}).Where("id = ?", id).Update("used", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark password reset used: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
