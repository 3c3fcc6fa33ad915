package users

import (
	"time"

	"github.com/google/uuid"
)

// Provider identifies how a user authenticates
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User is a registered account. PasswordHash is nil for federated accounts,
// which carry no local credential.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Name         string    `json:"name" gorm:"size:255"`
	PasswordHash *string   `json:"-" gorm:"size:255"`
	Provider     string    `json:"provider" gorm:"size:32;not null;default:local"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasLocalCredential reports whether the account can change its password
func (u *User) HasLocalCredential() bool {
	return u.Provider == ProviderLocal && u.PasswordHash != nil
}

// Session is a bearer login session
type Session struct {
	Token     uuid.UUID `json:"token" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:char(36);not null;index"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session is past its expiry
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// PasswordReset is a single-use password reset token. Only the SHA-256 hash
// of the token is stored; the raw token leaves the server once, in email.
type PasswordReset struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Email     string    `json:"email" gorm:"size:255;not null;index"`
	TokenHash string    `json:"-" gorm:"size:64;not null;index"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	Used      bool      `json:"used" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
}

// Usable reports whether the token can still redeem a reset
func (r *PasswordReset) Usable(now time.Time) bool {
	return !r.Used && now.Before(r.ExpiresAt)
}
