package auth_module

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/meetingcopilot/api/internal/mail"
	"github.com/meetingcopilot/api/internal/stores/users"
	"github.com/meetingcopilot/api/pkg/utils"
)

const (
	sessionTTL  = 7 * 24 * time.Hour
	resetTTL    = 1 * time.Hour
	bcryptCost  = bcrypt.DefaultCost
	userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// Errors surfaced to controllers for status-code mapping
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrFederatedAccount   = errors.New("account uses federated login and has no local password")
	ErrInvalidResetToken  = errors.New("reset token is invalid or expired")
)

// AuthService handles accounts, sessions, and password lifecycle
type AuthService struct {
	store      users.Store
	mailer     mail.Sender
	appBaseURL string
	google     *oauth2.Config
}

var authService *AuthService

// Init creates the auth service with its collaborators. The Google OAuth
// flow stays disabled when client credentials are not configured.
func Init(cfg *utils.Config, store users.Store, mailer mail.Sender) error {
	if store == nil {
		return fmt.Errorf("a valid user store must be provided")
	}

	service := &AuthService{
		store:      store,
		mailer:     mailer,
		appBaseURL: cfg.GetWithDefault("APP_BASE_URL", "http://localhost:3000"),
	}

	if clientID := cfg.Get("GOOGLE_CLIENT_ID"); clientID != "" {
		service.google = &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: cfg.Get("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  cfg.Get("GOOGLE_REDIRECT_URL"),
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}

	authService = service
	return nil
}

// GetService returns the initialized auth service, for other modules that
// need session validation
func GetService() *AuthService {
	return authService
}

// Register creates a local account with a bcrypt-hashed password
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*users.User, error) {
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, users.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	hashStr := string(hash)
	user := &users.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: &hashStr,
		Provider:     users.ProviderLocal,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies a local credential and issues a session
func (s *AuthService) Login(ctx context.Context, email, password string) (*users.User, *users.Session, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !user.HasLocalCredential() {
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.issueSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// Logout removes a session
func (s *AuthService) Logout(ctx context.Context, token uuid.UUID) error {
	return s.store.DeleteSession(ctx, token)
}

// Authenticate resolves a bearer token to its user
func (s *AuthService) Authenticate(ctx context.Context, token uuid.UUID) (*users.User, error) {
	session, err := s.store.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Expired(time.Now().UTC()) {
		// Expired sessions are removed on first sight
		_ = s.store.DeleteSession(ctx, token)
		return nil, users.ErrNotFound
	}
	return s.store.GetUser(ctx, session.UserID)
}

// ChangePassword verifies the current password and stores a new hash. Only
// accounts with a local credential may change passwords.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if !user.HasLocalCredential() {
		return ErrFederatedAccount
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.store.UpdatePasswordHash(ctx, userID, string(hash))
}

// ForgotPassword issues a single-use reset token and emails it. The caller
// always receives the same outcome whether or not the account exists or uses
// federated login, to avoid account enumeration.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil
		}
		return err
	}
	if !user.HasLocalCredential() {
		return nil
	}

	// A new request invalidates every outstanding token for the email
	if err := s.store.InvalidatePasswordResets(ctx, email); err != nil {
		return err
	}

	token, tokenHash, err := newResetToken()
	if err != nil {
		return err
	}

	reset := &users.PasswordReset{
		ID:        uuid.New(),
		Email:     email,
		TokenHash: tokenHash,
		ExpiresAt: time.Now().UTC().Add(resetTTL),
	}
	if err := s.store.CreatePasswordReset(ctx, reset); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.appBaseURL, token)
	body := fmt.Sprintf(
		"<p>A password reset was requested for your Meeting Copilot account.</p>"+
			"<p><a href=%q>Reset your password</a> (link expires in one hour).</p>"+
			"<p>If you did not request this, you can ignore this email.</p>", resetURL)

	return s.mailer.Send(ctx, email, "Reset your Meeting Copilot password", body)
}

// ResetPassword redeems a reset token and stores a new hash
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	sum := sha256.Sum256([]byte(token))
	reset, err := s.store.GetPasswordResetByTokenHash(ctx, hex.EncodeToString(sum[:]))
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if !reset.Usable(time.Now().UTC()) {
		return ErrInvalidResetToken
	}

	user, err := s.store.GetUserByEmail(ctx, reset.Email)
	if err != nil {
		return ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.store.UpdatePasswordHash(ctx, user.ID, string(hash)); err != nil {
		return err
	}

	return s.store.MarkPasswordResetUsed(ctx, reset.ID)
}

// GoogleLoginURL returns the consent-screen redirect for the OAuth flow
func (s *AuthService) GoogleLoginURL(state string) (string, error) {
	if s.google == nil {
		return "", fmt.Errorf("google login is not configured")
	}
	return s.google.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// googleUserInfo is the subset of the userinfo response we consume
type googleUserInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GoogleCallback exchanges the authorization code, upserts the federated
// account, and issues a session
func (s *AuthService) GoogleCallback(ctx context.Context, code string) (*users.User, *users.Session, error) {
	if s.google == nil {
		return nil, nil, fmt.Errorf("google login is not configured")
	}

	token, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("code exchange failed: %w", err)
	}

	info, err := fetchGoogleUserInfo(ctx, s.google, token)
	if err != nil {
		return nil, nil, err
	}
	if info.Email == "" {
		return nil, nil, fmt.Errorf("no email in userinfo response")
	}

	user, err := s.store.GetUserByEmail(ctx, info.Email)
	if errors.Is(err, users.ErrNotFound) {
		user = &users.User{
			ID:       uuid.New(),
			Email:    info.Email,
			Name:     info.Name,
			Provider: users.ProviderGoogle,
		}
		if err := s.store.CreateUser(ctx, user); err != nil {
			return nil, nil, err
		}
	} else if err != nil {
		return nil, nil, err
	}

	session, err := s.issueSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// issueSession creates a new bearer session for a user
func (s *AuthService) issueSession(ctx context.Context, userID uuid.UUID) (*users.Session, error) {
	session := &users.Session{
		Token:     uuid.New(),
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(sessionTTL),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// newResetToken generates a random token and its stored SHA-256 hex hash
func newResetToken() (string, string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)
	sum := sha256.Sum256([]byte(token))
	return token, hex.EncodeToString(sum[:]), nil
}

// fetchGoogleUserInfo retrieves the profile for an exchanged token
func fetchGoogleUserInfo(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (*googleUserInfo, error) {
	resp, err := cfg.Client(ctx, token).Get(userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	return &info, nil
}
