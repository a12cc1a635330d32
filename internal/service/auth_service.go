// Package service holds the business logic, written against the storage
// ports so it runs identically over the SQL and local backends.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cogniplay/internal/models"
	"cogniplay/internal/security"
	"cogniplay/internal/storage"
	"cogniplay/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// SessionPointer remembers which identity is logged in. Only the local
// backend implements it; with the SQL backend tokens are the sole session
// state and the pointer is nil.
type SessionPointer interface {
	SaveCurrent(user models.UserView) error
	Current() (*models.UserView, error)
	Clear() error
}

// AuthService handles registration, login and profile management
type AuthService struct {
	store    storage.Backend
	tokens   *security.TokenManager
	sessions SessionPointer
	email    *EmailService
	logger   *zap.Logger
}

// NewAuthService creates a new auth service. sessions, email and logger may
// be nil.
func NewAuthService(store storage.Backend, tokens *security.TokenManager, sessions SessionPointer, email *EmailService, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		store:    store,
		tokens:   tokens,
		sessions: sessions,
		email:    email,
		logger:   logger,
	}
}

// normalizeEmail lowercases an address so uniqueness and lookups are
// case-insensitive on every backend
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new account with fresh progress and default settings,
// and logs it in.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.User, string, error) {
	email = normalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, "", err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, "", err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, "", err
	}

	existing, err := s.store.UserByEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Preferences:  models.DefaultPreferences(),
		CreatedAt:    now,
		LastAccessAt: now,
	}

	err = s.store.CreateIdentity(user, models.NewUserProgress(), models.DefaultAccessibilitySettings())
	if err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	// Registration succeeds even if the welcome email does not go out
	if s.email != nil && s.email.IsEnabled() {
		if err := s.email.SendWelcomeEmail(ctx, user.Email, user.Name); err != nil {
			s.logger.Warn("failed to send welcome email",
				zap.String("email", user.Email), zap.Error(err))
		}
	}

	token, err := s.login(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login authenticates a user by email and password and issues a token
func (s *AuthService) Login(email, password string) (*models.User, string, error) {
	user, err := s.store.UserByEmail(normalizeEmail(email))
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, "", ErrUserNotFound
	}
	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	user.LastAccessAt = time.Now()
	if err := s.store.UpdateUser(user); err != nil {
		return nil, "", fmt.Errorf("failed to record access: %w", err)
	}

	token, err := s.login(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) login(user *models.User) (string, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	if s.sessions != nil {
		if err := s.sessions.SaveCurrent(user.View()); err != nil {
			return "", fmt.Errorf("failed to save session: %w", err)
		}
	}
	return token, nil
}

// Authenticate resolves a bearer token to its user
func (s *AuthService) Authenticate(token string) (*models.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, security.ErrInvalidToken
	}
	user, err := s.store.UserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// CurrentUser rehydrates the logged-in identity from the session pointer,
// returning (nil, nil) when nobody is logged in or the backend keeps no
// pointer. A stale pointer to a deleted identity is cleared.
func (s *AuthService) CurrentUser() (*models.User, error) {
	if s.sessions == nil {
		return nil, nil
	}
	view, err := s.sessions.Current()
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if view == nil {
		return nil, nil
	}

	user, err := s.store.UserByID(view.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		_ = s.sessions.Clear()
		return nil, nil
	}

	user.LastAccessAt = time.Now()
	if err := s.store.UpdateUser(user); err != nil {
		return nil, fmt.Errorf("failed to record access: %w", err)
	}
	return user, nil
}

// Logout drops the session pointer. Logging out twice is fine: tokens are
// stateless and expire on their own.
func (s *AuthService) Logout() error {
	if s.sessions == nil {
		return nil
	}
	return s.sessions.Clear()
}

// ProfileUpdate is a partial profile change; nil fields are left unchanged
type ProfileUpdate struct {
	Name        *string             `json:"name"`
	Preferences *models.Preferences `json:"preferences"`
}

// UpdateProfile applies a partial update to a user's profile
func (s *AuthService) UpdateProfile(userID string, update ProfileUpdate) (*models.User, error) {
	user, err := s.store.UserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if update.Name != nil {
		if err := validation.ValidateName(*update.Name); err != nil {
			return nil, err
		}
		user.Name = *update.Name
	}
	if update.Preferences != nil {
		prefs := *update.Preferences
		if prefs.FavoriteGames == nil {
			prefs.FavoriteGames = []string{}
		}
		user.Preferences = prefs
	}
	user.LastAccessAt = time.Now()

	if err := s.store.UpdateUser(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// OAuthStore is the extra surface the SQL backend offers for OAuth logins
type OAuthStore interface {
	UserByOAuth(provider, subject string) (*models.User, error)
	LinkOAuth(userID, provider, subject string) error
}

// OAuthLogin authenticates a user via an external identity provider,
// creating or linking an account as needed.
func (s *AuthService) OAuthLogin(provider, subject, email, name string) (*models.User, string, error) {
	if provider == "" || subject == "" {
		return nil, "", errors.New("missing oauth provider information")
	}
	email = normalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, "", err
	}

	oauthStore, ok := s.store.(OAuthStore)
	if !ok {
		return nil, "", errors.New("oauth login is not supported by this storage backend")
	}

	user, err := oauthStore.UserByOAuth(provider, subject)
	if err != nil {
		return nil, "", fmt.Errorf("failed to lookup oauth user: %w", err)
	}

	if user == nil {
		existing, err := s.store.UserByEmail(email)
		if err != nil {
			return nil, "", fmt.Errorf("failed to check existing user: %w", err)
		}
		if existing != nil {
			if existing.OAuthProvider != "" && existing.OAuthProvider != provider {
				return nil, "", ErrEmailTaken
			}
			if err := oauthStore.LinkOAuth(existing.ID, provider, subject); err != nil {
				return nil, "", fmt.Errorf("failed to link oauth provider: %w", err)
			}
			existing.OAuthProvider = provider
			existing.OAuthSubject = subject
			user = existing
		} else {
			if name == "" {
				name = strings.Split(email, "@")[0]
			}
			// OAuth accounts get an unguessable local password
			passwordHash, err := security.HashPassword(uuid.NewString())
			if err != nil {
				return nil, "", fmt.Errorf("failed to hash password: %w", err)
			}
			now := time.Now()
			user = &models.User{
				ID:            uuid.NewString(),
				Email:         email,
				Name:          name,
				PasswordHash:  passwordHash,
				OAuthProvider: provider,
				OAuthSubject:  subject,
				Preferences:   models.DefaultPreferences(),
				CreatedAt:     now,
				LastAccessAt:  now,
			}
			err = s.store.CreateIdentity(user, models.NewUserProgress(), models.DefaultAccessibilitySettings())
			if err != nil {
				return nil, "", fmt.Errorf("failed to create oauth user: %w", err)
			}
		}
	}

	user.LastAccessAt = time.Now()
	if err := s.store.UpdateUser(user); err != nil {
		return nil, "", fmt.Errorf("failed to record access: %w", err)
	}

	token, err := s.login(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}
