package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"cogniplay/internal/localstore"
	"cogniplay/internal/security"
)

func newTestAuthService(t *testing.T) (*AuthService, *localstore.Database) {
	t.Helper()
	db := localstore.NewDatabase(localstore.NewMemoryStore())
	tokens := security.NewTokenManager("test-secret", time.Hour)
	return NewAuthService(db, tokens, db, nil, nil), db
}

func TestRegisterCreatesIdentity(t *testing.T) {
	svc, db := newTestAuthService(t)

	user, token, err := svc.Register(context.Background(), "ana@example.com", "secret1", "Ana")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID == "" {
		t.Error("expected a generated user id")
	}
	if token == "" {
		t.Error("expected a token")
	}
	if user.PasswordHash == "secret1" {
		t.Error("password must not be stored in plain text")
	}

	progress, err := db.LoadProgress(user.ID)
	if err != nil {
		t.Fatalf("LoadProgress: %v", err)
	}
	if progress.CurrentLevel != 1 || progress.GamesPlayed != 0 {
		t.Errorf("expected fresh progress, got level %d, played %d", progress.CurrentLevel, progress.GamesPlayed)
	}

	settings, err := db.LoadSettings(user.ID)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if !settings.SubtitlesEnabled || !settings.SoundEnabled {
		t.Errorf("expected default settings, got %+v", settings)
	}

	current, err := db.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if current == nil || current.ID != user.ID {
		t.Error("expected session pointer to track the new user")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestAuthService(t)

	tests := []struct {
		name     string
		email    string
		password string
		userName string
	}{
		{"missing at sign", "not-an-email", "secret1", "Ana"},
		{"empty local part", "@example.com", "secret1", "Ana"},
		{"short password", "ana@example.com", "12345", "Ana"},
		{"short name", "ana@example.com", "secret1", "A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := svc.Register(context.Background(), tt.email, tt.password, tt.userName); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if _, _, err := svc.Register(context.Background(), "ana@example.com", "secret1", "Ana"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, _, err := svc.Register(context.Background(), "ana@example.com", "other12", "Another Ana")
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestEmailIsCaseInsensitive(t *testing.T) {
	svc, _ := newTestAuthService(t)

	user, _, err := svc.Register(context.Background(), "Ana@Example.com", "secret1", "Ana")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "ana@example.com" {
		t.Errorf("stored email = %q, want normalized %q", user.Email, "ana@example.com")
	}

	if _, _, err := svc.Register(context.Background(), "ANA@EXAMPLE.COM", "other12", "Another Ana"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("register with different casing: err = %v, want ErrEmailTaken", err)
	}

	if _, _, err := svc.Login("ANA@example.COM", "secret1"); err != nil {
		t.Errorf("login with different casing: %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if _, _, err := svc.Register(context.Background(), "ana@example.com", "secret1", "Ana"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, token, err := svc.Login("ana@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Error("expected a token")
	}

	resolved, err := svc.Authenticate(token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if resolved.ID != user.ID {
		t.Errorf("token resolved to %s, want %s", resolved.ID, user.ID)
	}
}

func TestCurrentUserRehydratesSession(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if current, err := svc.CurrentUser(); err != nil || current != nil {
		t.Fatalf("CurrentUser before login = %v, %v, want nil, nil", current, err)
	}

	registered, _, err := svc.Register(context.Background(), "ana@example.com", "secret1", "Ana")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	current, err := svc.CurrentUser()
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if current == nil || current.ID != registered.ID {
		t.Errorf("CurrentUser = %+v, want id %s", current, registered.ID)
	}

	if err := svc.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if current, err := svc.CurrentUser(); err != nil || current != nil {
		t.Errorf("CurrentUser after logout = %v, %v, want nil, nil", current, err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if _, _, err := svc.Register(context.Background(), "ana@example.com", "secret1", "Ana"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"wrong password", "ana@example.com", "wrong-password", ErrInvalidCredentials},
		{"unknown email", "nobody@example.com", "secret1", ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Login(tt.email, tt.password)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAuthenticateRejectsGarbageToken(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if _, err := svc.Authenticate("not-a-token"); err == nil {
		t.Error("expected an error for a garbage token")
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	svc, db := newTestAuthService(t)

	if _, _, err := svc.Register(context.Background(), "ana@example.com", "secret1", "Ana"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := svc.Logout(); err != nil {
		t.Fatalf("second Logout: %v", err)
	}

	current, err := db.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if current != nil {
		t.Error("expected session pointer to be cleared")
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestAuthService(t)

	user, _, err := svc.Register(context.Background(), "ana@example.com", "secret1", "Ana")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	newName := "Ana Maria"
	updated, err := svc.UpdateProfile(user.ID, ProfileUpdate{Name: &newName})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Name != "Ana Maria" {
		t.Errorf("name = %q, want %q", updated.Name, "Ana Maria")
	}
	if updated.Email != "ana@example.com" {
		t.Error("email must be unchanged")
	}

	if _, err := svc.UpdateProfile("no-such-user", ProfileUpdate{Name: &newName}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
