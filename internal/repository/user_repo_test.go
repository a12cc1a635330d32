package repository

import (
	"path/filepath"
	"testing"
	"time"

	"cogniplay/internal/database"
	"cogniplay/internal/models"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open("sqlite", "", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	return db
}

func newTestUser(id, email string) *models.User {
	now := time.Now()
	return &models.User{
		ID:           id,
		Email:        email,
		Name:         "Ana",
		PasswordHash: "not-a-real-hash",
		Preferences:  models.DefaultPreferences(),
		CreatedAt:    now,
		LastAccessAt: now,
	}
}

func TestUserByEmailIsCaseInsensitive(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	// A row stored with mixed case must still match any casing
	if err := repo.CreateUser(newTestUser("u1", "Ana@Example.com")); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	tests := []struct {
		name  string
		email string
		found bool
	}{
		{name: "lowercase", email: "ana@example.com", found: true},
		{name: "uppercase", email: "ANA@EXAMPLE.COM", found: true},
		{name: "stored casing", email: "Ana@Example.com", found: true},
		{name: "unknown", email: "bob@example.com", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.UserByEmail(tt.email)
			if err != nil {
				t.Fatalf("UserByEmail() error = %v", err)
			}
			if (got != nil) != tt.found {
				t.Errorf("found = %v, want %v", got != nil, tt.found)
			}
			if got != nil && got.ID != "u1" {
				t.Errorf("ID = %s, want u1", got.ID)
			}
		})
	}
}

func TestCreateIdentityRoundTrip(t *testing.T) {
	backend := NewBackend(newTestDB(t))

	user := newTestUser("u1", "ana@example.com")
	err := backend.CreateIdentity(user, models.NewUserProgress(), models.DefaultAccessibilitySettings())
	if err != nil {
		t.Fatalf("CreateIdentity() error = %v", err)
	}

	progress, err := backend.LoadProgress("u1")
	if err != nil {
		t.Fatalf("LoadProgress() error = %v", err)
	}
	if progress.TotalScore != 0 || progress.CurrentLevel != 1 {
		t.Errorf("fresh progress = %+v", progress)
	}

	settings, err := backend.LoadSettings("u1")
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if settings != models.DefaultAccessibilitySettings() {
		t.Errorf("settings = %+v, want defaults", settings)
	}
}
