// Package storage defines the ports the business services are written
// against. Two adapter families implement them: the SQL repositories and the
// blob-backed local store. Which one backs the app is a configuration choice.
package storage

import "cogniplay/internal/models"

// UserStore persists identity records. Lookups return (nil, nil) when no
// record matches.
type UserStore interface {
	CreateUser(user *models.User) error
	UserByID(id string) (*models.User, error)
	UserByEmail(email string) (*models.User, error)
	UpdateUser(user *models.User) error
	AllUsers() ([]models.User, error)
}

// ProgressStore persists one progress aggregate per user. Loading an absent
// or unreadable aggregate yields a fresh one, never an error: a corrupted
// blob must not brick the app.
type ProgressStore interface {
	LoadProgress(userID string) (*models.UserProgress, error)
	SaveProgress(userID string, progress *models.UserProgress) error
	ResetProgress(userID string) error
}

// SettingsStore persists accessibility settings, defaulting when absent
type SettingsStore interface {
	LoadSettings(userID string) (models.AccessibilitySettings, error)
	SaveSettings(userID string, settings models.AccessibilitySettings) error
}

// Backend is the full storage surface the services need. CreateIdentity
// creates the user together with its initial progress and settings; the SQL
// adapter runs it in a single transaction so a partially created identity is
// never observable.
type Backend interface {
	UserStore
	ProgressStore
	SettingsStore
	CreateIdentity(user *models.User, progress *models.UserProgress, settings models.AccessibilitySettings) error
}
