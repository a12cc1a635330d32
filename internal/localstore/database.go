package localstore

import (
	"encoding/json"
	"strings"

	"cogniplay/internal/models"
)

// Blob keys. One scheme across implementations.
const (
	keyUsers       = "users"
	keyCurrentUser = "current_user"
	progressPrefix = "progress_"
	sessionsPrefix = "sessions_"
	settingsPrefix = "accessibility_"
)

// Database implements the storage ports over a key-value Store.
// Reads are forgiving: a corrupted blob decodes to empty/default state so a
// bad write never bricks the app.
type Database struct {
	store Store
}

// NewDatabase creates the embedded database over the given store
func NewDatabase(store Store) *Database {
	return &Database{store: store}
}

func (d *Database) users() ([]models.User, error) {
	data, err := d.store.Get(keyUsers)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return []models.User{}, nil
	}

	var users []models.User
	if err := json.Unmarshal(data, &users); err != nil {
		// Corrupted blob: treat as no data
		return []models.User{}, nil
	}
	return users, nil
}

func (d *Database) saveUsers(users []models.User) error {
	data, err := json.Marshal(users)
	if err != nil {
		return err
	}
	return d.store.Set(keyUsers, data)
}

// CreateUser appends a user record to the users blob
func (d *Database) CreateUser(user *models.User) error {
	users, err := d.users()
	if err != nil {
		return err
	}
	users = append(users, *user)
	return d.saveUsers(users)
}

// UserByID returns the user with the given id, or (nil, nil)
func (d *Database) UserByID(id string) (*models.User, error) {
	users, err := d.users()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, nil
}

// UserByEmail returns the user with the given email (case-insensitive),
// or (nil, nil)
func (d *Database) UserByEmail(email string) (*models.User, error) {
	users, err := d.users()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return &users[i], nil
		}
	}
	return nil, nil
}

// UpdateUser replaces the stored record with the same id
func (d *Database) UpdateUser(user *models.User) error {
	users, err := d.users()
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].ID == user.ID {
			users[i] = *user
			return d.saveUsers(users)
		}
	}
	return nil
}

// AllUsers returns every stored user record
func (d *Database) AllUsers() ([]models.User, error) {
	return d.users()
}

// LoadProgress returns the stored aggregate for a user, or a fresh one when
// the blob is absent or unreadable. The session history lives in its own
// blob and is stitched back onto the aggregate here.
func (d *Database) LoadProgress(userID string) (*models.UserProgress, error) {
	data, err := d.store.Get(progressPrefix + userID)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return models.NewUserProgress(), nil
	}

	progress, err := models.ParseUserProgress(data)
	if err != nil {
		return models.NewUserProgress(), nil
	}
	progress.GameSessions = d.sessions(userID)
	return progress, nil
}

func (d *Database) sessions(userID string) []models.GameSession {
	data, err := d.store.Get(sessionsPrefix + userID)
	if err != nil || data == nil {
		return []models.GameSession{}
	}
	var sessions []models.GameSession
	if err := json.Unmarshal(data, &sessions); err != nil {
		return []models.GameSession{}
	}
	return sessions
}

// SaveProgress persists the aggregate and its capped session history as
// separate blobs
func (d *Database) SaveProgress(userID string, progress *models.UserProgress) error {
	aggregate := *progress
	aggregate.GameSessions = nil
	data, err := json.Marshal(&aggregate)
	if err != nil {
		return err
	}
	if err := d.store.Set(progressPrefix+userID, data); err != nil {
		return err
	}

	sessions, err := json.Marshal(progress.PersistableSessions())
	if err != nil {
		return err
	}
	return d.store.Set(sessionsPrefix+userID, sessions)
}

// ResetProgress replaces the stored aggregate with a fresh one
func (d *Database) ResetProgress(userID string) error {
	return d.SaveProgress(userID, models.NewUserProgress())
}

// LoadSettings returns the stored accessibility settings, or defaults
func (d *Database) LoadSettings(userID string) (models.AccessibilitySettings, error) {
	data, err := d.store.Get(settingsPrefix + userID)
	if err != nil {
		return models.DefaultAccessibilitySettings(), err
	}
	if data == nil {
		return models.DefaultAccessibilitySettings(), nil
	}

	var settings models.AccessibilitySettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return models.DefaultAccessibilitySettings(), nil
	}
	if settings.FontSize == "" {
		settings.FontSize = models.FontSizeNormal
	}
	return settings, nil
}

// SaveSettings persists accessibility settings
func (d *Database) SaveSettings(userID string, settings models.AccessibilitySettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return d.store.Set(settingsPrefix+userID, data)
}

// CreateIdentity writes the user, progress and settings blobs. The local
// store has no transactions; writes land in order and the last one wins.
func (d *Database) CreateIdentity(user *models.User, progress *models.UserProgress, settings models.AccessibilitySettings) error {
	if err := d.CreateUser(user); err != nil {
		return err
	}
	if err := d.SaveProgress(user.ID, progress); err != nil {
		return err
	}
	return d.SaveSettings(user.ID, settings)
}

// SaveCurrent records the logged-in identity pointer
func (d *Database) SaveCurrent(user models.UserView) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return d.store.Set(keyCurrentUser, data)
}

// Current returns the logged-in identity pointer, or nil when logged out or
// the pointer is unreadable
func (d *Database) Current() (*models.UserView, error) {
	data, err := d.store.Get(keyCurrentUser)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var user models.UserView
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, nil
	}
	return &user, nil
}

// Clear drops the identity pointer; clearing an absent pointer is fine
func (d *Database) Clear() error {
	return d.store.Remove(keyCurrentUser)
}
