package repository

import (
	"fmt"

	"cogniplay/internal/database"
	"cogniplay/internal/models"
)

// Backend bundles the SQL repositories into the full storage surface
type Backend struct {
	*UserRepository
	*ProgressRepository
	*SettingsRepository
	db *database.DB
}

// NewBackend creates the SQL storage backend
func NewBackend(db *database.DB) *Backend {
	return &Backend{
		UserRepository:     NewUserRepository(db),
		ProgressRepository: NewProgressRepository(db),
		SettingsRepository: NewSettingsRepository(db),
		db:                 db,
	}
}

// CreateIdentity creates a user together with its initial progress and
// settings in a single transaction, so a partially created identity is never
// observable.
func (b *Backend) CreateIdentity(user *models.User, progress *models.UserProgress, settings models.AccessibilitySettings) error {
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertUser(tx, user); err != nil {
		return err
	}
	if err := replaceProgress(tx, user.ID, progress); err != nil {
		return err
	}
	if err := insertSettings(tx, user.ID, settings); err != nil {
		return err
	}
	return tx.Commit()
}
