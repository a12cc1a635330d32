package repository

import (
	"database/sql"
	"fmt"

	"cogniplay/internal/database"
	"cogniplay/internal/models"
)

// SettingsRepository handles database operations for accessibility settings
type SettingsRepository struct {
	db *database.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// LoadSettings retrieves a user's accessibility settings, defaulting when
// no row exists
func (r *SettingsRepository) LoadSettings(userID string) (models.AccessibilitySettings, error) {
	settings := models.DefaultAccessibilitySettings()
	query := `
		SELECT high_contrast, subtitles_enabled, sound_enabled, font_size, reduced_motion
		FROM accessibility_settings
		WHERE user_id = ?
	`
	err := r.db.QueryRow(query, userID).Scan(
		&settings.HighContrast,
		&settings.SubtitlesEnabled,
		&settings.SoundEnabled,
		&settings.FontSize,
		&settings.ReducedMotion,
	)
	if err == sql.ErrNoRows {
		return models.DefaultAccessibilitySettings(), nil
	}
	if err != nil {
		return settings, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

// SaveSettings persists a user's accessibility settings
func (r *SettingsRepository) SaveSettings(userID string, settings models.AccessibilitySettings) error {
	query := `
		UPDATE accessibility_settings
		SET high_contrast = ?, subtitles_enabled = ?, sound_enabled = ?, font_size = ?, reduced_motion = ?
		WHERE user_id = ?
	`
	result, err := r.db.Exec(query,
		settings.HighContrast,
		settings.SubtitlesEnabled,
		settings.SoundEnabled,
		settings.FontSize,
		settings.ReducedMotion,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read save result: %w", err)
	}
	if rows > 0 {
		return nil
	}
	return insertSettings(r.db, userID, settings)
}

func insertSettings(x execer, userID string, settings models.AccessibilitySettings) error {
	query := `
		INSERT INTO accessibility_settings (user_id, high_contrast, subtitles_enabled, sound_enabled, font_size, reduced_motion)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := x.Exec(query,
		userID,
		settings.HighContrast,
		settings.SubtitlesEnabled,
		settings.SoundEnabled,
		settings.FontSize,
		settings.ReducedMotion,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settings: %w", err)
	}
	return nil
}
