package service

import (
	"errors"
	"fmt"

	"cogniplay/internal/models"
	"cogniplay/internal/storage"
)

// ErrSessionNotFinished is returned when a session is submitted before it
// has been ended.
var ErrSessionNotFinished = errors.New("game session is not finished")

// ProgressService manages per-user progress aggregates and accessibility
// settings
type ProgressService struct {
	store storage.Backend
}

// NewProgressService creates a new progress service
func NewProgressService(store storage.Backend) *ProgressService {
	return &ProgressService{store: store}
}

// Progress loads a user's progress aggregate
func (s *ProgressService) Progress(userID string) (*models.UserProgress, error) {
	return s.store.LoadProgress(userID)
}

// SubmitSession ingests a finished game session into the user's aggregate
// and persists the result
func (s *ProgressService) SubmitSession(userID string, session models.GameSession) (*models.UserProgress, models.SessionOutcome, error) {
	if !session.Completed || session.EndTime == nil {
		return nil, models.SessionOutcome{}, ErrSessionNotFinished
	}

	progress, err := s.store.LoadProgress(userID)
	if err != nil {
		return nil, models.SessionOutcome{}, fmt.Errorf("failed to load progress: %w", err)
	}

	outcome := progress.AddSession(session)

	if err := s.store.SaveProgress(userID, progress); err != nil {
		return nil, models.SessionOutcome{}, fmt.Errorf("failed to save progress: %w", err)
	}
	return progress, outcome, nil
}

// Stats returns the per-game-type breakdown of a user's session history
func (s *ProgressService) Stats(userID string) ([]models.GameTypeStats, error) {
	progress, err := s.store.LoadProgress(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	return progress.AllStats(), nil
}

// StatsFor returns the stats for one game type
func (s *ProgressService) StatsFor(userID string, gameType models.GameType) (models.GameTypeStats, error) {
	progress, err := s.store.LoadProgress(userID)
	if err != nil {
		return models.GameTypeStats{}, fmt.Errorf("failed to load progress: %w", err)
	}
	return progress.StatsFor(gameType), nil
}

// ResetProgress wipes a user's aggregate back to its initial state.
// Irreversible.
func (s *ProgressService) ResetProgress(userID string) error {
	return s.store.ResetProgress(userID)
}

// Settings returns a user's accessibility settings
func (s *ProgressService) Settings(userID string) (models.AccessibilitySettings, error) {
	return s.store.LoadSettings(userID)
}

// UpdateSettings applies a partial accessibility update and returns the
// merged result
func (s *ProgressService) UpdateSettings(userID string, update models.AccessibilityUpdate) (models.AccessibilitySettings, error) {
	settings, err := s.store.LoadSettings(userID)
	if err != nil {
		return settings, fmt.Errorf("failed to load settings: %w", err)
	}
	settings.Apply(update)
	if err := s.store.SaveSettings(userID, settings); err != nil {
		return settings, fmt.Errorf("failed to save settings: %w", err)
	}
	return settings, nil
}
