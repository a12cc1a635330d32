package repository

import (
	"database/sql"
	"fmt"

	"cogniplay/internal/database"
	"cogniplay/internal/models"
)

// ProgressRepository handles database operations for progress aggregates,
// session history and achievements
type ProgressRepository struct {
	db *database.DB
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *database.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// LoadProgress reconstructs a user's progress aggregate. A user with no
// stored progress gets a fresh one, never an error.
func (r *ProgressRepository) LoadProgress(userID string) (*models.UserProgress, error) {
	progress := models.NewUserProgress()

	query := `
		SELECT total_score, games_played, games_completed, accuracy_average,
			total_time_spent, current_level, active_days, last_played_at
		FROM user_progress
		WHERE user_id = ?
	`
	var lastPlayed sql.NullTime
	err := r.db.QueryRow(query, userID).Scan(
		&progress.TotalScore,
		&progress.GamesPlayed,
		&progress.GamesCompleted,
		&progress.AccuracyAverage,
		&progress.TotalTimeSpent,
		&progress.CurrentLevel,
		&progress.ActiveDays,
		&lastPlayed,
	)
	if err == sql.ErrNoRows {
		return progress, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	if progress.CurrentLevel < 1 {
		progress.CurrentLevel = 1
	}
	if lastPlayed.Valid {
		t := lastPlayed.Time
		progress.LastPlayedAt = &t
	}

	sessions, err := r.loadSessions(userID)
	if err != nil {
		return nil, err
	}
	progress.GameSessions = sessions

	achievements, err := r.loadAchievements(userID)
	if err != nil {
		return nil, err
	}
	progress.Achievements = achievements

	return progress, nil
}

func (r *ProgressRepository) loadSessions(userID string) ([]models.GameSession, error) {
	query := `
		SELECT id, game_type, start_time, end_time, score, max_score,
			accuracy, time_spent, completed, COALESCE(performance_rating, '')
		FROM game_sessions
		WHERE user_id = ?
		ORDER BY start_time
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.GameSession{}
	for rows.Next() {
		var s models.GameSession
		var endTime sql.NullTime
		if err := rows.Scan(
			&s.ID,
			&s.GameType,
			&s.StartTime,
			&endTime,
			&s.Score,
			&s.MaxScore,
			&s.Accuracy,
			&s.TimeSpent,
			&s.Completed,
			&s.PerformanceRating,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if endTime.Valid {
			t := endTime.Time
			s.EndTime = &t
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *ProgressRepository) loadAchievements(userID string) ([]models.Achievement, error) {
	query := `
		SELECT achievement_id, name, description, icon, unlocked_at
		FROM achievements
		WHERE user_id = ?
		ORDER BY unlocked_at
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query achievements: %w", err)
	}
	defer rows.Close()

	achievements := []models.Achievement{}
	for rows.Next() {
		var a models.Achievement
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Icon, &a.UnlockedAt); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

// SaveProgress replaces a user's stored progress with the given aggregate.
// Runs in a transaction so a partial write is never observable.
func (r *ProgressRepository) SaveProgress(userID string, progress *models.UserProgress) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := replaceProgress(tx, userID, progress); err != nil {
		return err
	}
	return tx.Commit()
}

// ResetProgress wipes a user's progress back to its initial state
func (r *ProgressRepository) ResetProgress(userID string) error {
	return r.SaveProgress(userID, models.NewUserProgress())
}

// replaceProgress deletes and reinserts a user's progress rows. The session
// history is capped to the most recent entries on write; older sessions are
// already folded into the aggregate counters.
func replaceProgress(x execer, userID string, progress *models.UserProgress) error {
	for _, table := range []string{"achievements", "game_sessions", "user_progress"} {
		if _, err := x.Exec("DELETE FROM "+table+" WHERE user_id = ?", userID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	var lastPlayed interface{}
	if progress.LastPlayedAt != nil {
		lastPlayed = *progress.LastPlayedAt
	}
	_, err := x.Exec(`
		INSERT INTO user_progress (user_id, total_score, games_played, games_completed,
			accuracy_average, total_time_spent, current_level, active_days, last_played_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		userID,
		progress.TotalScore,
		progress.GamesPlayed,
		progress.GamesCompleted,
		progress.AccuracyAverage,
		progress.TotalTimeSpent,
		progress.CurrentLevel,
		progress.ActiveDays,
		lastPlayed,
	)
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}

	sessions := progress.PersistableSessions()
	for _, s := range sessions {
		var endTime interface{}
		if s.EndTime != nil {
			endTime = *s.EndTime
		}
		_, err := x.Exec(`
			INSERT INTO game_sessions (id, user_id, game_type, start_time, end_time,
				score, max_score, accuracy, time_spent, completed, performance_rating)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			s.ID, userID, s.GameType, s.StartTime, endTime,
			s.Score, s.MaxScore, s.Accuracy, s.TimeSpent, s.Completed, s.PerformanceRating,
		)
		if err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
	}

	for _, a := range progress.Achievements {
		_, err := x.Exec(`
			INSERT INTO achievements (user_id, achievement_id, name, description, icon, unlocked_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, userID, a.ID, a.Name, a.Description, a.Icon, a.UnlockedAt)
		if err != nil {
			return fmt.Errorf("failed to save achievement: %w", err)
		}
	}

	return nil
}
