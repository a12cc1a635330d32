// Package repository implements the storage ports on top of a relational
// database. Queries are written with ? placeholders; the database layer
// rewrites them for the configured dialect.
package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"cogniplay/internal/database"
	"cogniplay/internal/models"
)

// execer is satisfied by both *database.DB and *database.Tx so insert
// helpers can run standalone or inside a transaction.
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// UserRepository handles database operations for user identities
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, name, password_hash,
	COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''),
	COALESCE(preferences, ''), created_at, last_access_at`

// CreateUser inserts a new user record
func (r *UserRepository) CreateUser(user *models.User) error {
	return insertUser(r.db, user)
}

func insertUser(x execer, user *models.User) error {
	prefs, err := json.Marshal(user.Preferences)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	query := `
		INSERT INTO users (id, email, name, password_hash, oauth_provider, oauth_subject, preferences, created_at, last_access_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = x.Exec(query,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.OAuthProvider,
		user.OAuthSubject,
		string(prefs),
		user.CreatedAt,
		user.LastAccessAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UserByEmail retrieves a user by email address, case-insensitively.
// Returns (nil, nil) when no user matches.
func (r *UserRepository) UserByEmail(email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER(?)`
	return scanUser(r.db.QueryRow(query, email))
}

// UserByID retrieves a user by ID. Returns (nil, nil) when no user matches.
func (r *UserRepository) UserByID(id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(r.db.QueryRow(query, id))
}

// UserByOAuth retrieves a user by OAuth provider and subject
func (r *UserRepository) UserByOAuth(provider, subject string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE oauth_provider = ? AND oauth_subject = ?`
	return scanUser(r.db.QueryRow(query, provider, subject))
}

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var prefs string
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.OAuthProvider,
		&user.OAuthSubject,
		&prefs,
		&user.CreatedAt,
		&user.LastAccessAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// An unreadable preferences blob falls back to defaults
	user.Preferences = models.DefaultPreferences()
	if prefs != "" {
		var decoded models.Preferences
		if err := json.Unmarshal([]byte(prefs), &decoded); err == nil {
			if decoded.FavoriteGames == nil {
				decoded.FavoriteGames = []string{}
			}
			user.Preferences = decoded
		}
	}
	return user, nil
}

// UpdateUser persists changes to a user's profile
func (r *UserRepository) UpdateUser(user *models.User) error {
	prefs, err := json.Marshal(user.Preferences)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	query := `
		UPDATE users
		SET email = ?, name = ?, password_hash = ?, oauth_provider = ?, oauth_subject = ?, preferences = ?, last_access_at = ?
		WHERE id = ?
	`
	_, err = r.db.Exec(query,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.OAuthProvider,
		user.OAuthSubject,
		string(prefs),
		user.LastAccessAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// AllUsers retrieves every user, oldest account first
func (r *UserRepository) AllUsers() ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		var prefs string
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.Name,
			&user.PasswordHash,
			&user.OAuthProvider,
			&user.OAuthSubject,
			&prefs,
			&user.CreatedAt,
			&user.LastAccessAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.Preferences = models.DefaultPreferences()
		if prefs != "" {
			var decoded models.Preferences
			if err := json.Unmarshal([]byte(prefs), &decoded); err == nil {
				if decoded.FavoriteGames == nil {
					decoded.FavoriteGames = []string{}
				}
				user.Preferences = decoded
			}
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// LinkOAuth links an existing user to an OAuth provider. Fails if the user
// is already linked to one.
func (r *UserRepository) LinkOAuth(userID, provider, subject string) error {
	query := `
		UPDATE users
		SET oauth_provider = ?, oauth_subject = ?
		WHERE id = ?
		AND (oauth_provider IS NULL OR oauth_provider = '')
	`
	result, err := r.db.Exec(query, provider, subject, userID)
	if err != nil {
		return fmt.Errorf("failed to link oauth provider: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read link result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("oauth provider already linked")
	}
	return nil
}

// DeleteUser deletes a user; progress, sessions, achievements and settings
// go with it via the cascade constraints.
func (r *UserRepository) DeleteUser(id string) error {
	_, err := r.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
