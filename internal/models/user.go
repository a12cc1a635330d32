package models

import "time"

// User represents a registered account in the system
type User struct {
	ID            string      `json:"id"`
	Email         string      `json:"email"`
	Name          string      `json:"name"`
	PasswordHash  string      `json:"passwordHash"`
	OAuthProvider string      `json:"oauthProvider,omitempty"`
	OAuthSubject  string      `json:"oauthSubject,omitempty"`
	Preferences   Preferences `json:"preferences"`
	CreatedAt     time.Time   `json:"createdAt"`
	LastAccessAt  time.Time   `json:"lastAccessAt"`
}

// Preferences holds per-user game preferences
type Preferences struct {
	FavoriteGames       []string   `json:"favoriteGames"`
	PreferredDifficulty Difficulty `json:"preferredDifficulty"`
}

// DefaultPreferences returns the preferences assigned to a new account
func DefaultPreferences() Preferences {
	return Preferences{
		FavoriteGames:       []string{},
		PreferredDifficulty: DifficultyEasy,
	}
}

// UserView is the public shape of a user, safe to return from the API
type UserView struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
	LastAccessAt time.Time `json:"lastAccessAt"`
}

// View strips credential material from a user record
func (u *User) View() UserView {
	return UserView{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		CreatedAt:    u.CreatedAt,
		LastAccessAt: u.LastAccessAt,
	}
}
