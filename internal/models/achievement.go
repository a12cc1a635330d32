package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Achievement is a one-time badge unlocked by a rule over cumulative progress
type Achievement struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	UnlockedAt  time.Time `json:"unlockedAt"`
}

// UnmarshalJSON rehydrates the unlock timestamp leniently
func (a *Achievement) UnmarshalJSON(data []byte) error {
	type alias Achievement
	aux := struct {
		UnlockedAt string `json:"unlockedAt"`
		*alias
	}{alias: (*alias)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	a.UnlockedAt = parseTimestamp(aux.UnlockedAt)
	return nil
}

func firstGameAchievement() Achievement {
	return Achievement{
		ID:          "first_game",
		Name:        "First Step",
		Description: "Complete your first game",
		Icon:        "star",
		UnlockedAt:  time.Now(),
	}
}

func tenGamesAchievement() Achievement {
	return Achievement{
		ID:          "ten_games",
		Name:        "Practitioner",
		Description: "Complete 10 games",
		Icon:        "medal",
		UnlockedAt:  time.Now(),
	}
}

func excellentPerformanceAchievement() Achievement {
	return Achievement{
		ID:          "excellent_performance",
		Name:        "Excellent!",
		Description: "Finish a game with an excellent performance",
		Icon:        "award",
		UnlockedAt:  time.Now(),
	}
}

func perfectAccuracyAchievement() Achievement {
	return Achievement{
		ID:          "perfect_accuracy",
		Name:        "Perfect Accuracy",
		Description: "Reach 100% accuracy in a game",
		Icon:        "target",
		UnlockedAt:  time.Now(),
	}
}

func levelAchievement(level int) Achievement {
	return Achievement{
		ID:          fmt.Sprintf("level_%d", level),
		Name:        fmt.Sprintf("Level %d", level),
		Description: fmt.Sprintf("You have reached level %d", level),
		Icon:        "trophy",
		UnlockedAt:  time.Now(),
	}
}
