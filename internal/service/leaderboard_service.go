package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"cogniplay/internal/storage"
)

// ErrUnknownMetric is returned for an unrecognized ranking metric
var ErrUnknownMetric = errors.New("unknown leaderboard metric")

// LeaderboardMetric selects which aggregate column a leaderboard ranks by
type LeaderboardMetric string

const (
	MetricScore    LeaderboardMetric = "score"
	MetricGames    LeaderboardMetric = "games"
	MetricLevel    LeaderboardMetric = "level"
	MetricAccuracy LeaderboardMetric = "accuracy"
)

// LeaderboardEntry is one ranked row
type LeaderboardEntry struct {
	Rank            int    `json:"rank"`
	UserID          string `json:"userId"`
	Name            string `json:"name"`
	TotalScore      int    `json:"totalScore"`
	GamesPlayed     int    `json:"gamesPlayed"`
	CurrentLevel    int    `json:"currentLevel"`
	AccuracyAverage int    `json:"accuracyAverage"`
}

// LeaderboardService ranks users by their progress aggregates
type LeaderboardService struct {
	store storage.Backend
}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService(store storage.Backend) *LeaderboardService {
	return &LeaderboardService{store: store}
}

// Leaderboard ranks every user by the given metric, best first. Users who
// never played rank with zero values rather than being excluded. Ties break
// by name so the ordering is stable.
func (s *LeaderboardService) Leaderboard(metric LeaderboardMetric, limit int) ([]LeaderboardEntry, error) {
	switch metric {
	case MetricScore, MetricGames, MetricLevel, MetricAccuracy:
	case "":
		metric = MetricScore
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
	}

	users, err := s.store.AllUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for _, user := range users {
		progress, err := s.store.LoadProgress(user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load progress for %s: %w", user.ID, err)
		}
		entries = append(entries, LeaderboardEntry{
			UserID:          user.ID,
			Name:            user.Name,
			TotalScore:      progress.TotalScore,
			GamesPlayed:     progress.GamesPlayed,
			CurrentLevel:    progress.CurrentLevel,
			AccuracyAverage: progress.AccuracyAverage,
		})
	}

	key := func(e LeaderboardEntry) int {
		switch metric {
		case MetricGames:
			return e.GamesPlayed
		case MetricLevel:
			return e.CurrentLevel
		case MetricAccuracy:
			return e.AccuracyAverage
		default:
			return e.TotalScore
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		ki, kj := key(entries[i]), key(entries[j])
		if ki != kj {
			return ki > kj
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// RankOf returns a single user's entry on the full leaderboard
func (s *LeaderboardService) RankOf(metric LeaderboardMetric, userID string) (LeaderboardEntry, error) {
	entries, err := s.Leaderboard(metric, 0)
	if err != nil {
		return LeaderboardEntry{}, err
	}
	for _, e := range entries {
		if e.UserID == userID {
			return e, nil
		}
	}
	return LeaderboardEntry{}, ErrUserNotFound
}
