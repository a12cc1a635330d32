package models

import (
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// GameType identifies one of the training games
type GameType string

const (
	GameMemory    GameType = "memory"
	GameSequence  GameType = "sequence"
	GameAttention GameType = "attention"
	GameLogic     GameType = "logic"
	GameReaction  GameType = "reaction"
)

// GameTypes lists every known game type in catalog order
var GameTypes = []GameType{GameMemory, GameSequence, GameAttention, GameLogic, GameReaction}

// Difficulty is a game difficulty level
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// PerformanceRating is a coarse qualitative bucket for a finished session
type PerformanceRating string

const (
	RatingExcellent     PerformanceRating = "excellent"
	RatingGood          PerformanceRating = "good"
	RatingRegular       PerformanceRating = "regular"
	RatingNeedsPractice PerformanceRating = "needs_practice"
)

// GameInfo describes a game in the catalog
type GameInfo struct {
	ID            string     `json:"id"`
	Type          GameType   `json:"type"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Icon          string     `json:"icon"`
	Category      string     `json:"category"`
	Difficulty    Difficulty `json:"difficulty"`
	EstimatedTime int        `json:"estimatedTime"`
	Instructions  []string   `json:"instructions"`
}

// GameConfig holds per-playthrough settings
type GameConfig struct {
	TimeLimit   int        `json:"timeLimit,omitempty"`
	MaxAttempts int        `json:"maxAttempts,omitempty"`
	TargetScore int        `json:"targetScore,omitempty"`
	Difficulty  Difficulty `json:"difficulty"`
}

// GameSession records one playthrough of a single game.
// Immutable after it has been ended.
type GameSession struct {
	ID                string            `json:"id"`
	GameType          GameType          `json:"gameType"`
	StartTime         time.Time         `json:"startTime"`
	EndTime           *time.Time        `json:"endTime,omitempty"`
	Score             int               `json:"score"`
	MaxScore          int               `json:"maxScore"`
	Accuracy          int               `json:"accuracy"`
	TimeSpent         int               `json:"timeSpent"`
	Completed         bool              `json:"completed"`
	PerformanceRating PerformanceRating `json:"performanceRating"`
}

// UnmarshalJSON rehydrates timestamps leniently: a missing or malformed
// timestamp loads as zero/absent instead of failing the whole record.
func (s *GameSession) UnmarshalJSON(data []byte) error {
	type alias GameSession
	aux := struct {
		StartTime string  `json:"startTime"`
		EndTime   *string `json:"endTime"`
		*alias
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.StartTime = parseTimestamp(aux.StartTime)
	s.EndTime = parseTimestampPtr(aux.EndTime)
	return nil
}

// ErrNoActiveSession is returned when a session operation is called before
// Start or after End.
var ErrNoActiveSession = errors.New("no active game session")

const baseMaxScore = 1000

// Game tracks score, accuracy and timing for one game instance
type Game struct {
	info    GameInfo
	config  GameConfig
	session *GameSession
}

// NewGame creates a game instance for the given catalog entry and config
func NewGame(info GameInfo, config GameConfig) *Game {
	return &Game{info: info, config: config}
}

// Start begins a new session. Any previous unfinished session is discarded.
func (g *Game) Start() *GameSession {
	g.session = &GameSession{
		ID:                string(g.info.Type) + "_" + uuid.NewString(),
		GameType:          g.info.Type,
		StartTime:         time.Now(),
		Score:             0,
		MaxScore:          maxScoreFor(g.config.Difficulty),
		Accuracy:          0,
		Completed:         false,
		PerformanceRating: RatingNeedsPractice,
	}
	return g.session
}

// AddScore adds points to the active session. The score is clamped to
// [0, maxScore]; overflow is never rejected.
func (g *Game) AddScore(points int) error {
	if g.session == nil {
		return ErrNoActiveSession
	}
	score := g.session.Score + points
	if score > g.session.MaxScore {
		score = g.session.MaxScore
	}
	if score < 0 {
		score = 0
	}
	g.session.Score = score
	return nil
}

// RecordAccuracy sets the session accuracy from correct/total answers
func (g *Game) RecordAccuracy(correct, total int) error {
	if g.session == nil {
		return ErrNoActiveSession
	}
	if total <= 0 {
		g.session.Accuracy = 0
		return nil
	}
	g.session.Accuracy = int(math.Round(float64(correct) / float64(total) * 100))
	return nil
}

// End finalizes the active session exactly once, computing time spent and
// the performance rating. Ending twice is an error.
func (g *Game) End() (*GameSession, error) {
	if g.session == nil {
		return nil, ErrNoActiveSession
	}
	s := g.session
	now := time.Now()
	s.EndTime = &now
	s.TimeSpent = int(now.Sub(s.StartTime).Seconds())
	s.Completed = true
	s.PerformanceRating = ratePerformance(s.Score, s.MaxScore, s.Accuracy)
	g.session = nil
	return s, nil
}

// CurrentSession returns the active session, or nil if none
func (g *Game) CurrentSession() *GameSession {
	return g.session
}

// Info returns the catalog entry this game was created from
func (g *Game) Info() GameInfo {
	return g.info
}

// Config returns the playthrough configuration
func (g *Game) Config() GameConfig {
	return g.config
}

func maxScoreFor(difficulty Difficulty) int {
	multiplier := 1.0
	switch difficulty {
	case DifficultyMedium:
		multiplier = 1.5
	case DifficultyHard:
		multiplier = 2.0
	}
	return int(math.Floor(baseMaxScore * multiplier))
}

// ratePerformance blends score percentage and accuracy into a rating
func ratePerformance(score, maxScore, accuracy int) PerformanceRating {
	scorePercentage := 0.0
	if maxScore > 0 {
		scorePercentage = float64(score) / float64(maxScore) * 100
	}
	performanceScore := (scorePercentage + float64(accuracy)) / 2

	switch {
	case performanceScore >= 90:
		return RatingExcellent
	case performanceScore >= 70:
		return RatingGood
	case performanceScore >= 50:
		return RatingRegular
	default:
		return RatingNeedsPractice
	}
}
