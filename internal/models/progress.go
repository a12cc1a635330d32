package models

import (
	"encoding/json"
	"math"
	"sort"
	"time"
)

// maxPersistedSessions caps the session history written to storage; the
// in-memory list is unbounded.
const maxPersistedSessions = 100

// levelStep is the score distance between consecutive level thresholds
const levelStep = 1000

// UserProgress is the per-user accumulator over completed game sessions.
// It only grows; the two mutations are AddSession and Reset.
type UserProgress struct {
	TotalScore      int           `json:"totalScore"`
	GamesPlayed     int           `json:"gamesPlayed"`
	GamesCompleted  int           `json:"gamesCompleted"`
	AccuracyAverage int           `json:"accuracyAverage"`
	TotalTimeSpent  int           `json:"totalTimeSpent"`
	CurrentLevel    int           `json:"currentLevel"`
	ActiveDays      int           `json:"activeDays"`
	Achievements    []Achievement `json:"achievements"`
	GameSessions    []GameSession `json:"gameSessions"`
	LastPlayedAt    *time.Time    `json:"lastPlayedAt,omitempty"`
}

// NewUserProgress returns an empty progress at level 1
func NewUserProgress() *UserProgress {
	return &UserProgress{
		CurrentLevel: 1,
		Achievements: []Achievement{},
		GameSessions: []GameSession{},
	}
}

// SessionOutcome reports what changed when a session was ingested
type SessionOutcome struct {
	LevelUp  bool          `json:"levelUp"`
	NewLevel int           `json:"newLevel,omitempty"`
	Unlocked []Achievement `json:"newAchievements"`
}

// AddSession ingests a finished game session: appends it to the history,
// updates the aggregate counters, recomputes the level and evaluates the
// achievement rules. Returns the level-up state and any newly unlocked
// achievements.
func (p *UserProgress) AddSession(session GameSession) SessionOutcome {
	p.GameSessions = append(p.GameSessions, session)
	p.GamesPlayed++
	if session.Completed {
		p.GamesCompleted++
	}

	p.TotalScore += session.Score
	p.TotalTimeSpent += session.TimeSpent
	playedAt := time.Now()
	if session.EndTime != nil {
		playedAt = *session.EndTime
	}
	p.LastPlayedAt = &playedAt

	p.recalculateAccuracyAverage()

	outcome := SessionOutcome{Unlocked: []Achievement{}}
	if unlocked, newLevel := p.updateLevel(); unlocked != nil {
		outcome.LevelUp = true
		outcome.NewLevel = newLevel
		outcome.Unlocked = append(outcome.Unlocked, *unlocked)
	}
	outcome.Unlocked = append(outcome.Unlocked, p.checkAchievements(session)...)
	return outcome
}

// recalculateAccuracyAverage recomputes the mean over the whole session
// history, so the result is invariant to ingestion order.
func (p *UserProgress) recalculateAccuracyAverage() {
	if len(p.GameSessions) == 0 {
		p.AccuracyAverage = 0
		return
	}
	total := 0
	for _, s := range p.GameSessions {
		total += s.Accuracy
	}
	p.AccuracyAverage = int(math.Round(float64(total) / float64(len(p.GameSessions))))
}

// updateLevel recomputes the level from the cumulative score. The level
// never decreases. On a level-up the matching level_{L} achievement is
// unlocked (idempotently) and returned.
func (p *UserProgress) updateLevel() (*Achievement, int) {
	newLevel := 1
	for p.TotalScore >= levelThreshold(newLevel+1) {
		newLevel++
	}

	if newLevel <= p.CurrentLevel {
		return nil, p.CurrentLevel
	}

	p.CurrentLevel = newLevel
	a := levelAchievement(newLevel)
	if p.unlock(a) {
		return &a, newLevel
	}
	return nil, newLevel
}

// levelThreshold is the cumulative score required to hold a level
func levelThreshold(level int) int {
	return (level - 1) * levelStep
}

// checkAchievements evaluates the session-driven rules in a fixed order
func (p *UserProgress) checkAchievements(session GameSession) []Achievement {
	unlocked := []Achievement{}

	if p.GamesCompleted == 1 {
		if a := firstGameAchievement(); p.unlock(a) {
			unlocked = append(unlocked, a)
		}
	}
	if p.GamesCompleted == 10 {
		if a := tenGamesAchievement(); p.unlock(a) {
			unlocked = append(unlocked, a)
		}
	}
	if session.PerformanceRating == RatingExcellent {
		if a := excellentPerformanceAchievement(); p.unlock(a) {
			unlocked = append(unlocked, a)
		}
	}
	if session.Accuracy == 100 {
		if a := perfectAccuracyAchievement(); p.unlock(a) {
			unlocked = append(unlocked, a)
		}
	}

	return unlocked
}

// unlock adds an achievement unless one with the same id already exists
func (p *UserProgress) unlock(achievement Achievement) bool {
	for _, a := range p.Achievements {
		if a.ID == achievement.ID {
			return false
		}
	}
	p.Achievements = append(p.Achievements, achievement)
	return true
}

// HasAchievement reports whether an achievement id has been unlocked
func (p *UserProgress) HasAchievement(id string) bool {
	for _, a := range p.Achievements {
		if a.ID == id {
			return true
		}
	}
	return false
}

// GameTypeStats is the per-game-type slice of the aggregate
type GameTypeStats struct {
	GameType        GameType `json:"gameType"`
	TimesPlayed     int      `json:"timesPlayed"`
	AverageScore    int      `json:"averageScore"`
	BestScore       int      `json:"bestScore"`
	AverageAccuracy int      `json:"averageAccuracy"`
	TotalTimeSpent  int      `json:"totalTimeSpent"`
}

// StatsFor filters the session history by game type. A type that was never
// played yields all-zero stats, not an error.
func (p *UserProgress) StatsFor(gameType GameType) GameTypeStats {
	stats := GameTypeStats{GameType: gameType}

	totalScore, totalAccuracy := 0, 0
	for _, s := range p.GameSessions {
		if s.GameType != gameType {
			continue
		}
		stats.TimesPlayed++
		totalScore += s.Score
		totalAccuracy += s.Accuracy
		stats.TotalTimeSpent += s.TimeSpent
		if s.Score > stats.BestScore {
			stats.BestScore = s.Score
		}
	}
	if stats.TimesPlayed == 0 {
		return stats
	}

	stats.AverageScore = int(math.Round(float64(totalScore) / float64(stats.TimesPlayed)))
	stats.AverageAccuracy = int(math.Round(float64(totalAccuracy) / float64(stats.TimesPlayed)))
	return stats
}

// AllStats returns stats for every game type in catalog order
func (p *UserProgress) AllStats() []GameTypeStats {
	stats := make([]GameTypeStats, 0, len(GameTypes))
	for _, gt := range GameTypes {
		stats = append(stats, p.StatsFor(gt))
	}
	return stats
}

// LevelProgress returns the percentage [0,100] of the way from the current
// level threshold to the next
func (p *UserProgress) LevelProgress() int {
	current := levelThreshold(p.CurrentLevel)
	next := levelThreshold(p.CurrentLevel + 1)
	progress := int(math.Round(float64(p.TotalScore-current) / float64(next-current) * 100))
	if progress > 100 {
		return 100
	}
	if progress < 0 {
		return 0
	}
	return progress
}

// RecentAchievements returns the n most recently unlocked achievements,
// newest first
func (p *UserProgress) RecentAchievements(n int) []Achievement {
	recent := make([]Achievement, len(p.Achievements))
	copy(recent, p.Achievements)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].UnlockedAt.After(recent[j].UnlockedAt)
	})
	if len(recent) > n {
		recent = recent[:n]
	}
	return recent
}

// Reset wipes the aggregate back to its initial state. Irreversible.
func (p *UserProgress) Reset() {
	*p = *NewUserProgress()
}

// PersistableSessions returns the session history capped to the most recent
// entries. Older sessions are already folded into the aggregate counters.
func (p *UserProgress) PersistableSessions() []GameSession {
	if len(p.GameSessions) <= maxPersistedSessions {
		return p.GameSessions
	}
	capped := make([]GameSession, maxPersistedSessions)
	copy(capped, p.GameSessions[len(p.GameSessions)-maxPersistedSessions:])
	return capped
}

// Encode serializes the progress for storage, capping the persisted session
// history to the most recent entries.
func (p *UserProgress) Encode() ([]byte, error) {
	out := *p
	out.GameSessions = p.PersistableSessions()
	return json.Marshal(&out)
}

// ParseUserProgress decodes a stored progress blob, rehydrating timestamps.
// Callers are expected to fall back to NewUserProgress on error so a
// corrupted blob never bricks the app.
func ParseUserProgress(data []byte) (*UserProgress, error) {
	var p UserProgress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if p.CurrentLevel < 1 {
		p.CurrentLevel = 1
	}
	if p.Achievements == nil {
		p.Achievements = []Achievement{}
	}
	if p.GameSessions == nil {
		p.GameSessions = []GameSession{}
	}
	return &p, nil
}

// UnmarshalJSON rehydrates lastPlayedAt leniently; sessions and achievements
// carry their own lenient unmarshalers.
func (p *UserProgress) UnmarshalJSON(data []byte) error {
	type alias UserProgress
	aux := struct {
		LastPlayedAt *string `json:"lastPlayedAt"`
		*alias
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.LastPlayedAt = parseTimestampPtr(aux.LastPlayedAt)
	return nil
}
