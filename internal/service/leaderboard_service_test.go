package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"cogniplay/internal/localstore"
	"cogniplay/internal/models"
)

func seedPlayer(t *testing.T, db *localstore.Database, name string, score, accuracy int) string {
	t.Helper()
	now := time.Now()
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        name + "@example.com",
		Name:         name,
		PasswordHash: "x",
		Preferences:  models.DefaultPreferences(),
		CreatedAt:    now,
		LastAccessAt: now,
	}
	progress := models.NewUserProgress()
	if score > 0 {
		progress.AddSession(finishedSession(models.GameMemory, score, accuracy))
	}
	if err := db.CreateIdentity(user, progress, models.DefaultAccessibilitySettings()); err != nil {
		t.Fatalf("CreateIdentity: %v", err)
	}
	return user.ID
}

func TestLeaderboardByAccuracy(t *testing.T) {
	db := localstore.NewDatabase(localstore.NewMemoryStore())
	svc := NewLeaderboardService(db)

	seedPlayer(t, db, "carol", 300, 50)
	seedPlayer(t, db, "alice", 500, 90)
	seedPlayer(t, db, "bob", 400, 70)

	entries, err := svc.Leaderboard(MetricAccuracy, 0)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	got := []int{}
	for _, e := range entries {
		got = append(got, e.AccuracyAverage)
	}
	want := []int{90, 70, 50}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("accuracy order = %v, want %v", got, want)
		}
	}
	for i, e := range entries {
		if e.Rank != i+1 {
			t.Errorf("rank[%d] = %d", i, e.Rank)
		}
	}
}

func TestLeaderboardIncludesIdlePlayers(t *testing.T) {
	db := localstore.NewDatabase(localstore.NewMemoryStore())
	svc := NewLeaderboardService(db)

	seedPlayer(t, db, "alice", 500, 90)
	idleID := seedPlayer(t, db, "zoe", 0, 0)

	entries, err := svc.Leaderboard(MetricScore, 0)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	last := entries[len(entries)-1]
	if last.UserID != idleID || last.TotalScore != 0 || last.CurrentLevel != 1 {
		t.Errorf("idle player entry = %+v", last)
	}
}

func TestLeaderboardTiesBreakByName(t *testing.T) {
	db := localstore.NewDatabase(localstore.NewMemoryStore())
	svc := NewLeaderboardService(db)

	seedPlayer(t, db, "zoe", 500, 80)
	seedPlayer(t, db, "alice", 500, 80)

	entries, err := svc.Leaderboard(MetricScore, 0)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if entries[0].Name != "alice" || entries[1].Name != "zoe" {
		t.Errorf("tie order = %s, %s", entries[0].Name, entries[1].Name)
	}
}

func TestLeaderboardLimitAndDefaultMetric(t *testing.T) {
	db := localstore.NewDatabase(localstore.NewMemoryStore())
	svc := NewLeaderboardService(db)

	seedPlayer(t, db, "carol", 300, 50)
	seedPlayer(t, db, "alice", 500, 90)
	seedPlayer(t, db, "bob", 400, 70)

	entries, err := svc.Leaderboard("", 2)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Name != "alice" || entries[1].Name != "bob" {
		t.Errorf("default metric order = %s, %s", entries[0].Name, entries[1].Name)
	}
}

func TestLeaderboardRejectsUnknownMetric(t *testing.T) {
	svc := NewLeaderboardService(localstore.NewDatabase(localstore.NewMemoryStore()))

	if _, err := svc.Leaderboard("elo", 0); !errors.Is(err, ErrUnknownMetric) {
		t.Errorf("expected ErrUnknownMetric, got %v", err)
	}
}

func TestRankOf(t *testing.T) {
	db := localstore.NewDatabase(localstore.NewMemoryStore())
	svc := NewLeaderboardService(db)

	seedPlayer(t, db, "alice", 500, 90)
	bobID := seedPlayer(t, db, "bob", 400, 70)

	entry, err := svc.RankOf(MetricScore, bobID)
	if err != nil {
		t.Fatalf("RankOf: %v", err)
	}
	if entry.Rank != 2 {
		t.Errorf("rank = %d, want 2", entry.Rank)
	}

	if _, err := svc.RankOf(MetricScore, "no-such-user"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
