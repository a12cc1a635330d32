package service

import (
	"errors"
	"testing"
	"time"

	"cogniplay/internal/localstore"
	"cogniplay/internal/models"
)

func finishedSession(gameType models.GameType, score, accuracy int) models.GameSession {
	end := time.Now()
	return models.GameSession{
		ID:                string(gameType) + "_test",
		GameType:          gameType,
		StartTime:         end.Add(-time.Minute),
		EndTime:           &end,
		Score:             score,
		MaxScore:          1000,
		Accuracy:          accuracy,
		TimeSpent:         60,
		Completed:         true,
		PerformanceRating: models.RatingGood,
	}
}

func TestSubmitSessionPersists(t *testing.T) {
	db := localstore.NewDatabase(localstore.NewMemoryStore())
	svc := NewProgressService(db)

	progress, outcome, err := svc.SubmitSession("u1", finishedSession(models.GameMemory, 400, 80))
	if err != nil {
		t.Fatalf("SubmitSession: %v", err)
	}
	if progress.GamesPlayed != 1 || progress.TotalScore != 400 {
		t.Errorf("got played %d score %d", progress.GamesPlayed, progress.TotalScore)
	}
	if len(outcome.Unlocked) == 0 {
		t.Error("first completed game should unlock an achievement")
	}

	// A fresh read must see the same aggregate
	reloaded, err := svc.Progress("u1")
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if reloaded.TotalScore != 400 || reloaded.GamesPlayed != 1 {
		t.Errorf("reloaded played %d score %d", reloaded.GamesPlayed, reloaded.TotalScore)
	}
}

func TestSubmitSessionRejectsUnfinished(t *testing.T) {
	svc := NewProgressService(localstore.NewDatabase(localstore.NewMemoryStore()))

	session := finishedSession(models.GameMemory, 400, 80)
	session.Completed = false
	session.EndTime = nil

	_, _, err := svc.SubmitSession("u1", session)
	if !errors.Is(err, ErrSessionNotFinished) {
		t.Errorf("expected ErrSessionNotFinished, got %v", err)
	}
}

func TestStatsAcrossGameTypes(t *testing.T) {
	svc := NewProgressService(localstore.NewDatabase(localstore.NewMemoryStore()))

	for _, s := range []models.GameSession{
		finishedSession(models.GameMemory, 400, 80),
		finishedSession(models.GameMemory, 600, 90),
		finishedSession(models.GameLogic, 300, 70),
	} {
		if _, _, err := svc.SubmitSession("u1", s); err != nil {
			t.Fatalf("SubmitSession: %v", err)
		}
	}

	stats, err := svc.StatsFor("u1", models.GameMemory)
	if err != nil {
		t.Fatalf("StatsFor: %v", err)
	}
	if stats.TimesPlayed != 2 || stats.BestScore != 600 || stats.AverageScore != 500 {
		t.Errorf("memory stats = %+v", stats)
	}

	all, err := svc.Stats("u1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(all) != len(models.GameTypes) {
		t.Fatalf("expected stats for every game type, got %d", len(all))
	}
	for _, s := range all {
		if s.GameType == models.GameReaction && s.TimesPlayed != 0 {
			t.Error("unplayed type must report zero stats")
		}
	}
}

func TestResetProgress(t *testing.T) {
	svc := NewProgressService(localstore.NewDatabase(localstore.NewMemoryStore()))

	if _, _, err := svc.SubmitSession("u1", finishedSession(models.GameMemory, 900, 100)); err != nil {
		t.Fatalf("SubmitSession: %v", err)
	}
	if err := svc.ResetProgress("u1"); err != nil {
		t.Fatalf("ResetProgress: %v", err)
	}

	progress, err := svc.Progress("u1")
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if progress.TotalScore != 0 || progress.CurrentLevel != 1 || len(progress.Achievements) != 0 {
		t.Errorf("expected fresh progress after reset, got %+v", progress)
	}
}

func TestUpdateSettingsMergesPartialUpdate(t *testing.T) {
	svc := NewProgressService(localstore.NewDatabase(localstore.NewMemoryStore()))

	highContrast := true
	fontSize := models.FontSizeLarge
	settings, err := svc.UpdateSettings("u1", models.AccessibilityUpdate{
		HighContrast: &highContrast,
		FontSize:     &fontSize,
	})
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if !settings.HighContrast || settings.FontSize != models.FontSizeLarge {
		t.Errorf("settings = %+v", settings)
	}
	// Untouched fields keep their defaults
	if !settings.SubtitlesEnabled || !settings.SoundEnabled {
		t.Errorf("defaults must survive a partial update, got %+v", settings)
	}

	reloaded, err := svc.Settings("u1")
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if reloaded != settings {
		t.Errorf("reloaded %+v, want %+v", reloaded, settings)
	}
}
