package games

import (
	"testing"

	"cogniplay/internal/models"
)

func TestCatalogEntriesAreComplete(t *testing.T) {
	seen := map[string]bool{}
	for _, g := range Catalog() {
		if g.ID == "" || g.Name == "" || g.Description == "" {
			t.Errorf("incomplete catalog entry: %+v", g)
		}
		if seen[g.ID] {
			t.Errorf("duplicate game id %s", g.ID)
		}
		seen[g.ID] = true
		if len(g.Instructions) == 0 {
			t.Errorf("game %s has no instructions", g.ID)
		}
	}
}

func TestByID(t *testing.T) {
	info, ok := ByID("memory-pairs")
	if !ok {
		t.Fatal("memory-pairs not found")
	}
	if info.Type != models.GameMemory {
		t.Errorf("type = %s", info.Type)
	}
	if _, ok := ByID("no-such-game"); ok {
		t.Error("expected miss for unknown id")
	}
}

func TestFilters(t *testing.T) {
	for _, g := range ByCategory("logic") {
		if g.Category != "logic" {
			t.Errorf("game %s leaked into logic category", g.ID)
		}
	}
	for _, g := range ByDifficulty(models.DifficultyHard) {
		if g.Difficulty != models.DifficultyHard {
			t.Errorf("game %s is not hard", g.ID)
		}
	}
	if len(ByType(models.GameAttention)) != 2 {
		t.Errorf("expected 2 attention games, got %d", len(ByType(models.GameAttention)))
	}
}

func TestRecommendedExcludesPlayed(t *testing.T) {
	recs := Recommended([]string{"memory-pairs", "sequence-memory"}, "memory")
	for _, g := range recs {
		if g.ID == "memory-pairs" || g.ID == "sequence-memory" {
			t.Errorf("played game %s was recommended", g.ID)
		}
	}

	// A player who has seen everything still gets suggestions
	var all []string
	for _, g := range Catalog() {
		all = append(all, g.ID)
	}
	if len(Recommended(all, "")) == 0 {
		t.Error("expected fallback recommendations")
	}
}

func TestRecommendedRelaxesExhaustedCategory(t *testing.T) {
	// Play out an entire category; suggestions must come from elsewhere,
	// never from the played list
	var played []string
	for _, g := range ByCategory("memory") {
		played = append(played, g.ID)
	}

	recs := Recommended(played, "memory")
	if len(recs) == 0 {
		t.Fatal("expected recommendations from other categories")
	}
	playedSet := make(map[string]bool, len(played))
	for _, id := range played {
		playedSet[id] = true
	}
	for _, g := range recs {
		if playedSet[g.ID] {
			t.Errorf("played game %s was recommended", g.ID)
		}
		if g.Category == "memory" {
			t.Errorf("game %s is in the exhausted category", g.ID)
		}
	}
}
