// Package games holds the static catalog of training games.
package games

import (
	"cogniplay/internal/models"
)

var catalog = []models.GameInfo{
	{
		ID:            "memory-pairs",
		Type:          models.GameMemory,
		Name:          "Find the Pairs",
		Description:   "Find every pair of matching cards. Exercises your visual memory.",
		Icon:          "brain",
		Category:      "memory",
		Difficulty:    models.DifficultyEasy,
		EstimatedTime: 180,
		Instructions: []string{
			"Cards are laid out face down",
			"Click two cards to flip them over",
			"Matching cards stay visible",
			"Different cards flip back over",
			"Find every pair to win",
		},
	},
	{
		ID:            "sequence-memory",
		Type:          models.GameSequence,
		Name:          "Visual Sequence",
		Description:   "Memorize and repeat the sequence of colors shown.",
		Icon:          "layers",
		Category:      "memory",
		Difficulty:    models.DifficultyMedium,
		EstimatedTime: 120,
		Instructions: []string{
			"Watch the sequence of colors light up",
			"Wait until the sequence finishes",
			"Repeat the sequence in the same order",
			"Each round adds one more color",
			"Get as far as you can",
		},
	},
	{
		ID:            "find-different",
		Type:          models.GameAttention,
		Name:          "Find the Odd One Out",
		Description:   "Spot the element that differs from the rest.",
		Icon:          "search",
		Category:      "attention",
		Difficulty:    models.DifficultyEasy,
		EstimatedTime: 90,
		Instructions: []string{
			"Look at every element on screen",
			"Find the one that is different",
			"Click the different element",
			"Each round has a time limit",
			"The faster you are, the more points you earn",
		},
	},
	{
		ID:            "reaction-time",
		Type:          models.GameReaction,
		Name:          "Reaction Time",
		Description:   "Respond quickly when the right visual cue appears.",
		Icon:          "zap",
		Category:      "attention",
		Difficulty:    models.DifficultyMedium,
		EstimatedTime: 60,
		Instructions: []string{
			"Watch the screen closely",
			"When you see the GREEN circle, click",
			"Do NOT click on any other color",
			"Respond as fast as you can",
			"Avoid wrong clicks",
		},
	},
	{
		ID:            "counting-objects",
		Type:          models.GameAttention,
		Name:          "Count the Elements",
		Description:   "Count how many elements of a given kind appear on screen.",
		Icon:          "hash",
		Category:      "attention",
		Difficulty:    models.DifficultyHard,
		EstimatedTime: 120,
		Instructions: []string{
			"Several elements appear on screen",
			"You are asked to count one specific kind",
			"Count the elements in your head",
			"Pick the correct amount",
			"You have limited time",
		},
	},
	{
		ID:            "pattern-completion",
		Type:          models.GameLogic,
		Name:          "Complete the Pattern",
		Description:   "Identify the pattern and pick the missing piece.",
		Icon:          "puzzle",
		Category:      "logic",
		Difficulty:    models.DifficultyMedium,
		EstimatedTime: 150,
		Instructions: []string{
			"Look at the sequence of figures",
			"Identify the pattern they follow",
			"Work out which figure completes it",
			"Pick the correct option",
			"The patterns get harder over time",
		},
	},
	{
		ID:            "color-sequence",
		Type:          models.GameLogic,
		Name:          "Color Sequence",
		Description:   "Work out the pattern hidden in the sequence of colors.",
		Icon:          "palette",
		Category:      "logic",
		Difficulty:    models.DifficultyEasy,
		EstimatedTime: 100,
		Instructions: []string{
			"A sequence of colors is shown",
			"Identify the pattern it follows",
			"Pick the next color in the sequence",
			"There are several kinds of patterns",
			"Use logic to work out the answer",
		},
	},
	{
		ID:            "shape-sorting",
		Type:          models.GameLogic,
		Name:          "Shape Sorting",
		Description:   "Sort the shapes by their properties.",
		Icon:          "shapes",
		Category:      "logic",
		Difficulty:    models.DifficultyHard,
		EstimatedTime: 180,
		Instructions: []string{
			"Look at the shapes and their properties",
			"Work out the sorting rule",
			"Drag each shape into the right group",
			"The rules can change",
			"Watch color, size and shape",
		},
	},
}

// Catalog returns every game, in catalog order
func Catalog() []models.GameInfo {
	out := make([]models.GameInfo, len(catalog))
	copy(out, catalog)
	return out
}

// ByID returns the game with the given id, or (nil, false)
func ByID(id string) (*models.GameInfo, bool) {
	for i := range catalog {
		if catalog[i].ID == id {
			info := catalog[i]
			return &info, true
		}
	}
	return nil, false
}

// ByType returns every game of the given type
func ByType(gameType models.GameType) []models.GameInfo {
	var out []models.GameInfo
	for _, g := range catalog {
		if g.Type == gameType {
			out = append(out, g)
		}
	}
	return out
}

// ByCategory returns every game in the given category
func ByCategory(category string) []models.GameInfo {
	var out []models.GameInfo
	for _, g := range catalog {
		if g.Category == category {
			out = append(out, g)
		}
	}
	return out
}

// ByDifficulty returns every game at the given difficulty
func ByDifficulty(difficulty models.Difficulty) []models.GameInfo {
	var out []models.GameInfo
	for _, g := range catalog {
		if g.Difficulty == difficulty {
			out = append(out, g)
		}
	}
	return out
}

// Recommended suggests up to three games the user has not played yet,
// optionally restricted to a preferred category. A user who has played
// everything gets suggestions from the whole catalog.
func Recommended(playedIDs []string, preferredCategory string) []models.GameInfo {
	played := make(map[string]bool, len(playedIDs))
	for _, id := range playedIDs {
		played[id] = true
	}

	unplayed := func(category string) []models.GameInfo {
		var out []models.GameInfo
		for _, g := range catalog {
			if played[g.ID] {
				continue
			}
			if category != "" && g.Category != category {
				continue
			}
			out = append(out, g)
		}
		return out
	}

	available := unplayed(preferredCategory)
	if len(available) == 0 {
		// Preferred category exhausted: relax the category first
		available = unplayed("")
	}
	if len(available) == 0 {
		// Everything played: suggest replaying from the whole catalog
		available = Catalog()
	}
	if len(available) > 3 {
		available = available[:3]
	}
	return available
}
