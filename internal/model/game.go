package model

import "math"

// GameVariant describes one of the client-side mini-games that report scores
type GameVariant struct {
	Name  string
	Title string
}

// LeaderboardAll selects ranking by aggregate score
const LeaderboardAll = "all"

// GameVariants is the single registry of supported mini-games.
// Scoring and leaderboard logic both consult it.
var GameVariants = []GameVariant{
	{Name: "catcher", Title: "Trash Catcher"},
	{Name: "snake", Title: "Eco Snake"},
	{Name: "quiz", Title: "Sorting Quiz"},
}

// MaxScore is the highest accepted per-game score. The aggregate of every
// variant at MaxScore still fits a signed 32-bit column.
var MaxScore = math.MaxInt32 / len(GameVariants)

// LookupGameVariant finds a registered variant by name
func LookupGameVariant(name string) (GameVariant, bool) {
	for _, v := range GameVariants {
		if v.Name == name {
			return v, true
		}
	}
	return GameVariant{}, false
}

// GameVariantNames returns the registered variant names in registry order
func GameVariantNames() []string {
	names := make([]string, len(GameVariants))
	for i, v := range GameVariants {
		names[i] = v.Name
	}
	return names
}

// NewGameScores returns a score map with a zero entry for every registered variant
func NewGameScores() map[string]int {
	scores := make(map[string]int, len(GameVariants))
	for _, v := range GameVariants {
		scores[v.Name] = 0
	}
	return scores
}
