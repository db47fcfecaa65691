package models

import "strings"

// Difficulty is the tier a test is generated at.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyMedium   Difficulty = "medium"
	DifficultyHard     Difficulty = "hard"
	DifficultyAdaptive Difficulty = "adaptive"
)

// ParseDifficulty maps a loosely typed string onto the closed set of tiers.
// The second return value is false for unknown input.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case DifficultyEasy:
		return DifficultyEasy, true
	case DifficultyMedium:
		return DifficultyMedium, true
	case DifficultyHard:
		return DifficultyHard, true
	case DifficultyAdaptive:
		return DifficultyAdaptive, true
	}
	return "", false
}

// IsConcrete reports whether d is one of easy, medium or hard.
func (d Difficulty) IsConcrete() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// Description is the wording used when asking a generator for this tier.
func (d Difficulty) Description() string {
	switch d {
	case DifficultyEasy:
		return "easy (basic recall and definitions)"
	case DifficultyHard:
		return "hard (multi-step reasoning and edge cases)"
	default:
		return "medium (applied understanding)"
	}
}
