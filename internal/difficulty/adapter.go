// Package difficulty picks the tier a test is generated at.
package difficulty

import (
	"fmt"

	"github.com/example/adaptedmind/pkg/models"
)

// Thresholds on the historical average used when resolving "adaptive".
const (
	HardThreshold   = 80
	MediumThreshold = 60

	// trendDeadZone is how far the two half means may differ and still be "stable".
	trendDeadZone = 5
)

// Trend describes the direction of a run of scores.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// Recommendation is the suggested tier for the next lesson on a topic.
type Recommendation struct {
	Tier      models.Difficulty
	Rationale string
	Trend     Trend
}

// Resolve turns a requested tier into a concrete one. Explicit tiers pass
// through; adaptive is decided by the historical average for the subject,
// with no history meaning medium. Unknown requests degrade to medium.
func Resolve(requested models.Difficulty, historicalAverage *float64) models.Difficulty {
	if requested.IsConcrete() {
		return requested
	}
	if requested != models.DifficultyAdaptive || historicalAverage == nil {
		return models.DifficultyMedium
	}

	switch avg := *historicalAverage; {
	case avg >= HardThreshold:
		return models.DifficultyHard
	case avg >= MediumThreshold:
		return models.DifficultyMedium
	default:
		return models.DifficultyEasy
	}
}

// RecommendNext suggests the tier for the next lesson from recent scores on
// a topic, oldest first.
func RecommendNext(recentScores []int) Recommendation {
	if len(recentScores) == 0 {
		return Recommendation{Tier: models.DifficultyEasy, Rationale: "new topic", Trend: TrendStable}
	}

	avg := mean(recentScores)
	trend := trendOf(recentScores)

	switch {
	case avg >= 85 && trend == TrendImproving:
		return Recommendation{
			Tier:      models.DifficultyHard,
			Rationale: fmt.Sprintf("averaging %.0f%% and still improving", avg),
			Trend:     trend,
		}
	case avg >= 70:
		return Recommendation{
			Tier:      models.DifficultyMedium,
			Rationale: fmt.Sprintf("solid at %.0f%%, keep consolidating", avg),
			Trend:     trend,
		}
	default:
		return Recommendation{
			Tier:      models.DifficultyEasy,
			Rationale: fmt.Sprintf("averaging %.0f%%, revisit the basics", avg),
			Trend:     trend,
		}
	}
}

// trendOf splits the scores in two halves (earlier half takes the odd one)
// and compares their means.
func trendOf(scores []int) Trend {
	if len(scores) < 2 {
		return TrendStable
	}
	split := (len(scores) + 1) / 2
	diff := mean(scores[split:]) - mean(scores[:split])
	switch {
	case diff > trendDeadZone:
		return TrendImproving
	case diff < -trendDeadZone:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func mean(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores))
}
