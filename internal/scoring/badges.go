package scoring

import "sort"

// Badge identifiers. Within each family the higher tier replaces the lower one.
const (
	BadgeShortStreak = "short-streak"
	BadgeWeekStreak  = "week-streak"
	BadgeVolumeMid   = "volume-mid"
	BadgeVolumeHigh  = "volume-high"
	BadgeHighScorer  = "high-scorer"
	BadgeTopScorer   = "top-scorer"
)

// BadgeStats is the subset of a user's stats the badge table looks at.
type BadgeStats struct {
	Streak       int
	AverageScore float64
}

// Badges evaluates the threshold table and returns the earned badge ids in
// sorted order. At most one badge per family is returned.
func Badges(stats BadgeStats, totalResultCount int) []string {
	badges := make([]string, 0, 3)

	switch {
	case stats.Streak >= 7:
		badges = append(badges, BadgeWeekStreak)
	case stats.Streak >= 3:
		badges = append(badges, BadgeShortStreak)
	}

	switch {
	case totalResultCount >= 10:
		badges = append(badges, BadgeVolumeHigh)
	case totalResultCount >= 5:
		badges = append(badges, BadgeVolumeMid)
	}

	switch {
	case stats.AverageScore >= 90:
		badges = append(badges, BadgeTopScorer)
	case stats.AverageScore >= 75:
		badges = append(badges, BadgeHighScorer)
	}

	sort.Strings(badges)
	return badges
}
