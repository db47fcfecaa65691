// Package scoring derives engagement metrics from a user's quiz history.
// Every function here is pure and total: empty or short input yields a
// neutral default instead of an error.
package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/example/adaptedmind/pkg/models"
)

const (
	// NeutralScore is returned by Consistency and Trend when there is not
	// enough history to say anything.
	NeutralScore = 50

	averageWeight     = 0.4
	consistencyWeight = 0.3
	trendWeight       = 0.3
)

// Streak counts consecutive active days walking back from now. A single gap
// of exactly two days (one missed day) is tolerated once per computation.
func Streak(results []models.QuizResult, now time.Time) int {
	days := activeDays(results, now.Location())
	if len(days) == 0 {
		return 0
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	cursor := startOfDay(now, now.Location())
	graceUsed := false
	streak := 0
	for _, day := range days {
		gap := daysBetween(day, cursor)
		if gap < 0 {
			// clock skew: activity stamped after now
			continue
		}
		switch {
		case gap == 0 || gap == 1:
		case gap == 2 && !graceUsed:
			graceUsed = true
		default:
			return streak
		}
		streak++
		cursor = day
	}
	return streak
}

// Consistency is the share of days with activity inside the span between the
// first and last active day, as a 0-100 score. Days are calendar days in loc.
func Consistency(results []models.QuizResult, loc *time.Location) int {
	if len(results) < 2 {
		return NeutralScore
	}
	days := activeDays(results, loc)
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	span := daysBetween(days[0], days[len(days)-1]) + 1
	score := int(math.Round(float64(len(days)) / float64(span) * 100))
	if score > 100 {
		score = 100
	}
	return score
}

// Trend compares the mean score of the later half of the history with the
// earlier half. 50 means flat; the earlier half takes the odd element.
func Trend(results []models.QuizResult) int {
	if len(results) < 2 {
		return NeutralScore
	}
	ordered := make([]models.QuizResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].CreatedAt.Before(ordered[j].CreatedAt) })

	split := (len(ordered) + 1) / 2
	diff := AverageScore(ordered[split:]) - AverageScore(ordered[:split])
	return clamp(int(math.Round(NeutralScore+diff)), 0, 100)
}

// AverageScore is the arithmetic mean of the scores, 0 for no results.
func AverageScore(results []models.QuizResult) float64 {
	if len(results) == 0 {
		return 0
	}
	sum := 0
	for _, r := range results {
		sum += r.Score
	}
	return float64(sum) / float64(len(results))
}

// SmartScore blends average score, consistency and trend into one 0-100 value.
func SmartScore(results []models.QuizResult, loc *time.Location) int {
	score := AverageScore(results)*averageWeight +
		float64(Consistency(results, loc))*consistencyWeight +
		float64(Trend(results))*trendWeight
	return clamp(int(math.Round(score)), 0, 100)
}

// activeDays returns the distinct calendar days (midnight in loc) with at
// least one result, in no particular order.
func activeDays(results []models.QuizResult, loc *time.Location) []time.Time {
	seen := make(map[time.Time]bool, len(results))
	days := make([]time.Time, 0, len(results))
	for _, r := range results {
		d := startOfDay(r.CreatedAt, loc)
		if seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
	}
	return days
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// daysBetween returns the whole calendar days from a to b. Rounding absorbs
// the 23h/25h days around DST changes.
func daysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
