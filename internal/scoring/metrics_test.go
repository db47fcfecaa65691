package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/adaptedmind/pkg/models"
)

var now = time.Date(2024, time.March, 20, 15, 0, 0, 0, time.UTC)

func daysAgo(n int, score int) models.QuizResult {
	return models.QuizResult{
		Score:     score,
		Subject:   "Data Structures",
		SubjectID: "data-structures",
		CreatedAt: now.AddDate(0, 0, -n).Add(-2 * time.Hour),
	}
}

func TestStreak(t *testing.T) {
	tests := []struct {
		name    string
		results []models.QuizResult
		want    int
	}{
		{"no results", nil, 0},
		{"all today", []models.QuizResult{daysAgo(0, 70), daysAgo(0, 80), daysAgo(0, 90)}, 1},
		{"yesterday only", []models.QuizResult{daysAgo(1, 70)}, 1},
		{"three consecutive days", []models.QuizResult{daysAgo(0, 70), daysAgo(1, 70), daysAgo(2, 70)}, 3},
		{"grace skips one missed day", []models.QuizResult{daysAgo(0, 70), daysAgo(1, 70), daysAgo(3, 70)}, 3},
		{"grace is not reusable", []models.QuizResult{daysAgo(0, 70), daysAgo(1, 70), daysAgo(3, 70), daysAgo(5, 70)}, 3},
		{"grace then consecutive", []models.QuizResult{daysAgo(0, 70), daysAgo(2, 70), daysAgo(3, 70), daysAgo(4, 70)}, 4},
		{"three day gap breaks", []models.QuizResult{daysAgo(0, 70), daysAgo(3, 70)}, 1},
		{"grace used from today", []models.QuizResult{daysAgo(2, 70), daysAgo(3, 70)}, 2},
		{"stale history", []models.QuizResult{daysAgo(10, 70), daysAgo(11, 70)}, 0},
		{"unordered input", []models.QuizResult{daysAgo(3, 70), daysAgo(0, 70), daysAgo(1, 70)}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Streak(tt.results, now))
		})
	}
}

func TestConsistency(t *testing.T) {
	assert.Equal(t, NeutralScore, Consistency(nil, time.UTC))
	assert.Equal(t, NeutralScore, Consistency([]models.QuizResult{daysAgo(0, 80)}, time.UTC))

	// two results on the same day: one active day over a one day span
	assert.Equal(t, 100, Consistency([]models.QuizResult{daysAgo(0, 80), daysAgo(0, 60)}, time.UTC))

	// 3 active days over a 4 day span
	assert.Equal(t, 75, Consistency([]models.QuizResult{daysAgo(0, 80), daysAgo(1, 60), daysAgo(3, 60)}, time.UTC))

	// 2 active days over a 10 day span
	assert.Equal(t, 20, Consistency([]models.QuizResult{daysAgo(0, 80), daysAgo(9, 60)}, time.UTC))
}

func TestConsistency_CalendarDaysFollowLocation(t *testing.T) {
	results := []models.QuizResult{
		{Score: 70, CreatedAt: time.Date(2024, time.March, 18, 22, 30, 0, 0, time.UTC)},
		{Score: 70, CreatedAt: time.Date(2024, time.March, 20, 1, 0, 0, 0, time.UTC)},
	}
	plusThree := time.FixedZone("UTC+3", 3*60*60)

	// UTC: March 18 and 20, a three day span. UTC+3: March 19 and 20.
	assert.Equal(t, 67, Consistency(results, time.UTC))
	assert.Equal(t, 100, Consistency(results, plusThree))

	summary := Summarize(results, time.Date(2024, time.March, 20, 12, 0, 0, 0, plusThree))
	assert.Equal(t, 100, summary.Consistency)
	assert.Equal(t, 2, summary.Streak)
}

func TestTrend(t *testing.T) {
	assert.Equal(t, NeutralScore, Trend(nil))
	assert.Equal(t, NeutralScore, Trend([]models.QuizResult{daysAgo(0, 100)}))

	improving := []models.QuizResult{daysAgo(3, 40), daysAgo(2, 60), daysAgo(1, 80), daysAgo(0, 100)}
	assert.Equal(t, 90, Trend(improving))

	declining := []models.QuizResult{daysAgo(0, 40), daysAgo(1, 100)}
	assert.Equal(t, 0, Trend(declining))

	// odd length: earlier half {20, 40, 50} averages 36.7, later half {60, 70} averages 65
	odd := []models.QuizResult{daysAgo(4, 20), daysAgo(3, 40), daysAgo(2, 50), daysAgo(1, 60), daysAgo(0, 70)}
	assert.Equal(t, 78, Trend(odd))
}

func TestSmartScoreBounds(t *testing.T) {
	cases := [][]models.QuizResult{
		{daysAgo(0, 0)},
		{daysAgo(0, 100), daysAgo(1, 100), daysAgo(2, 100)},
		{daysAgo(30, 100), daysAgo(0, 0)},
		{daysAgo(0, 0), daysAgo(0, 0), daysAgo(40, 100)},
	}
	for _, results := range cases {
		got := SmartScore(results, time.UTC)
		assert.GreaterOrEqual(t, got, 0)
		assert.LessOrEqual(t, got, 100)
	}
}

func TestSmartScoreWeights(t *testing.T) {
	// avg 80, consistency 100 (same day), trend 50 (flat)
	results := []models.QuizResult{daysAgo(0, 80), daysAgo(0, 80)}
	assert.Equal(t, 32+30+15, SmartScore(results, time.UTC))

	// empty history: only the neutral components contribute
	assert.Equal(t, 30, SmartScore(nil, time.UTC))
}

func TestAverageScore(t *testing.T) {
	assert.Equal(t, 0.0, AverageScore(nil))
	assert.InDelta(t, 70.0, AverageScore([]models.QuizResult{daysAgo(0, 60), daysAgo(1, 80)}), 0.0001)
}
