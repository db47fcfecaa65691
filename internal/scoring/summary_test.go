package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/adaptedmind/pkg/models"
)

func TestSummarize(t *testing.T) {
	algo := func(n, score int) models.QuizResult {
		r := daysAgo(n, score)
		r.Subject, r.SubjectID = "Algorithms", "algorithms"
		return r
	}
	results := []models.QuizResult{
		daysAgo(0, 90), daysAgo(1, 100), algo(2, 60), algo(3, 70), daysAgo(4, 95),
	}

	s := Summarize(results, now)

	assert.Equal(t, 5, s.TotalTests)
	assert.Equal(t, 83.0, s.AverageScore)
	assert.Equal(t, 5, s.Streak)
	assert.Equal(t, 100, s.Consistency)
	assert.Equal(t, []string{BadgeHighScorer, BadgeShortStreak, BadgeVolumeMid}, s.Badges)

	require.Len(t, s.Subjects, 2)
	assert.Equal(t, "Data Structures", s.BestSubject)
	assert.Equal(t, 3, s.Subjects[0].Tests)
	assert.InDelta(t, 95.0, s.Subjects[0].AverageScore, 0.001)
	assert.InDelta(t, 65.0, s.Subjects[1].AverageScore, 0.001)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, now)

	assert.Zero(t, s.TotalTests)
	assert.Zero(t, s.Streak)
	assert.Equal(t, NeutralScore, s.Trend)
	assert.Empty(t, s.Badges)
	assert.Empty(t, s.BestSubject)
}
