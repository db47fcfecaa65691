package difficulty

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/adaptedmind/pkg/models"
)

func avg(v float64) *float64 { return &v }

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		requested models.Difficulty
		average   *float64
		want      models.Difficulty
	}{
		{"explicit easy ignores history", models.DifficultyEasy, avg(95), models.DifficultyEasy},
		{"explicit hard ignores history", models.DifficultyHard, avg(10), models.DifficultyHard},
		{"explicit medium without history", models.DifficultyMedium, nil, models.DifficultyMedium},
		{"adaptive without history", models.DifficultyAdaptive, nil, models.DifficultyMedium},
		{"adaptive at 80", models.DifficultyAdaptive, avg(80), models.DifficultyHard},
		{"adaptive at 79", models.DifficultyAdaptive, avg(79), models.DifficultyMedium},
		{"adaptive at 79.99", models.DifficultyAdaptive, avg(79.99), models.DifficultyMedium},
		{"adaptive at 60", models.DifficultyAdaptive, avg(60), models.DifficultyMedium},
		{"adaptive at 59", models.DifficultyAdaptive, avg(59), models.DifficultyEasy},
		{"adaptive at 0", models.DifficultyAdaptive, avg(0), models.DifficultyEasy},
		{"unknown request", models.Difficulty("extreme"), avg(99), models.DifficultyMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.requested, tt.average))
		})
	}
}

func TestRecommendNext(t *testing.T) {
	tests := []struct {
		name      string
		scores    []int
		wantTier  models.Difficulty
		wantTrend Trend
	}{
		{"no history", nil, models.DifficultyEasy, TrendStable},
		{"high and improving", []int{80, 84, 90, 96}, models.DifficultyHard, TrendImproving},
		{"high but flat", []int{90, 88, 90, 91}, models.DifficultyMedium, TrendStable},
		{"high but declining", []int{100, 100, 80, 80}, models.DifficultyMedium, TrendDeclining},
		{"improvement inside dead zone", []int{84, 86, 88, 89}, models.DifficultyMedium, TrendStable},
		{"solid", []int{70, 72, 71}, models.DifficultyMedium, TrendStable},
		{"weak", []int{40, 55, 69}, models.DifficultyEasy, TrendImproving},
		{"single score", []int{95}, models.DifficultyMedium, TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := RecommendNext(tt.scores)
			assert.Equal(t, tt.wantTier, rec.Tier)
			assert.Equal(t, tt.wantTrend, rec.Trend)
			assert.NotEmpty(t, rec.Rationale)
		})
	}
}

func TestRecommendNextNewTopic(t *testing.T) {
	assert.Equal(t, "new topic", RecommendNext(nil).Rationale)
}
