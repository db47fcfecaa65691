package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/example/adaptedmind/pkg/models"
)

// SubjectAverage is the mean score for one subject.
type SubjectAverage struct {
	SubjectID    string
	Subject      string
	Tests        int
	AverageScore float64
}

// Summary is everything the progress dashboard shows for a user
type Summary struct {
	TotalTests   int
	AverageScore float64
	Streak       int
	Consistency  int
	Trend        int
	SmartScore   int
	Badges       []string
	Subjects     []SubjectAverage // highest average first
	BestSubject  string
}

// Summarize computes the dashboard aggregate over a user's full history.
func Summarize(results []models.QuizResult, now time.Time) Summary {
	avg := AverageScore(results)
	streak := Streak(results, now)

	s := Summary{
		TotalTests:   len(results),
		AverageScore: math.Round(avg*10) / 10,
		Streak:       streak,
		Consistency:  Consistency(results, now.Location()),
		Trend:        Trend(results),
		SmartScore:   SmartScore(results, now.Location()),
		Badges:       Badges(BadgeStats{Streak: streak, AverageScore: avg}, len(results)),
		Subjects:     subjectAverages(results),
	}
	if len(s.Subjects) > 0 {
		s.BestSubject = s.Subjects[0].Subject
	}
	return s
}

func subjectAverages(results []models.QuizResult) []SubjectAverage {
	index := make(map[string]int)
	var out []SubjectAverage
	sums := make(map[string]int)

	for _, r := range results {
		key := r.SubjectID
		if key == "" {
			key = models.SubjectID(r.Subject)
		}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, SubjectAverage{SubjectID: key, Subject: r.Subject})
		}
		out[i].Tests++
		sums[key] += r.Score
	}

	for i := range out {
		out[i].AverageScore = float64(sums[out[i].SubjectID]) / float64(out[i].Tests)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AverageScore > out[j].AverageScore })
	return out
}
