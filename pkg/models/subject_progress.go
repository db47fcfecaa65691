package models

import "time"

// SubjectProgress is the running aggregate of a user's results in one subject
type SubjectProgress struct {
	UserID            string    `json:"user_id" db:"user_id"`
	SubjectID         string    `json:"subject_id" db:"subject_id"`
	LastQuizScore     int       `json:"last_quiz_score" db:"last_quiz_score"`
	TotalQuizzesTaken int       `json:"total_quizzes_taken" db:"total_quizzes_taken"`
	LastActivity      time.Time `json:"last_activity" db:"last_activity"`
	AverageScore      float64   `json:"average_score" db:"average_score"`
}

// ProgressUpdate is the partial write applied on each submission.
type ProgressUpdate struct {
	LastQuizScore     int
	TotalQuizzesTaken int
	LastActivity      time.Time
	AverageScore      float64
}

// Apply folds a new score into the aggregate and returns the update to persist.
// A nil receiver is treated as an empty history.
func (p *SubjectProgress) Apply(score int, at time.Time) ProgressUpdate {
	taken, avg := 0, 0.0
	if p != nil {
		taken, avg = p.TotalQuizzesTaken, p.AverageScore
	}
	return ProgressUpdate{
		LastQuizScore:     score,
		TotalQuizzesTaken: taken + 1,
		LastActivity:      at,
		AverageScore:      (avg*float64(taken) + float64(score)) / float64(taken+1),
	}
}
