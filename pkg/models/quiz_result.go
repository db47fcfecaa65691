package models

import (
	"math"
	"time"
)

// SkippedAnswer marks a question the user never answered.
const SkippedAnswer = -1

// QuestionResult records the correctness facts for one question of an attempt
type QuestionResult struct {
	QuestionID         string `json:"question_id" db:"question_id"`
	Correct            bool   `json:"correct" db:"correct"`
	UserAnswerIndex    int    `json:"user_answer_index" db:"user_answer_index"`
	CorrectAnswerIndex int    `json:"correct_answer_index" db:"correct_answer_index"`
}

// QuizResult is one completed test attempt. It is never updated after creation.
type QuizResult struct {
	ID               string           `json:"id" db:"id"`
	UserID           string           `json:"user_id" db:"user_id"`
	Subject          string           `json:"subject" db:"subject"`
	SubjectID        string           `json:"subject_id" db:"subject_id"`
	Score            int              `json:"score" db:"score"` // 0-100
	CorrectAnswers   int              `json:"correct_answers" db:"correct_answers"`
	TotalQuestions   int              `json:"total_questions" db:"total_questions"`
	Difficulty       Difficulty       `json:"difficulty" db:"difficulty"`
	TimeSpentSeconds int              `json:"time_spent_seconds" db:"time_spent_seconds"`
	QuestionResults  []QuestionResult `json:"question_results" db:"-"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
}

// ScorePercent returns round(100*correct/total), or 0 for an empty test.
func ScorePercent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}
