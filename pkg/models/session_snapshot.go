package models

import "time"

// SessionSnapshot is the durable copy of an in-progress test used for resume.
type SessionSnapshot struct {
	UserID               string      `json:"user_id"`
	Subject              string      `json:"subject"`
	Difficulty           Difficulty  `json:"difficulty"`
	Questions            []Question  `json:"questions"`
	SelectedAnswers      map[int]int `json:"selected_answers"`
	CurrentQuestionIndex int         `json:"current_question_index"`
	VisitedQuestions     []int       `json:"visited_questions"`
	TimeRemainingSeconds int         `json:"time_remaining_seconds"`
	TotalTimeSeconds     int         `json:"total_time_seconds"`
	StartedAt            time.Time   `json:"started_at"`
	SavedAt              time.Time   `json:"saved_at"`
}

// Valid reports whether the snapshot can be restored without breaking
// session invariants. Anything else is treated as corruption.
func (s *SessionSnapshot) Valid() bool {
	if s == nil || len(s.Questions) == 0 {
		return false
	}
	if s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex >= len(s.Questions) {
		return false
	}
	if s.TotalTimeSeconds <= 0 || s.TimeRemainingSeconds < 0 || s.TimeRemainingSeconds > s.TotalTimeSeconds {
		return false
	}
	for _, q := range s.Questions {
		if q.Validate() != nil {
			return false
		}
	}
	for q, opt := range s.SelectedAnswers {
		if q < 0 || q >= len(s.Questions) || opt < 0 || opt >= len(s.Questions[q].Options) {
			return false
		}
	}
	for _, i := range s.VisitedQuestions {
		if i < 0 || i >= len(s.Questions) {
			return false
		}
	}
	return true
}
