package models

import "fmt"

// OptionCount is the number of answer options every question carries.
const OptionCount = 4

// Question is a single multiple choice test item
type Question struct {
	ID          string     `json:"id"`
	Question    string     `json:"question"`
	Options     []string   `json:"options"`
	Correct     int        `json:"correct"` // 0-based index into Options
	Explanation string     `json:"explanation"`
	Difficulty  Difficulty `json:"difficulty,omitempty"`
	Topic       string     `json:"topic,omitempty"`
}

// Validate checks the structural invariants of a question.
func (q Question) Validate() error {
	if q.Question == "" {
		return fmt.Errorf("question text is empty")
	}
	if len(q.Options) != OptionCount {
		return fmt.Errorf("expected %d options, got %d", OptionCount, len(q.Options))
	}
	if q.Correct < 0 || q.Correct >= len(q.Options) {
		return fmt.Errorf("correct index %d out of range", q.Correct)
	}
	return nil
}

// Clone returns a deep copy so option shuffling never aliases the source.
func (q Question) Clone() Question {
	c := q
	c.Options = append([]string(nil), q.Options...)
	return c
}
