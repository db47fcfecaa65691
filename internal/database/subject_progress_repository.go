package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/adaptedmind/pkg/models"
)

// SubjectProgressRepository handles database operations for per-subject progress
type SubjectProgressRepository struct {
	db *sqlx.DB
}

// NewSubjectProgressRepository creates a new repository instance
func NewSubjectProgressRepository(db *sqlx.DB) *SubjectProgressRepository {
	return &SubjectProgressRepository{db: db}
}

const subjectProgressColumns = `user_id, subject_id, last_quiz_score, total_quizzes_taken,
	last_activity, average_score`

// Get returns the progress for a user and subject, or nil when none exists
func (r *SubjectProgressRepository) Get(ctx context.Context, userID, subjectID string) (*models.SubjectProgress, error) {
	var progress models.SubjectProgress
	err := r.db.GetContext(ctx, &progress, r.db.Rebind(`
		SELECT `+subjectProgressColumns+`
		FROM subject_progress
		WHERE user_id = ? AND subject_id = ?
	`), userID, subjectID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subject progress: %w", err)
	}
	return &progress, nil
}

// GetByUser returns all of a user's subject progress, most recent activity first
func (r *SubjectProgressRepository) GetByUser(ctx context.Context, userID string) ([]models.SubjectProgress, error) {
	var progress []models.SubjectProgress
	err := r.db.SelectContext(ctx, &progress, r.db.Rebind(`
		SELECT `+subjectProgressColumns+`
		FROM subject_progress
		WHERE user_id = ?
		ORDER BY last_activity DESC
	`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subject progress: %w", err)
	}
	return progress, nil
}

// Upsert creates or overwrites the progress row for a user and subject
func (r *SubjectProgressRepository) Upsert(ctx context.Context, userID, subjectID string, update models.ProgressUpdate) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO subject_progress (`+subjectProgressColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, subject_id) DO UPDATE SET
			last_quiz_score = excluded.last_quiz_score,
			total_quizzes_taken = excluded.total_quizzes_taken,
			last_activity = excluded.last_activity,
			average_score = excluded.average_score
	`),
		userID,
		subjectID,
		update.LastQuizScore,
		update.TotalQuizzesTaken,
		update.LastActivity.UTC(),
		update.AverageScore,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert subject progress: %w", err)
	}
	return nil
}
