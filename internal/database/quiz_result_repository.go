package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/example/adaptedmind/pkg/models"
)

// QuizResultRepository handles database operations for quiz results
type QuizResultRepository struct {
	db *sqlx.DB
}

// NewQuizResultRepository creates a new repository instance
func NewQuizResultRepository(db *sqlx.DB) *QuizResultRepository {
	return &QuizResultRepository{db: db}
}

type questionResultRow struct {
	QuizResultID string `db:"quiz_result_id"`
	Position     int    `db:"position"`
	models.QuestionResult
}

const quizResultColumns = `id, user_id, subject, subject_id, score, correct_answers,
	total_questions, difficulty, time_spent_seconds, created_at`

// Create inserts a quiz result together with its per-question results
func (r *QuizResultRepository) Create(ctx context.Context, result *models.QuizResult) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := *result
	row.CreatedAt = row.CreatedAt.UTC()
	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO quiz_results (`+quizResultColumns+`)
		VALUES (:id, :user_id, :subject, :subject_id, :score, :correct_answers,
			:total_questions, :difficulty, :time_spent_seconds, :created_at)
	`, &row)
	if err != nil {
		return fmt.Errorf("failed to create quiz result: %w", err)
	}

	for i, qr := range result.QuestionResults {
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO question_results (
				quiz_result_id, position, question_id, correct, user_answer_index, correct_answer_index
			) VALUES (:quiz_result_id, :position, :question_id, :correct, :user_answer_index, :correct_answer_index)
		`, questionResultRow{QuizResultID: result.ID, Position: i, QuestionResult: qr})
		if err != nil {
			return fmt.Errorf("failed to create question result %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit quiz result: %w", err)
	}
	return nil
}

// GetByID returns a quiz result by ID
func (r *QuizResultRepository) GetByID(ctx context.Context, id string) (*models.QuizResult, error) {
	var result models.QuizResult
	err := r.db.GetContext(ctx, &result,
		r.db.Rebind(`SELECT `+quizResultColumns+` FROM quiz_results WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz result: %w", err)
	}

	results := []models.QuizResult{result}
	if err := r.attachQuestionResults(ctx, results); err != nil {
		return nil, err
	}
	return &results[0], nil
}

// GetByUser returns a user's quiz results, newest first
func (r *QuizResultRepository) GetByUser(ctx context.Context, userID string, filter models.QueryFilter) ([]models.QuizResult, error) {
	where := []string{"user_id = ?"}
	args := []interface{}{userID}
	if filter.SubjectID != "" {
		where = append(where, "subject_id = ?")
		args = append(args, filter.SubjectID)
	}
	if !filter.Since.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, filter.Since.UTC())
	}

	query := `SELECT ` + quizResultColumns + ` FROM quiz_results WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	var results []models.QuizResult
	if err := r.db.SelectContext(ctx, &results, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get quiz results: %w", err)
	}
	if err := r.attachQuestionResults(ctx, results); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *QuizResultRepository) attachQuestionResults(ctx context.Context, results []models.QuizResult) error {
	if len(results) == 0 {
		return nil
	}
	ids := make([]string, len(results))
	byID := make(map[string]*models.QuizResult, len(results))
	for i := range results {
		ids[i] = results[i].ID
		byID[results[i].ID] = &results[i]
	}

	query, args, err := sqlx.In(`
		SELECT quiz_result_id, position, question_id, correct, user_answer_index, correct_answer_index
		FROM question_results
		WHERE quiz_result_id IN (?)
		ORDER BY quiz_result_id, position
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to build question results query: %w", err)
	}

	var rows []questionResultRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to get question results: %w", err)
	}
	for _, row := range rows {
		result := byID[row.QuizResultID]
		result.QuestionResults = append(result.QuestionResults, row.QuestionResult)
	}
	return nil
}

// Delete removes a quiz result and its question results
func (r *QuizResultRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM question_results WHERE quiz_result_id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete question results: %w", err)
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM quiz_results WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete quiz result: %w", err)
	}
	return nil
}
