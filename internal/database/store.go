package database

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/example/adaptedmind/pkg/models"
)

// Store is the SQL-backed progress store used by test sessions
type Store struct {
	db        *sqlx.DB
	Results   *QuizResultRepository
	Progress  *SubjectProgressRepository
	Snapshots *SnapshotRepository
}

// NewStore wraps an open connection
func NewStore(db *sqlx.DB) *Store {
	return &Store{
		db:        db,
		Results:   NewQuizResultRepository(db),
		Progress:  NewSubjectProgressRepository(db),
		Snapshots: NewSnapshotRepository(db, DefaultSnapshotKey),
	}
}

// Open connects to the database and wraps it in a Store
func Open(driver, dsn string) (*Store, error) {
	db, err := Connect(driver, dsn)
	if err != nil {
		return nil, err
	}
	return NewStore(db), nil
}

// QueryQuizResults returns a user's quiz results, newest first
func (s *Store) QueryQuizResults(ctx context.Context, userID string, filter models.QueryFilter) ([]models.QuizResult, error) {
	return s.Results.GetByUser(ctx, userID, filter)
}

// WriteQuizResult records a finished attempt
func (s *Store) WriteQuizResult(ctx context.Context, result *models.QuizResult) error {
	return s.Results.Create(ctx, result)
}

// UpsertSubjectProgress stores the new aggregate for a user and subject
func (s *Store) UpsertSubjectProgress(ctx context.Context, userID, subjectID string, update models.ProgressUpdate) error {
	return s.Progress.Upsert(ctx, userID, subjectID, update)
}

// ReadSubjectProgress returns nil, nil when the user has no progress yet
func (s *Store) ReadSubjectProgress(ctx context.Context, userID, subjectID string) (*models.SubjectProgress, error) {
	return s.Progress.Get(ctx, userID, subjectID)
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
