package session

import (
	"context"

	"github.com/example/adaptedmind/internal/generator"
	"github.com/example/adaptedmind/pkg/models"
)

// ProgressStore reads quiz history and records finished attempts
type ProgressStore interface {
	QueryQuizResults(ctx context.Context, userID string, filter models.QueryFilter) ([]models.QuizResult, error)
	WriteQuizResult(ctx context.Context, result *models.QuizResult) error
	UpsertSubjectProgress(ctx context.Context, userID, subjectID string, update models.ProgressUpdate) error
	// ReadSubjectProgress returns nil, nil when the user has no progress yet.
	ReadSubjectProgress(ctx context.Context, userID, subjectID string) (*models.SubjectProgress, error)
}

// SnapshotStore keeps the single in-progress test snapshot of this device
type SnapshotStore interface {
	Save(ctx context.Context, snapshot models.SessionSnapshot) error
	// Load returns nil, nil when nothing is saved.
	Load(ctx context.Context) (*models.SessionSnapshot, error)
	Clear(ctx context.Context) error
}

// TestGenerator produces the questions for a fresh test
type TestGenerator interface {
	Generate(ctx context.Context, subject string, opts generator.Options) generator.Result
}
