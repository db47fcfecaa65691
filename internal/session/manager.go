package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/example/adaptedmind/internal/difficulty"
	"github.com/example/adaptedmind/internal/generator"
	"github.com/example/adaptedmind/internal/scoring"
	"github.com/example/adaptedmind/pkg/models"
)

const (
	// ResumeWindow is how long an autosaved session stays resumable.
	ResumeWindow = 2 * time.Hour

	DefaultTimeLimitMinutes = 15

	recommendationWindow = 5
)

// StartRequest describes the test a user asked for
type StartRequest struct {
	UserID           string
	Subject          string
	Count            int
	Difficulty       models.Difficulty
	TimeLimitMinutes int
}

// ResumePolicy decides whether a resumable snapshot is restored (true) or
// discarded in favour of a fresh test (false).
type ResumePolicy func(snapshot *models.SessionSnapshot) bool

// Options configures a Manager
type Options struct {
	Logger *slog.Logger
	Hooks  Hooks
}

// Manager creates sessions and owns their shared collaborators
type Manager struct {
	env       *env
	generator TestGenerator
}

// NewManager wires a manager. progress and snapshots may be nil, in which
// case history is empty and nothing is persisted.
func NewManager(progress ProgressStore, snapshots SnapshotStore, gen TestGenerator, clock Clock, opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Manager{
		env: &env{
			clock:     clock,
			progress:  progress,
			snapshots: snapshots,
			logger:    opts.Logger,
			hooks:     opts.Hooks,
		},
		generator: gen,
	}
}

// Start resumes a matching autosaved session or generates a fresh one. A nil
// policy resumes whenever possible. A session still running from an earlier
// Start is abandoned first; only one session runs per manager.
func (m *Manager) Start(ctx context.Context, req StartRequest, policy ResumePolicy) (*Session, error) {
	m.env.activate(nil)

	if s := m.resume(ctx, req, policy); s != nil {
		return s, nil
	}

	avg := m.historicalAverage(ctx, req.UserID, req.Subject)
	tier := difficulty.Resolve(req.Difficulty, avg)

	minutes := req.TimeLimitMinutes
	if minutes <= 0 {
		minutes = DefaultTimeLimitMinutes
	}

	generated := m.generator.Generate(ctx, req.Subject, generator.Options{
		Count:            req.Count,
		Difficulty:       tier,
		TimeLimitMinutes: minutes,
	})
	if len(generated.Questions) == 0 {
		return nil, fmt.Errorf("no questions available for subject %q", req.Subject)
	}

	m.env.logger.Info("starting test",
		"user_id", req.UserID,
		"subject", req.Subject,
		"difficulty", generated.Difficulty,
		"questions", len(generated.Questions),
		"source", generated.Source,
	)

	s := newSession(m.env, req.UserID, req.Subject, generated.Difficulty, generated.Questions, minutes*60)
	m.env.activate(s)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.run()
	s.autosave()
	return s, nil
}

// resume returns a restored session, or nil when a fresh one is needed.
// Snapshots that cannot be resumed are cleared.
func (m *Manager) resume(ctx context.Context, req StartRequest, policy ResumePolicy) *Session {
	if m.env.snapshots == nil {
		return nil
	}

	snap, err := m.env.snapshots.Load(ctx)
	if err != nil {
		m.env.logger.Warn("failed to load test session snapshot, starting fresh", "error", err)
		m.clear(ctx)
		return nil
	}
	if snap == nil {
		return nil
	}

	if reason := m.unusable(snap, req); reason != "" {
		m.env.logger.Info("discarding test session snapshot", "reason", reason, "subject", snap.Subject)
		m.clear(ctx)
		return nil
	}

	if policy != nil && !policy(snap) {
		m.env.logger.Info("user discarded resumable test session", "subject", snap.Subject)
		m.clear(ctx)
		return nil
	}

	s := restoreSession(m.env, snap)
	m.env.activate(s)
	s.mu.Lock()
	s.run()
	s.mu.Unlock()

	m.env.logger.Info("resumed test session",
		"user_id", snap.UserID,
		"subject", snap.Subject,
		"time_remaining", snap.TimeRemainingSeconds,
	)
	return s
}

func (m *Manager) unusable(snap *models.SessionSnapshot, req StartRequest) string {
	switch {
	case !snap.Valid():
		return "corrupt"
	case models.SubjectID(snap.Subject) != models.SubjectID(req.Subject):
		return "different subject"
	case snap.UserID != "" && req.UserID != "" && snap.UserID != req.UserID:
		return "different user"
	case m.env.clock.Now().Sub(snap.SavedAt) > ResumeWindow:
		return "stale"
	}
	return ""
}

func (m *Manager) clear(ctx context.Context) {
	if err := m.env.snapshots.Clear(ctx); err != nil {
		m.env.logger.Warn("failed to clear test session snapshot", "error", err)
	}
}

// historicalAverage returns the user's mean score in subject, or nil when
// there is no usable history.
func (m *Manager) historicalAverage(ctx context.Context, userID, subject string) *float64 {
	results := m.history(ctx, userID, models.QueryFilter{SubjectID: models.SubjectID(subject)})
	if len(results) == 0 {
		return nil
	}
	avg := scoring.AverageScore(results)
	return &avg
}

// history reads quiz results; read failures degrade to no history.
func (m *Manager) history(ctx context.Context, userID string, filter models.QueryFilter) []models.QuizResult {
	if m.env.progress == nil {
		return nil
	}
	results, err := m.env.progress.QueryQuizResults(ctx, userID, filter)
	if err != nil {
		m.env.logger.Warn("failed to read quiz history", "user_id", userID, "subject_id", filter.SubjectID, "error", err)
		return nil
	}
	return results
}

// Recommend suggests the next difficulty for subject from the user's most
// recent scores there.
func (m *Manager) Recommend(ctx context.Context, userID, subject string) difficulty.Recommendation {
	results := m.history(ctx, userID, models.QueryFilter{
		SubjectID: models.SubjectID(subject),
		Limit:     recommendationWindow,
	})

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.Before(results[j].CreatedAt)
	})
	scores := make([]int, len(results))
	for i, r := range results {
		scores[i] = r.Score
	}
	return difficulty.RecommendNext(scores)
}

// Summary computes the dashboard statistics for a user.
func (m *Manager) Summary(ctx context.Context, userID string) scoring.Summary {
	return scoring.Summarize(m.history(ctx, userID, models.QueryFilter{}), m.env.clock.Now())
}

// Wait blocks until every background result write has finished.
func (m *Manager) Wait() {
	m.env.wg.Wait()
}

// Close abandons the running session, keeping its snapshot for a later
// resume, and waits for background result writes.
func (m *Manager) Close() {
	m.env.activate(nil)
	m.env.wg.Wait()
}
