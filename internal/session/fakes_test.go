package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/example/adaptedmind/internal/generator"
	"github.com/example/adaptedmind/pkg/models"
)

var errStore = errors.New("store unavailable")

var start = time.Date(2024, time.March, 20, 15, 0, 0, 0, time.UTC)

// fakeClock fires registered tick functions only when advanced.
type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	next int
	fns  map[int]func()
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: start, fns: make(map[int]func())}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Every(_ time.Duration, fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.next
	c.next++
	c.fns[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.fns, id)
	}
}

// Advance moves time forward n seconds, firing every active ticker each second.
func (c *fakeClock) Advance(n int) {
	for i := 0; i < n; i++ {
		c.mu.Lock()
		c.now = c.now.Add(time.Second)
		fns := make([]func(), 0, len(c.fns))
		for _, fn := range c.fns {
			fns = append(fns, fn)
		}
		c.mu.Unlock()

		for _, fn := range fns {
			fn()
		}
	}
}

// Skip moves time forward without firing tickers.
func (c *fakeClock) Skip(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.fns)
}

// fakeSnapshots stores the snapshot as JSON, like the real adapters.
type fakeSnapshots struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	clears  int
	saveErr error
	loadErr error
}

func (f *fakeSnapshots) Save(_ context.Context, snapshot models.SessionSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	f.data = data
	f.saves++
	return nil
}

func (f *fakeSnapshots) Load(_ context.Context) (*models.SessionSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.data == nil {
		return nil, nil
	}
	var snapshot models.SessionSnapshot
	if err := json.Unmarshal(f.data, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (f *fakeSnapshots) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = nil
	f.clears++
	return nil
}

func (f *fakeSnapshots) stored() *models.SessionSnapshot {
	snapshot, _ := f.Load(context.Background())
	return snapshot
}

type fakeProgress struct {
	mu       sync.Mutex
	results  []models.QuizResult
	progress map[string]models.SubjectProgress
	writeErr error
	queryErr error

	// readDelay widens the gap between reading and upserting progress.
	readDelay time.Duration
}

func newFakeProgress() *fakeProgress {
	return &fakeProgress{progress: make(map[string]models.SubjectProgress)}
}

func (f *fakeProgress) QueryQuizResults(_ context.Context, userID string, filter models.QueryFilter) ([]models.QuizResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	var out []models.QuizResult
	for _, r := range f.results {
		if r.UserID == userID && (filter.SubjectID == "" || r.SubjectID == filter.SubjectID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeProgress) WriteQuizResult(_ context.Context, result *models.QuizResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.results = append(f.results, *result)
	return nil
}

func (f *fakeProgress) UpsertSubjectProgress(_ context.Context, userID, subjectID string, update models.ProgressUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.progress[userID+"/"+subjectID] = models.SubjectProgress{
		UserID:            userID,
		SubjectID:         subjectID,
		LastQuizScore:     update.LastQuizScore,
		TotalQuizzesTaken: update.TotalQuizzesTaken,
		LastActivity:      update.LastActivity,
		AverageScore:      update.AverageScore,
	}
	return nil
}

func (f *fakeProgress) ReadSubjectProgress(_ context.Context, userID, subjectID string) (*models.SubjectProgress, error) {
	f.mu.Lock()
	p, ok := f.progress[userID+"/"+subjectID]
	f.mu.Unlock()

	time.Sleep(f.readDelay)
	if !ok {
		return nil, nil
	}
	return &p, nil
}

type fakeGenerator struct {
	mu    sync.Mutex
	calls []generator.Options
}

func (f *fakeGenerator) Generate(_ context.Context, _ string, opts generator.Options) generator.Result {
	f.mu.Lock()
	f.calls = append(f.calls, opts)
	f.mu.Unlock()

	questions := testQuestions(opts.Count)
	return generator.Result{Questions: questions, Difficulty: opts.Difficulty, Source: generator.SourceFallback}
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

var topics = []string{"Arrays", "Trees", "Graphs"}

func testQuestions(n int) []models.Question {
	questions := make([]models.Question, n)
	for i := range questions {
		questions[i] = models.Question{
			ID:          fmt.Sprintf("q-%02d", i),
			Question:    fmt.Sprintf("Question %d", i),
			Options:     []string{"a", "b", "c", "d"},
			Correct:     i % models.OptionCount,
			Explanation: "explained",
			Difficulty:  models.DifficultyMedium,
			Topic:       topics[i%len(topics)],
		}
	}
	return questions
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
