// Package session runs a timed multiple choice test: answering, navigation,
// autosave for resume, submission and the follow-up retry and practice modes.
package session

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/adaptedmind/pkg/models"
)

const (
	// LowTimeThreshold is the remaining time at which the low-time hook fires.
	LowTimeThreshold = 30

	practiceSecondsPerQuestion = 90
	practiceMinimumSeconds     = 120

	storeTimeout = 5 * time.Second
)

// State is the lifecycle position of a session
type State string

const (
	StateLoading    State = "loading"
	StateInProgress State = "in_progress"
	StateSubmitting State = "submitting"
	StateCompleted  State = "completed"
	StateAbandoned  State = "abandoned"
)

// PracticeOutcome reports what PracticeIncorrect did
type PracticeOutcome int

const (
	// PracticeUnavailable means the session was not completed.
	PracticeUnavailable PracticeOutcome = iota
	// PracticePerfectScore means nothing was missed, so no session was started.
	PracticePerfectScore
	PracticeStarted
)

// Hooks are optional callbacks. They run outside the session lock and may
// call back into the session.
type Hooks struct {
	LowTime   func(s *Session)
	Completed func(s *Session, result *Result)
}

// Result is what a submitted session produces
type Result struct {
	Quiz    models.QuizResult
	Insight Insight
}

// env holds the collaborators shared by a session and the sessions derived
// from it.
type env struct {
	clock     Clock
	progress  ProgressStore
	snapshots SnapshotStore
	logger    *slog.Logger
	hooks     Hooks
	wg        sync.WaitGroup // background persistence

	// persistMu serializes the read-modify-write of subject progress.
	persistMu sync.Mutex

	mu     sync.Mutex
	active *Session
}

// activate makes s the one running session of this env. The session that
// held that role is abandoned; its snapshot is left for s to overwrite.
func (e *env) activate(s *Session) {
	e.mu.Lock()
	prev := e.active
	e.active = s
	e.mu.Unlock()

	if prev != nil && prev != s {
		prev.abandon(false)
	}
}

// Session is one test attempt. All methods are safe for concurrent use;
// operations that do not apply to the current state are no-ops.
type Session struct {
	env *env

	mu           sync.Mutex
	state        State
	userID       string
	subject      string
	difficulty   models.Difficulty
	questions    []models.Question
	selected     map[int]int
	current      int
	visited      map[int]bool
	remaining    int
	total        int
	startedAt    time.Time
	lowTimeFired bool
	expanded     map[int]bool
	result       *Result
	stopTimer    func()
}

func newSession(e *env, userID, subject string, tier models.Difficulty, questions []models.Question, totalSeconds int) *Session {
	return &Session{
		env:        e,
		state:      StateLoading,
		userID:     userID,
		subject:    subject,
		difficulty: tier,
		questions:  questions,
		total:      totalSeconds,
	}
}

func restoreSession(e *env, snap *models.SessionSnapshot) *Session {
	s := newSession(e, snap.UserID, snap.Subject, snap.Difficulty, snap.Questions, snap.TotalTimeSeconds)
	s.selected = make(map[int]int, len(snap.SelectedAnswers))
	for q, opt := range snap.SelectedAnswers {
		s.selected[q] = opt
	}
	s.visited = make(map[int]bool, len(snap.VisitedQuestions))
	for _, i := range snap.VisitedQuestions {
		s.visited[i] = true
	}
	s.expanded = make(map[int]bool)
	s.current = snap.CurrentQuestionIndex
	s.remaining = snap.TimeRemainingSeconds
	s.startedAt = snap.StartedAt
	return s
}

// reset clears all attempt state. Callers hold mu.
func (s *Session) reset() {
	s.selected = make(map[int]int)
	s.visited = map[int]bool{0: true}
	s.expanded = make(map[int]bool)
	s.current = 0
	s.remaining = s.total
	s.startedAt = s.env.clock.Now()
	s.lowTimeFired = false
	s.result = nil
}

// run moves the session into InProgress and starts the timer. Callers hold mu.
func (s *Session) run() {
	s.state = StateInProgress
	s.stopTimer = s.env.clock.Every(time.Second, s.Tick)
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subject returns the display name of the tested subject.
func (s *Session) Subject() string {
	return s.subject
}

// Difficulty returns the concrete tier the questions were generated at.
func (s *Session) Difficulty() models.Difficulty {
	return s.difficulty
}

// Questions returns a copy of the question set.
func (s *Session) Questions() []models.Question {
	out := make([]models.Question, len(s.questions))
	for i, q := range s.questions {
		out[i] = q.Clone()
	}
	return out
}

// Current returns the index of the question being shown.
func (s *Session) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// TimeRemaining returns the seconds left on the clock.
func (s *Session) TimeRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// Answer returns the option chosen for question i, if any.
func (s *Session) Answer(i int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	opt, ok := s.selected[i]
	return opt, ok
}

// Result returns the submitted result, or nil before completion.
func (s *Session) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Tick advances the timer by one second. It fires the low-time hook once at
// LowTimeThreshold and submits when time runs out.
func (s *Session) Tick() {
	s.mu.Lock()
	if s.state != StateInProgress {
		s.mu.Unlock()
		return
	}

	s.remaining--
	lowTime := s.remaining == LowTimeThreshold && !s.lowTimeFired
	if lowTime {
		s.lowTimeFired = true
	}

	var (
		result *Result
		stop   func()
	)
	if s.remaining <= 0 {
		s.remaining = 0
		result, stop = s.submitLocked()
	}
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
	if lowTime && s.env.hooks.LowTime != nil {
		s.env.hooks.LowTime(s)
	}
	if result != nil && s.env.hooks.Completed != nil {
		s.env.hooks.Completed(s, result)
	}
}

// SelectAnswer records option opt for question q, replacing any earlier
// choice.
func (s *Session) SelectAnswer(q, opt int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInProgress || q < 0 || q >= len(s.questions) {
		return
	}
	if opt < 0 || opt >= len(s.questions[q].Options) {
		return
	}
	s.selected[q] = opt
	s.autosave()
}

// GoTo jumps to question i and marks it visited.
func (s *Session) GoTo(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goTo(i)
}

// Next moves to the following question.
func (s *Session) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goTo(s.current + 1)
}

// Previous moves to the preceding question.
func (s *Session) Previous() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goTo(s.current - 1)
}

func (s *Session) goTo(i int) {
	if s.state != StateInProgress || i < 0 || i >= len(s.questions) {
		return
	}
	s.current = i
	s.visited[i] = true
	s.autosave()
}

// Snapshot returns the resumable view of the session.
func (s *Session) Snapshot() models.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() models.SessionSnapshot {
	selected := make(map[int]int, len(s.selected))
	for q, opt := range s.selected {
		selected[q] = opt
	}
	visited := make([]int, 0, len(s.visited))
	for i := range s.visited {
		visited = append(visited, i)
	}
	sort.Ints(visited)

	return models.SessionSnapshot{
		UserID:               s.userID,
		Subject:              s.subject,
		Difficulty:           s.difficulty,
		Questions:            s.Questions(),
		SelectedAnswers:      selected,
		CurrentQuestionIndex: s.current,
		VisitedQuestions:     visited,
		TimeRemainingSeconds: s.remaining,
		TotalTimeSeconds:     s.total,
		StartedAt:            s.startedAt,
		SavedAt:              s.env.clock.Now(),
	}
}

// autosave overwrites the stored snapshot. It runs under mu so a save can
// never land after the clear done by Submit or Abandon.
func (s *Session) autosave() {
	if s.env.snapshots == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := s.env.snapshots.Save(ctx, s.snapshot()); err != nil {
		s.env.logger.Warn("failed to autosave test session", "subject", s.subject, "error", err)
	}
}

func (s *Session) clearSnapshot() {
	if s.env.snapshots == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := s.env.snapshots.Clear(ctx); err != nil {
		s.env.logger.Warn("failed to clear test session snapshot", "subject", s.subject, "error", err)
	}
}

// Submit scores the session and moves it to Completed. Persisting the result
// happens in the background; failures there are only logged. Returns nil
// unless the session was in progress.
func (s *Session) Submit() *Result {
	s.mu.Lock()
	if s.state != StateInProgress {
		s.mu.Unlock()
		return nil
	}
	result, stop := s.submitLocked()
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
	if s.env.hooks.Completed != nil {
		s.env.hooks.Completed(s, result)
	}
	return result
}

// submitLocked does the work of Submit and returns the timer stop function
// for the caller to run once mu is released.
func (s *Session) submitLocked() (*Result, func()) {
	s.state = StateSubmitting
	stop := s.stopTimer
	s.stopTimer = nil
	s.clearSnapshot()

	questionResults := make([]models.QuestionResult, len(s.questions))
	correct := 0
	for i, q := range s.questions {
		answer, ok := s.selected[i]
		if !ok {
			answer = models.SkippedAnswer
		}
		qr := models.QuestionResult{
			QuestionID:         q.ID,
			Correct:            ok && answer == q.Correct,
			UserAnswerIndex:    answer,
			CorrectAnswerIndex: q.Correct,
		}
		if qr.Correct {
			correct++
		}
		questionResults[i] = qr
	}

	score := models.ScorePercent(correct, len(s.questions))
	timeSpent := s.total - s.remaining

	s.result = &Result{
		Quiz: models.QuizResult{
			ID:               uuid.NewString(),
			UserID:           s.userID,
			Subject:          s.subject,
			SubjectID:        models.SubjectID(s.subject),
			Score:            score,
			CorrectAnswers:   correct,
			TotalQuestions:   len(s.questions),
			Difficulty:       s.difficulty,
			TimeSpentSeconds: timeSpent,
			QuestionResults:  questionResults,
			CreatedAt:        s.env.clock.Now(),
		},
		Insight: GenerateInsight(score, s.questions, s.selected, timeSpent),
	}
	s.state = StateCompleted

	quiz := s.result.Quiz
	s.env.wg.Add(1)
	go func() {
		defer s.env.wg.Done()
		s.env.persist(&quiz)
	}()

	return s.result, stop
}

// persist writes a finished attempt and folds it into the subject progress.
func (e *env) persist(quiz *models.QuizResult) {
	if e.progress == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	logger := e.logger.With("user_id", quiz.UserID, "subject_id", quiz.SubjectID, "quiz_id", quiz.ID)

	if err := e.progress.WriteQuizResult(ctx, quiz); err != nil {
		logger.Error("failed to save quiz result", "error", err)
	}

	e.persistMu.Lock()
	defer e.persistMu.Unlock()

	current, err := e.progress.ReadSubjectProgress(ctx, quiz.UserID, quiz.SubjectID)
	if err != nil {
		logger.Error("failed to read subject progress", "error", err)
		return
	}
	update := current.Apply(quiz.Score, quiz.CreatedAt)
	if err := e.progress.UpsertSubjectProgress(ctx, quiz.UserID, quiz.SubjectID, update); err != nil {
		logger.Error("failed to update subject progress", "error", err)
	}
}

// Wait blocks until background result writes have finished.
func (s *Session) Wait() {
	s.env.wg.Wait()
}

// Abandon stops the session without recording a result.
func (s *Session) Abandon() {
	s.abandon(true)
}

func (s *Session) abandon(discard bool) {
	s.mu.Lock()
	if s.state != StateInProgress && s.state != StateLoading {
		s.mu.Unlock()
		return
	}
	s.state = StateAbandoned
	stop := s.stopTimer
	s.stopTimer = nil
	if discard {
		s.clearSnapshot()
	}
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// Retry restarts a completed session in place with the same questions and
// time budget. It reports whether the session was restarted.
func (s *Session) Retry() bool {
	if s.State() != StateCompleted {
		return false
	}
	s.env.activate(s)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCompleted {
		return false
	}
	s.reset()
	s.run()
	s.autosave()
	return true
}

// PracticeIncorrect starts a new session over the questions answered wrong or
// skipped in this completed session.
func (s *Session) PracticeIncorrect() (*Session, PracticeOutcome) {
	s.mu.Lock()
	if s.state != StateCompleted {
		s.mu.Unlock()
		return nil, PracticeUnavailable
	}
	var missed []models.Question
	for i, q := range s.questions {
		if answer, ok := s.selected[i]; !ok || answer != q.Correct {
			missed = append(missed, q.Clone())
		}
	}
	s.mu.Unlock()

	if len(missed) == 0 {
		return nil, PracticePerfectScore
	}

	total := len(missed) * practiceSecondsPerQuestion
	if total < practiceMinimumSeconds {
		total = practiceMinimumSeconds
	}

	practice := newSession(s.env, s.userID, s.subject, s.difficulty, missed, total)
	s.env.activate(practice)
	practice.mu.Lock()
	defer practice.mu.Unlock()
	practice.reset()
	practice.run()
	practice.autosave()
	return practice, PracticeStarted
}

// ToggleReview flips whether question i is expanded in the results review.
func (s *Session) ToggleReview(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCompleted || i < 0 || i >= len(s.questions) {
		return
	}
	s.expanded[i] = !s.expanded[i]
}

// ReviewExpanded reports whether question i is expanded in the results review.
func (s *Session) ReviewExpanded(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expanded[i]
}
