package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/adaptedmind/internal/scoring"
	"github.com/example/adaptedmind/internal/session"
	"github.com/example/adaptedmind/pkg/models"
)

type eventKind int

const (
	eventLowTime eventKind = iota
	eventCompleted
)

type event struct {
	kind    eventKind
	session *session.Session
}

// console drives a test session from line based terminal input.
type console struct {
	out    io.Writer
	lines  chan string
	events chan event
}

func newConsole(in io.Reader, out io.Writer) *console {
	c := &console{
		out:    out,
		lines:  make(chan string),
		events: make(chan event, 8),
	}
	go func() {
		defer close(c.lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			c.lines <- strings.TrimSpace(scanner.Text())
		}
	}()
	return c
}

// hooks run on the ticker goroutine, so they only hand events over.
func (c *console) hooks() session.Hooks {
	send := func(e event) {
		select {
		case c.events <- e:
		default:
		}
	}
	return session.Hooks{
		LowTime:   func(s *session.Session) { send(event{kind: eventLowTime, session: s}) },
		Completed: func(s *session.Session, _ *session.Result) { send(event{kind: eventCompleted, session: s}) },
	}
}

func (c *console) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

// readLine waits for the next input line; ok is false on EOF or cancellation.
func (c *console) readLine(ctx context.Context) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-c.lines:
		return line, ok
	}
}

func (c *console) run(ctx context.Context, manager *session.Manager, req session.StartRequest) error {
	s, err := manager.Start(ctx, req, func(snap *models.SessionSnapshot) bool {
		c.printf("You have an unfinished %s test (%d of %d answered, %s left). Resume? [Y/n] ",
			snap.Subject, len(snap.SelectedAnswers), len(snap.Questions), clock(snap.TimeRemainingSeconds))
		line, _ := c.readLine(ctx)
		return !strings.HasPrefix(strings.ToLower(line), "n")
	})
	if err != nil {
		return err
	}

	for s != nil {
		if !c.take(ctx, s) {
			return nil
		}
		s = c.review(ctx, manager, s)
	}
	return nil
}

// take runs the question loop until the session completes. It returns false
// when the user left; an in-progress snapshot is kept for resuming later.
func (c *console) take(ctx context.Context, s *session.Session) bool {
	c.drainEvents()
	c.printf("\n%s test, %s difficulty, %d questions. Commands: a-d answer, n next, p previous, g N go to, s submit, q quit\n",
		s.Subject(), s.Difficulty(), len(s.Questions()))
	c.showQuestion(s)

	for {
		select {
		case <-ctx.Done():
			return false

		case e := <-c.events:
			if e.session != s {
				continue
			}
			switch e.kind {
			case eventLowTime:
				c.printf("\n!! %d seconds left\n", session.LowTimeThreshold)
			case eventCompleted:
				return true
			}

		case line, ok := <-c.lines:
			if !ok {
				return false
			}
			c.handle(s, line)
			switch s.State() {
			case session.StateAbandoned:
				return false
			case session.StateCompleted:
				return true
			case session.StateInProgress:
				c.showQuestion(s)
			}
		}
	}
}

// drainEvents drops events left over from an earlier run of a session.
func (c *console) drainEvents() {
	for {
		select {
		case <-c.events:
		default:
			return
		}
	}
}

func (c *console) handle(s *session.Session, line string) {
	cmd, arg, _ := strings.Cut(strings.ToLower(line), " ")
	switch {
	case len(cmd) == 1 && cmd[0] >= 'a' && cmd[0] < 'a'+models.OptionCount:
		s.SelectAnswer(s.Current(), int(cmd[0]-'a'))
		s.Next()
	case cmd == "n":
		s.Next()
	case cmd == "p":
		s.Previous()
	case cmd == "g":
		if n, err := strconv.Atoi(arg); err == nil {
			s.GoTo(n - 1)
		}
	case cmd == "s":
		s.Submit()
	case cmd == "q":
		s.Abandon()
		c.printf("Test abandoned.\n")
	}
}

func (c *console) showQuestion(s *session.Session) {
	i := s.Current()
	q := s.Questions()[i]
	c.printf("\n[%d/%d] %s left\n%s\n", i+1, len(s.Questions()), clock(s.TimeRemaining()), q.Question)
	chosen, answered := s.Answer(i)
	for j, opt := range q.Options {
		mark := " "
		if answered && chosen == j {
			mark = "*"
		}
		c.printf(" %s %c) %s\n", mark, 'a'+j, opt)
	}
	c.printf("> ")
}

// review shows the result and returns the next session to take, or nil.
func (c *console) review(ctx context.Context, manager *session.Manager, s *session.Session) *session.Session {
	result := s.Result()
	if result == nil {
		return nil
	}
	manager.Wait()
	c.showResult(s, result)

	rec := manager.Recommend(ctx, result.Quiz.UserID, result.Quiz.Subject)
	c.printf("Next time try %s: %s\n", rec.Tier, rec.Rationale)

	for {
		c.printf("\nCommands: v N review question, r retry, x practice incorrect, q quit\n> ")
		line, ok := c.readLine(ctx)
		if !ok {
			return nil
		}
		cmd, arg, _ := strings.Cut(strings.ToLower(line), " ")
		switch cmd {
		case "v":
			if n, err := strconv.Atoi(arg); err == nil {
				s.ToggleReview(n - 1)
				c.showReview(s, result)
			}
		case "r":
			if s.Retry() {
				return s
			}
		case "x":
			practice, outcome := s.PracticeIncorrect()
			switch outcome {
			case session.PracticePerfectScore:
				c.printf("Perfect score, nothing to practice!\n")
			case session.PracticeStarted:
				return practice
			}
		case "q":
			return nil
		}
	}
}

func (c *console) showResult(s *session.Session, result *session.Result) {
	quiz := result.Quiz
	c.printf("\n%s\nScore: %d%% (%d/%d) in %s\n%s\n%s\n",
		result.Insight.Title, quiz.Score, quiz.CorrectAnswers, quiz.TotalQuestions,
		clock(quiz.TimeSpentSeconds), result.Insight.Message, result.Insight.Recommendation)
	for _, tip := range result.Insight.Tips {
		c.printf("  - %s\n", tip)
	}
	c.showReview(s, result)
}

func (c *console) showReview(s *session.Session, result *session.Result) {
	questions := s.Questions()
	for i, qr := range result.Quiz.QuestionResults {
		status := "wrong"
		switch {
		case qr.Correct:
			status = "correct"
		case qr.UserAnswerIndex == models.SkippedAnswer:
			status = "skipped"
		}
		c.printf("%2d. [%s] %s\n", i+1, status, questions[i].Question)
		if s.ReviewExpanded(i) {
			q := questions[i]
			c.printf("      answer: %s\n      %s\n", q.Options[q.Correct], q.Explanation)
		}
	}
}

func printSummary(w io.Writer, summary scoring.Summary) {
	fmt.Fprintf(w, "Tests taken:  %d\n", summary.TotalTests)
	fmt.Fprintf(w, "Average:      %.1f%%\n", summary.AverageScore)
	fmt.Fprintf(w, "Streak:       %d days\n", summary.Streak)
	fmt.Fprintf(w, "Consistency:  %d\n", summary.Consistency)
	fmt.Fprintf(w, "Trend:        %d\n", summary.Trend)
	fmt.Fprintf(w, "Smart score:  %d\n", summary.SmartScore)
	if len(summary.Badges) > 0 {
		fmt.Fprintf(w, "Badges:       %s\n", strings.Join(summary.Badges, ", "))
	}
	for _, sub := range summary.Subjects {
		fmt.Fprintf(w, "  %-28s %5.1f%% over %d tests\n", sub.Subject, sub.AverageScore, sub.Tests)
	}
	if summary.BestSubject != "" {
		fmt.Fprintf(w, "Best subject: %s\n", summary.BestSubject)
	}
}

func clock(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
