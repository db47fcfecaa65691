// Package generator produces the question set for a test, preferring the
// remote generation service and falling back to the static bank.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/adaptedmind/internal/ai"
	"github.com/example/adaptedmind/internal/bank"
	"github.com/example/adaptedmind/internal/difficulty"
	"github.com/example/adaptedmind/pkg/models"
)

const (
	DefaultCount   = 10
	DefaultTimeout = 20 * time.Second
)

// Source tells where a generated question set came from
type Source string

const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// QuestionService is the remote model that writes questions as raw text.
type QuestionService interface {
	GenerateQuestions(ctx context.Context, r ai.GenerationRequest) (string, error)
}

// Options describes the test being generated
type Options struct {
	Count            int
	Difficulty       models.Difficulty
	TimeLimitMinutes int
}

// Result is a ready-to-run question set
type Result struct {
	Questions  []models.Question
	Difficulty models.Difficulty
	Source     Source
}

// Config tunes a Generator. Zero values select the defaults.
type Config struct {
	Timeout time.Duration
	Logger  *slog.Logger
	Rand    *rand.Rand
}

// Generator builds question sets. It is safe for concurrent use.
type Generator struct {
	service QuestionService
	bank    *bank.Bank
	timeout time.Duration
	logger  *slog.Logger

	mu  sync.Mutex // guards rnd
	rnd *rand.Rand
}

// New creates a generator. A nil service means every request is served from
// the bank.
func New(service QuestionService, b *bank.Bank, cfg Config) *Generator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{
		service: service,
		bank:    b,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
		rnd:     cfg.Rand,
	}
}

// Generate returns min(Count, available) valid questions with shuffled
// options. Any remote failure falls back to the bank exactly once.
func (g *Generator) Generate(ctx context.Context, subject string, opts Options) Result {
	count := opts.Count
	if count <= 0 {
		count = DefaultCount
	}
	tier := difficulty.Resolve(opts.Difficulty, nil)

	questions, err := g.remote(ctx, subject, count, tier)
	source := SourceRemote
	if err != nil {
		g.logger.Warn("question generation failed, using fallback bank",
			"subject", subject, "count", count, "error", err)
		questions = g.fallback(subject, count)
		source = SourceFallback
	}

	g.mu.Lock()
	questions = ShuffleOptions(questions, g.rnd)
	g.mu.Unlock()

	for i := range questions {
		if questions[i].ID == "" {
			questions[i].ID = uuid.NewString()
		}
		if questions[i].Difficulty == "" {
			questions[i].Difficulty = tier
		}
	}

	return Result{Questions: questions, Difficulty: tier, Source: source}
}

func (g *Generator) remote(ctx context.Context, subject string, count int, tier models.Difficulty) ([]models.Question, error) {
	if g.service == nil {
		return nil, fmt.Errorf("no generation service configured")
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.service.GenerateQuestions(ctx, ai.GenerationRequest{
		Subject:    subject,
		Count:      count,
		Difficulty: tier,
	})
	if err != nil {
		return nil, err
	}
	return Parse(text, count)
}

func (g *Generator) fallback(subject string, count int) []models.Question {
	questions, found := g.bank.Lookup(subject)
	if !found {
		g.logger.Info("subject not in bank, using default subject",
			"subject", subject, "default", g.bank.DefaultSubject())
	}

	g.mu.Lock()
	g.rnd.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	g.mu.Unlock()

	if len(questions) > count {
		questions = questions[:count]
	}
	return questions
}

// Parse decodes model output into exactly count questions. The text must be a
// JSON array, optionally wrapped in a ``` or ```json fence. Extra items are
// dropped; fewer items or any invalid item is an error.
func Parse(text string, count int) ([]models.Question, error) {
	var questions []models.Question
	if err := json.Unmarshal([]byte(stripFence(text)), &questions); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}
	if len(questions) < count {
		return nil, fmt.Errorf("expected %d questions, got %d", count, len(questions))
	}
	questions = questions[:count]

	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return questions, nil
}

func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// ShuffleOptions returns copies of questions with their options shuffled.
// Correct keeps pointing at the originally correct position, so duplicate
// option texts are handled.
func ShuffleOptions(questions []models.Question, rnd *rand.Rand) []models.Question {
	out := make([]models.Question, len(questions))
	for n, q := range questions {
		q = q.Clone()
		correctIndex := q.Correct
		rnd.Shuffle(len(q.Options), func(i, j int) {
			if i == correctIndex {
				correctIndex = j
			} else if j == correctIndex {
				correctIndex = i
			}
			q.Options[i], q.Options[j] = q.Options[j], q.Options[i]
		})
		q.Correct = correctIndex
		out[n] = q
	}
	return out
}
