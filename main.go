package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/adaptedmind/internal/ai"
	"github.com/example/adaptedmind/internal/bank"
	"github.com/example/adaptedmind/internal/config"
	"github.com/example/adaptedmind/internal/database"
	"github.com/example/adaptedmind/internal/generator"
	"github.com/example/adaptedmind/internal/scheduler"
	"github.com/example/adaptedmind/internal/session"
	"github.com/example/adaptedmind/internal/snapshot"
	"github.com/example/adaptedmind/pkg/models"
)

func main() {
	var (
		userID     = flag.String("user", "local", "user id the results are recorded under")
		subject    = flag.String("subject", "", "subject to be tested on (defaults to DEFAULT_SUBJECT)")
		count      = flag.Int("count", generator.DefaultCount, "number of questions")
		level      = flag.String("difficulty", string(models.DifficultyAdaptive), "easy, medium, hard or adaptive")
		minutes    = flag.Int("minutes", session.DefaultTimeLimitMinutes, "time limit in minutes")
		stats      = flag.Bool("stats", false, "print progress statistics and exit")
		importFile = flag.String("import", "", "validate an Excel/CSV question file and exit")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if *importFile != "" {
		if err := reportImport(os.Stdout, *importFile); err != nil {
			logger.Error("import failed", "file", *importFile, "error", err)
			os.Exit(1)
		}
		return
	}

	tier, ok := models.ParseDifficulty(*level)
	if !ok {
		logger.Warn("unknown difficulty, using adaptive", "difficulty", *level)
		tier = models.DifficultyAdaptive
	}
	if *subject == "" {
		*subject = cfg.DefaultSubject
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger, runOptions{
		stats: *stats,
		request: session.StartRequest{
			UserID:           *userID,
			Subject:          *subject,
			Count:            *count,
			Difficulty:       tier,
			TimeLimitMinutes: *minutes,
		},
	}); err != nil {
		logger.Error("adaptedmind stopped", "error", err)
		os.Exit(1)
	}
}

type runOptions struct {
	stats   bool
	request session.StartRequest
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts runOptions) error {
	store, err := database.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	ticker := scheduler.New(logger)
	defer ticker.Stop()

	var snapshots session.SnapshotStore = store.Snapshots
	if cfg.SnapshotBackend == config.SnapshotRedis {
		redisStore, err := snapshot.NewRedisStore(ctx, snapshot.Config{
			Address:  cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      session.ResumeWindow,
		})
		if err != nil {
			return err
		}
		defer redisStore.Close()
		snapshots = redisStore
	}

	questionBank, err := loadBank(cfg, logger)
	if err != nil {
		return err
	}

	var service generator.QuestionService
	if client, err := ai.New(ai.Config{APIKey: cfg.OpenAIAPIKey, APIURL: cfg.OpenAIAPIURL, Model: cfg.OpenAIModel}); err != nil {
		logger.Info("remote generation disabled, using the built-in question bank", "reason", err)
	} else {
		service = client
	}

	gen := generator.New(service, questionBank, generator.Config{
		Timeout: cfg.GenerationTimeout,
		Logger:  logger,
	})

	console := newConsole(os.Stdin, os.Stdout)
	manager := session.NewManager(store, snapshots, gen, ticker, session.Options{
		Logger: logger,
		Hooks:  console.hooks(),
	})
	defer manager.Close()

	if opts.stats {
		printSummary(os.Stdout, manager.Summary(ctx, opts.request.UserID))
		return nil
	}

	return console.run(ctx, manager, opts.request)
}

func loadBank(cfg *config.Config, logger *slog.Logger) (*bank.Bank, error) {
	b, err := bank.Default()
	if err != nil {
		return nil, err
	}
	if cfg.QuestionBankFile == "" {
		return b, nil
	}

	importConfig := bank.DefaultImportConfig()
	importConfig.FilePath = cfg.QuestionBankFile
	result, err := bank.Import(importConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", cfg.QuestionBankFile, err)
	}
	for _, msg := range result.Errors {
		logger.Warn("skipped question bank row", "file", cfg.QuestionBankFile, "detail", msg)
	}
	logger.Info("imported question bank",
		"file", cfg.QuestionBankFile,
		"imported", result.Imported,
		"skipped", result.Skipped,
	)
	return b.Merge(result.Questions)
}

func reportImport(w io.Writer, path string) error {
	importConfig := bank.DefaultImportConfig()
	importConfig.FilePath = path
	result, err := bank.Import(importConfig)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Processed %d rows: %d imported, %d skipped\n", result.TotalProcessed, result.Imported, result.Skipped)
	for subject, questions := range result.Questions {
		fmt.Fprintf(w, "  %s: %d questions\n", subject, len(questions))
	}
	for _, msg := range result.Errors {
		fmt.Fprintf(w, "  ! %s\n", msg)
	}
	return nil
}
