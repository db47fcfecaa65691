// Package scheduler provides the wall clock that drives test session timers.
package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Ticker runs periodic jobs on a gocron scheduler. A job never overlaps
// itself: a run that overruns its slot pushes the next run to the following
// slot instead of queuing.
type Ticker struct {
	mu        sync.Mutex // gocron's Every...Do chain is not safe for concurrent use
	scheduler *gocron.Scheduler
	logger    *slog.Logger
}

// New creates a started ticker
func New(logger *slog.Logger) *Ticker {
	if logger == nil {
		logger = slog.Default()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SetMaxConcurrentJobs(1, gocron.RescheduleMode)
	s.StartAsync()

	return &Ticker{
		scheduler: s,
		logger:    logger,
	}
}

// Now returns the current wall clock time
func (t *Ticker) Now() time.Time {
	return time.Now()
}

// Every runs fn once per interval, starting one interval from now, until the
// returned stop function is called. Stop does not wait for a running fn, so
// fn may call it.
func (t *Ticker) Every(interval time.Duration, fn func()) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, err := t.scheduler.Every(interval).SingletonMode().WaitForSchedule().Do(fn)
	if err != nil {
		t.logger.Error("failed to schedule ticker job", "interval", interval, "error", err)
		return func() {}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			t.scheduler.RemoveByReference(job)
		})
	}
}

// Jobs returns how many jobs are scheduled
func (t *Ticker) Jobs() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scheduler.Len()
}

// Stop terminates all scheduled jobs
func (t *Ticker) Stop() {
	t.scheduler.Stop()
}
