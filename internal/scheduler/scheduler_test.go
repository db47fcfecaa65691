package scheduler

import (
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTicker(t *testing.T) *Ticker {
	t.Helper()
	ticker := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(ticker.Stop)
	return ticker
}

func TestTicker_EveryAndStop(t *testing.T) {
	ticker := newTicker(t)

	var ticks atomic.Int32
	stop := ticker.Every(50*time.Millisecond, func() { ticks.Add(1) })
	assert.Equal(t, 1, ticker.Jobs())

	assert.Eventually(t, func() bool { return ticks.Load() >= 3 }, 2*time.Second, 10*time.Millisecond)

	stop()
	stop() // idempotent
	assert.Equal(t, 0, ticker.Jobs())

	time.Sleep(100 * time.Millisecond)
	settled := ticks.Load()
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, settled, ticks.Load())
}

func TestTicker_NoOverlap(t *testing.T) {
	ticker := newTicker(t)

	var running, maxRunning, runs atomic.Int32
	stop := ticker.Every(20*time.Millisecond, func() {
		n := running.Add(1)
		for {
			m := maxRunning.Load()
			if n <= m || maxRunning.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(100 * time.Millisecond)
		running.Add(-1)
		runs.Add(1)
	})
	defer stop()

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), maxRunning.Load())
}

func TestTicker_StopFromInsideJob(t *testing.T) {
	ticker := newTicker(t)

	var ticks atomic.Int32
	var stop func()
	done := make(chan struct{})
	stop = ticker.Every(30*time.Millisecond, func() {
		if ticks.Add(1) == 2 {
			stop()
			close(done)
		}
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never stopped itself")
	}
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(2), ticks.Load())
}

func TestTicker_Now(t *testing.T) {
	ticker := newTicker(t)
	assert.WithinDuration(t, time.Now(), ticker.Now(), time.Second)
}
