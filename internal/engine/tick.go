package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is the auto-step period.
const DefaultInterval = 350 * time.Millisecond

// Engine drives automatic stepping. At most one ticker goroutine exists at a
// time: Start and Stop are idempotent and guarded by the running flag.
type Engine struct {
	Interval time.Duration

	// OnStep is called once per tick from the ticker goroutine.
	OnStep func()

	mu      sync.Mutex
	running bool
	ticks   uint64
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewEngine creates a stopped engine.
func NewEngine(interval time.Duration, onStep func()) *Engine {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Engine{Interval: interval, OnStep: onStep}
}

// Running reports whether auto-stepping is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Ticks returns how many automatic steps have run.
func (e *Engine) Ticks() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ticks
}

// Start begins auto-stepping. Returns false if it was already running.
func (e *Engine) Start() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.running = true
	e.cancel = cancel
	e.done = make(chan struct{})
	go e.loop(ctx, e.done)
	slog.Info("auto-step started", "interval", e.Interval)
	return true
}

// Stop halts auto-stepping and waits for any in-flight step to finish.
// Returns false if it was not running.
func (e *Engine) Stop() bool {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return false
	}
	e.running = false
	cancel, done := e.cancel, e.done
	e.cancel, e.done = nil, nil
	e.mu.Unlock()

	cancel()
	<-done
	slog.Info("auto-step stopped", "ticks", e.Ticks())
	return true
}

// Toggle flips auto-stepping and returns the new running state.
func (e *Engine) Toggle() bool {
	if e.Stop() {
		return false
	}
	e.Start()
	return true
}

// Run starts auto-stepping and blocks until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	e.Start()
	<-ctx.Done()
	e.Stop()
}

func (e *Engine) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(e.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if e.OnStep != nil {
				e.OnStep()
			}
			e.mu.Lock()
			e.ticks++
			e.mu.Unlock()
		}
	}
}
