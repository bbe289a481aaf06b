package progress

import (
	"log/slog"
	"maps"
	"sync"
	"time"
)

// Tracker owns the progress and focus timer state and notifies a listener
// whenever either changes. It is safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	progress Progress
	timer    Timer
	now      func() time.Time

	// OnChange receives the full flat field set after every change.
	OnChange func(p Progress, fields map[string]string)
}

// NewTracker creates a tracker from stored flat fields.
func NewTracker(fields map[string]string) *Tracker {
	return &Tracker{
		progress: FromFields(fields),
		timer:    TimerFromFields(fields),
		now:      time.Now,
	}
}

// SetClock replaces the time source.
func (t *Tracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	t.now = now
	t.mu.Unlock()
}

// Progress returns the current level state.
func (t *Tracker) Progress() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress
}

// Timer returns a copy of the focus timer.
func (t *Tracker) Timer() Timer {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer
}

// Fields returns progress and timer as one flat field set.
func (t *Tracker) Fields() map[string]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fieldsLocked()
}

// Set replaces level and xp with externally supplied fields (sanitised).
// Total experience never goes down: a lower or missing total keeps the
// current one.
func (t *Tracker) Set(fields map[string]string) Progress {
	t.mu.Lock()
	p := FromFields(fields)
	p.TotalXP = max(p.TotalXP, t.progress.TotalXP)
	t.progress = p
	t.mu.Unlock()
	t.notify()
	return t.Progress()
}

// Award adds experience directly.
func (t *Tracker) Award(amount int) Progress {
	t.mu.Lock()
	gained := t.progress.Gain(amount)
	t.mu.Unlock()
	if gained > 0 {
		slog.Info("level up", "level", t.Progress().Level)
	}
	t.notify()
	return t.Progress()
}

// StartFocus begins a focus session of the given length.
func (t *Tracker) StartFocus(d time.Duration) Timer {
	t.mu.Lock()
	t.timer.Start(t.now(), int(d/time.Second))
	t.mu.Unlock()
	t.notify()
	return t.Timer()
}

// ResumeFocus continues a paused session.
func (t *Tracker) ResumeFocus() Timer {
	t.mu.Lock()
	if !t.timer.Running {
		remaining := 0
		if t.timer.RemainingSeconds != nil {
			remaining = *t.timer.RemainingSeconds
		}
		t.timer.Resume(t.now(), remaining)
	}
	t.mu.Unlock()
	t.notify()
	return t.Timer()
}

// PauseFocus stops the countdown and credits worked time.
func (t *Tracker) PauseFocus() Timer {
	t.mu.Lock()
	if t.timer.Running {
		before := t.timer.TotalWorked
		t.timer.Pause(t.now())
		t.creditLocked(before)
	}
	t.mu.Unlock()
	t.notify()
	return t.Timer()
}

// ResetFocus abandons the running session.
func (t *Tracker) ResetFocus() Timer {
	t.mu.Lock()
	t.timer.Reset()
	t.mu.Unlock()
	t.notify()
	return t.Timer()
}

// Poll completes a session whose end time has passed. Returns true if a
// session was completed.
func (t *Tracker) Poll() bool {
	t.mu.Lock()
	if !t.timer.Due(t.now()) {
		t.mu.Unlock()
		return false
	}
	before := t.timer.TotalWorked
	t.timer.Complete()
	t.creditLocked(before)
	worked := t.timer.TotalWorked
	t.mu.Unlock()

	slog.Info("focus session complete", "total_worked_seconds", worked)
	t.notify()
	return true
}

func (t *Tracker) creditLocked(before int) {
	t.progress.Gain(XPForWork(before, t.timer.TotalWorked))
}

func (t *Tracker) fieldsLocked() map[string]string {
	fields := t.progress.Fields()
	maps.Copy(fields, t.timer.Fields())
	return fields
}

func (t *Tracker) notify() {
	if t.OnChange == nil {
		return
	}
	t.mu.Lock()
	p := t.progress
	fields := t.fieldsLocked()
	t.mu.Unlock()
	t.OnChange(p, fields)
}
