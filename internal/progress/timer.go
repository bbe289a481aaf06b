package progress

import (
	"strconv"
	"time"
)

// Focus timer field names.
const (
	FieldTimerRunning     = "timerRunning"
	FieldEndTime          = "endTime"
	FieldRemainingSeconds = "remainingSeconds"
	FieldStartTime        = "startTime"
	FieldActiveDuration   = "activeDurationSeconds"
	FieldTotalWorked      = "totalWorkedSeconds"
)

// XPPerMinute is awarded for every whole minute of focused work.
const XPPerMinute = 2

// DefaultFocus is the standard session length.
const DefaultFocus = 25 * time.Minute

// Timer is the focus-session countdown. Zero times and nil pointers mean the
// field is unset.
type Timer struct {
	Running          bool      `json:"timer_running"`
	EndTime          time.Time `json:"end_time"`
	RemainingSeconds *int      `json:"remaining_seconds"`
	StartTime        time.Time `json:"start_time"`
	ActiveDuration   *int      `json:"active_duration_seconds"`
	TotalWorked      int       `json:"total_worked_seconds"`
}

// Start begins a session of the given length.
func (t *Timer) Start(now time.Time, seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	t.Running = true
	t.EndTime = now.Add(time.Duration(seconds) * time.Second)
	t.RemainingSeconds = nil
	t.StartTime = now
	t.ActiveDuration = &seconds
}

// Resume continues a paused session with the remaining seconds.
func (t *Timer) Resume(now time.Time, remaining int) {
	t.Start(now, remaining)
}

// Pause stops the countdown, credits the elapsed time (capped at the active
// duration) and returns the seconds credited.
func (t *Timer) Pause(now time.Time) int {
	start := t.StartTime
	if start.IsZero() {
		start = now
	}
	active := 0
	if t.ActiveDuration != nil {
		active = *t.ActiveDuration
	}
	elapsed := int(now.Sub(start) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > active {
		elapsed = active
	}

	remaining := 0
	if !t.EndTime.IsZero() {
		left := t.EndTime.Sub(now)
		if left > 0 {
			remaining = int((left + time.Second - 1) / time.Second)
		}
	}

	t.Running = false
	t.EndTime = time.Time{}
	t.RemainingSeconds = &remaining
	t.StartTime = time.Time{}
	t.ActiveDuration = nil
	t.TotalWorked += elapsed
	return elapsed
}

// Reset abandons the session without crediting time.
func (t *Timer) Reset() {
	t.Running = false
	t.EndTime = time.Time{}
	t.RemainingSeconds = nil
	t.StartTime = time.Time{}
	t.ActiveDuration = nil
}

// Complete finishes the session, credits the full active duration and
// returns the seconds credited.
func (t *Timer) Complete() int {
	add := 0
	if t.ActiveDuration != nil {
		add = *t.ActiveDuration
	}
	zero := 0
	t.Running = false
	t.EndTime = time.Time{}
	t.RemainingSeconds = &zero
	t.StartTime = time.Time{}
	t.ActiveDuration = nil
	t.TotalWorked += add
	return add
}

// Due reports whether a running session has reached its end time.
func (t *Timer) Due(now time.Time) bool {
	return t.Running && !t.EndTime.IsZero() && !t.EndTime.After(now)
}

// Remaining returns the seconds left on a running session, or the stored
// remainder of a paused one.
func (t *Timer) Remaining(now time.Time) int {
	if t.Running {
		left := t.EndTime.Sub(now)
		if left <= 0 {
			return 0
		}
		return int((left + time.Second - 1) / time.Second)
	}
	if t.RemainingSeconds != nil {
		return *t.RemainingSeconds
	}
	return 0
}

// XPForWork returns the experience earned when worked time grows from
// before to after seconds. Only whole minutes count, across sessions.
func XPForWork(before, after int) int {
	if after <= before {
		return 0
	}
	return (after/60 - before/60) * XPPerMinute
}

// TimerFromFields reads timer state from flat key/value fields.
func TimerFromFields(fields map[string]string) Timer {
	t := Timer{
		Running:     fields[FieldTimerRunning] == "true",
		EndTime:     parseMillis(fields[FieldEndTime]),
		StartTime:   parseMillis(fields[FieldStartTime]),
		TotalWorked: int(sanitize(fields[FieldTotalWorked], 0)),
	}
	t.RemainingSeconds = parseOptionalInt(fields[FieldRemainingSeconds])
	t.ActiveDuration = parseOptionalInt(fields[FieldActiveDuration])
	if t.TotalWorked < 0 {
		t.TotalWorked = 0
	}
	return t
}

// Fields renders the timer as flat key/value fields. Unset values are empty
// strings.
func (t Timer) Fields() map[string]string {
	return map[string]string{
		FieldTimerRunning:     strconv.FormatBool(t.Running),
		FieldEndTime:          formatMillis(t.EndTime),
		FieldRemainingSeconds: formatOptionalInt(t.RemainingSeconds),
		FieldStartTime:        formatMillis(t.StartTime),
		FieldActiveDuration:   formatOptionalInt(t.ActiveDuration),
		FieldTotalWorked:      strconv.Itoa(t.TotalWorked),
	}
}

func parseMillis(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func formatMillis(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func parseOptionalInt(raw string) *int {
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
