package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestTracker(fields map[string]string) (*Tracker, *fakeClock, *[]map[string]string) {
	clock := &fakeClock{now: epoch}
	tr := NewTracker(fields)
	tr.SetClock(clock.Now)
	var saved []map[string]string
	tr.OnChange = func(_ Progress, f map[string]string) {
		saved = append(saved, f)
	}
	return tr, clock, &saved
}

func TestTrackerFocusSessionAwardsXP(t *testing.T) {
	tr, clock, saved := newTestTracker(nil)

	tr.StartFocus(25 * time.Minute)
	clock.Advance(10 * time.Minute)
	tm := tr.PauseFocus()
	assert.False(t, tm.Running)
	assert.Equal(t, 600, tm.TotalWorked)
	assert.Equal(t, Progress{Level: 1, XP: 20, TotalXP: 20}, tr.Progress())

	tr.ResumeFocus()
	clock.Advance(15 * time.Minute)
	require.True(t, tr.Poll())
	assert.False(t, tr.Poll(), "completed sessions are not credited twice")

	assert.Equal(t, 1500, tr.Timer().TotalWorked)
	assert.Equal(t, Progress{Level: 1, XP: 50, TotalXP: 50}, tr.Progress())

	last := (*saved)[len(*saved)-1]
	assert.Equal(t, "50", last[FieldXP])
	assert.Equal(t, "1500", last[FieldTotalWorked])
	assert.Equal(t, "false", last[FieldTimerRunning])
}

func TestTrackerSetKeepsTotalXP(t *testing.T) {
	tr, _, saved := newTestTracker(nil)
	tr.Award(150)
	require.Equal(t, Progress{Level: 2, XP: 50, TotalXP: 150}, tr.Progress())

	p := tr.Set(map[string]string{FieldLevel: "5"})
	assert.Equal(t, Progress{Level: 5, XP: 0, TotalXP: 150}, p)
	assert.Equal(t, "150", (*saved)[len(*saved)-1][FieldTotalXP])

	p = tr.Set(map[string]string{FieldLevel: "5", FieldTotalXP: "400"})
	assert.Equal(t, 400, p.TotalXP, "a higher total is accepted")
}

func TestTrackerPollBeforeDue(t *testing.T) {
	tr, clock, saved := newTestTracker(nil)
	tr.StartFocus(time.Minute)
	n := len(*saved)
	clock.Advance(30 * time.Second)
	assert.False(t, tr.Poll())
	assert.Len(t, *saved, n)
}

func TestTrackerRestoresFromFields(t *testing.T) {
	fields := Progress{Level: 2, XP: 90, TotalXP: 190}.Fields()
	for k, v := range (Timer{TotalWorked: 30}).Fields() {
		fields[k] = v
	}
	tr, _, _ := newTestTracker(fields)
	assert.Equal(t, Progress{Level: 2, XP: 90, TotalXP: 190}, tr.Progress())
	assert.Equal(t, 30, tr.Timer().TotalWorked)
	assert.Equal(t, fields, tr.Fields())
}

func TestTrackerAwardAndSet(t *testing.T) {
	tr, _, saved := newTestTracker(nil)
	p := tr.Award(150)
	assert.Equal(t, Progress{Level: 2, XP: 50, TotalXP: 150}, p)

	p = tr.Set(map[string]string{FieldLevel: "7", FieldXP: "bogus"})
	assert.Equal(t, Progress{Level: 7, TotalXP: 150}, p)
	assert.Len(t, *saved, 2)
}

func TestTrackerResetDropsSession(t *testing.T) {
	tr, clock, _ := newTestTracker(nil)
	tr.StartFocus(time.Minute)
	clock.Advance(2 * time.Minute)
	tr.ResetFocus()
	assert.False(t, tr.Poll())
	assert.Zero(t, tr.Timer().TotalWorked)
	assert.Equal(t, 0, tr.Progress().XP)
}
