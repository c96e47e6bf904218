package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualScheduler_FiresAtDueTime(t *testing.T) {
	sched := NewManualScheduler()

	fired := false
	sched.Schedule(time.Second, func() { fired = true })

	sched.Advance(999 * time.Millisecond)
	assert.False(t, fired)

	sched.Advance(1 * time.Millisecond)
	assert.True(t, fired)
	assert.Equal(t, 0, sched.Pending())
}

func TestManualScheduler_Cancel(t *testing.T) {
	sched := NewManualScheduler()

	fired := false
	task := sched.Schedule(time.Second, func() { fired = true })
	task.Cancel()

	sched.Advance(2 * time.Second)
	assert.False(t, fired)
	assert.Equal(t, 0, sched.Pending())

	// Cancel after the fact is a no-op
	task.Cancel()
}

func TestManualScheduler_FiresInDueOrder(t *testing.T) {
	sched := NewManualScheduler()

	var order []string
	sched.Schedule(3*time.Second, func() { order = append(order, "c") })
	sched.Schedule(1*time.Second, func() { order = append(order, "a") })
	sched.Schedule(2*time.Second, func() { order = append(order, "b") })

	sched.Advance(5 * time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestManualScheduler_CallbackMaySchedule(t *testing.T) {
	sched := NewManualScheduler()

	fired := false
	sched.Schedule(time.Second, func() {
		sched.Schedule(time.Second, func() { fired = true })
	})

	sched.Advance(time.Second)
	assert.False(t, fired)
	assert.Equal(t, 1, sched.Pending())

	sched.Advance(time.Second)
	assert.True(t, fired)
}

func TestTimerScheduler_FiresAndCancels(t *testing.T) {
	sched := NewTimerScheduler()

	fired := make(chan struct{})
	sched.Schedule(5*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("scheduled task never fired")
	}

	cancelled := false
	task := sched.Schedule(50*time.Millisecond, func() { cancelled = true })
	task.Cancel()
	time.Sleep(100 * time.Millisecond)
	assert.False(t, cancelled)
}
