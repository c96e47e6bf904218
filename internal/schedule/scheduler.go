// Package schedule provides a cancellable scheduled-task abstraction so
// debounce and inactivity timers can be driven by real timers in production
// and by virtual time in tests.
package schedule

import (
	"sort"
	"sync"
	"time"
)

// Task is a handle to a scheduled function call
type Task interface {
	// Cancel stops the task if it has not fired yet. Safe to call multiple
	// times and after the task has fired.
	Cancel()
}

// Scheduler schedules a function to run once after a delay
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) Task
}

// TimerScheduler runs tasks on real timers
type TimerScheduler struct{}

// NewTimerScheduler creates a scheduler backed by time.AfterFunc
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{}
}

// Schedule runs fn after delay on a real timer
func (s *TimerScheduler) Schedule(delay time.Duration, fn func()) Task {
	return &timerTask{timer: time.AfterFunc(delay, fn)}
}

type timerTask struct {
	timer *time.Timer
}

func (t *timerTask) Cancel() {
	t.timer.Stop()
}

// ManualScheduler runs tasks on a virtual clock advanced by the caller.
// Intended for deterministic tests.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	next  int
	tasks []*manualTask
}

type manualTask struct {
	sched     *ManualScheduler
	due       time.Duration
	seq       int
	fn        func()
	cancelled bool
	fired     bool
}

// NewManualScheduler creates a scheduler with virtual time at zero
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Schedule registers fn to fire once virtual time reaches now+delay
func (s *ManualScheduler) Schedule(delay time.Duration, fn func()) Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := &manualTask{
		sched: s,
		due:   s.now + delay,
		seq:   s.next,
		fn:    fn,
	}
	s.next++
	s.tasks = append(s.tasks, task)
	return task
}

// Advance moves virtual time forward and fires due tasks in order.
// Callbacks run on the caller's goroutine without the scheduler lock held,
// so they may schedule further tasks.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	target := s.now
	s.mu.Unlock()

	for {
		task := s.popDue(target)
		if task == nil {
			return
		}
		task.fn()
	}
}

// Pending returns the number of tasks that have not fired or been cancelled
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, t := range s.tasks {
		if !t.fired && !t.cancelled {
			count++
		}
	}
	return count
}

// popDue removes and returns the earliest due task, or nil if none are due
func (s *ManualScheduler) popDue(target time.Duration) *manualTask {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.fired && !t.cancelled {
			live = append(live, t)
		}
	}
	s.tasks = live

	sort.SliceStable(s.tasks, func(i, j int) bool {
		if s.tasks[i].due != s.tasks[j].due {
			return s.tasks[i].due < s.tasks[j].due
		}
		return s.tasks[i].seq < s.tasks[j].seq
	})

	for _, t := range s.tasks {
		if t.due <= target {
			t.fired = true
			return t
		}
	}
	return nil
}

func (t *manualTask) Cancel() {
	t.sched.mu.Lock()
	defer t.sched.mu.Unlock()
	t.cancelled = true
}
