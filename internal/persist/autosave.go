// Package persist bridges the in-memory annotation state and the record
// store: debounced autosaving, export to a portable artifact, and import
// with backward-compatible defaulting.
package persist

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"rinkside/internal/annotate"
	"rinkside/internal/logger"
	"rinkside/internal/models"
	"rinkside/internal/schedule"
)

// saveTimeout bounds a single autosave write
const saveTimeout = 5 * time.Second

// TimelineStore is the persistence capability the autosaver needs
type TimelineStore interface {
	ReplaceForVideo(ctx context.Context, videoID uuid.UUID, timelines []*models.Timeline) error
}

// AutoSaver persists the annotation state after changes, debounced so a
// burst of edits produces one write. A save failure is logged and the
// in-memory state stays authoritative; the next change retries.
type AutoSaver struct {
	mu        sync.Mutex
	src       *annotate.Store
	repo      TimelineStore
	sched     schedule.Scheduler
	debounce  time.Duration
	pending   schedule.Task
	unsub     func()
	suspended bool
}

// NewAutoSaver creates an autosaver watching src. Call Start to begin.
func NewAutoSaver(src *annotate.Store, repo TimelineStore, sched schedule.Scheduler, debounce time.Duration) *AutoSaver {
	return &AutoSaver{
		src:      src,
		repo:     repo,
		sched:    sched,
		debounce: debounce,
	}
}

// Start subscribes to annotation changes
func (a *AutoSaver) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.unsub == nil {
		a.unsub = a.src.Subscribe(a.onChange)
	}
}

// Stop unsubscribes and drops any pending save without flushing
func (a *AutoSaver) Stop() {
	a.mu.Lock()
	unsub := a.unsub
	a.unsub = nil
	if a.pending != nil {
		a.pending.Cancel()
		a.pending = nil
	}
	a.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// Suspend drops pending saves and ignores changes until Resume. Used while
// hydrating so loading a video does not immediately write it back.
func (a *AutoSaver) Suspend() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.suspended = true
	if a.pending != nil {
		a.pending.Cancel()
		a.pending = nil
	}
}

// Resume re-enables autosaving after Suspend
func (a *AutoSaver) Resume() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.suspended = false
}

// Flush cancels any pending debounce and saves immediately
func (a *AutoSaver) Flush() {
	a.mu.Lock()
	if a.pending != nil {
		a.pending.Cancel()
		a.pending = nil
	}
	a.mu.Unlock()

	a.save()
}

// onChange restarts the debounce window. Only the trailing edge of an edit
// burst reaches the record store.
func (a *AutoSaver) onChange() {
	a.mu.Lock()
	if a.suspended {
		a.mu.Unlock()
		return
	}
	if a.pending != nil {
		a.pending.Cancel()
	}
	a.pending = a.sched.Schedule(a.debounce, func() {
		a.mu.Lock()
		a.pending = nil
		a.mu.Unlock()
		a.save()
	})
	a.mu.Unlock()
}

// save writes the current annotation snapshot for the loaded video
func (a *AutoSaver) save() {
	videoID := a.src.VideoID()
	if videoID == uuid.Nil {
		return
	}
	timelines := a.src.Timelines()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := a.repo.ReplaceForVideo(ctx, videoID, timelines); err != nil {
		logger.Log.Error().
			Err(err).
			Str("video_id", videoID.String()).
			Int("timelines", len(timelines)).
			Msg("Autosave failed")
		return
	}

	logger.Log.Debug().
		Str("video_id", videoID.String()).
		Int("timelines", len(timelines)).
		Msg("Autosaved timelines")
}
