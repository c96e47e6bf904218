// Package session wires the playback core together for the one video
// loaded at a time: clock, player state, scrub control, annotation state,
// and the autosaver all live for the duration of a load.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"rinkside/internal/annotate"
	"rinkside/internal/clock"
	"rinkside/internal/config"
	"rinkside/internal/db"
	"rinkside/internal/logger"
	"rinkside/internal/models"
	"rinkside/internal/persist"
	"rinkside/internal/player"
	"rinkside/internal/schedule"
	"rinkside/internal/scrub"
)

// Manager owns the per-video playback session. Loading a video tears down
// the previous session, flushing unsaved annotations first.
type Manager struct {
	cfg   config.PlayerConfig
	repos *db.Repositories

	players *player.Store
	annots  *annotate.Store
	scrubs  *scrub.Controller
	saver   *persist.AutoSaver

	mu       sync.Mutex
	clk      *clock.MediaClock
	clkUnsub func()
	video    *models.Video
}

// NewManager builds the playback core from configuration. The scheduler
// drives the scrub inactivity and autosave debounce timers.
func NewManager(cfg *config.Config, repos *db.Repositories, sched schedule.Scheduler) *Manager {
	players := player.NewStore(player.Config{
		MinRate:        cfg.Player.MinRate,
		MaxRate:        cfg.Player.MaxRate,
		ForwardEpsilon: cfg.Player.ForwardEpsilon,
	})
	annots := annotate.NewStore()
	scrubCfg := scrub.DefaultConfig()
	scrubCfg.MinRate = cfg.Player.ScrubMinRate
	scrubCfg.MaxRate = cfg.Player.ScrubMaxRate
	scrubCfg.Inactivity = cfg.Player.ScrubInactivity
	scrubs := scrub.NewController(players, sched, scrubCfg)
	saver := persist.NewAutoSaver(annots, repos.Timelines, sched, cfg.Autosave.Debounce)
	saver.Start()

	return &Manager{
		cfg:     cfg.Player,
		repos:   repos,
		players: players,
		annots:  annots,
		scrubs:  scrubs,
		saver:   saver,
	}
}

// Player returns the playback state store
func (m *Manager) Player() *player.Store {
	return m.players
}

// Annotations returns the annotation store
func (m *Manager) Annotations() *annotate.Store {
	return m.annots
}

// Scrub returns the scrub controller
func (m *Manager) Scrub() *scrub.Controller {
	return m.scrubs
}

// Saver returns the autosaver
func (m *Manager) Saver() *persist.AutoSaver {
	return m.saver
}

// Video returns the currently loaded video, if any
func (m *Manager) Video() (*models.Video, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.video == nil {
		return nil, false
	}
	v := *m.video
	return &v, true
}

// Load makes the given video the active session: its persisted timelines
// hydrate the annotation store, a fresh clock is bound, and the autosaver
// repoints at it. Any previous session is flushed and torn down first.
func (m *Manager) Load(ctx context.Context, videoID uuid.UUID) (*models.Video, error) {
	video, err := m.repos.Videos.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	timelines, err := m.repos.Timelines.GetForVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}

	m.teardown(true)

	clk := clock.NewMediaClock(m.cfg.TickInterval)
	if video.Duration > 0 {
		clk.SetDuration(video.Duration)
	}

	m.mu.Lock()
	m.clk = clk
	m.video = video
	m.mu.Unlock()

	m.players.Bind(clk)
	m.annots.Bind(clk)

	m.saver.Suspend()
	m.annots.SetVideo(videoID, timelines)
	m.saver.Resume()

	unsub := clk.Subscribe(m.onClockEvent)
	m.mu.Lock()
	m.clkUnsub = unsub
	m.mu.Unlock()

	logger.Log.Info().
		Str("video_id", videoID.String()).
		Str("name", video.Name).
		Int("timelines", len(timelines)).
		Msg("Video loaded")
	return video, nil
}

// Unload flushes pending annotation writes and tears the session down
func (m *Manager) Unload() {
	m.teardown(true)
	m.annots.Clear()
	logger.Log.Info().Msg("Video unloaded")
}

// SetDuration records the media duration discovered by the playback
// surface. The clock propagates it to the player and annotation stores.
func (m *Manager) SetDuration(d float64) {
	m.mu.Lock()
	clk := m.clk
	m.mu.Unlock()

	if clk != nil {
		clk.SetDuration(d)
	}
}

// Close shuts the session manager down, flushing pending writes
func (m *Manager) Close() {
	m.teardown(true)
	m.saver.Stop()
}

// teardown unwinds the current session. With flush set, pending
// annotation writes are saved before anything is torn down.
func (m *Manager) teardown(flush bool) {
	m.mu.Lock()
	clk := m.clk
	unsub := m.clkUnsub
	loaded := m.video != nil
	m.clk = nil
	m.clkUnsub = nil
	m.video = nil
	m.mu.Unlock()

	if flush && loaded {
		m.saver.Flush()
	}
	m.scrubs.End()
	m.players.Unbind()
	if unsub != nil {
		unsub()
	}
	if clk != nil {
		clk.Close()
	}
}

// onClockEvent persists a newly discovered duration to the video record so
// the next load seeds the clock without waiting for rediscovery
func (m *Manager) onClockEvent(ev clock.Event) {
	if ev.Kind != clock.EventDurationDiscovered {
		return
	}

	m.mu.Lock()
	if m.video == nil || m.video.Duration == ev.Duration {
		m.mu.Unlock()
		return
	}
	m.video.Duration = ev.Duration
	video := *m.video
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.repos.Videos.Update(ctx, &video); err != nil {
		logger.Log.Error().
			Err(err).
			Str("video_id", video.ID.String()).
			Float64("duration", ev.Duration).
			Msg("Failed to persist discovered duration")
	}
}
