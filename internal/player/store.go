// Package player holds the single source of truth for playback state,
// reconciling clock notifications with user commands.
package player

import (
	"sync"

	"rinkside/internal/clock"
)

// State is the full playback state of the loaded video
type State struct {
	CurrentTime  float64 `json:"currentTime"`
	Duration     float64 `json:"duration"`
	PlaybackRate float64 `json:"playbackRate"`
	IsPlaying    bool    `json:"isPlaying"`
	IsMuted      bool    `json:"isMuted"`
	Volume       float64 `json:"volume"`
	IsScrubbing  bool    `json:"isScrubbing"`
}

// Config holds the store's tunables
type Config struct {
	MinRate        float64 // lowest allowed playback rate
	MaxRate        float64 // highest allowed playback rate
	ForwardEpsilon float64 // seconds; smaller seek deltas are not forwarded to the clock
}

// DefaultConfig returns the standard playback bounds
func DefaultConfig() Config {
	return Config{
		MinRate:        0.1,
		MaxRate:        4.0,
		ForwardEpsilon: 0.1,
	}
}

// Store owns playback state. User commands and clock notifications both
// funnel through it; updaters run to completion under one mutex so the
// state never tears. While scrubbing, clock position reports are dropped
// so the media element cannot fight the user's input.
type Store struct {
	mu        sync.Mutex
	state     State
	ended     bool
	cfg       Config
	clk       clock.Clock
	unsub     func()
	nextSubID int
	subs      map[int]func(State)
}

// NewStore creates a player store with initial state and no clock binding
func NewStore(cfg Config) *Store {
	return &Store{
		state: State{
			PlaybackRate: 1.0,
			Volume:       1.0,
		},
		cfg:  cfg,
		subs: make(map[int]func(State)),
	}
}

// Bind attaches a clock. Its notifications drive the store until Unbind.
func (s *Store) Bind(c clock.Clock) {
	s.Unbind()

	s.mu.Lock()
	s.clk = c
	s.state.Duration = c.Duration()
	s.state.CurrentTime = c.Position()
	s.state.IsPlaying = c.Playing()
	s.ended = c.Ended()
	s.mu.Unlock()

	unsub := c.Subscribe(s.onClockEvent)
	s.mu.Lock()
	s.unsub = unsub
	s.mu.Unlock()
	s.notify()
}

// Unbind detaches the current clock, if any
func (s *Store) Unbind() {
	s.mu.Lock()
	unsub := s.unsub
	s.unsub = nil
	s.clk = nil
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ended reports whether playback reached the terminal end state
func (s *Store) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// Subscribe registers a listener called with a state snapshot after every
// transition. Returns an unsubscribe function.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// SetCurrentTime seeks to t, clamped to [0, duration]. The seek is
// forwarded to the bound clock only when it differs from the clock's own
// position by more than the forward epsilon, which breaks the feedback
// loop between store-initiated and clock-initiated updates.
func (s *Store) SetCurrentTime(t float64) {
	s.mu.Lock()
	t = clampTime(t, s.state.Duration)
	s.state.CurrentTime = t
	if t < s.state.Duration || s.state.Duration == 0 {
		s.ended = false
	}
	clk := s.clk
	epsilon := s.cfg.ForwardEpsilon
	s.mu.Unlock()

	if clk != nil {
		if diff := clk.Position() - t; diff > epsilon || diff < -epsilon {
			clk.SetPosition(t)
		}
	}
	s.notify()
}

// TogglePlayPause flips the play state. If playback already ended, the
// toggle restarts from position 0 instead of resuming at the terminal
// position.
func (s *Store) TogglePlayPause() {
	s.mu.Lock()
	restart := s.ended
	if restart {
		s.state.CurrentTime = 0
		s.ended = false
		s.state.IsPlaying = true
	} else {
		s.state.IsPlaying = !s.state.IsPlaying
	}
	playing := s.state.IsPlaying
	clk := s.clk
	s.mu.Unlock()

	if clk != nil {
		if restart {
			clk.SetPosition(0)
			clk.Play()
		} else if playing {
			clk.Play()
		} else {
			clk.Pause()
		}
	}
	s.notify()
}

// SetPlaybackRate sets the rate, clamped to the configured range, and
// forwards it to the bound clock
func (s *Store) SetPlaybackRate(rate float64) {
	s.mu.Lock()
	if rate < s.cfg.MinRate {
		rate = s.cfg.MinRate
	}
	if rate > s.cfg.MaxRate {
		rate = s.cfg.MaxRate
	}
	s.state.PlaybackRate = rate
	clk := s.clk
	s.mu.Unlock()

	if clk != nil {
		clk.SetRate(rate)
	}
	s.notify()
}

// SetScrubbing marks the start or end of a scrub session. While true,
// clock position reports are not applied to CurrentTime.
func (s *Store) SetScrubbing(scrubbing bool) {
	s.mu.Lock()
	s.state.IsScrubbing = scrubbing
	s.mu.Unlock()
	s.notify()
}

// SetVolume sets the volume in [0, 1]; zero also mutes
func (s *Store) SetVolume(volume float64) {
	s.mu.Lock()
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	s.state.Volume = volume
	s.state.IsMuted = volume == 0
	s.mu.Unlock()
	s.notify()
}

// ToggleMute flips the mute flag without touching the volume level
func (s *Store) ToggleMute() {
	s.mu.Lock()
	s.state.IsMuted = !s.state.IsMuted
	s.mu.Unlock()
	s.notify()
}

// onClockEvent applies a clock notification to the state
func (s *Store) onClockEvent(ev clock.Event) {
	s.mu.Lock()
	switch ev.Kind {
	case clock.EventPositionChanged:
		if s.state.IsScrubbing {
			// The user is driving; do not clobber their position
			s.mu.Unlock()
			return
		}
		s.state.CurrentTime = ev.Position
	case clock.EventDurationDiscovered:
		s.state.Duration = ev.Duration
		s.state.CurrentTime = clampTime(s.state.CurrentTime, ev.Duration)
	case clock.EventPlayStarted:
		s.state.IsPlaying = true
		s.ended = false
	case clock.EventPlayPaused:
		s.state.IsPlaying = false
	case clock.EventEnded:
		s.state.CurrentTime = ev.Duration
		s.state.IsPlaying = false
		s.ended = true
	}
	s.mu.Unlock()
	s.notify()
}

// notify delivers a snapshot to all subscribers outside the lock
func (s *Store) notify() {
	s.mu.Lock()
	state := s.state
	listeners := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}

// clampTime restricts t to [0, duration], treating an unknown duration as 0
func clampTime(t, duration float64) float64 {
	if t < 0 || duration <= 0 {
		return 0
	}
	if t > duration {
		return duration
	}
	return t
}
