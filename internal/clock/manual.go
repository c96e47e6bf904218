package clock

import "sync"

// ManualClock is a deterministic Clock driven by explicit Tick calls.
// It exists for tests: the scrub controller and player store can be
// exercised against exact positions without real time passing.
type ManualClock struct {
	broadcaster

	mu       sync.Mutex
	position float64
	duration float64
	rate     float64
	playing  bool
	ended    bool
}

// NewManualClock creates a paused manual clock with the given duration
func NewManualClock(duration float64) *ManualClock {
	if duration < 0 {
		duration = 0
	}
	return &ManualClock{
		duration: duration,
		rate:     1.0,
	}
}

// Tick advances the clock by dt seconds of wall time, scaled by the
// playback rate, and emits the same notifications the media clock would
func (c *ManualClock) Tick(dt float64) {
	c.mu.Lock()
	if !c.playing || dt <= 0 {
		c.mu.Unlock()
		return
	}

	c.position += dt * c.rate
	if c.duration > 0 && c.position >= c.duration {
		c.position = c.duration
		c.playing = false
		c.ended = true
		pos, dur := c.position, c.duration
		c.mu.Unlock()

		c.emit(Event{Kind: EventPositionChanged, Position: pos, Duration: dur})
		c.emit(Event{Kind: EventEnded, Position: pos, Duration: dur})
		return
	}

	pos, dur := c.position, c.duration
	c.mu.Unlock()
	c.emit(Event{Kind: EventPositionChanged, Position: pos, Duration: dur})
}

// Position returns the current position
func (c *ManualClock) Position() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

// SetPosition seeks, clamping to [0, duration] and pushing seeks larger
// than SeekEpsilon to subscribers
func (c *ManualClock) SetPosition(pos float64) {
	c.mu.Lock()
	old := c.position
	c.position = clamp(pos, c.duration)
	if c.position < c.duration || c.duration == 0 {
		c.ended = false
	}
	next, dur := c.position, c.duration
	c.mu.Unlock()

	if diff := next - old; diff > SeekEpsilon || diff < -SeekEpsilon {
		c.emit(Event{Kind: EventPositionChanged, Position: next, Duration: dur})
	}
}

// Duration returns the media duration
func (c *ManualClock) Duration() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

// SetDuration records a discovered duration and notifies subscribers
func (c *ManualClock) SetDuration(d float64) {
	c.mu.Lock()
	if d < 0 {
		d = 0
	}
	c.duration = d
	c.position = clamp(c.position, d)
	pos := c.position
	c.mu.Unlock()

	c.emit(Event{Kind: EventDurationDiscovered, Position: pos, Duration: d})
}

// Rate returns the playback rate
func (c *ManualClock) Rate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rate
}

// SetRate changes the playback rate, ignoring non-positive values
func (c *ManualClock) SetRate(rate float64) {
	if rate <= 0 {
		return
	}
	c.mu.Lock()
	c.rate = rate
	c.mu.Unlock()
}

// Playing reports whether ticks advance the position
func (c *ManualClock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Play starts playback unless the clock is in the terminal ended state
func (c *ManualClock) Play() {
	c.mu.Lock()
	if c.playing || c.ended {
		c.mu.Unlock()
		return
	}
	c.playing = true
	pos, dur := c.position, c.duration
	c.mu.Unlock()

	c.emit(Event{Kind: EventPlayStarted, Position: pos, Duration: dur})
}

// Pause stops playback
func (c *ManualClock) Pause() {
	c.mu.Lock()
	if !c.playing {
		c.mu.Unlock()
		return
	}
	c.playing = false
	pos, dur := c.position, c.duration
	c.mu.Unlock()

	c.emit(Event{Kind: EventPlayPaused, Position: pos, Duration: dur})
}

// Ended reports whether playback has reached the terminal end state
func (c *ManualClock) Ended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ended
}

// Subscribe registers a listener for clock events
func (c *ManualClock) Subscribe(l Listener) func() {
	return c.subscribe(l)
}
