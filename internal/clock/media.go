package clock

import (
	"sync"
	"time"
)

// MediaClock is the production Clock. While playing, its position advances
// with wall time scaled by the playback rate, and a background ticker
// reports position changes the way a media element fires timeupdate.
type MediaClock struct {
	broadcaster

	mu       sync.Mutex
	duration float64
	rate     float64
	playing  bool
	ended    bool
	basePos  float64   // position when playback state last changed
	baseAt   time.Time // wall time of that change
	done     chan struct{}
	stopOnce sync.Once
}

// NewMediaClock creates a media clock reporting position every tickInterval.
// Close must be called to stop the reporting goroutine.
func NewMediaClock(tickInterval time.Duration) *MediaClock {
	c := &MediaClock{
		rate: 1.0,
		done: make(chan struct{}),
	}
	go c.run(tickInterval)
	return c
}

// run periodically reports the advancing position while playing
func (c *MediaClock) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.tick()
		}
	}
}

// tick recomputes the position and emits a natural update, handling the
// transition into the ended state when the position crosses the duration
func (c *MediaClock) tick() {
	c.mu.Lock()
	if !c.playing {
		c.mu.Unlock()
		return
	}

	pos := c.positionLocked()
	if c.duration > 0 && pos >= c.duration {
		c.basePos = c.duration
		c.baseAt = time.Now()
		c.playing = false
		c.ended = true
		dur := c.duration
		c.mu.Unlock()

		c.emit(Event{Kind: EventPositionChanged, Position: dur, Duration: dur})
		c.emit(Event{Kind: EventEnded, Position: dur, Duration: dur})
		return
	}

	dur := c.duration
	c.mu.Unlock()
	c.emit(Event{Kind: EventPositionChanged, Position: pos, Duration: dur})
}

// positionLocked computes the current position from the playback anchor.
// Caller must hold the mutex.
func (c *MediaClock) positionLocked() float64 {
	pos := c.basePos
	if c.playing {
		pos += time.Since(c.baseAt).Seconds() * c.rate
	}
	return clamp(pos, c.duration)
}

// Position returns the current playback position in seconds
func (c *MediaClock) Position() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.positionLocked()
}

// SetPosition seeks to pos, clamped to [0, duration]. Seeks larger than
// SeekEpsilon are pushed to subscribers immediately so stale positions do
// not linger until the next natural tick.
func (c *MediaClock) SetPosition(pos float64) {
	c.mu.Lock()
	old := c.positionLocked()
	next := clamp(pos, c.duration)
	c.basePos = next
	c.baseAt = time.Now()
	if next < c.duration || c.duration == 0 {
		c.ended = false
	}
	dur := c.duration
	c.mu.Unlock()

	if diff := next - old; diff > SeekEpsilon || diff < -SeekEpsilon {
		c.emit(Event{Kind: EventPositionChanged, Position: next, Duration: dur})
	}
}

// Duration returns the media duration in seconds, 0 if not yet known
func (c *MediaClock) Duration() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

// SetDuration records the discovered media duration and notifies subscribers
func (c *MediaClock) SetDuration(d float64) {
	c.mu.Lock()
	if d < 0 {
		d = 0
	}
	c.duration = d
	c.basePos = clamp(c.positionLocked(), d)
	c.baseAt = time.Now()
	pos := c.basePos
	c.mu.Unlock()

	c.emit(Event{Kind: EventDurationDiscovered, Position: pos, Duration: d})
}

// Rate returns the playback rate multiplier
func (c *MediaClock) Rate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rate
}

// SetRate changes the playback rate. Non-positive rates are ignored.
func (c *MediaClock) SetRate(rate float64) {
	if rate <= 0 {
		return
	}
	c.mu.Lock()
	// Re-anchor so the rate change applies from the current position
	c.basePos = c.positionLocked()
	c.baseAt = time.Now()
	c.rate = rate
	c.mu.Unlock()
}

// Playing reports whether the clock is advancing
func (c *MediaClock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Play starts playback. A clock in the ended state stays paused until the
// position is moved off the end.
func (c *MediaClock) Play() {
	c.mu.Lock()
	if c.playing || c.ended {
		c.mu.Unlock()
		return
	}
	c.basePos = c.positionLocked()
	c.baseAt = time.Now()
	c.playing = true
	pos := c.basePos
	dur := c.duration
	c.mu.Unlock()

	c.emit(Event{Kind: EventPlayStarted, Position: pos, Duration: dur})
}

// Pause stops playback
func (c *MediaClock) Pause() {
	c.mu.Lock()
	if !c.playing {
		c.mu.Unlock()
		return
	}
	c.basePos = c.positionLocked()
	c.baseAt = time.Now()
	c.playing = false
	pos := c.basePos
	dur := c.duration
	c.mu.Unlock()

	c.emit(Event{Kind: EventPlayPaused, Position: pos, Duration: dur})
}

// Ended reports whether playback has reached the terminal end state
func (c *MediaClock) Ended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ended
}

// Subscribe registers a listener for clock events
func (c *MediaClock) Subscribe(l Listener) func() {
	return c.subscribe(l)
}

// Close stops the position reporting goroutine
func (c *MediaClock) Close() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
}
