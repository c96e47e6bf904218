// Package scrub converts raw jog and wheel input into playback commands.
// It only ever talks to the player store; the clock is never mutated
// directly, so the store's ordering rules stay the single write path.
package scrub

import (
	"sync"
	"time"

	"rinkside/internal/player"
	"rinkside/internal/schedule"
)

// Config holds the controller's tunables
type Config struct {
	MinRate             float64       // lower scrub speed bound
	MaxRate             float64       // upper scrub speed bound
	Sensitivity         float64       // rate change per unit of wheel delta
	Inactivity          time.Duration // quiet period that ends a scrub session
	FrameStep           float64       // seconds per discrete jog step
	DragSecondsPerPixel float64       // drag distance to time mapping
}

// DefaultConfig returns the standard scrub tunables: speed in [0.1, 2.0],
// a 1 second inactivity window, 1/30s frame steps, and 1 second of media
// time per 100 pixels of drag.
func DefaultConfig() Config {
	return Config{
		MinRate:             0.1,
		MaxRate:             2.0,
		Sensitivity:         0.005,
		Inactivity:          1000 * time.Millisecond,
		FrameStep:           1.0 / 30.0,
		DragSecondsPerPixel: 0.01,
	}
}

// Controller models the two scrub interaction modes: discrete frame jogs
// and a continuous wheel-driven speed session that decays back to neutral
// after the inactivity window.
type Controller struct {
	mu         sync.Mutex
	store      *player.Store
	sched      schedule.Scheduler
	cfg        Config
	active     bool
	speed      float64
	reset      schedule.Task
	dragging   bool
	dragAnchor float64
}

// NewController creates a scrub controller issuing commands to the store
func NewController(store *player.Store, sched schedule.Scheduler, cfg Config) *Controller {
	return &Controller{
		store: store,
		sched: sched,
		cfg:   cfg,
		speed: 1.0,
	}
}

// Wheel feeds one raw wheel delta into the speed model. The first delta
// starts a scrub session; each delta nudges the speed monotonically with
// the accumulated input and re-arms the inactivity reset. Scrolling up
// (negative delta) speeds playback up.
func (c *Controller) Wheel(delta float64) {
	c.mu.Lock()
	started := !c.active
	c.active = true
	if started {
		c.speed = 1.0
	}

	c.speed -= delta * c.cfg.Sensitivity
	if c.speed < c.cfg.MinRate {
		c.speed = c.cfg.MinRate
	}
	if c.speed > c.cfg.MaxRate {
		c.speed = c.cfg.MaxRate
	}
	speed := c.speed

	if c.reset != nil {
		c.reset.Cancel()
	}
	c.reset = c.sched.Schedule(c.cfg.Inactivity, c.End)
	c.mu.Unlock()

	if started {
		c.store.SetScrubbing(true)
	}
	c.store.SetPlaybackRate(speed)
}

// End terminates the scrub session: speed returns to neutral and the
// store's scrubbing flag drops, atomically from the caller's view since
// both updates happen before any further input is processed.
func (c *Controller) End() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.active = false
	c.speed = 1.0
	if c.reset != nil {
		c.reset.Cancel()
		c.reset = nil
	}
	c.mu.Unlock()

	c.store.SetPlaybackRate(1.0)
	c.store.SetScrubbing(false)
}

// Active reports whether a scrub session is in progress
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Speed returns the current scrub speed multiplier
func (c *Controller) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// StepFrame jogs the position by one frame step. direction < 0 steps back,
// anything else steps forward. The store clamps to [0, duration], so a
// not-yet-loaded video (duration 0) pins to 0.
func (c *Controller) StepFrame(direction int) {
	state := c.store.Snapshot()
	step := c.cfg.FrameStep
	if direction < 0 {
		step = -step
	}
	c.store.SetCurrentTime(state.CurrentTime + step)
}

// BeginDrag anchors a jog-wheel drag at the current position
func (c *Controller) BeginDrag() {
	state := c.store.Snapshot()
	c.mu.Lock()
	c.dragging = true
	c.dragAnchor = state.CurrentTime
	c.mu.Unlock()
}

// DragTo seeks relative to the drag anchor by a pixel delta
func (c *Controller) DragTo(deltaPixels float64) {
	c.mu.Lock()
	if !c.dragging {
		c.mu.Unlock()
		return
	}
	target := c.dragAnchor + deltaPixels*c.cfg.DragSecondsPerPixel
	c.mu.Unlock()

	c.store.SetCurrentTime(target)
}

// EndDrag finishes a drag
func (c *Controller) EndDrag() {
	c.mu.Lock()
	c.dragging = false
	c.mu.Unlock()
}
