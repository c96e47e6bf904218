// Package clock abstracts the continuously advancing media time source.
// The production implementation advances with wall time; tests drive a
// deterministic manual clock, so the player and scrub logic never need a
// real media backend.
package clock

import "sync"

// SeekEpsilon is the position delta above which a SetPosition call is
// treated as a programmatic seek and pushed to subscribers immediately,
// instead of waiting for the next natural position report.
const SeekEpsilon = 0.1

// EventKind identifies a clock notification
type EventKind string

const (
	// EventPositionChanged reports the current playback position
	EventPositionChanged EventKind = "position_changed"

	// EventDurationDiscovered fires when the media duration becomes known
	EventDurationDiscovered EventKind = "duration_discovered"

	// EventPlayStarted fires when playback starts
	EventPlayStarted EventKind = "play_started"

	// EventPlayPaused fires when playback pauses
	EventPlayPaused EventKind = "play_paused"

	// EventEnded fires when playback reaches the end of the media.
	// Position is forced to the duration and the clock pauses; resuming
	// requires an explicit SetPosition(0) followed by Play.
	EventEnded EventKind = "ended"
)

// Event carries a clock notification with the position and duration at the
// time it fired
type Event struct {
	Kind     EventKind
	Position float64
	Duration float64
}

// Listener receives clock events
type Listener func(Event)

// Clock is the playback time source capability. Implementations must clamp
// SetPosition to [0, duration] and never report a negative or zero rate.
type Clock interface {
	Position() float64
	SetPosition(pos float64)
	Duration() float64
	SetDuration(d float64)
	Rate() float64
	SetRate(rate float64)
	Playing() bool
	Play()
	Pause()
	Ended() bool

	// Subscribe registers a listener and returns an unsubscribe function
	Subscribe(l Listener) func()
}

// broadcaster fans events out to subscribed listeners
type broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]Listener
}

func (b *broadcaster) subscribe(l Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs == nil {
		b.subs = make(map[int]Listener)
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = l

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// emit delivers an event to all listeners. Listeners run without the
// broadcaster lock held so they may call back into the clock.
func (b *broadcaster) emit(ev Event) {
	b.mu.Lock()
	listeners := make([]Listener, 0, len(b.subs))
	for _, l := range b.subs {
		listeners = append(listeners, l)
	}
	b.mu.Unlock()

	for _, l := range listeners {
		l(ev)
	}
}

// clamp restricts pos to [0, duration]. A zero duration (video not loaded
// yet) clamps everything to 0.
func clamp(pos, duration float64) float64 {
	if pos < 0 || duration <= 0 {
		return 0
	}
	if pos > duration {
		return duration
	}
	return pos
}
