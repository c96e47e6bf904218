package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// record collects emitted events for assertions
type record struct {
	events []Event
}

func (r *record) listen(ev Event) {
	r.events = append(r.events, ev)
}

func (r *record) kinds() []EventKind {
	kinds := make([]EventKind, len(r.events))
	for i, ev := range r.events {
		kinds[i] = ev.Kind
	}
	return kinds
}

func TestManualClock_TickAdvancesWithRate(t *testing.T) {
	clk := NewManualClock(100)

	clk.Play()
	clk.Tick(2)
	assert.InDelta(t, 2.0, clk.Position(), 1e-9)

	clk.SetRate(2.0)
	clk.Tick(3)
	assert.InDelta(t, 8.0, clk.Position(), 1e-9)
}

func TestManualClock_TickWhilePausedIsNoop(t *testing.T) {
	clk := NewManualClock(100)

	clk.Tick(5)
	assert.Equal(t, 0.0, clk.Position())
}

func TestManualClock_ReachingDurationEnds(t *testing.T) {
	clk := NewManualClock(10)
	rec := &record{}
	clk.Subscribe(rec.listen)

	clk.Play()
	clk.Tick(15)

	assert.Equal(t, 10.0, clk.Position())
	assert.False(t, clk.Playing())
	assert.True(t, clk.Ended())
	assert.Equal(t, []EventKind{EventPlayStarted, EventPositionChanged, EventEnded}, rec.kinds())

	// Play in the ended state stays paused
	clk.Play()
	assert.False(t, clk.Playing())

	// Seeking off the end clears the terminal state
	clk.SetPosition(0)
	assert.False(t, clk.Ended())
	clk.Play()
	assert.True(t, clk.Playing())
}

func TestManualClock_SetPositionClampsAndNotifies(t *testing.T) {
	clk := NewManualClock(10)
	rec := &record{}
	clk.Subscribe(rec.listen)

	clk.SetPosition(-5)
	assert.Equal(t, 0.0, clk.Position())

	clk.SetPosition(25)
	assert.Equal(t, 10.0, clk.Position())

	// Only the large seek produced a notification; the first moved nothing
	require.Len(t, rec.events, 1)
	assert.Equal(t, EventPositionChanged, rec.events[0].Kind)
	assert.Equal(t, 10.0, rec.events[0].Position)
}

func TestManualClock_SmallSeekNotPushed(t *testing.T) {
	clk := NewManualClock(10)
	rec := &record{}
	clk.Subscribe(rec.listen)

	clk.SetPosition(SeekEpsilon / 2)

	assert.InDelta(t, SeekEpsilon/2, clk.Position(), 1e-9)
	assert.Empty(t, rec.events)
}

func TestManualClock_SetDuration(t *testing.T) {
	clk := NewManualClock(0)
	rec := &record{}
	clk.Subscribe(rec.listen)

	clk.SetDuration(60)

	assert.Equal(t, 60.0, clk.Duration())
	require.Len(t, rec.events, 1)
	assert.Equal(t, EventDurationDiscovered, rec.events[0].Kind)
	assert.Equal(t, 60.0, rec.events[0].Duration)
}

func TestManualClock_SetRateIgnoresNonPositive(t *testing.T) {
	clk := NewManualClock(10)

	clk.SetRate(0)
	assert.Equal(t, 1.0, clk.Rate())

	clk.SetRate(-2)
	assert.Equal(t, 1.0, clk.Rate())

	clk.SetRate(0.5)
	assert.Equal(t, 0.5, clk.Rate())
}

func TestBroadcaster_Unsubscribe(t *testing.T) {
	clk := NewManualClock(10)
	rec := &record{}
	unsub := clk.Subscribe(rec.listen)

	clk.SetPosition(5)
	require.Len(t, rec.events, 1)

	unsub()
	clk.SetPosition(9)
	assert.Len(t, rec.events, 1)
}

func TestMediaClock_SeekAndDuration(t *testing.T) {
	// Long tick interval keeps the background reporter quiet for the test
	clk := NewMediaClock(time.Hour)
	defer clk.Close()

	rec := &record{}
	clk.Subscribe(rec.listen)

	clk.SetDuration(30)
	clk.SetPosition(12)

	assert.Equal(t, 30.0, clk.Duration())
	assert.InDelta(t, 12.0, clk.Position(), 0.05)
	assert.Equal(t, []EventKind{EventDurationDiscovered, EventPositionChanged}, rec.kinds())
}

func TestMediaClock_PositionAdvancesWhilePlaying(t *testing.T) {
	clk := NewMediaClock(time.Hour)
	defer clk.Close()

	clk.SetDuration(600)
	clk.Play()
	require.True(t, clk.Playing())

	time.Sleep(50 * time.Millisecond)
	assert.Greater(t, clk.Position(), 0.0)

	clk.Pause()
	pos := clk.Position()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, pos, clk.Position())
}

func TestMediaClock_CloseIsIdempotent(t *testing.T) {
	clk := NewMediaClock(time.Millisecond)
	clk.Close()
	clk.Close()
}
