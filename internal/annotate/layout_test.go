package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rinkside/internal/models"
)

func TestTrackPosition_PointEvent(t *testing.T) {
	ev := models.TimelineEvent{Type: models.EventTypePoint, StartTime: 150}

	left, width := TrackPosition(ev, 600)

	assert.InDelta(t, 25.0, left, 1e-9)
	assert.InDelta(t, 0.5, width, 1e-9)
}

func TestTrackPosition_DurationEvent(t *testing.T) {
	end := 360.0
	ev := models.TimelineEvent{Type: models.EventTypeDuration, StartTime: 60, EndTime: &end}

	left, width := TrackPosition(ev, 600)

	assert.InDelta(t, 10.0, left, 1e-9)
	assert.InDelta(t, 50.0, width, 1e-9)
}

func TestTrackPosition_TinySpanGetsMinimumWidth(t *testing.T) {
	end := 60.5
	ev := models.TimelineEvent{Type: models.EventTypeDuration, StartTime: 60, EndTime: &end}

	_, width := TrackPosition(ev, 600)
	assert.InDelta(t, 0.5, width, 1e-9)
}

func TestTrackPosition_UnknownDurationFallback(t *testing.T) {
	ev := models.TimelineEvent{Type: models.EventTypePoint, StartTime: 150}

	left, width := TrackPosition(ev, 0)

	assert.Equal(t, 0.0, left)
	assert.Equal(t, 1.0, width)
}

func TestClickTime(t *testing.T) {
	assert.InDelta(t, 300.0, ClickTime(400, 800, 600), 1e-9)
	assert.Equal(t, 0.0, ClickTime(-10, 800, 600))
	assert.Equal(t, 600.0, ClickTime(900, 800, 600))

	// Degenerate geometry guards
	assert.Equal(t, 0.0, ClickTime(400, 0, 600))
	assert.Equal(t, 0.0, ClickTime(400, 800, 0))
}
