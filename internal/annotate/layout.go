package annotate

import "rinkside/internal/models"

// Marker geometry for rendering events on a timeline track, expressed as
// percentages of the track width so clients stay resolution independent.
const (
	pointMarkerWidth = 0.5 // percent
	fallbackWidth    = 1.0 // percent, used before the duration is known
)

// TrackPosition computes the left offset and width, in percent, of an
// event's marker on a track of the given media duration. With an unknown
// duration every marker pins to the left edge with a nominal width.
func TrackPosition(ev models.TimelineEvent, duration float64) (left, width float64) {
	if duration <= 0 {
		return 0, fallbackWidth
	}

	left = ev.StartTime / duration * 100
	if ev.Type == models.EventTypeDuration && ev.EndTime != nil {
		width = (*ev.EndTime - ev.StartTime) / duration * 100
	}
	if width < pointMarkerWidth {
		width = pointMarkerWidth
	}
	return left, width
}

// ClickTime maps a click at clickX pixels on a track of trackWidth pixels
// to a media time, clamped to [0, duration]
func ClickTime(clickX, trackWidth, duration float64) float64 {
	if trackWidth <= 0 || duration <= 0 {
		return 0
	}
	t := clickX / trackWidth * duration
	if t < 0 {
		return 0
	}
	if t > duration {
		return duration
	}
	return t
}
