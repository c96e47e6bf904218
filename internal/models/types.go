package models

// EventType distinguishes instantaneous annotations from time ranges.
type EventType string

const (
	// EventTypePoint is an annotation at a single time offset
	EventTypePoint EventType = "point"

	// EventTypeDuration is an annotation spanning [StartTime, EndTime]
	EventTypeDuration EventType = "duration"
)

// IsValid reports whether the event type is one of the known values
func (t EventType) IsValid() bool {
	return t == EventTypePoint || t == EventTypeDuration
}

// Video source constants. Remote sources are inferred from the URL
// when a video is registered.
const (
	SourceLocal       = "local"
	SourceGoogleDrive = "google-drive"
	SourceICloud      = "icloud"
)

// MaxTimelines is the maximum number of timelines a single video may hold.
// Attempts to add more are rejected, not truncated.
const MaxTimelines = 5

// FrameStep is the seek step for frame-by-frame jogging. Web videos are
// typically 24-30fps, so 1/30s lands close to one frame.
const FrameStep = 1.0 / 30.0

// Playback rate bounds for the player. Scrub sessions use the narrower
// scrub range.
const (
	MinPlaybackRate = 0.1
	MaxPlaybackRate = 4.0
	MinScrubRate    = 0.1
	MaxScrubRate    = 2.0
)

// TimelineColors is the cyclic palette assigned to new timelines when the
// caller does not pick a color.
var TimelineColors = []string{
	"#3b82f6", // blue
	"#ef4444", // red
	"#10b981", // green
	"#f59e0b", // yellow
	"#8b5cf6", // purple
	"#06b6d4", // cyan
	"#f97316", // orange
	"#84cc16", // lime
}

// EventColors is the palette offered for events. The first entry is the
// default applied when importing legacy data without colors.
var EventColors = []string{
	"#ef4444", // red
	"#3b82f6", // blue
	"#10b981", // green
	"#f59e0b", // yellow
	"#8b5cf6", // purple
	"#06b6d4", // cyan
	"#f97316", // orange
	"#84cc16", // lime
	"#ec4899", // pink
	"#6b7280", // gray
}

// DefaultTimelineColor returns the palette entry for the nth timeline,
// wrapping when the palette is exhausted.
func DefaultTimelineColor(n int) string {
	if n < 0 {
		n = 0
	}
	return TimelineColors[n%len(TimelineColors)]
}

// DefaultEventColor returns the default color token for events
func DefaultEventColor() string {
	return EventColors[0]
}
