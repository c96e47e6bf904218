package annotate

import "errors"

// Sentinel errors for annotation operations
var (
	// ErrTimelineLimit is returned when a video already holds the maximum
	// number of timelines
	ErrTimelineLimit = errors.New("timeline limit reached")

	// ErrTimelineNotFound is returned when the referenced timeline does not exist
	ErrTimelineNotFound = errors.New("timeline not found")

	// ErrEventNotFound is returned when the referenced event does not exist
	ErrEventNotFound = errors.New("event not found")

	// ErrNoActiveTimeline is returned when an operation needs an active
	// timeline and none is selected
	ErrNoActiveTimeline = errors.New("no active timeline")

	// ErrNoDraft is returned when committing a duration draft that was never started
	ErrNoDraft = errors.New("no duration draft in progress")

	// ErrInvalidEvent is returned when an event update breaks the
	// point/duration invariants
	ErrInvalidEvent = errors.New("invalid event")
)

// IsTimelineLimit checks if the error is a timeline limit error
func IsTimelineLimit(err error) bool {
	return errors.Is(err, ErrTimelineLimit)
}

// IsTimelineNotFound checks if the error is a timeline not found error
func IsTimelineNotFound(err error) bool {
	return errors.Is(err, ErrTimelineNotFound)
}

// IsEventNotFound checks if the error is an event not found error
func IsEventNotFound(err error) bool {
	return errors.Is(err, ErrEventNotFound)
}

// IsInvalidEvent checks if the error is an invalid event error
func IsInvalidEvent(err error) bool {
	return errors.Is(err, ErrInvalidEvent)
}
