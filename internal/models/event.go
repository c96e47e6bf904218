package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TimelineEvent is a single annotation anchored to a clock position.
// Point events never carry an EndTime; duration events always do, with
// EndTime >= StartTime.
type TimelineEvent struct {
	ID          uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	TimelineID  uuid.UUID `json:"timelineId" gorm:"type:text;not null;index;column:timeline_id"`
	Type        EventType `json:"type" gorm:"type:text;not null;column:type"`
	StartTime   float64   `json:"startTime" gorm:"type:real;not null;column:start_time"` // seconds
	EndTime     *float64  `json:"endTime,omitempty" gorm:"type:real;column:end_time"`    // duration events only
	Color       string    `json:"color" gorm:"type:text;not null;column:color"`
	Label       string    `json:"label" gorm:"type:text;not null;column:label"`
	Description *string   `json:"description,omitempty" gorm:"type:text;column:description"`
	Position    int       `json:"-" gorm:"type:integer;not null;column:position"`
	CreatedAt   time.Time `json:"-" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
}

// NewPointEvent creates a point event at the given time. An empty label is
// replaced with a default synthesized from the timestamp.
func NewPointEvent(timelineID uuid.UUID, startTime float64, color, label string) *TimelineEvent {
	if label == "" {
		label = fmt.Sprintf("Event at %s", FormatTimestamp(startTime))
	}
	return &TimelineEvent{
		ID:         uuid.New(),
		TimelineID: timelineID,
		Type:       EventTypePoint,
		StartTime:  startTime,
		Color:      color,
		Label:      label,
		CreatedAt:  time.Now().UTC(),
	}
}

// NewDurationEvent creates a duration event. The two marks may arrive in
// either order; the earlier becomes StartTime and the later EndTime.
func NewDurationEvent(timelineID uuid.UUID, a, b float64, color, label string) *TimelineEvent {
	start, end := a, b
	if end < start {
		start, end = end, start
	}
	if label == "" {
		label = fmt.Sprintf("Event %s-%s", FormatTimestamp(start), FormatTimestamp(end))
	}
	endCopy := end
	return &TimelineEvent{
		ID:         uuid.New(),
		TimelineID: timelineID,
		Type:       EventTypeDuration,
		StartTime:  start,
		EndTime:    &endCopy,
		Color:      color,
		Label:      label,
		CreatedAt:  time.Now().UTC(),
	}
}

// Validate checks the point/duration invariants
func (e *TimelineEvent) Validate() error {
	if !e.Type.IsValid() {
		return fmt.Errorf("invalid event type: %q", e.Type)
	}
	if e.StartTime < 0 {
		return fmt.Errorf("start time must be non-negative, got %f", e.StartTime)
	}
	switch e.Type {
	case EventTypePoint:
		if e.EndTime != nil {
			return fmt.Errorf("point event must not have an end time")
		}
	case EventTypeDuration:
		if e.EndTime == nil {
			return fmt.Errorf("duration event requires an end time")
		}
		if *e.EndTime < e.StartTime {
			return fmt.Errorf("end time %f precedes start time %f", *e.EndTime, e.StartTime)
		}
	}
	return nil
}
