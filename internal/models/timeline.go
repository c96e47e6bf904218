package models

import (
	"time"

	"github.com/google/uuid"
)

// Timeline is a named track of annotation events for one video. A video
// holds at most MaxTimelines of them; Position preserves insertion order
// for stable display.
type Timeline struct {
	ID               uuid.UUID       `json:"id" gorm:"type:text;primaryKey;column:id"`
	VideoID          uuid.UUID       `json:"-" gorm:"type:text;not null;index;column:video_id"`
	Name             string          `json:"name" gorm:"type:text;not null;column:name" validate:"required"`
	Color            string          `json:"color" gorm:"type:text;not null;column:color"`
	DefaultEventType EventType       `json:"defaultEventType" gorm:"type:text;not null;default:point;column:default_event_type"`
	Position         int             `json:"-" gorm:"type:integer;not null;column:position"`
	Events           []TimelineEvent `json:"events" gorm:"-"`
	CreatedAt        time.Time       `json:"-" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
}

// NewTimeline creates a new Timeline with generated UUID and no events
func NewTimeline(videoID uuid.UUID, name, color string, defaultEventType EventType) *Timeline {
	if !defaultEventType.IsValid() {
		defaultEventType = EventTypePoint
	}
	return &Timeline{
		ID:               uuid.New(),
		VideoID:          videoID,
		Name:             name,
		Color:            color,
		DefaultEventType: defaultEventType,
		Events:           []TimelineEvent{},
		CreatedAt:        time.Now().UTC(),
	}
}

// Clone returns a deep copy of the timeline including its events slice,
// so callers can hand out snapshots without exposing internal state
func (t *Timeline) Clone() *Timeline {
	cp := *t
	cp.Events = make([]TimelineEvent, len(t.Events))
	copy(cp.Events, t.Events)
	return &cp
}

// CloneTimelines deep-copies a timeline slice
func CloneTimelines(timelines []*Timeline) []*Timeline {
	out := make([]*Timeline, len(timelines))
	for i, t := range timelines {
		out[i] = t.Clone()
	}
	return out
}
