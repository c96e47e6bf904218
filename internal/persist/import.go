package persist

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"rinkside/internal/models"
)

// ErrMalformedImport is returned when the uploaded data is not a valid
// artifact, meaning it cannot be parsed or has no timelines array
var ErrMalformedImport = errors.New("malformed import file")

// IsMalformedImport checks if the error is a malformed import error
func IsMalformedImport(err error) bool {
	return errors.Is(err, ErrMalformedImport)
}

// Loose mirror of the artifact shape. Every field is optional so older
// exports, written before some fields existed, still import. Ids are
// carried as strings so an unparseable id degrades to a fresh one instead
// of failing the whole file.
type importArtifact struct {
	Timelines *[]importTimeline `json:"timelines"`
}

type importTimeline struct {
	ID               *string           `json:"id"`
	Name             *string           `json:"name"`
	Color            *string           `json:"color"`
	DefaultEventType *models.EventType `json:"defaultEventType"`
	Events           *[]importEvent    `json:"events"`
}

type importEvent struct {
	ID          *string           `json:"id"`
	TimelineID  *string           `json:"timelineId"`
	Type        *models.EventType `json:"type"`
	StartTime   *float64          `json:"startTime"`
	EndTime     *float64          `json:"endTime"`
	Color       *string           `json:"color"`
	Label       *string           `json:"label"`
	Description *string           `json:"description"`
}

// Import parses an artifact and normalizes it into timelines ready to
// replace a video's annotation state. Missing fields get defaults instead
// of failing: ids present in the file are preserved so a round trip
// through export and import reproduces the same record, and fresh ids are
// generated only where the file carries none. The video's own record is
// never touched.
func Import(data []byte) ([]*models.Timeline, error) {
	var artifact importArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, ErrMalformedImport
	}
	if artifact.Timelines == nil {
		return nil, ErrMalformedImport
	}

	raw := *artifact.Timelines
	if len(raw) > models.MaxTimelines {
		raw = raw[:models.MaxTimelines]
	}

	timelines := make([]*models.Timeline, 0, len(raw))
	for i, rt := range raw {
		tl := &models.Timeline{
			ID:               importedID(rt.ID),
			Name:             "Untitled Timeline",
			Color:            models.DefaultTimelineColor(0),
			DefaultEventType: models.EventTypePoint,
			Position:         i,
			Events:           []models.TimelineEvent{},
		}
		if rt.Name != nil && *rt.Name != "" {
			tl.Name = *rt.Name
		}
		if rt.Color != nil && *rt.Color != "" {
			tl.Color = *rt.Color
		}
		if rt.DefaultEventType != nil && rt.DefaultEventType.IsValid() {
			tl.DefaultEventType = *rt.DefaultEventType
		}

		if rt.Events != nil {
			for j, re := range *rt.Events {
				tl.Events = append(tl.Events, normalizeEvent(re, tl.ID, j))
			}
		}
		timelines = append(timelines, tl)
	}
	return timelines, nil
}

// normalizeEvent fills an imported event's gaps: a missing id gets a fresh
// one, a missing owner falls back to the enclosing timeline, a missing
// type becomes point, a duration event without an end mark gets a one
// second span, and a point event never keeps one
func normalizeEvent(re importEvent, timelineID uuid.UUID, position int) models.TimelineEvent {
	owner := timelineID
	if re.TimelineID != nil {
		if id, err := uuid.Parse(*re.TimelineID); err == nil {
			owner = id
		}
	}

	ev := models.TimelineEvent{
		ID:          importedID(re.ID),
		TimelineID:  owner,
		Type:        models.EventTypePoint,
		Color:       models.DefaultEventColor(),
		Label:       "Untitled Event",
		Description: re.Description,
		Position:    position,
	}
	if re.Type != nil && re.Type.IsValid() {
		ev.Type = *re.Type
	}
	if re.StartTime != nil && *re.StartTime >= 0 {
		ev.StartTime = *re.StartTime
	}
	if re.Color != nil && *re.Color != "" {
		ev.Color = *re.Color
	}
	if re.Label != nil && *re.Label != "" {
		ev.Label = *re.Label
	}

	if ev.Type == models.EventTypeDuration {
		end := ev.StartTime + 1
		if re.EndTime != nil && *re.EndTime >= ev.StartTime {
			end = *re.EndTime
		}
		ev.EndTime = &end
	}
	return ev
}

// importedID keeps an id present in the file, generating a fresh one only
// when the field is absent or unparseable
func importedID(raw *string) uuid.UUID {
	if raw != nil {
		if id, err := uuid.Parse(*raw); err == nil && id != uuid.Nil {
			return id
		}
	}
	return uuid.New()
}
