// Package annotate holds the in-memory timeline and event state for the
// loaded video. All mutations funnel through the Store, which enforces the
// timeline limit and the point/duration invariants and notifies listeners
// after every change so persistence can react.
package annotate

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"rinkside/internal/clock"
	"rinkside/internal/models"
)

// DurationDraft is the first half of a two-phase duration event. The start
// mark is held here until the second mark commits the event; nothing is
// stored on the timeline in between.
type DurationDraft struct {
	TimelineID uuid.UUID `json:"timelineId"`
	StartTime  float64   `json:"startTime"`
}

// TimelineUpdate carries a partial timeline update. Nil fields are left
// unchanged; a non-nil Events replaces the event list wholesale.
type TimelineUpdate struct {
	Name             *string
	Color            *string
	DefaultEventType *models.EventType
	Events           *[]models.TimelineEvent
}

// EventUpdate carries a partial event update. Nil fields are left unchanged.
type EventUpdate struct {
	StartTime   *float64
	EndTime     *float64
	Color       *string
	Label       *string
	Description *string
}

// Store owns the annotation state for one video at a time
type Store struct {
	mu        sync.Mutex
	videoID   uuid.UUID
	timelines []*models.Timeline
	activeID  uuid.UUID
	draft     *DurationDraft
	clk       clock.Clock
	nextSubID int
	subs      map[int]func()
}

// NewStore creates an empty annotation store
func NewStore() *Store {
	return &Store{
		subs: make(map[int]func()),
	}
}

// Bind attaches the clock used to resolve the media duration when clamping
// event times. A nil clock leaves times unclamped at the upper end.
func (s *Store) Bind(c clock.Clock) {
	s.mu.Lock()
	s.clk = c
	s.mu.Unlock()
}

// SetVideo hydrates the store with a video's persisted timelines. The first
// timeline becomes active and any in-progress draft is dropped.
func (s *Store) SetVideo(videoID uuid.UUID, timelines []*models.Timeline) {
	s.mu.Lock()
	s.videoID = videoID
	s.timelines = models.CloneTimelines(timelines)
	s.activeID = uuid.Nil
	if len(s.timelines) > 0 {
		s.activeID = s.timelines[0].ID
	}
	s.draft = nil
	s.mu.Unlock()
	s.notify()
}

// Clear empties the store when the video is unloaded
func (s *Store) Clear() {
	s.mu.Lock()
	s.videoID = uuid.Nil
	s.timelines = nil
	s.activeID = uuid.Nil
	s.draft = nil
	s.mu.Unlock()
	s.notify()
}

// VideoID returns the id of the video the store currently holds state for
func (s *Store) VideoID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.videoID
}

// Timelines returns a deep copy of all timelines in display order
func (s *Store) Timelines() []*models.Timeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneTimelines(s.timelines)
}

// ActiveTimelineID returns the id of the active timeline, uuid.Nil if none
func (s *Store) ActiveTimelineID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// ActiveTimeline returns a copy of the active timeline
func (s *Store) ActiveTimeline() (*models.Timeline, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tl, _ := s.findLocked(s.activeID)
	if tl == nil {
		return nil, false
	}
	return tl.Clone(), true
}

// SetActiveTimeline selects the timeline new events default to
func (s *Store) SetActiveTimeline(id uuid.UUID) error {
	s.mu.Lock()
	tl, _ := s.findLocked(id)
	if tl == nil {
		s.mu.Unlock()
		return ErrTimelineNotFound
	}
	s.activeID = id
	s.mu.Unlock()
	s.notify()
	return nil
}

// AddTimeline creates a timeline with the next palette color. The limit is
// a hard cap: the sixth add is rejected, never silently dropped. The first
// timeline added becomes active.
func (s *Store) AddTimeline(name string) (*models.Timeline, error) {
	s.mu.Lock()
	if len(s.timelines) >= models.MaxTimelines {
		s.mu.Unlock()
		return nil, ErrTimelineLimit
	}

	if name == "" {
		name = fmt.Sprintf("Timeline %d", len(s.timelines)+1)
	}
	tl := models.NewTimeline(s.videoID, name, models.DefaultTimelineColor(len(s.timelines)), models.EventTypePoint)
	tl.Position = len(s.timelines)
	s.timelines = append(s.timelines, tl)
	if s.activeID == uuid.Nil {
		s.activeID = tl.ID
	}
	out := tl.Clone()
	s.mu.Unlock()

	s.notify()
	return out, nil
}

// RemoveTimeline deletes a timeline and all its events. If it was active,
// the first remaining timeline is promoted.
func (s *Store) RemoveTimeline(id uuid.UUID) error {
	s.mu.Lock()
	tl, idx := s.findLocked(id)
	if tl == nil {
		s.mu.Unlock()
		return ErrTimelineNotFound
	}

	s.timelines = append(s.timelines[:idx], s.timelines[idx+1:]...)
	for i, t := range s.timelines {
		t.Position = i
	}
	if s.activeID == id {
		s.activeID = uuid.Nil
		if len(s.timelines) > 0 {
			s.activeID = s.timelines[0].ID
		}
	}
	if s.draft != nil && s.draft.TimelineID == id {
		s.draft = nil
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// UpdateTimeline applies a partial update. A non-nil Events replaces the
// timeline's event list after validating every entry.
func (s *Store) UpdateTimeline(id uuid.UUID, update TimelineUpdate) (*models.Timeline, error) {
	s.mu.Lock()
	tl, _ := s.findLocked(id)
	if tl == nil {
		s.mu.Unlock()
		return nil, ErrTimelineNotFound
	}

	if update.Name != nil {
		tl.Name = *update.Name
	}
	if update.Color != nil {
		tl.Color = *update.Color
	}
	if update.DefaultEventType != nil {
		if !update.DefaultEventType.IsValid() {
			s.mu.Unlock()
			return nil, fmt.Errorf("%w: unknown event type %q", ErrInvalidEvent, *update.DefaultEventType)
		}
		tl.DefaultEventType = *update.DefaultEventType
	}
	if update.Events != nil {
		events := make([]models.TimelineEvent, len(*update.Events))
		copy(events, *update.Events)
		for i := range events {
			events[i].TimelineID = tl.ID
			events[i].Position = i
			if err := events[i].Validate(); err != nil {
				s.mu.Unlock()
				return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
			}
		}
		tl.Events = events
	}
	out := tl.Clone()
	s.mu.Unlock()

	s.notify()
	return out, nil
}

// AddPointEvent creates a point event on the given timeline at the given
// media time. A uuid.Nil timeline id targets the active timeline.
func (s *Store) AddPointEvent(timelineID uuid.UUID, at float64) (*models.TimelineEvent, error) {
	s.mu.Lock()
	tl, err := s.resolveLocked(timelineID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	ev := models.NewPointEvent(tl.ID, s.clampLocked(at), models.DefaultEventColor(), "")
	ev.Position = len(tl.Events)
	tl.Events = append(tl.Events, *ev)
	out := *ev
	s.mu.Unlock()

	s.notify()
	return &out, nil
}

// BeginDurationDraft records the start mark of a duration event. A second
// mark must follow via CommitDurationDraft; starting a new draft replaces
// any previous one.
func (s *Store) BeginDurationDraft(timelineID uuid.UUID, at float64) (*DurationDraft, error) {
	s.mu.Lock()
	tl, err := s.resolveLocked(timelineID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	s.draft = &DurationDraft{TimelineID: tl.ID, StartTime: s.clampLocked(at)}
	out := *s.draft
	s.mu.Unlock()

	s.notify()
	return &out, nil
}

// CommitDurationDraft closes the open draft with the second mark and stores
// the resulting duration event. The two marks may arrive in either order.
func (s *Store) CommitDurationDraft(at float64) (*models.TimelineEvent, error) {
	s.mu.Lock()
	if s.draft == nil {
		s.mu.Unlock()
		return nil, ErrNoDraft
	}
	tl, _ := s.findLocked(s.draft.TimelineID)
	if tl == nil {
		s.draft = nil
		s.mu.Unlock()
		return nil, ErrTimelineNotFound
	}

	ev := models.NewDurationEvent(tl.ID, s.draft.StartTime, s.clampLocked(at), models.DefaultEventColor(), "")
	ev.Position = len(tl.Events)
	tl.Events = append(tl.Events, *ev)
	s.draft = nil
	out := *ev
	s.mu.Unlock()

	s.notify()
	return &out, nil
}

// CancelDurationDraft discards the open draft, if any
func (s *Store) CancelDurationDraft() {
	s.mu.Lock()
	changed := s.draft != nil
	s.draft = nil
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// Draft returns the open duration draft, if any
func (s *Store) Draft() (*DurationDraft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.draft == nil {
		return nil, false
	}
	out := *s.draft
	return &out, true
}

// UpdateEvent applies a partial update to one event, re-validating the
// point/duration invariants afterwards
func (s *Store) UpdateEvent(timelineID, eventID uuid.UUID, update EventUpdate) (*models.TimelineEvent, error) {
	s.mu.Lock()
	tl, _ := s.findLocked(timelineID)
	if tl == nil {
		s.mu.Unlock()
		return nil, ErrTimelineNotFound
	}
	idx := -1
	for i := range tl.Events {
		if tl.Events[i].ID == eventID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return nil, ErrEventNotFound
	}

	ev := tl.Events[idx]
	if update.StartTime != nil {
		ev.StartTime = s.clampLocked(*update.StartTime)
	}
	if update.EndTime != nil {
		end := s.clampLocked(*update.EndTime)
		ev.EndTime = &end
	}
	if update.Color != nil {
		ev.Color = *update.Color
	}
	if update.Label != nil {
		ev.Label = *update.Label
	}
	if update.Description != nil {
		ev.Description = update.Description
	}
	if err := ev.Validate(); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	tl.Events[idx] = ev
	out := ev
	s.mu.Unlock()

	s.notify()
	return &out, nil
}

// RemoveEvent deletes one event from a timeline
func (s *Store) RemoveEvent(timelineID, eventID uuid.UUID) error {
	s.mu.Lock()
	tl, _ := s.findLocked(timelineID)
	if tl == nil {
		s.mu.Unlock()
		return ErrTimelineNotFound
	}
	idx := -1
	for i := range tl.Events {
		if tl.Events[i].ID == eventID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrEventNotFound
	}

	tl.Events = append(tl.Events[:idx], tl.Events[idx+1:]...)
	for i := range tl.Events {
		tl.Events[i].Position = i
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// EventsForTimeline returns a copy of one timeline's events in order
func (s *Store) EventsForTimeline(id uuid.UUID) ([]models.TimelineEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tl, _ := s.findLocked(id)
	if tl == nil {
		return nil, ErrTimelineNotFound
	}
	out := make([]models.TimelineEvent, len(tl.Events))
	copy(out, tl.Events)
	return out, nil
}

// Subscribe registers a listener called after every state change.
// Returns an unsubscribe function.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// findLocked returns the timeline with the given id and its index, or
// (nil, -1). Caller must hold the mutex.
func (s *Store) findLocked(id uuid.UUID) (*models.Timeline, int) {
	for i, tl := range s.timelines {
		if tl.ID == id {
			return tl, i
		}
	}
	return nil, -1
}

// resolveLocked maps uuid.Nil to the active timeline. Caller must hold the
// mutex.
func (s *Store) resolveLocked(id uuid.UUID) (*models.Timeline, error) {
	if id == uuid.Nil {
		id = s.activeID
		if id == uuid.Nil {
			return nil, ErrNoActiveTimeline
		}
	}
	tl, _ := s.findLocked(id)
	if tl == nil {
		return nil, ErrTimelineNotFound
	}
	return tl, nil
}

// clampLocked restricts an event time to [0, duration]. While the duration
// is still unknown only the lower bound applies, so persisted events are
// never rewritten during hydration. Caller must hold the mutex.
func (s *Store) clampLocked(t float64) float64 {
	if t < 0 {
		return 0
	}
	if s.clk != nil {
		if d := s.clk.Duration(); d > 0 && t > d {
			return d
		}
	}
	return t
}

// notify calls all subscribers outside the lock
func (s *Store) notify() {
	s.mu.Lock()
	listeners := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
