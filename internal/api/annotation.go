package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rinkside/internal/annotate"
	"rinkside/internal/logger"
	"rinkside/internal/models"
	"rinkside/internal/session"
)

// CreateTimelineRequest names a new timeline for the loaded video. An empty
// name gets a numbered default.
type CreateTimelineRequest struct {
	Name string `json:"name"`
}

// UpdateSessionTimelineRequest is a partial timeline update
type UpdateSessionTimelineRequest struct {
	Name             *string           `json:"name,omitempty"`
	Color            *string           `json:"color,omitempty"`
	DefaultEventType *models.EventType `json:"defaultEventType,omitempty"`
}

// CreateEventRequest marks an event on a timeline. The mark time comes from
// the explicit time field, from a click position on the timeline track, or
// from the current playhead when neither is given.
type CreateEventRequest struct {
	Time       *float64 `json:"time,omitempty"`
	ClickX     *float64 `json:"clickX,omitempty"`
	TrackWidth *float64 `json:"trackWidth,omitempty"`
}

// UpdateSessionEventRequest is a partial event update
type UpdateSessionEventRequest struct {
	StartTime   *float64 `json:"startTime,omitempty"`
	EndTime     *float64 `json:"endTime,omitempty"`
	Color       *string  `json:"color,omitempty"`
	Label       *string  `json:"label,omitempty"`
	Description *string  `json:"description,omitempty"`
}

// AnnotationStateResponse is the live annotation state of the session
type AnnotationStateResponse struct {
	Timelines        []*models.Timeline      `json:"timelines"`
	ActiveTimelineID uuid.UUID               `json:"activeTimelineId"`
	Draft            *annotate.DurationDraft `json:"draft,omitempty"`
}

// EventMarkResponse carries the outcome of an event mark: either a stored
// event or, for the first mark on a duration timeline, the open draft
type EventMarkResponse struct {
	Event *models.TimelineEvent   `json:"event,omitempty"`
	Draft *annotate.DurationDraft `json:"draft,omitempty"`
}

// AnnotationHandler handles annotation edits against the loaded video. Every
// mutation goes through the session's annotation store, so the auto-save
// bridge picks it up and writes the record store after the debounce window.
type AnnotationHandler struct {
	sessions *session.Manager
}

// NewAnnotationHandler creates a new annotation handler instance
func NewAnnotationHandler(sessions *session.Manager) *AnnotationHandler {
	return &AnnotationHandler{sessions: sessions}
}

// GetState handles GET /api/session/timelines
func (h *AnnotationHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.state())
}

// CreateTimeline handles POST /api/session/timelines
func (h *AnnotationHandler) CreateTimeline(c *gin.Context) {
	var req CreateTimelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	if !h.requireLoaded(c) {
		return
	}

	tl, err := h.sessions.Annotations().AddTimeline(req.Name)
	if err != nil {
		h.writeAnnotateError(c, err)
		return
	}

	logger.Log.Info().
		Str("timeline_id", tl.ID.String()).
		Str("name", tl.Name).
		Msg("Timeline created")

	c.JSON(http.StatusCreated, tl)
}

// UpdateTimeline handles PUT /api/session/timelines/:id
func (h *AnnotationHandler) UpdateTimeline(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateSessionTimelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	if !h.requireLoaded(c) {
		return
	}

	tl, err := h.sessions.Annotations().UpdateTimeline(id, annotate.TimelineUpdate{
		Name:             req.Name,
		Color:            req.Color,
		DefaultEventType: req.DefaultEventType,
	})
	if err != nil {
		h.writeAnnotateError(c, err)
		return
	}

	c.JSON(http.StatusOK, tl)
}

// RemoveTimeline handles DELETE /api/session/timelines/:id
func (h *AnnotationHandler) RemoveTimeline(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if !h.requireLoaded(c) {
		return
	}

	if err := h.sessions.Annotations().RemoveTimeline(id); err != nil {
		h.writeAnnotateError(c, err)
		return
	}

	logger.Log.Info().
		Str("timeline_id", id.String()).
		Msg("Timeline removed")

	c.JSON(http.StatusOK, h.state())
}

// ActivateTimeline handles POST /api/session/timelines/:id/activate
func (h *AnnotationHandler) ActivateTimeline(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if !h.requireLoaded(c) {
		return
	}

	if err := h.sessions.Annotations().SetActiveTimeline(id); err != nil {
		h.writeAnnotateError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.state())
}

// MarkEvent handles POST /api/session/timelines/:id/events. The timeline's
// default event type decides the outcome: a point timeline stores the event
// at the mark, a duration timeline opens a draft on the first mark and
// stores the event on the second.
func (h *AnnotationHandler) MarkEvent(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	if !h.requireLoaded(c) {
		return
	}
	annots := h.sessions.Annotations()

	target := h.findTimeline(id)
	if target == nil {
		h.writeAnnotateError(c, annotate.ErrTimelineNotFound)
		return
	}

	at := h.markTime(req)

	if target.DefaultEventType == models.EventTypeDuration {
		if draft, open := annots.Draft(); open && draft.TimelineID == id {
			ev, err := annots.CommitDurationDraft(at)
			if err != nil {
				h.writeAnnotateError(c, err)
				return
			}
			c.JSON(http.StatusCreated, EventMarkResponse{Event: ev})
			return
		}

		draft, err := annots.BeginDurationDraft(id, at)
		if err != nil {
			h.writeAnnotateError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, EventMarkResponse{Draft: draft})
		return
	}

	ev, err := annots.AddPointEvent(id, at)
	if err != nil {
		h.writeAnnotateError(c, err)
		return
	}
	c.JSON(http.StatusCreated, EventMarkResponse{Event: ev})
}

// CancelDraft handles DELETE /api/session/draft
func (h *AnnotationHandler) CancelDraft(c *gin.Context) {
	if !h.requireLoaded(c) {
		return
	}

	h.sessions.Annotations().CancelDurationDraft()
	c.JSON(http.StatusOK, h.state())
}

// UpdateEvent handles PUT /api/session/timelines/:id/events/:eventId
func (h *AnnotationHandler) UpdateEvent(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	eventID, ok := paramID(c, "eventId")
	if !ok {
		return
	}

	var req UpdateSessionEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	if !h.requireLoaded(c) {
		return
	}

	ev, err := h.sessions.Annotations().UpdateEvent(id, eventID, annotate.EventUpdate{
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Color:       req.Color,
		Label:       req.Label,
		Description: req.Description,
	})
	if err != nil {
		h.writeAnnotateError(c, err)
		return
	}

	c.JSON(http.StatusOK, ev)
}

// RemoveEvent handles DELETE /api/session/timelines/:id/events/:eventId
func (h *AnnotationHandler) RemoveEvent(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	eventID, ok := paramID(c, "eventId")
	if !ok {
		return
	}

	if !h.requireLoaded(c) {
		return
	}

	if err := h.sessions.Annotations().RemoveEvent(id, eventID); err != nil {
		h.writeAnnotateError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.state())
}

// markTime resolves the media time of an event mark: explicit time wins,
// then a click position mapped through the known duration, then the
// current playhead
func (h *AnnotationHandler) markTime(req CreateEventRequest) float64 {
	if req.Time != nil {
		return *req.Time
	}
	snapshot := h.sessions.Player().Snapshot()
	if req.ClickX != nil && req.TrackWidth != nil {
		return annotate.ClickTime(*req.ClickX, *req.TrackWidth, snapshot.Duration)
	}
	return snapshot.CurrentTime
}

// findTimeline returns a copy of one timeline from the live state
func (h *AnnotationHandler) findTimeline(id uuid.UUID) *models.Timeline {
	for _, tl := range h.sessions.Annotations().Timelines() {
		if tl.ID == id {
			return tl
		}
	}
	return nil
}

// requireLoaded rejects annotation edits while no video is loaded, writing
// the error response itself
func (h *AnnotationHandler) requireLoaded(c *gin.Context) bool {
	if _, has := h.sessions.Video(); !has {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "no_video_loaded",
			Message: "Load a video before editing annotations",
		})
		return false
	}
	return true
}

// state assembles the live annotation state
func (h *AnnotationHandler) state() AnnotationStateResponse {
	annots := h.sessions.Annotations()
	resp := AnnotationStateResponse{
		Timelines:        annots.Timelines(),
		ActiveTimelineID: annots.ActiveTimelineID(),
	}
	if resp.Timelines == nil {
		resp.Timelines = []*models.Timeline{}
	}
	if draft, open := annots.Draft(); open {
		resp.Draft = draft
	}
	return resp
}

// writeAnnotateError maps annotation store errors onto API responses
func (h *AnnotationHandler) writeAnnotateError(c *gin.Context, err error) {
	switch {
	case annotate.IsTimelineLimit(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "timeline_limit",
			Message: err.Error(),
		})
	case annotate.IsTimelineNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "timeline_not_found",
			Message: "Timeline not found",
		})
	case annotate.IsEventNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "event_not_found",
			Message: "Event not found",
		})
	case errors.Is(err, annotate.ErrNoActiveTimeline):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "no_active_timeline",
			Message: "No timeline is active",
		})
	case errors.Is(err, annotate.ErrNoDraft):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "no_open_draft",
			Message: "No duration draft is open",
		})
	case annotate.IsInvalidEvent(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_event",
			Message: err.Error(),
		})
	default:
		logger.Log.Error().
			Err(err).
			Msg("Annotation edit failed")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "annotation_failed",
			Message: "Failed to apply annotation edit",
		})
	}
}

// paramID parses one uuid path parameter, writing the error response itself
// on failure
func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid " + name + " format",
		})
		return uuid.Nil, false
	}
	return id, true
}

// SetupAnnotationRoutes registers session annotation routes
func SetupAnnotationRoutes(apiGroup *gin.RouterGroup, sessions *session.Manager) {
	handler := NewAnnotationHandler(sessions)

	apiGroup.GET("/session/timelines", handler.GetState)
	apiGroup.POST("/session/timelines", handler.CreateTimeline)
	apiGroup.PUT("/session/timelines/:id", handler.UpdateTimeline)
	apiGroup.DELETE("/session/timelines/:id", handler.RemoveTimeline)
	apiGroup.POST("/session/timelines/:id/activate", handler.ActivateTimeline)
	apiGroup.POST("/session/timelines/:id/events", handler.MarkEvent)
	apiGroup.DELETE("/session/draft", handler.CancelDraft)
	apiGroup.PUT("/session/timelines/:id/events/:eventId", handler.UpdateEvent)
	apiGroup.DELETE("/session/timelines/:id/events/:eventId", handler.RemoveEvent)
}
