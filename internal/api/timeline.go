package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rinkside/internal/db"
	"rinkside/internal/logger"
	"rinkside/internal/models"
	"rinkside/internal/persist"
	"rinkside/internal/session"
)

// maxImportSize bounds an uploaded artifact
const maxImportSize = 10 << 20 // 10 MiB

// TimelinesResponse wraps a video's full timeline record
type TimelinesResponse struct {
	Timelines []*models.Timeline `json:"timelines"`
}

// ReplaceTimelinesRequest carries the wholesale timeline replacement
type ReplaceTimelinesRequest struct {
	Timelines []*models.Timeline `json:"timelines"`
}

// TimelineHandler handles the per-video timeline record endpoints
type TimelineHandler struct {
	repos    *db.Repositories
	sessions *session.Manager
}

// NewTimelineHandler creates a new timeline handler instance
func NewTimelineHandler(repos *db.Repositories, sessions *session.Manager) *TimelineHandler {
	return &TimelineHandler{
		repos:    repos,
		sessions: sessions,
	}
}

// GetTimelines handles GET /api/videos/:id/timelines
func (h *TimelineHandler) GetTimelines(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	timelines, ok := h.fetch(ctx, c, id)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, TimelinesResponse{Timelines: timelines})
}

// ReplaceTimelines handles PUT /api/videos/:id/timelines. The stored
// record is replaced wholesale; a validation failure on any timeline or
// event rejects the whole request and leaves the old record intact.
func (h *TimelineHandler) ReplaceTimelines(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req ReplaceTimelinesRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Timelines == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Request body must contain a timelines array",
		})
		return
	}

	if len(req.Timelines) > models.MaxTimelines {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "timeline_limit",
			Message: fmt.Sprintf("A video may hold at most %d timelines", models.MaxTimelines),
		})
		return
	}
	for _, tl := range req.Timelines {
		for i := range tl.Events {
			if err := tl.Events[i].Validate(); err != nil {
				c.JSON(http.StatusBadRequest, ErrorResponse{
					Error:   "invalid_event",
					Message: err.Error(),
				})
				return
			}
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if !h.videoExists(ctx, c, id) {
		return
	}

	if err := h.repos.Timelines.ReplaceForVideo(ctx, id, req.Timelines); err != nil {
		logger.Log.Error().
			Err(err).
			Str("video_id", id.String()).
			Msg("Failed to replace timelines")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "update_failed",
			Message: "Failed to save timelines",
		})
		return
	}

	h.refreshSession(ctx, id)

	logger.Log.Info().
		Str("video_id", id.String()).
		Int("timelines", len(req.Timelines)).
		Msg("Timelines replaced")

	c.JSON(http.StatusOK, TimelinesResponse{Timelines: req.Timelines})
}

// ExportTimelines handles GET /api/videos/:id/timelines/export, serving
// the artifact as a JSON download named after the video and export date
func (h *TimelineHandler) ExportTimelines(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	video, err := h.repos.Videos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Video not found",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("id", id.String()).
			Msg("Failed to get video for export")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to retrieve video",
		})
		return
	}

	timelines, ok := h.fetch(ctx, c, id)
	if !ok {
		return
	}

	data, filename, err := persist.Export(video, timelines)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("video_id", id.String()).
			Msg("Failed to serialize export")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "export_failed",
			Message: "Failed to export timelines",
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json", data)
}

// ImportTimelines handles POST /api/videos/:id/timelines/import. The
// uploaded artifact replaces the video's timeline record; the video record
// itself is never modified.
func (h *TimelineHandler) ImportTimelines(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to read request body",
		})
		return
	}

	timelines, err := persist.Import(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "malformed_import",
			Message: "Import file must contain a timelines array",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if !h.videoExists(ctx, c, id) {
		return
	}

	if err := h.repos.Timelines.ReplaceForVideo(ctx, id, timelines); err != nil {
		logger.Log.Error().
			Err(err).
			Str("video_id", id.String()).
			Msg("Failed to store imported timelines")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "import_failed",
			Message: "Failed to import timelines",
		})
		return
	}

	h.refreshSession(ctx, id)

	logger.Log.Info().
		Str("video_id", id.String()).
		Int("timelines", len(timelines)).
		Msg("Timelines imported")

	c.JSON(http.StatusOK, TimelinesResponse{Timelines: timelines})
}

// fetch loads a video's timelines, writing the error response itself on
// failure
func (h *TimelineHandler) fetch(ctx context.Context, c *gin.Context, id uuid.UUID) ([]*models.Timeline, bool) {
	if !h.videoExists(ctx, c, id) {
		return nil, false
	}

	timelines, err := h.repos.Timelines.GetForVideo(ctx, id)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("video_id", id.String()).
			Msg("Failed to get timelines")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to retrieve timelines",
		})
		return nil, false
	}
	return timelines, true
}

// videoExists confirms the video record, writing the error response itself
// when it is missing
func (h *TimelineHandler) videoExists(ctx context.Context, c *gin.Context, id uuid.UUID) bool {
	if _, err := h.repos.Videos.GetByID(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Video not found",
			})
			return false
		}

		logger.Log.Error().
			Err(err).
			Str("id", id.String()).
			Msg("Failed to check video existence")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to check video",
		})
		return false
	}
	return true
}

// refreshSession re-hydrates the live annotation state when the modified
// video is the one currently loaded, so the session and the record store
// do not diverge. The autosaver is suspended so hydration does not write
// the record straight back.
func (h *TimelineHandler) refreshSession(ctx context.Context, id uuid.UUID) {
	loaded, has := h.sessions.Video()
	if !has || loaded.ID != id {
		return
	}

	timelines, err := h.repos.Timelines.GetForVideo(ctx, id)
	if err != nil {
		logger.Log.Warn().
			Err(err).
			Str("video_id", id.String()).
			Msg("Failed to refresh session after timeline write")
		return
	}

	h.sessions.Saver().Suspend()
	h.sessions.Annotations().SetVideo(id, timelines)
	h.sessions.Saver().Resume()
}

// SetupTimelineRoutes registers timeline record routes
func SetupTimelineRoutes(apiGroup *gin.RouterGroup, repos *db.Repositories, sessions *session.Manager) {
	handler := NewTimelineHandler(repos, sessions)

	apiGroup.GET("/videos/:id/timelines", handler.GetTimelines)
	apiGroup.PUT("/videos/:id/timelines", handler.ReplaceTimelines)
	apiGroup.GET("/videos/:id/timelines/export", handler.ExportTimelines)
	apiGroup.POST("/videos/:id/timelines/import", handler.ImportTimelines)
}
