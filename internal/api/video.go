package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rinkside/internal/db"
	"rinkside/internal/logger"
	"rinkside/internal/models"
	"rinkside/internal/session"
)

// Request/Response DTOs

// CreateVideoRequest represents a request to register a video
type CreateVideoRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// UpdateVideoRequest represents a request to update video metadata
type UpdateVideoRequest struct {
	Name     *string  `json:"name,omitempty"`
	URL      *string  `json:"url,omitempty"`
	Duration *float64 `json:"duration,omitempty"`
}

// VideoListResponse represents the video library listing
type VideoListResponse struct {
	Items []*models.Video `json:"items"`
	Total int             `json:"total"`
}

// DeleteResponse represents a successful delete operation
type DeleteResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// VideoHandler handles video library API requests
type VideoHandler struct {
	repos    *db.Repositories
	sessions *session.Manager
}

// NewVideoHandler creates a new video handler instance
func NewVideoHandler(repos *db.Repositories, sessions *session.Manager) *VideoHandler {
	return &VideoHandler{
		repos:    repos,
		sessions: sessions,
	}
}

// CreateVideo handles POST /api/videos
func (h *VideoHandler) CreateVideo(c *gin.Context) {
	var req CreateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.URL) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "Both name and url are required",
		})
		return
	}

	video := models.NewVideo(req.Name, req.URL)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repos.Videos.Create(ctx, video); err != nil {
		logger.Log.Error().
			Err(err).
			Str("name", video.Name).
			Msg("Failed to create video")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "create_failed",
			Message: "Failed to register video",
		})
		return
	}

	logger.Log.Info().
		Str("id", video.ID.String()).
		Str("name", video.Name).
		Str("source", video.Source).
		Msg("Video registered")

	c.JSON(http.StatusCreated, video)
}

// ListVideos handles GET /api/videos
func (h *VideoHandler) ListVideos(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	videos, err := h.repos.Videos.List(ctx)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Msg("Failed to list videos")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to retrieve video list",
		})
		return
	}

	c.JSON(http.StatusOK, VideoListResponse{
		Items: videos,
		Total: len(videos),
	})
}

// GetVideo handles GET /api/videos/:id
func (h *VideoHandler) GetVideo(c *gin.Context) {
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
			Msg("Failed to get video by ID")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to retrieve video",
		})
		return
	}

	c.JSON(http.StatusOK, video)
}

// UpdateVideo handles PUT /api/videos/:id
func (h *VideoHandler) UpdateVideo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
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
			Msg("Failed to get video for update")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to retrieve video",
		})
		return
	}

	// Apply partial updates
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		video.Name = strings.TrimSpace(*req.Name)
	}
	if req.URL != nil && strings.TrimSpace(*req.URL) != "" {
		video.URL = strings.TrimSpace(*req.URL)
		video.Source = models.InferSource(video.URL)
	}
	if req.Duration != nil && *req.Duration >= 0 {
		video.Duration = *req.Duration
	}

	if err := h.repos.Videos.Update(ctx, video); err != nil {
		logger.Log.Error().
			Err(err).
			Str("id", id.String()).
			Msg("Failed to update video")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "update_failed",
			Message: "Failed to update video",
		})
		return
	}

	logger.Log.Info().
		Str("id", id.String()).
		Msg("Video updated successfully")

	c.JSON(http.StatusOK, video)
}

// DeleteVideo handles DELETE /api/videos/:id. Timelines and events are
// removed by cascade; if the video is currently loaded, the session is
// unloaded first so the autosaver cannot resurrect the record.
func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if loaded, has := h.sessions.Video(); has && loaded.ID == id {
		h.sessions.Unload()
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repos.Videos.Delete(ctx, id); err != nil {
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
			Msg("Failed to delete video")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "delete_failed",
			Message: "Failed to delete video",
		})
		return
	}

	logger.Log.Info().
		Str("id", id.String()).
		Msg("Video deleted successfully")

	c.JSON(http.StatusOK, DeleteResponse{
		Message: "Video deleted successfully",
	})
}

// LoadVideo handles POST /api/videos/:id/load
func (h *VideoHandler) LoadVideo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	video, err := h.sessions.Load(ctx, id)
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
			Msg("Failed to load video session")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "load_failed",
			Message: "Failed to load video",
		})
		return
	}

	c.JSON(http.StatusOK, video)
}

// parseID validates the :id route parameter, writing the error response
// itself when the id is malformed
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid video ID format",
		})
		return uuid.Nil, false
	}
	return id, true
}

// SetupVideoRoutes registers video library routes
func SetupVideoRoutes(apiGroup *gin.RouterGroup, repos *db.Repositories, sessions *session.Manager) {
	handler := NewVideoHandler(repos, sessions)

	apiGroup.GET("/videos", handler.ListVideos)
	apiGroup.POST("/videos", handler.CreateVideo)
	apiGroup.GET("/videos/:id", handler.GetVideo)
	apiGroup.PUT("/videos/:id", handler.UpdateVideo)
	apiGroup.DELETE("/videos/:id", handler.DeleteVideo)
	apiGroup.POST("/videos/:id/load", handler.LoadVideo)
}
