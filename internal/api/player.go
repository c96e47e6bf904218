package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rinkside/internal/models"
	"rinkside/internal/player"
	"rinkside/internal/session"
)

// PlayerCommandRequest is a partial playback command. Only the fields
// present in the body are applied.
type PlayerCommandRequest struct {
	Duration     *float64 `json:"duration,omitempty"` // reported on first metadata load
	CurrentTime  *float64 `json:"currentTime,omitempty"`
	PlaybackRate *float64 `json:"playbackRate,omitempty"`
	PlayPause    *bool    `json:"playPause,omitempty"` // true toggles
	Volume       *float64 `json:"volume,omitempty"`
	ToggleMute   *bool    `json:"toggleMute,omitempty"` // true toggles
	Scrubbing    *bool    `json:"scrubbing,omitempty"`
}

// FrameStepRequest steps the position by one frame
type FrameStepRequest struct {
	Direction string `json:"direction"` // "prev" or "next"
}

// WheelRequest feeds one scrub wheel delta
type WheelRequest struct {
	Delta float64 `json:"delta"`
}

// PlayerResponse is the playback state returned by every player endpoint
type PlayerResponse struct {
	State      player.State  `json:"state"`
	Ended      bool          `json:"ended"`
	ScrubSpeed float64       `json:"scrubSpeed"`
	Video      *models.Video `json:"video,omitempty"`
}

// PlayerHandler handles playback control API requests
type PlayerHandler struct {
	sessions *session.Manager
}

// NewPlayerHandler creates a new player handler instance
func NewPlayerHandler(sessions *session.Manager) *PlayerHandler {
	return &PlayerHandler{sessions: sessions}
}

// GetState handles GET /api/player
func (h *PlayerHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.response())
}

// Command handles POST /api/player. Fields are applied in a fixed order:
// duration before currentTime, so a metadata report and an initial seek can
// share one request.
func (h *PlayerHandler) Command(c *gin.Context) {
	var req PlayerCommandRequest
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
	store := h.sessions.Player()

	if req.Duration != nil && *req.Duration > 0 {
		h.sessions.SetDuration(*req.Duration)
	}
	if req.CurrentTime != nil {
		store.SetCurrentTime(*req.CurrentTime)
	}
	if req.PlaybackRate != nil {
		store.SetPlaybackRate(*req.PlaybackRate)
	}
	if req.PlayPause != nil && *req.PlayPause {
		store.TogglePlayPause()
	}
	if req.Volume != nil {
		store.SetVolume(*req.Volume)
	}
	if req.ToggleMute != nil && *req.ToggleMute {
		store.ToggleMute()
	}
	if req.Scrubbing != nil {
		if *req.Scrubbing {
			store.SetScrubbing(true)
		} else {
			h.sessions.Scrub().End()
		}
	}

	c.JSON(http.StatusOK, h.response())
}

// StepFrame handles POST /api/player/frame
func (h *PlayerHandler) StepFrame(c *gin.Context) {
	var req FrameStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	if req.Direction != "prev" && req.Direction != "next" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_direction",
			Message: "Direction must be \"prev\" or \"next\"",
		})
		return
	}

	if !h.requireLoaded(c) {
		return
	}

	direction := 1
	if req.Direction == "prev" {
		direction = -1
	}
	h.sessions.Scrub().StepFrame(direction)

	c.JSON(http.StatusOK, h.response())
}

// Wheel handles POST /api/player/wheel
func (h *PlayerHandler) Wheel(c *gin.Context) {
	var req WheelRequest
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

	h.sessions.Scrub().Wheel(req.Delta)

	c.JSON(http.StatusOK, h.response())
}

// requireLoaded rejects playback commands while no video is loaded,
// writing the error response itself
func (h *PlayerHandler) requireLoaded(c *gin.Context) bool {
	if _, has := h.sessions.Video(); !has {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "no_video_loaded",
			Message: "Load a video before issuing playback commands",
		})
		return false
	}
	return true
}

// response assembles the current playback state
func (h *PlayerHandler) response() PlayerResponse {
	resp := PlayerResponse{
		State:      h.sessions.Player().Snapshot(),
		Ended:      h.sessions.Player().Ended(),
		ScrubSpeed: h.sessions.Scrub().Speed(),
	}
	if video, has := h.sessions.Video(); has {
		resp.Video = video
	}
	return resp
}

// SetupPlayerRoutes registers playback control routes
func SetupPlayerRoutes(apiGroup *gin.RouterGroup, sessions *session.Manager) {
	handler := NewPlayerHandler(sessions)

	apiGroup.GET("/player", handler.GetState)
	apiGroup.POST("/player", handler.Command)
	apiGroup.POST("/player/frame", handler.StepFrame)
	apiGroup.POST("/player/wheel", handler.Wheel)
}
