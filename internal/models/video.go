package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Video represents a playable video resource registered with the service.
// Duration starts at 0 and is written once after the first metadata load.
type Video struct {
	ID        uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	Name      string    `json:"name" gorm:"type:text;not null;column:name" validate:"required"`
	URL       string    `json:"url" gorm:"type:text;not null;column:url" validate:"required"`
	Duration  float64   `json:"duration" gorm:"type:real;not null;default:0;column:duration"` // seconds
	Source    string    `json:"source" gorm:"type:text;not null;column:source"`
	CreatedAt time.Time `json:"createdAt" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:updated_at"`
}

// NewVideo creates a new Video with generated UUID, zero duration, and
// source inferred from the URL
func NewVideo(name, url string) *Video {
	now := time.Now().UTC()
	return &Video{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		URL:       strings.TrimSpace(url),
		Duration:  0,
		Source:    InferSource(url),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// InferSource classifies a URL as a local file or a remote drive resource
func InferSource(url string) string {
	if strings.HasPrefix(strings.TrimSpace(url), "http") {
		return SourceGoogleDrive
	}
	return SourceLocal
}

// BaseName returns the video name with any file extension stripped,
// used for naming export artifacts
func (v *Video) BaseName() string {
	name := v.Name
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	return name
}

// DurationString returns duration in M:SS format for display
func (v *Video) DurationString() string {
	return FormatTimestamp(v.Duration)
}

// FormatTimestamp renders a position in seconds as M:SS
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
