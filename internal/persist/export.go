package persist

import (
	"encoding/json"
	"fmt"
	"time"

	"rinkside/internal/models"
)

// ArtifactVersion is written into every export artifact
const ArtifactVersion = "1.0"

// Artifact is the portable export format. Internal bookkeeping fields
// (video id, positions, creation times) are excluded by the model JSON
// tags, so an artifact can be imported into a different video or a
// different installation.
type Artifact struct {
	Timelines  []*models.Timeline `json:"timelines"`
	ExportedAt time.Time          `json:"exportedAt"`
	Version    string             `json:"version"`
}

// Export serializes a video's timelines into an artifact and returns the
// JSON bytes along with the suggested download filename, which is the
// video's base name plus the export date.
func Export(video *models.Video, timelines []*models.Timeline) ([]byte, string, error) {
	if timelines == nil {
		timelines = []*models.Timeline{}
	}
	artifact := Artifact{
		Timelines:  timelines,
		ExportedAt: time.Now().UTC(),
		Version:    ArtifactVersion,
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("failed to serialize export: %w", err)
	}

	filename := fmt.Sprintf("%s-%s.json", video.BaseName(), artifact.ExportedAt.Format("2006-01-02"))
	return data, filename, nil
}
