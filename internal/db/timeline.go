package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"rinkside/internal/models"
)

// TimelineRepository handles database operations for timelines and their events.
// The stored record for a video is always the full timeline sequence; writes
// replace it wholesale, matching the PUT semantics of the timeline endpoint.
type TimelineRepository struct {
	db *DB
}

// NewTimelineRepository creates a new timeline repository
func NewTimelineRepository(db *DB) *TimelineRepository {
	return &TimelineRepository{db: db}
}

// GetForVideo retrieves all timelines for a video in insertion order, with
// each timeline's events attached in their own insertion order. Returns an
// empty slice when the video has no timelines.
func (r *TimelineRepository) GetForVideo(ctx context.Context, videoID uuid.UUID) ([]*models.Timeline, error) {
	var timelines []*models.Timeline
	result := r.db.WithContext(ctx).
		Where("video_id = ?", videoID.String()).
		Order("position ASC").
		Find(&timelines)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list timelines: %w", MapGormError(result.Error))
	}

	if len(timelines) == 0 {
		return []*models.Timeline{}, nil
	}

	ids := make([]string, len(timelines))
	for i, t := range timelines {
		ids[i] = t.ID.String()
	}

	var events []models.TimelineEvent
	result = r.db.WithContext(ctx).
		Where("timeline_id IN ?", ids).
		Order("position ASC").
		Find(&events)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list timeline events: %w", MapGormError(result.Error))
	}

	// Group events by owning timeline
	byTimeline := make(map[uuid.UUID][]models.TimelineEvent, len(timelines))
	for _, e := range events {
		byTimeline[e.TimelineID] = append(byTimeline[e.TimelineID], e)
	}
	for _, t := range timelines {
		t.Events = byTimeline[t.ID]
		if t.Events == nil {
			t.Events = []models.TimelineEvent{}
		}
	}

	return timelines, nil
}

// ReplaceForVideo replaces the stored timeline record for a video wholesale.
// Runs in a single transaction so a failed write leaves the old record intact.
func (r *TimelineRepository) ReplaceForVideo(ctx context.Context, videoID uuid.UUID, timelines []*models.Timeline) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Deleting timelines cascades to their events
		if err := tx.Where("video_id = ?", videoID.String()).Delete(&models.Timeline{}).Error; err != nil {
			return err
		}

		for i, t := range timelines {
			row := t.Clone()
			row.VideoID = videoID
			row.Position = i
			if err := tx.Create(row).Error; err != nil {
				return err
			}
			for j := range row.Events {
				ev := row.Events[j]
				ev.TimelineID = row.ID
				ev.Position = j
				if err := tx.Create(&ev).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace timelines: %w", MapGormError(err))
	}
	return nil
}

// DeleteForVideo removes the timeline record for a video
func (r *TimelineRepository) DeleteForVideo(ctx context.Context, videoID uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("video_id = ?", videoID.String()).Delete(&models.Timeline{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete timelines: %w", MapGormError(result.Error))
	}
	return nil
}
