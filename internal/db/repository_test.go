package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rinkside/internal/models"
)

// setupTestDB creates a temp database with migrations applied
func setupTestDB(t *testing.T) (*Repositories, *DB) {
	t.Helper()

	tmpFile := filepath.Join(t.TempDir(), "test.db")
	database, err := New(tmpFile)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err)
	require.NoError(t, RunMigrations(sqlDB, "file://../../migrations"))

	return NewRepositories(database), database
}

func seedVideo(t *testing.T, repos *Repositories) *models.Video {
	t.Helper()
	video := models.NewVideo("game1.mp4", "/videos/game1.mp4")
	require.NoError(t, repos.Videos.Create(context.Background(), video))
	return video
}

func TestVideoRepository_CreateAndGet(t *testing.T) {
	repos, _ := setupTestDB(t)
	ctx := context.Background()

	video := seedVideo(t, repos)

	got, err := repos.Videos.GetByID(ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, video.ID, got.ID)
	assert.Equal(t, "game1.mp4", got.Name)
	assert.Equal(t, models.SourceLocal, got.Source)
	assert.Equal(t, float64(0), got.Duration)
}

func TestVideoRepository_GetByID_NotFound(t *testing.T) {
	repos, _ := setupTestDB(t)

	_, err := repos.Videos.GetByID(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestVideoRepository_List_NewestFirst(t *testing.T) {
	repos, _ := setupTestDB(t)
	ctx := context.Background()

	first := models.NewVideo("old.mp4", "/videos/old.mp4")
	require.NoError(t, repos.Videos.Create(ctx, first))

	second := models.NewVideo("new.mp4", "/videos/new.mp4")
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, repos.Videos.Create(ctx, second))

	videos, err := repos.Videos.List(ctx)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, second.ID, videos[0].ID)
	assert.Equal(t, first.ID, videos[1].ID)
}

func TestVideoRepository_Update(t *testing.T) {
	repos, _ := setupTestDB(t)
	ctx := context.Background()

	video := seedVideo(t, repos)
	video.Duration = 3600.5
	video.Name = "renamed.mp4"

	require.NoError(t, repos.Videos.Update(ctx, video))

	got, err := repos.Videos.GetByID(ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, 3600.5, got.Duration)
	assert.Equal(t, "renamed.mp4", got.Name)
}

func TestVideoRepository_Update_NotFound(t *testing.T) {
	repos, _ := setupTestDB(t)

	ghost := models.NewVideo("ghost.mp4", "/videos/ghost.mp4")
	err := repos.Videos.Update(context.Background(), ghost)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestVideoRepository_Delete_CascadesToTimelines(t *testing.T) {
	repos, _ := setupTestDB(t)
	ctx := context.Background()

	video := seedVideo(t, repos)
	tl := models.NewTimeline(video.ID, "Goals", "#ef4444", models.EventTypePoint)
	ev := models.NewPointEvent(tl.ID, 65, "#ef4444", "")
	tl.Events = append(tl.Events, *ev)
	require.NoError(t, repos.Timelines.ReplaceForVideo(ctx, video.ID, []*models.Timeline{tl}))

	require.NoError(t, repos.Videos.Delete(ctx, video.ID))

	_, err := repos.Videos.GetByID(ctx, video.ID)
	assert.True(t, IsNotFound(err))

	timelines, err := repos.Timelines.GetForVideo(ctx, video.ID)
	require.NoError(t, err)
	assert.Empty(t, timelines)
}

func TestVideoRepository_Delete_NotFound(t *testing.T) {
	repos, _ := setupTestDB(t)

	err := repos.Videos.Delete(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestTimelineRepository_RoundTrip(t *testing.T) {
	repos, _ := setupTestDB(t)
	ctx := context.Background()

	video := seedVideo(t, repos)

	shifts := models.NewTimeline(video.ID, "Shifts", "#3b82f6", models.EventTypeDuration)
	shift := models.NewDurationEvent(shifts.ID, 10, 55, "#3b82f6", "First shift")
	shifts.Events = append(shifts.Events, *shift)

	goals := models.NewTimeline(video.ID, "Goals", "#ef4444", models.EventTypePoint)
	goalA := models.NewPointEvent(goals.ID, 125, "#ef4444", "")
	goalB := models.NewPointEvent(goals.ID, 310, "#10b981", "Power play goal")
	desc := "tipped in front"
	goalB.Description = &desc
	goals.Events = append(goals.Events, *goalA, *goalB)

	require.NoError(t, repos.Timelines.ReplaceForVideo(ctx, video.ID, []*models.Timeline{shifts, goals}))

	got, err := repos.Timelines.GetForVideo(ctx, video.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Insertion order preserved
	assert.Equal(t, "Shifts", got[0].Name)
	assert.Equal(t, "Goals", got[1].Name)

	require.Len(t, got[0].Events, 1)
	assert.Equal(t, models.EventTypeDuration, got[0].Events[0].Type)
	require.NotNil(t, got[0].Events[0].EndTime)
	assert.Equal(t, 55.0, *got[0].Events[0].EndTime)

	require.Len(t, got[1].Events, 2)
	assert.Equal(t, 125.0, got[1].Events[0].StartTime)
	assert.Nil(t, got[1].Events[0].EndTime)
	require.NotNil(t, got[1].Events[1].Description)
	assert.Equal(t, "tipped in front", *got[1].Events[1].Description)
}

func TestTimelineRepository_ReplaceIsWholesale(t *testing.T) {
	repos, _ := setupTestDB(t)
	ctx := context.Background()

	video := seedVideo(t, repos)

	old := models.NewTimeline(video.ID, "Old", "#3b82f6", models.EventTypePoint)
	require.NoError(t, repos.Timelines.ReplaceForVideo(ctx, video.ID, []*models.Timeline{old}))

	replacement := models.NewTimeline(video.ID, "New", "#ef4444", models.EventTypePoint)
	require.NoError(t, repos.Timelines.ReplaceForVideo(ctx, video.ID, []*models.Timeline{replacement}))

	got, err := repos.Timelines.GetForVideo(ctx, video.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "New", got[0].Name)
	assert.Equal(t, replacement.ID, got[0].ID)
}

func TestTimelineRepository_GetForVideo_EmptyIsNotNil(t *testing.T) {
	repos, _ := setupTestDB(t)

	video := seedVideo(t, repos)

	got, err := repos.Timelines.GetForVideo(context.Background(), video.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTimelineRepository_DeleteForVideo(t *testing.T) {
	repos, _ := setupTestDB(t)
	ctx := context.Background()

	video := seedVideo(t, repos)
	tl := models.NewTimeline(video.ID, "Goals", "#ef4444", models.EventTypePoint)
	require.NoError(t, repos.Timelines.ReplaceForVideo(ctx, video.ID, []*models.Timeline{tl}))

	require.NoError(t, repos.Timelines.DeleteForVideo(ctx, video.ID))

	got, err := repos.Timelines.GetForVideo(ctx, video.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMapGormError(t *testing.T) {
	assert.Nil(t, MapGormError(nil))
	assert.ErrorIs(t, MapGormError(assert.AnError), assert.AnError)
}
