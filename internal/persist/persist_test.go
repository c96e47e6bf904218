package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rinkside/internal/annotate"
	"rinkside/internal/models"
	"rinkside/internal/schedule"
)

// fakeTimelineStore records ReplaceForVideo calls
type fakeTimelineStore struct {
	mu    sync.Mutex
	calls []savedRecord
	err   error
}

type savedRecord struct {
	videoID   uuid.UUID
	timelines []*models.Timeline
}

func (f *fakeTimelineStore) ReplaceForVideo(_ context.Context, videoID uuid.UUID, timelines []*models.Timeline) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, savedRecord{videoID: videoID, timelines: timelines})
	return nil
}

func (f *fakeTimelineStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeTimelineStore) lastCall() savedRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func newTestSaver(t *testing.T) (*annotate.Store, *fakeTimelineStore, *schedule.ManualScheduler, *AutoSaver) {
	t.Helper()
	src := annotate.NewStore()
	repo := &fakeTimelineStore{}
	sched := schedule.NewManualScheduler()
	saver := NewAutoSaver(src, repo, sched, time.Second)
	saver.Start()
	t.Cleanup(saver.Stop)
	return src, repo, sched, saver
}

func TestAutoSaver_CoalescesEditBursts(t *testing.T) {
	src, repo, sched, _ := newTestSaver(t)

	videoID := uuid.New()
	src.SetVideo(videoID, nil)

	// A burst of edits inside the debounce window
	src.AddTimeline("A")
	src.AddTimeline("B")
	src.AddTimeline("C")

	assert.Equal(t, 0, repo.callCount())

	sched.Advance(time.Second)

	require.Equal(t, 1, repo.callCount())
	saved := repo.lastCall()
	assert.Equal(t, videoID, saved.videoID)
	assert.Len(t, saved.timelines, 3)
}

func TestAutoSaver_DebounceWindowRestartsPerEdit(t *testing.T) {
	src, repo, sched, _ := newTestSaver(t)
	src.SetVideo(uuid.New(), nil)

	src.AddTimeline("A")
	sched.Advance(900 * time.Millisecond)
	src.AddTimeline("B")
	sched.Advance(900 * time.Millisecond)
	assert.Equal(t, 0, repo.callCount())

	sched.Advance(100 * time.Millisecond)
	assert.Equal(t, 1, repo.callCount())
}

func TestAutoSaver_VideoSwitchSavesNewRecordOnly(t *testing.T) {
	src, repo, sched, _ := newTestSaver(t)

	videoA := uuid.New()
	videoB := uuid.New()

	src.SetVideo(videoA, nil)
	src.AddTimeline("A-side")

	// Switching videos before the debounce elapses
	src.SetVideo(videoB, nil)
	sched.Advance(time.Second)

	require.Equal(t, 1, repo.callCount())
	assert.Equal(t, videoB, repo.lastCall().videoID)
}

func TestAutoSaver_NoVideoNoSave(t *testing.T) {
	src, repo, sched, _ := newTestSaver(t)

	src.AddTimeline("orphan")
	sched.Advance(time.Second)

	assert.Equal(t, 0, repo.callCount())
}

func TestAutoSaver_SuspendSkipsHydration(t *testing.T) {
	src, repo, sched, saver := newTestSaver(t)

	saver.Suspend()
	src.SetVideo(uuid.New(), nil)
	saver.Resume()

	sched.Advance(time.Second)
	assert.Equal(t, 0, repo.callCount())

	// Real edits after Resume still save
	src.AddTimeline("A")
	sched.Advance(time.Second)
	assert.Equal(t, 1, repo.callCount())
}

func TestAutoSaver_FlushSavesImmediately(t *testing.T) {
	src, repo, sched, saver := newTestSaver(t)

	src.SetVideo(uuid.New(), nil)
	src.AddTimeline("A")

	saver.Flush()
	require.Equal(t, 1, repo.callCount())

	// The pending debounced save was cancelled by the flush
	sched.Advance(time.Second)
	assert.Equal(t, 1, repo.callCount())
}

func TestAutoSaver_FailureRetriesOnNextChange(t *testing.T) {
	src, repo, sched, _ := newTestSaver(t)
	src.SetVideo(uuid.New(), nil)

	repo.err = fmt.Errorf("disk full")
	src.AddTimeline("A")
	sched.Advance(time.Second)
	assert.Equal(t, 0, repo.callCount())

	repo.err = nil
	src.AddTimeline("B")
	sched.Advance(time.Second)
	assert.Equal(t, 1, repo.callCount())
}

func TestExport_ArtifactShape(t *testing.T) {
	video := models.NewVideo("game-vs-rivals.mp4", "/videos/game.mp4")
	tl := models.NewTimeline(video.ID, "Goals", "#ef4444", models.EventTypePoint)
	ev := models.NewPointEvent(tl.ID, 65, "#ef4444", "")
	tl.Events = append(tl.Events, *ev)

	data, filename, err := Export(video, []*models.Timeline{tl})
	require.NoError(t, err)

	expected := fmt.Sprintf("game-vs-rivals-%s.json", time.Now().UTC().Format("2006-01-02"))
	assert.Equal(t, expected, filename)

	var artifact map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &artifact))
	assert.Equal(t, "1.0", artifact["version"])
	assert.NotEmpty(t, artifact["exportedAt"])

	timelines, ok := artifact["timelines"].([]interface{})
	require.True(t, ok)
	require.Len(t, timelines, 1)

	// Internal bookkeeping fields stay out of the artifact
	first := timelines[0].(map[string]interface{})
	assert.NotContains(t, first, "videoId")
	assert.NotContains(t, first, "position")
}

func TestExport_NilTimelinesBecomesEmptyArray(t *testing.T) {
	video := models.NewVideo("empty.mp4", "/videos/empty.mp4")

	data, _, err := Export(video, nil)
	require.NoError(t, err)

	var artifact struct {
		Timelines []json.RawMessage `json:"timelines"`
	}
	require.NoError(t, json.Unmarshal(data, &artifact))
	assert.NotNil(t, artifact.Timelines)
	assert.Empty(t, artifact.Timelines)
}

func TestImport_RoundTripsExport(t *testing.T) {
	video := models.NewVideo("game.mp4", "/videos/game.mp4")
	tl := models.NewTimeline(video.ID, "Shifts", "#10b981", models.EventTypeDuration)
	ev := models.NewDurationEvent(tl.ID, 10, 30, "#3b82f6", "First shift")
	tl.Events = append(tl.Events, *ev)

	data, _, err := Export(video, []*models.Timeline{tl})
	require.NoError(t, err)

	imported, err := Import(data)
	require.NoError(t, err)
	require.Len(t, imported, 1)

	got := imported[0]
	assert.Equal(t, "Shifts", got.Name)
	assert.Equal(t, "#10b981", got.Color)
	assert.Equal(t, models.EventTypeDuration, got.DefaultEventType)
	assert.Equal(t, tl.ID, got.ID)

	require.Len(t, got.Events, 1)
	assert.Equal(t, ev.ID, got.Events[0].ID)
	assert.Equal(t, "First shift", got.Events[0].Label)
	assert.Equal(t, 10.0, got.Events[0].StartTime)
	require.NotNil(t, got.Events[0].EndTime)
	assert.Equal(t, 30.0, *got.Events[0].EndTime)
	assert.Equal(t, got.ID, got.Events[0].TimelineID)
}

func TestImport_PreservesIdsWhenPresent(t *testing.T) {
	timelineID := uuid.New()
	eventID := uuid.New()
	raw := fmt.Sprintf(`{"timelines":[{"id":%q,"name":"Penalties","events":[{"id":%q,"timelineId":%q,"type":"point","startTime":12}]}]}`,
		timelineID, eventID, timelineID)

	imported, err := Import([]byte(raw))
	require.NoError(t, err)
	require.Len(t, imported, 1)

	assert.Equal(t, timelineID, imported[0].ID)
	require.Len(t, imported[0].Events, 1)
	assert.Equal(t, eventID, imported[0].Events[0].ID)
	assert.Equal(t, timelineID, imported[0].Events[0].TimelineID)
}

func TestImport_UnparseableIdsFallBackToFresh(t *testing.T) {
	raw := `{"timelines":[{"id":"not-a-uuid","events":[{"id":"event-7","timelineId":"legacy-track"}]}]}`

	imported, err := Import([]byte(raw))
	require.NoError(t, err)
	require.Len(t, imported, 1)

	tl := imported[0]
	assert.NotEqual(t, uuid.Nil, tl.ID)
	require.Len(t, tl.Events, 1)
	assert.NotEqual(t, uuid.Nil, tl.Events[0].ID)
	assert.Equal(t, tl.ID, tl.Events[0].TimelineID)
}

func TestImport_MalformedData(t *testing.T) {
	_, err := Import([]byte("not json"))
	assert.True(t, IsMalformedImport(err))

	_, err = Import([]byte(`{"version":"1.0"}`))
	assert.True(t, IsMalformedImport(err))

	_, err = Import([]byte(`{"timelines":"nope"}`))
	assert.True(t, IsMalformedImport(err))
}

func TestImport_LegacyDefaults(t *testing.T) {
	// A minimal legacy file predating most fields
	data := []byte(`{"timelines":[{"events":[{},{"type":"duration","startTime":40}]}]}`)

	imported, err := Import(data)
	require.NoError(t, err)
	require.Len(t, imported, 1)

	tl := imported[0]
	assert.Equal(t, "Untitled Timeline", tl.Name)
	assert.Equal(t, models.TimelineColors[0], tl.Color)
	assert.Equal(t, models.EventTypePoint, tl.DefaultEventType)

	require.Len(t, tl.Events, 2)

	point := tl.Events[0]
	assert.NotEqual(t, uuid.Nil, point.ID)
	assert.Equal(t, models.EventTypePoint, point.Type)
	assert.Equal(t, 0.0, point.StartTime)
	assert.Nil(t, point.EndTime)
	assert.Equal(t, models.DefaultEventColor(), point.Color)
	assert.Equal(t, "Untitled Event", point.Label)

	// A duration event with no end mark gets a one second span
	dur := tl.Events[1]
	assert.Equal(t, 40.0, dur.StartTime)
	require.NotNil(t, dur.EndTime)
	assert.Equal(t, 41.0, *dur.EndTime)
	require.NoError(t, dur.Validate())
}

func TestImport_EmptyTimelinesArrayIsValid(t *testing.T) {
	imported, err := Import([]byte(`{"timelines":[]}`))
	require.NoError(t, err)
	assert.Empty(t, imported)
}

func TestImport_TruncatesBeyondTimelineLimit(t *testing.T) {
	raw := `{"timelines":[{},{},{},{},{},{},{}]}`

	imported, err := Import([]byte(raw))
	require.NoError(t, err)
	assert.Len(t, imported, models.MaxTimelines)
}
