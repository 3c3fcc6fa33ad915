package meeting_module

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetingcopilot/api/internal/stores/live"
	"github.com/meetingcopilot/api/internal/stores/meetings"
	"github.com/meetingcopilot/api/pkg/meeting"
)

// fakeAI returns canned responses so tests never touch the AI engine
type fakeAI struct {
	suggestions meeting.Suggestions
	summary     *meeting.Summary
	enhanced    string
	err         error
}

func (f *fakeAI) GenerateSuggestions(_ context.Context, _ []string) (meeting.Suggestions, error) {
	return f.suggestions, f.err
}

func (f *fakeAI) GenerateSummary(_ context.Context, _ string, _ []meeting.TranscriptSegment) (*meeting.Summary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

func (f *fakeAI) EnhanceNotes(_ context.Context, _ string) (string, error) {
	return f.enhanced, f.err
}

// fakeBlob records uploads in memory
type fakeBlob struct {
	uploads map[string][]byte
}

func newFakeBlob() *fakeBlob {
	return &fakeBlob{uploads: make(map[string][]byte)}
}

func (f *fakeBlob) Upload(_ context.Context, pathname, _ string, data io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(data); err != nil {
		return "", err
	}
	f.uploads[pathname] = buf.Bytes()
	return "https://blob.test/" + pathname, nil
}

func (f *fakeBlob) GenerateClientToken(pathname, _ string) (string, error) {
	return "client-token-" + pathname, nil
}

func (f *fakeBlob) UploadURL(pathname string) string {
	return "https://blob.test/" + pathname
}

// newTestMeetingService wires the service against in-memory collaborators
func newTestMeetingService(t *testing.T, engine *fakeAI) (*MeetingService, *meetings.InMemoryStore, *live.InMemoryStore, *fakeBlob) {
	t.Helper()

	store := meetings.NewInMemoryStore()
	liveStore := live.NewInMemoryStore()
	blobStore := newFakeBlob()

	require.NoError(t, Init(store, liveStore, blobStore, engine, nil))
	return meetingService, store, liveStore, blobStore
}

// Test that starting a meeting creates the durable row and its live entry
// under one id
func TestMeetingService_StartMeeting(t *testing.T) {
	service, store, liveStore, _ := newTestMeetingService(t, &fakeAI{})
	ctx := context.Background()

	userID := uuid.New()
	created, err := service.StartMeeting(ctx, userID, meeting.TypeAudioOnly, "Planning")
	require.NoError(t, err)
	assert.Equal(t, "Planning", created.Title)
	assert.Equal(t, meeting.StatusActive, created.Status)

	id, err := uuid.Parse(created.ID)
	require.NoError(t, err)

	row, err := store.GetMeeting(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, userID, row.UserID)

	liveEntry, found := liveStore.Get(created.ID)
	require.True(t, found)
	assert.Equal(t, meeting.TypeAudioOnly, liveEntry.Type)
	assert.Equal(t, "Planning", liveEntry.Title)
}

// Test that fetching a meeting overlays live state over the durable row
func TestMeetingService_GetMeetingOverlaysLive(t *testing.T) {
	service, _, liveStore, _ := newTestMeetingService(t, &fakeAI{})
	ctx := context.Background()

	userID := uuid.New()
	created, err := service.StartMeeting(ctx, userID, meeting.TypeAudioOnly, "")
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	segments := []meeting.TranscriptSegment{{Text: "live text", Timestamp: 12.5}}
	require.True(t, service.UpdateTranscript(created.ID, segments))

	got, ownerID, err := service.GetMeeting(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, userID, ownerID)
	assert.Equal(t, segments, got.TranscriptSegments)
	assert.Equal(t, []string{"live text"}, got.Transcript)
	assert.Equal(t, 13, got.Duration)

	// Once the live entry is gone the durable row stands alone
	liveStore.Delete(created.ID)
	got, _, err = service.GetMeeting(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, got.TranscriptSegments, "durable row was never written on the live path")
}

// Test that the transcript path is live-only
func TestMeetingService_UpdateTranscript(t *testing.T) {
	service, store, _, _ := newTestMeetingService(t, &fakeAI{})
	ctx := context.Background()

	created, err := service.StartMeeting(ctx, uuid.New(), meeting.TypeAudioOnly, "")
	require.NoError(t, err)

	require.True(t, service.UpdateTranscript(created.ID, []meeting.TranscriptSegment{
		{Text: "a", Timestamp: 5},
	}))
	assert.False(t, service.UpdateTranscript("not-a-live-meeting", nil))

	// The durable row is untouched by transcript updates
	row, err := store.GetMeeting(ctx, uuid.MustParse(created.ID))
	require.NoError(t, err)
	assert.Empty(t, row.Transcript)
}

// Test suggestion refresh over the live transcript
func TestMeetingService_RefreshSuggestions(t *testing.T) {
	engine := &fakeAI{
		suggestions: meeting.Suggestions{
			Topics:    []string{"roadmap"},
			Decisions: []meeting.Decision{{Text: "go", Confidence: 0.8}},
			Actions:   []meeting.ActionItem{},
		},
	}
	service, _, liveStore, _ := newTestMeetingService(t, engine)
	ctx := context.Background()

	created, err := service.StartMeeting(ctx, uuid.New(), meeting.TypeAudioOnly, "")
	require.NoError(t, err)

	got, found, err := service.RefreshSuggestions(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, engine.suggestions, got)

	liveEntry, ok := liveStore.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, engine.suggestions, liveEntry.Suggestions)

	// An absent live entry reports found=false without calling the engine
	_, found, err = service.RefreshSuggestions(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

// Test finalization: summary persisted durably and the live entry completed
func TestMeetingService_FinalizeMeeting(t *testing.T) {
	engine := &fakeAI{
		summary: &meeting.Summary{
			Overall:     "we decided things",
			ActionItems: []meeting.ActionItem{{Text: "follow up"}},
			Decisions:   []meeting.Decision{},
			Topics:      []meeting.TopicSummary{},
		},
	}
	service, store, liveStore, _ := newTestMeetingService(t, engine)
	ctx := context.Background()

	created, err := service.StartMeeting(ctx, uuid.New(), meeting.TypeAudioOnly, "")
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	require.True(t, service.UpdateTranscript(created.ID, []meeting.TranscriptSegment{
		{Text: "all the words", Timestamp: 60},
	}))

	summary, err := service.FinalizeMeeting(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "we decided things", summary.Overall)

	// Durable row carries the live state and the summary, marked completed
	row, err := store.GetMeeting(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(meeting.StatusCompleted), row.Status)
	assert.Equal(t, "all the words", row.Transcript)
	assert.Equal(t, 60, row.Duration)

	out := row.ToAPI()
	require.NotNil(t, out.Summary)
	assert.Equal(t, *engine.summary, *out.Summary)

	// Live entry is completed too
	liveEntry, found := liveStore.Get(created.ID)
	require.True(t, found)
	assert.Equal(t, meeting.StatusCompleted, liveEntry.Status)
	require.NotNil(t, liveEntry.Summary)
}

// Test finalization after the live entry has been evicted
func TestMeetingService_FinalizeWithoutLiveEntry(t *testing.T) {
	engine := &fakeAI{summary: &meeting.Summary{Overall: "from durable state"}}
	service, store, liveStore, _ := newTestMeetingService(t, engine)
	ctx := context.Background()

	created, err := service.StartMeeting(ctx, uuid.New(), meeting.TypeAudioOnly, "")
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)
	liveStore.Delete(created.ID)

	summary, err := service.FinalizeMeeting(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "from durable state", summary.Overall)

	row, err := store.GetMeeting(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(meeting.StatusCompleted), row.Status)

	// Unknown meetings fail cleanly
	_, err = service.FinalizeMeeting(ctx, uuid.New())
	assert.ErrorIs(t, err, meetings.ErrNotFound)
}

// Test that an engine failure during finalization reverts the live status
func TestMeetingService_FinalizeReverts(t *testing.T) {
	engine := &fakeAI{err: fmt.Errorf("engine down")}
	service, store, liveStore, _ := newTestMeetingService(t, engine)
	ctx := context.Background()

	created, err := service.StartMeeting(ctx, uuid.New(), meeting.TypeAudioOnly, "")
	require.NoError(t, err)

	_, err = service.FinalizeMeeting(ctx, uuid.MustParse(created.ID))
	require.Error(t, err)

	liveEntry, found := liveStore.Get(created.ID)
	require.True(t, found)
	assert.Equal(t, meeting.StatusActive, liveEntry.Status, "failed finalization leaves the meeting active")

	row, err := store.GetMeeting(ctx, uuid.MustParse(created.ID))
	require.NoError(t, err)
	assert.Equal(t, string(meeting.StatusActive), row.Status)
}

// Test that a failed re-finalization restores the prior status instead of
// flipping a completed meeting back to active
func TestMeetingService_FinalizeFailureKeepsCompleted(t *testing.T) {
	engine := &fakeAI{summary: &meeting.Summary{Overall: "wrapped up"}}
	service, _, liveStore, _ := newTestMeetingService(t, engine)
	ctx := context.Background()

	created, err := service.StartMeeting(ctx, uuid.New(), meeting.TypeAudioOnly, "")
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	_, err = service.FinalizeMeeting(ctx, id)
	require.NoError(t, err)

	engine.err = fmt.Errorf("engine down")
	_, err = service.FinalizeMeeting(ctx, id)
	require.Error(t, err)

	liveEntry, found := liveStore.Get(created.ID)
	require.True(t, found)
	assert.Equal(t, meeting.StatusCompleted, liveEntry.Status)
}

// Test that deleting a meeting clears both stores
func TestMeetingService_DeleteMeeting(t *testing.T) {
	service, store, liveStore, _ := newTestMeetingService(t, &fakeAI{})
	ctx := context.Background()

	created, err := service.StartMeeting(ctx, uuid.New(), meeting.TypeAudioOnly, "")
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	require.NoError(t, service.DeleteMeeting(ctx, id))

	_, err = store.GetMeeting(ctx, id)
	assert.ErrorIs(t, err, meetings.ErrNotFound)
	_, found := liveStore.Get(created.ID)
	assert.False(t, found)

	assert.ErrorIs(t, service.DeleteMeeting(ctx, id), meetings.ErrNotFound)
}

// Test audio upload naming and bookkeeping
func TestMeetingService_SaveAudio(t *testing.T) {
	service, store, _, blobStore := newTestMeetingService(t, &fakeAI{})
	ctx := context.Background()

	created, err := service.StartMeeting(ctx, uuid.New(), meeting.TypeAudioOnly, "")
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	url, err := service.SaveAudio(ctx, id, "recording.webm", "audio/webm", true, bytes.NewReader([]byte("partial")))
	require.NoError(t, err)
	assert.Equal(t, "https://blob.test/"+created.ID+"-temp.webm", url)

	// A second partial upload overwrites the same object
	_, err = service.SaveAudio(ctx, id, "recording.webm", "audio/webm", true, bytes.NewReader([]byte("partial-2")))
	require.NoError(t, err)
	assert.Equal(t, []byte("partial-2"), blobStore.uploads[created.ID+"-temp.webm"])

	// The final upload lands under its own name
	url, err = service.SaveAudio(ctx, id, "recording.webm", "audio/webm", false, bytes.NewReader([]byte("final")))
	require.NoError(t, err)
	assert.Equal(t, "https://blob.test/"+created.ID+"-live.webm", url)

	row, err := store.GetMeeting(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, url, row.AudioPath)

	// Unknown meetings are rejected before anything is uploaded
	before := len(blobStore.uploads)
	_, err = service.SaveAudio(ctx, uuid.New(), "x.webm", "audio/webm", false, bytes.NewReader(nil))
	assert.ErrorIs(t, err, meetings.ErrNotFound)
	assert.Len(t, blobStore.uploads, before)
}

// Test deterministic audio object naming
func TestAudioObjectName(t *testing.T) {
	tests := []struct {
		name      string
		filename  string
		isPartial bool
		expected  string
	}{
		{"partial webm", "recording.webm", true, "id-1-temp.webm"},
		{"final webm", "recording.webm", false, "id-1-live.webm"},
		{"uppercase extension", "RECORDING.MP4", false, "id-1-live.mp4"},
		{"no extension defaults", "recording", true, "id-1-temp.webm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AudioObjectName("id-1", tt.filename, tt.isPartial))
		})
	}
}

// Test client upload token issuance
func TestMeetingService_CreateUploadToken(t *testing.T) {
	service, _, _, _ := newTestMeetingService(t, &fakeAI{})

	token, uploadURL, err := service.CreateUploadToken("abc-live.webm", "audio/webm")
	require.NoError(t, err)
	assert.Equal(t, "client-token-abc-live.webm", token)
	assert.Equal(t, "https://blob.test/abc-live.webm", uploadURL)
}
