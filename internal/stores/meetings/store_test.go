package meetings

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetingcopilot/api/pkg/meeting"
)

// Test creating and fetching a durable row
func TestInMemoryStore_CreateAndGet(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	id := uuid.New()
	userID := uuid.New()
	row := NewMeeting(id, userID, meeting.TypeAudioOnly, "Standup")
	require.NoError(t, store.CreateMeeting(ctx, row))

	got, err := store.GetMeeting(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, "Standup", got.Title)
	assert.Equal(t, string(meeting.TypeAudioOnly), got.Type)
	assert.Equal(t, string(meeting.StatusActive), got.Status)

	_, err = store.GetMeeting(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

// Test that listing is scoped to the owner and ordered newest first
func TestInMemoryStore_GetMeetingsByUser(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	owner := uuid.New()
	other := uuid.New()

	older := NewMeeting(uuid.New(), owner, meeting.TypeAudioOnly, "older")
	older.CreatedAt = time.Now().UTC().Add(-1 * time.Hour)
	require.NoError(t, store.CreateMeeting(ctx, older))

	newer := NewMeeting(uuid.New(), owner, meeting.TypeAudioOnly, "newer")
	newer.CreatedAt = time.Now().UTC()
	require.NoError(t, store.CreateMeeting(ctx, newer))

	require.NoError(t, store.CreateMeeting(ctx, NewMeeting(uuid.New(), other, meeting.TypeUpload, "theirs")))

	rows, err := store.GetMeetingsByUser(ctx, owner)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "newer", rows[0].Title)
	assert.Equal(t, "older", rows[1].Title)
}

// Test the row-to-API projection including JSON column parsing
func TestMeeting_ToAPI(t *testing.T) {
	id := uuid.New()
	row := &Meeting{
		ID:       id,
		UserID:   uuid.New(),
		Title:    "Projection",
		Type:     string(meeting.TypeScreenShare),
		Status:   string(meeting.StatusCompleted),
		Duration: 90,
	}
	row.Transcript = "line one\nline two"
	row.TranscriptSegments = `[{"text":"line one","timestamp":30.0},{"text":"line two","timestamp":90.0}]`
	row.Suggestions = `{"topics":["launch"],"decisions":[],"actions":[]}`
	row.Summary = `{"overall":"shipped it","action_items":[],"decisions":[],"topics":[]}`

	out := row.ToAPI()

	assert.Equal(t, id.String(), out.ID)
	assert.Equal(t, meeting.TypeScreenShare, out.Type)
	assert.Equal(t, meeting.StatusCompleted, out.Status)
	assert.Equal(t, []string{"line one", "line two"}, out.Transcript)
	require.Len(t, out.TranscriptSegments, 2)
	assert.Equal(t, 30.0, out.TranscriptSegments[0].Timestamp)
	assert.Equal(t, []string{"launch"}, out.Suggestions.Topics)
	require.NotNil(t, out.Summary)
	assert.Equal(t, "shipped it", out.Summary.Overall)
	assert.Equal(t, 90, out.Duration)
}

// Test that empty and corrupt columns degrade to empty values
func TestMeeting_ToAPI_Degraded(t *testing.T) {
	row := NewMeeting(uuid.New(), uuid.New(), meeting.TypeAudioOnly, "")
	row.Suggestions = "{not json"
	row.Summary = "{also not json"

	out := row.ToAPI()

	assert.Equal(t, []string{}, out.Transcript)
	assert.Equal(t, []meeting.TranscriptSegment{}, out.TranscriptSegments)
	assert.NotNil(t, out.Suggestions.Topics)
	assert.Nil(t, out.Summary)
}

// Test that saving live state serializes segments and suggestions onto the row
func TestInMemoryStore_SaveLiveState(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	id := uuid.New()
	require.NoError(t, store.CreateMeeting(ctx, NewMeeting(id, uuid.New(), meeting.TypeAudioOnly, "")))

	src := &meeting.Meeting{
		Status:     meeting.StatusProcessing,
		Transcript: []string{"a", "b"},
		TranscriptSegments: []meeting.TranscriptSegment{
			{Text: "a", Timestamp: 10},
			{Text: "b", Timestamp: 31.5},
		},
		Suggestions: meeting.Suggestions{
			Topics:    []string{"t"},
			Decisions: []meeting.Decision{},
			Actions:   []meeting.ActionItem{},
		},
		Duration: 32,
	}
	require.NoError(t, store.SaveLiveState(ctx, id, src))

	got, err := store.GetMeeting(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(meeting.StatusProcessing), got.Status)
	assert.Equal(t, 32, got.Duration)
	assert.Equal(t, "a\nb", got.Transcript)

	out := got.ToAPI()
	assert.Equal(t, src.TranscriptSegments, out.TranscriptSegments)
	assert.Equal(t, src.Suggestions, out.Suggestions)

	assert.ErrorIs(t, store.SaveLiveState(ctx, uuid.New(), src), ErrNotFound)
}

// Test that writing a summary completes the meeting and fills the
// denormalized columns
func TestInMemoryStore_UpdateSummary(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	id := uuid.New()
	require.NoError(t, store.CreateMeeting(ctx, NewMeeting(id, uuid.New(), meeting.TypeAudioOnly, "")))

	summary := &meeting.Summary{
		Overall:     "overall",
		ActionItems: []meeting.ActionItem{{Text: "do it", Assignee: "carol"}},
		Decisions:   []meeting.Decision{{Text: "decided"}},
		Topics:      []meeting.TopicSummary{{Topic: "x", Synthesis: "y"}},
	}
	require.NoError(t, store.UpdateSummary(ctx, id, summary))

	got, err := store.GetMeeting(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(meeting.StatusCompleted), got.Status)

	var topics []meeting.TopicSummary
	require.NoError(t, json.Unmarshal([]byte(got.Topics), &topics))
	assert.Equal(t, summary.Topics, topics)

	var actions []meeting.ActionItem
	require.NoError(t, json.Unmarshal([]byte(got.ActionItems), &actions))
	assert.Equal(t, summary.ActionItems, actions)

	out := got.ToAPI()
	require.NotNil(t, out.Summary)
	assert.Equal(t, *summary, *out.Summary)

	assert.ErrorIs(t, store.UpdateSummary(ctx, uuid.New(), summary), ErrNotFound)
}

// Test that note patches merge into the stored summary without disturbing the
// rest of it
func TestInMemoryStore_UpdateNotes(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	id := uuid.New()
	require.NoError(t, store.CreateMeeting(ctx, NewMeeting(id, uuid.New(), meeting.TypeAudioOnly, "")))

	summary := &meeting.Summary{
		Overall:     "the overall",
		ActionItems: []meeting.ActionItem{{Text: "keep me"}},
		Decisions:   []meeting.Decision{},
		Topics:      []meeting.TopicSummary{},
		RawNotes:    "initial raw",
	}
	require.NoError(t, store.UpdateSummary(ctx, id, summary))

	// Patch only the enhanced notes
	enhanced := "polished notes"
	require.NoError(t, store.UpdateNotes(ctx, id, nil, &enhanced))

	got, err := store.GetMeeting(ctx, id)
	require.NoError(t, err)
	out := got.ToAPI()
	require.NotNil(t, out.Summary)
	assert.Equal(t, "the overall", out.Summary.Overall)
	assert.Equal(t, "initial raw", out.Summary.RawNotes, "nil field is left untouched")
	assert.Equal(t, "polished notes", out.Summary.EnhancedNotes)
	require.Len(t, out.Summary.ActionItems, 1)
	assert.Equal(t, "keep me", out.Summary.ActionItems[0].Text)

	// Patch only the raw notes
	raw := "second raw"
	require.NoError(t, store.UpdateNotes(ctx, id, &raw, nil))

	got, err = store.GetMeeting(ctx, id)
	require.NoError(t, err)
	out = got.ToAPI()
	assert.Equal(t, "second raw", out.Summary.RawNotes)
	assert.Equal(t, "polished notes", out.Summary.EnhancedNotes)

	assert.ErrorIs(t, store.UpdateNotes(ctx, uuid.New(), &raw, nil), ErrNotFound)
}

// Test note patches against a meeting that has no summary yet
func TestInMemoryStore_UpdateNotesWithoutSummary(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	id := uuid.New()
	require.NoError(t, store.CreateMeeting(ctx, NewMeeting(id, uuid.New(), meeting.TypeAudioOnly, "")))

	raw := "notes before any summary"
	require.NoError(t, store.UpdateNotes(ctx, id, &raw, nil))

	got, err := store.GetMeeting(ctx, id)
	require.NoError(t, err)
	out := got.ToAPI()
	require.NotNil(t, out.Summary)
	assert.Equal(t, raw, out.Summary.RawNotes)
	assert.Empty(t, out.Summary.Overall)
}

// Test audio path updates
func TestInMemoryStore_SetAudioPath(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	id := uuid.New()
	require.NoError(t, store.CreateMeeting(ctx, NewMeeting(id, uuid.New(), meeting.TypeAudioOnly, "")))

	require.NoError(t, store.SetAudioPath(ctx, id, "https://blob.example.com/abc-live.webm"))

	got, err := store.GetMeeting(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "https://blob.example.com/abc-live.webm", got.AudioPath)

	assert.ErrorIs(t, store.SetAudioPath(ctx, uuid.New(), "x"), ErrNotFound)
}

// Test deletion paths including the per-user cascade count
func TestInMemoryStore_Delete(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	owner := uuid.New()
	id := uuid.New()
	require.NoError(t, store.CreateMeeting(ctx, NewMeeting(id, owner, meeting.TypeAudioOnly, "")))
	require.NoError(t, store.CreateMeeting(ctx, NewMeeting(uuid.New(), owner, meeting.TypeUpload, "")))
	require.NoError(t, store.CreateMeeting(ctx, NewMeeting(uuid.New(), uuid.New(), meeting.TypeAudioOnly, "")))

	require.NoError(t, store.DeleteMeeting(ctx, id))
	assert.ErrorIs(t, store.DeleteMeeting(ctx, id), ErrNotFound)

	deleted, err := store.DeleteMeetingsByUser(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	count, err := store.CountMeetingsByUser(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, count)
}

// Test meeting counts per owner
func TestInMemoryStore_CountMeetingsByUser(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	owner := uuid.New()
	for i := 0; i < 3; i++ {
		require.NoError(t, store.CreateMeeting(ctx, NewMeeting(uuid.New(), owner, meeting.TypeAudioOnly, "")))
	}

	count, err := store.CountMeetingsByUser(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	count, err = store.CountMeetingsByUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, count)
}
