package live

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetingcopilot/api/pkg/meeting"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, ttl), mr
}

// Test that a created meeting survives the serialization round trip
func TestRedisStore_CreateAndGet(t *testing.T) {
	store, _ := newTestRedisStore(t, time.Hour)

	created := store.Create("meeting-1", meeting.TypeScreenShare, "Design review")
	require.NotNil(t, created)

	got, found := store.Get("meeting-1")
	require.True(t, found)

	assert.Equal(t, "meeting-1", got.ID)
	assert.Equal(t, "Design review", got.Title)
	assert.Equal(t, meeting.TypeScreenShare, got.Type)
	assert.Equal(t, meeting.StatusActive, got.Status)
	assert.Empty(t, got.Transcript)
	assert.Empty(t, got.TranscriptSegments)
	assert.Nil(t, got.Summary)
	assert.Zero(t, got.Duration)
}

// Test that lookups and updates against unknown ids report not found without
// creating entries
func TestRedisStore_UnknownId(t *testing.T) {
	store, mr := newTestRedisStore(t, time.Hour)

	_, found := store.Get("ghost")
	assert.False(t, found)

	assert.False(t, store.AddTranscript("ghost", "hello"))
	assert.False(t, store.SetTranscriptSegments("ghost", []meeting.TranscriptSegment{{Text: "hi", Timestamp: 1}}))
	assert.False(t, store.UpdateSuggestions("ghost", meeting.Suggestions{}))
	assert.False(t, store.SetSummary("ghost", &meeting.Summary{Overall: "x"}))
	assert.False(t, store.UpdateStatus("ghost", meeting.StatusCompleted))
	assert.False(t, store.Delete("ghost"))

	assert.Empty(t, mr.Keys())
}

// Test that AddTranscript appends fragments in order
func TestRedisStore_AddTranscript(t *testing.T) {
	store, _ := newTestRedisStore(t, time.Hour)
	store.Create("meeting-1", meeting.TypeAudioOnly, "")

	assert.True(t, store.AddTranscript("meeting-1", "first"))
	assert.True(t, store.AddTranscript("meeting-1", "second"))

	got, found := store.Get("meeting-1")
	require.True(t, found)
	assert.Equal(t, []string{"first", "second"}, got.Transcript)
}

// Test that replacing segments rederives the transcript and rounds the
// duration up to whole seconds
func TestRedisStore_SetTranscriptSegments(t *testing.T) {
	store, _ := newTestRedisStore(t, time.Hour)
	store.Create("meeting-1", meeting.TypeAudioOnly, "")

	segments := []meeting.TranscriptSegment{
		{Text: "hello", Timestamp: 1.0, Speaker: "alice"},
		{Text: "world", Timestamp: 125.4, Speaker: "bob"},
	}
	assert.True(t, store.SetTranscriptSegments("meeting-1", segments))

	got, found := store.Get("meeting-1")
	require.True(t, found)
	assert.Equal(t, segments, got.TranscriptSegments)
	assert.Equal(t, []string{"hello", "world"}, got.Transcript)
	assert.Equal(t, 126, got.Duration)
}

// Test that setting a summary also completes the meeting
func TestRedisStore_SetSummary(t *testing.T) {
	store, _ := newTestRedisStore(t, time.Hour)
	store.Create("meeting-1", meeting.TypeAudioOnly, "")

	summary := &meeting.Summary{Overall: "all wrapped up"}
	assert.True(t, store.SetSummary("meeting-1", summary))

	got, found := store.Get("meeting-1")
	require.True(t, found)
	assert.Equal(t, meeting.StatusCompleted, got.Status)
	require.NotNil(t, got.Summary)
	assert.Equal(t, "all wrapped up", got.Summary.Overall)
}

// Test delete and the GetAll scan
func TestRedisStore_DeleteAndGetAll(t *testing.T) {
	store, _ := newTestRedisStore(t, time.Hour)
	store.Create("meeting-1", meeting.TypeAudioOnly, "one")
	store.Create("meeting-2", meeting.TypeScreenShare, "two")

	all := store.GetAll()
	assert.Len(t, all, 2)

	assert.True(t, store.Delete("meeting-1"))
	assert.False(t, store.Delete("meeting-1"))

	all = store.GetAll()
	require.Len(t, all, 1)
	assert.Equal(t, "meeting-2", all[0].ID)
}

// Test that entries age out after the store TTL with no janitor involved
func TestRedisStore_EntriesExpire(t *testing.T) {
	store, mr := newTestRedisStore(t, time.Minute)
	store.Create("meeting-1", meeting.TypeAudioOnly, "")

	_, found := store.Get("meeting-1")
	require.True(t, found)

	mr.FastForward(2 * time.Minute)

	_, found = store.Get("meeting-1")
	assert.False(t, found)
}

// Test that writes refresh the TTL so active meetings stay alive
func TestRedisStore_WritesRefreshTTL(t *testing.T) {
	store, mr := newTestRedisStore(t, time.Minute)
	store.Create("meeting-1", meeting.TypeAudioOnly, "")

	mr.FastForward(40 * time.Second)
	require.True(t, store.AddTranscript("meeting-1", "still talking"))

	mr.FastForward(40 * time.Second)
	_, found := store.Get("meeting-1")
	assert.True(t, found)
}

// Test that an unreadable entry is reported as missing instead of a panic
func TestRedisStore_CorruptEntry(t *testing.T) {
	store, mr := newTestRedisStore(t, time.Hour)
	require.NoError(t, mr.Set(keyPrefixLive+"meeting-1", "not json"))

	_, found := store.Get("meeting-1")
	assert.False(t, found)
	assert.False(t, store.AddTranscript("meeting-1", "hello"))
}

// Test that concurrent read-modify-write updates are not lost; contention
// drives the transactional retry rather than clobbered state
func TestRedisStore_ConcurrentUpdates(t *testing.T) {
	store, _ := newTestRedisStore(t, time.Hour)
	store.Create("meeting-1", meeting.TypeAudioOnly, "")

	const writers = 10
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			text := fmt.Sprintf("fragment-%d", n)
			for !store.AddTranscript("meeting-1", text) {
			}
		}(i)
	}
	wg.Wait()

	got, found := store.Get("meeting-1")
	require.True(t, found)
	require.Len(t, got.Transcript, writers)

	seen := make(map[string]bool, writers)
	for _, text := range got.Transcript {
		seen[text] = true
	}
	for i := 0; i < writers; i++ {
		assert.True(t, seen[fmt.Sprintf("fragment-%d", i)])
	}
}
