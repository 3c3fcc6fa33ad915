package live

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetingcopilot/api/pkg/meeting"
)

// Test that sweeps evict completed entries after the completed TTL and
// abandoned entries after the stale TTL, leaving fresh entries alone
func TestJanitor_Sweep(t *testing.T) {
	store := NewInMemoryStore()
	janitor := NewJanitor(store, JanitorOptions{
		CompletedTTL: 1 * time.Hour,
		StaleTTL:     24 * time.Hour,
		Schedule:     "*/5 * * * *",
	})

	store.Create("fresh", meeting.TypeAudioOnly, "")

	store.Create("completed", meeting.TypeAudioOnly, "")
	require.True(t, store.SetSummary("completed", &meeting.Summary{Overall: "done"}))

	store.Create("abandoned", meeting.TypeScreenShare, "")

	// Nothing is old enough yet
	assert.Equal(t, 0, janitor.Sweep(time.Now().UTC()))
	assert.Equal(t, 3, store.Len())

	// Two hours later only the completed entry has aged out
	evicted := janitor.Sweep(time.Now().UTC().Add(2 * time.Hour))
	assert.Equal(t, 1, evicted)

	_, found := store.Get("completed")
	assert.False(t, found)
	_, found = store.Get("abandoned")
	assert.True(t, found, "non-completed entries survive until the stale TTL")

	// A day and a half later the abandoned entry goes too
	evicted = janitor.Sweep(time.Now().UTC().Add(36 * time.Hour))
	assert.Equal(t, 2, evicted)
	assert.Equal(t, 0, store.Len())
}

// Test that a segment update resets the stale clock
func TestJanitor_ActivityDefersEviction(t *testing.T) {
	store := NewInMemoryStore()
	janitor := NewJanitor(store, DefaultJanitorOptions())

	store.Create("meeting-1", meeting.TypeAudioOnly, "")

	// The store stamps UpdatedAt with the wall clock on segment writes, so
	// sweep relative to a future "now" that is within the stale TTL of that
	// stamp but beyond it for an untouched entry
	require.True(t, store.SetTranscriptSegments("meeting-1", []meeting.TranscriptSegment{
		{Text: "still talking", Timestamp: 10},
	}))

	evicted := janitor.Sweep(time.Now().UTC().Add(23 * time.Hour))
	assert.Equal(t, 0, evicted)

	evicted = janitor.Sweep(time.Now().UTC().Add(25 * time.Hour))
	assert.Equal(t, 1, evicted)
}

// Test the default policy values
func TestDefaultJanitorOptions(t *testing.T) {
	opts := DefaultJanitorOptions()
	assert.Equal(t, 1*time.Hour, opts.CompletedTTL)
	assert.Equal(t, 24*time.Hour, opts.StaleTTL)
	assert.Equal(t, "*/5 * * * *", opts.Schedule)
}

// Test that the cron runner starts and stops cleanly
func TestJanitor_StartStop(t *testing.T) {
	store := NewInMemoryStore()
	janitor := NewJanitor(store, DefaultJanitorOptions())

	require.NoError(t, janitor.Start())
	janitor.Stop()
}
