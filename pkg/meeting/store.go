package meeting

// LiveStore defines the interface for live meeting state tracking.
//
// The live store is a best-effort accelerator for in-progress meetings: the
// durable store remains the source of truth, and a live entry may be absent
// at any time (process restart, eviction, different instance). Mutating
// operations therefore report found/not-found instead of returning errors;
// operating on an unknown id changes nothing and never creates an entry.
type LiveStore interface {
	// Create inserts a new live entry with empty transcript and suggestions
	// and status active. An existing entry with the same id is overwritten.
	Create(id string, meetingType Type, title string) *Meeting

	// Get returns a copy of the entry, or found=false if the id is unknown
	// to this store. Absence is a normal outcome, not an error.
	Get(id string) (*Meeting, bool)

	// AddTranscript appends one free-form fragment to the transcript.
	// UpdatedAt and Duration are not touched on this path.
	AddTranscript(id string, text string) bool

	// SetTranscriptSegments replaces the segment list wholesale, rederives
	// the transcript from the segment texts, refreshes UpdatedAt, and
	// recomputes Duration as the ceiling of the last segment's timestamp.
	// An empty segment list leaves Duration unchanged.
	SetTranscriptSegments(id string, segments []TranscriptSegment) bool

	// UpdateSuggestions replaces the suggestions wholesale. UpdatedAt is
	// not touched.
	UpdateSuggestions(id string, suggestions Suggestions) bool

	// SetSummary replaces the summary wholesale and forces status to
	// completed regardless of the prior status.
	SetSummary(id string, summary *Summary) bool

	// UpdateStatus replaces the status. Transitions are not validated.
	UpdateStatus(id string, status Status) bool

	// Delete removes an entry, reporting whether it existed.
	Delete(id string) bool

	// GetAll returns a snapshot copy of every entry.
	GetAll() []*Meeting
}
