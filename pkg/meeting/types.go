package meeting

import "time"

// Status describes where a meeting is in its lifecycle
type Status string

const (
	StatusActive     Status = "active"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
)

// Type describes how a meeting was captured
type Type string

const (
	TypeAudioOnly   Type = "audio-only"
	TypeScreenShare Type = "screen-share"
	TypeUpload      Type = "upload"
)

// TranscriptSegment is one timestamped chunk of live transcription
type TranscriptSegment struct {
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp"` // Seconds from meeting start
	Speaker   string  `json:"speaker,omitempty"`
}

// Decision is a decision extracted from the conversation
type Decision struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// ActionItem is a follow-up task extracted from the conversation
type ActionItem struct {
	Text       string  `json:"text"`
	Assignee   string  `json:"assignee,omitempty"`
	DueDate    string  `json:"due_date,omitempty"`
	Priority   string  `json:"priority,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Suggestions holds the lightweight topics/decisions/actions refreshed
// continuously while a meeting is live, distinct from the final summary
type Suggestions struct {
	Topics    []string     `json:"topics"`
	Decisions []Decision   `json:"decisions"`
	Actions   []ActionItem `json:"actions"`
}

// TopicSummary is the per-topic synthesis within a final summary
type TopicSummary struct {
	Topic     string `json:"topic"`
	Synthesis string `json:"synthesis"`
}

// Summary is the finalized structured output produced once a meeting ends.
// The notes fields may be patched independently after the summary is set.
type Summary struct {
	Overall         string         `json:"overall"`
	Detailed        string         `json:"detailed,omitempty"`
	ActionItems     []ActionItem   `json:"action_items"`
	Decisions       []Decision     `json:"decisions"`
	Topics          []TopicSummary `json:"topics"`
	RawNotes        string         `json:"raw_notes,omitempty"`
	EnhancedNotes   string         `json:"enhanced_notes,omitempty"`
	EditedDocument  string         `json:"edited_document,omitempty"` // Opaque rich-text payload
}

// Meeting is the unit of state tracked per live recording session
type Meeting struct {
	ID                 string              `json:"id"`
	Title              string              `json:"title,omitempty"`
	Type               Type                `json:"type"`
	Status             Status              `json:"status"`
	Transcript         []string            `json:"transcript"`
	TranscriptSegments []TranscriptSegment `json:"transcript_segments"`
	Suggestions        Suggestions         `json:"suggestions"`
	Summary            *Summary            `json:"summary,omitempty"`
	Duration           int                 `json:"duration,omitempty"` // Seconds, derived from segment timestamps
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}
