package meetings

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meetingcopilot/api/pkg/meeting"
)

// Meeting is the durable meeting row. Structured fields (segments,
// suggestions, summary) are serialized to JSON columns; topics, decisions,
// and action items are additionally denormalized for listing without
// deserializing the full summary.
type Meeting struct {
	ID                 uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID             uuid.UUID `json:"user_id" gorm:"type:char(36);not null;index"`
	Title              string    `json:"title" gorm:"size:255"`
	Type               string    `json:"type" gorm:"size:32;not null"`
	Status             string    `json:"status" gorm:"size:32;not null"`
	Transcript         string    `json:"-" gorm:"type:longtext"`
	TranscriptSegments string    `json:"-" gorm:"type:longtext"`
	Suggestions        string    `json:"-" gorm:"type:longtext"`
	Summary            string    `json:"-" gorm:"type:longtext"`
	Topics             string    `json:"-" gorm:"type:text"`
	Decisions          string    `json:"-" gorm:"type:longtext"`
	ActionItems        string    `json:"-" gorm:"type:longtext"`
	AudioPath          string    `json:"audio_path" gorm:"size:512"`
	Duration           int       `json:"duration"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewMeeting creates a durable row for a freshly started meeting
func NewMeeting(id uuid.UUID, userID uuid.UUID, meetingType meeting.Type, title string) *Meeting {
	return &Meeting{
		ID:     id,
		UserID: userID,
		Title:  title,
		Type:   string(meetingType),
		Status: string(meeting.StatusActive),
	}
}

// ToAPI projects the row into the API meeting shape, parsing the serialized
// JSON columns. Corrupt or empty columns degrade to empty values rather than
// failing the projection.
func (m *Meeting) ToAPI() *meeting.Meeting {
	out := &meeting.Meeting{
		ID:        m.ID.String(),
		Title:     m.Title,
		Type:      meeting.Type(m.Type),
		Status:    meeting.Status(m.Status),
		Duration:  m.Duration,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}

	if m.Transcript != "" {
		out.Transcript = strings.Split(m.Transcript, "\n")
	} else {
		out.Transcript = []string{}
	}

	out.TranscriptSegments = []meeting.TranscriptSegment{}
	if m.TranscriptSegments != "" {
		_ = json.Unmarshal([]byte(m.TranscriptSegments), &out.TranscriptSegments)
	}

	out.Suggestions = meeting.Suggestions{
		Topics:    []string{},
		Decisions: []meeting.Decision{},
		Actions:   []meeting.ActionItem{},
	}
	if m.Suggestions != "" {
		_ = json.Unmarshal([]byte(m.Suggestions), &out.Suggestions)
	}

	if m.Summary != "" {
		var summary meeting.Summary
		if err := json.Unmarshal([]byte(m.Summary), &summary); err == nil {
			out.Summary = &summary
		}
	}

	return out
}

// ApplyLive copies live aggregator state into the serialized row columns
func (m *Meeting) ApplyLive(src *meeting.Meeting) {
	m.Transcript = strings.Join(src.Transcript, "\n")
	m.Duration = src.Duration
	m.Status = string(src.Status)

	if data, err := json.Marshal(src.TranscriptSegments); err == nil {
		m.TranscriptSegments = string(data)
	}
	if data, err := json.Marshal(src.Suggestions); err == nil {
		m.Suggestions = string(data)
	}
}

// serializeSummary fills the summary column and its denormalized companions
func (m *Meeting) serializeSummary(summary *meeting.Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	m.Summary = string(data)

	if data, err := json.Marshal(summary.Topics); err == nil {
		m.Topics = string(data)
	}
	if data, err := json.Marshal(summary.Decisions); err == nil {
		m.Decisions = string(data)
	}
	if data, err := json.Marshal(summary.ActionItems); err == nil {
		m.ActionItems = string(data)
	}

	return nil
}
