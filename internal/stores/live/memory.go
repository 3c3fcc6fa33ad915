package live

import (
	"math"
	"sync"
	"time"

	"github.com/meetingcopilot/api/pkg/meeting"
)

// InMemoryStore tracks live meeting state in a process-local map.
//
// Every operation runs atomically under the store lock, including
// read-modify-write paths, so concurrent requests against the same meeting id
// cannot interleave partial updates.
type InMemoryStore struct {
	meetings map[string]*meeting.Meeting
	mutex    sync.RWMutex
}

// NewInMemoryStore creates a new in-memory live meeting store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		meetings: make(map[string]*meeting.Meeting),
	}
}

// Create inserts a new live entry. An existing entry with the same id is
// overwritten (last-writer-wins).
func (s *InMemoryStore) Create(id string, meetingType meeting.Type, title string) *meeting.Meeting {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now().UTC()
	m := &meeting.Meeting{
		ID:                 id,
		Title:              title,
		Type:               meetingType,
		Status:             meeting.StatusActive,
		Transcript:         []string{},
		TranscriptSegments: []meeting.TranscriptSegment{},
		Suggestions: meeting.Suggestions{
			Topics:    []string{},
			Decisions: []meeting.Decision{},
			Actions:   []meeting.ActionItem{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.meetings[id] = m

	return copyMeeting(m)
}

// Get returns a copy of the entry for id, or found=false if unknown
func (s *InMemoryStore) Get(id string) (*meeting.Meeting, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	m, exists := s.meetings[id]
	if !exists {
		return nil, false
	}
	return copyMeeting(m), true
}

// AddTranscript appends one free-form fragment to the transcript
func (s *InMemoryStore) AddTranscript(id string, text string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	m, exists := s.meetings[id]
	if !exists {
		return false
	}
	m.Transcript = append(m.Transcript, text)
	return true
}

// SetTranscriptSegments replaces the segment list wholesale and rederives the
// transcript from the segment texts, discarding any prior free-form fragments
func (s *InMemoryStore) SetTranscriptSegments(id string, segments []meeting.TranscriptSegment) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	m, exists := s.meetings[id]
	if !exists {
		return false
	}

	m.TranscriptSegments = append([]meeting.TranscriptSegment{}, segments...)

	transcript := make([]string, 0, len(segments))
	for _, seg := range segments {
		transcript = append(transcript, seg.Text)
	}
	m.Transcript = transcript

	// Duration follows the last segment's timestamp; an empty update keeps
	// the previous value
	if len(segments) > 0 {
		m.Duration = int(math.Ceil(segments[len(segments)-1].Timestamp))
	}

	m.UpdatedAt = time.Now().UTC()
	return true
}

// UpdateSuggestions replaces the suggestions wholesale. UpdatedAt is only
// maintained on the transcript-segment path.
func (s *InMemoryStore) UpdateSuggestions(id string, suggestions meeting.Suggestions) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	m, exists := s.meetings[id]
	if !exists {
		return false
	}
	m.Suggestions = copySuggestions(suggestions)
	return true
}

// SetSummary replaces the summary wholesale and forces status to completed
func (s *InMemoryStore) SetSummary(id string, summary *meeting.Summary) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	m, exists := s.meetings[id]
	if !exists {
		return false
	}
	m.Summary = copySummary(summary)
	m.Status = meeting.StatusCompleted
	return true
}

// UpdateStatus replaces the status without validating the transition
func (s *InMemoryStore) UpdateStatus(id string, status meeting.Status) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	m, exists := s.meetings[id]
	if !exists {
		return false
	}
	m.Status = status
	return true
}

// Delete removes an entry, reporting whether it existed
func (s *InMemoryStore) Delete(id string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	_, exists := s.meetings[id]
	delete(s.meetings, id)
	return exists
}

// GetAll returns a snapshot copy of every entry
func (s *InMemoryStore) GetAll() []*meeting.Meeting {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	all := make([]*meeting.Meeting, 0, len(s.meetings))
	for _, m := range s.meetings {
		all = append(all, copyMeeting(m))
	}
	return all
}

// Len reports the current number of live entries
func (s *InMemoryStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.meetings)
}

// copyMeeting creates a deep copy so callers cannot mutate store state
// through returned records
func copyMeeting(m *meeting.Meeting) *meeting.Meeting {
	c := *m
	c.Transcript = append([]string{}, m.Transcript...)
	c.TranscriptSegments = append([]meeting.TranscriptSegment{}, m.TranscriptSegments...)
	c.Suggestions = copySuggestions(m.Suggestions)
	c.Summary = copySummary(m.Summary)
	return &c
}

func copySuggestions(s meeting.Suggestions) meeting.Suggestions {
	return meeting.Suggestions{
		Topics:    append([]string{}, s.Topics...),
		Decisions: append([]meeting.Decision{}, s.Decisions...),
		Actions:   append([]meeting.ActionItem{}, s.Actions...),
	}
}

func copySummary(s *meeting.Summary) *meeting.Summary {
	if s == nil {
		return nil
	}
	c := *s
	c.ActionItems = append([]meeting.ActionItem{}, s.ActionItems...)
	c.Decisions = append([]meeting.Decision{}, s.Decisions...)
	c.Topics = append([]meeting.TopicSummary{}, s.Topics...)
	return &c
}
