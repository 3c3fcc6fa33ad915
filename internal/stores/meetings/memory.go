package meetings

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meetingcopilot/api/pkg/meeting"
)

// InMemoryStore provides an in-memory implementation of Store for testing
type InMemoryStore struct {
	meetings map[uuid.UUID]*Meeting
	mutex    sync.RWMutex
}

// NewInMemoryStore creates a new in-memory meeting store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		meetings: make(map[uuid.UUID]*Meeting),
	}
}

// CreateMeeting stores a copy of the meeting row
func (s *InMemoryStore) CreateMeeting(_ context.Context, m *Meeting) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now().UTC()
	row := *m
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now

	s.meetings[m.ID] = &row
	return nil
}

// GetMeeting retrieves a meeting by ID
func (s *InMemoryStore) GetMeeting(_ context.Context, id uuid.UUID) (*Meeting, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	m, exists := s.meetings[id]
	if !exists {
		return nil, ErrNotFound
	}
	row := *m
	return &row, nil
}

// GetMeetingsByUser retrieves all meetings owned by a user, newest first
func (s *InMemoryStore) GetMeetingsByUser(_ context.Context, userID uuid.UUID) ([]*Meeting, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var rows []*Meeting
	for _, m := range s.meetings {
		if m.UserID == userID {
			row := *m
			rows = append(rows, &row)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})

	return rows, nil
}

// SaveLiveState writes live aggregator state back onto the stored row
func (s *InMemoryStore) SaveLiveState(_ context.Context, id uuid.UUID, src *meeting.Meeting) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	m, exists := s.meetings[id]
	if !exists {
		return ErrNotFound
	}
	m.ApplyLive(src)
	m.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdateSummary writes the summary and denormalized columns, marking the
// meeting completed
func (s *InMemoryStore) UpdateSummary(_ context.Context, id uuid.UUID, summary *meeting.Summary) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	m, exists := s.meetings[id]
	if !exists {
		return ErrNotFound
	}
	if err := m.serializeSummary(summary); err != nil {
		return err
	}
	m.Status = string(meeting.StatusCompleted)
	m.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdateNotes merges only the note fields into the stored summary
func (s *InMemoryStore) UpdateNotes(_ context.Context, id uuid.UUID, rawNotes, enhancedNotes *string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	m, exists := s.meetings[id]
	if !exists {
		return ErrNotFound
	}

	var summary meeting.Summary
	if m.Summary != "" {
		if err := json.Unmarshal([]byte(m.Summary), &summary); err != nil {
			return err
		}
	}

	if rawNotes != nil {
		summary.RawNotes = *rawNotes
	}
	if enhancedNotes != nil {
		summary.EnhancedNotes = *enhancedNotes
	}

	data, err := json.Marshal(&summary)
	if err != nil {
		return err
	}
	m.Summary = string(data)
	m.UpdatedAt = time.Now().UTC()
	return nil
}

// SetAudioPath stores the blob URL for the meeting's audio
func (s *InMemoryStore) SetAudioPath(_ context.Context, id uuid.UUID, path string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	m, exists := s.meetings[id]
	if !exists {
		return ErrNotFound
	}
	m.AudioPath = path
	m.UpdatedAt = time.Now().UTC()
	return nil
}

// DeleteMeeting removes a meeting row
func (s *InMemoryStore) DeleteMeeting(_ context.Context, id uuid.UUID) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.meetings[id]; !exists {
		return ErrNotFound
	}
	delete(s.meetings, id)
	return nil
}

// DeleteMeetingsByUser removes all meetings owned by a user
func (s *InMemoryStore) DeleteMeetingsByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var deleted int64
	for id, m := range s.meetings {
		if m.UserID == userID {
			delete(s.meetings, id)
			deleted++
		}
	}
	return deleted, nil
}

// CountMeetingsByUser counts meetings owned by a user
func (s *InMemoryStore) CountMeetingsByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var count int64
	for _, m := range s.meetings {
		if m.UserID == userID {
			count++
		}
	}
	return count, nil
}
