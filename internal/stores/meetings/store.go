package meetings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/meetingcopilot/api/pkg/meeting"
)

// ErrNotFound is returned when no durable row exists for the given id
var ErrNotFound = errors.New("meeting not found")

// Store interface defines methods for durable meeting storage
type Store interface {
	CreateMeeting(ctx context.Context, m *Meeting) error
	GetMeeting(ctx context.Context, id uuid.UUID) (*Meeting, error)
	GetMeetingsByUser(ctx context.Context, userID uuid.UUID) ([]*Meeting, error)
	SaveLiveState(ctx context.Context, id uuid.UUID, src *meeting.Meeting) error
	UpdateSummary(ctx context.Context, id uuid.UUID, summary *meeting.Summary) error
	UpdateNotes(ctx context.Context, id uuid.UUID, rawNotes, enhancedNotes *string) error
	SetAudioPath(ctx context.Context, id uuid.UUID, path string) error
	DeleteMeeting(ctx context.Context, id uuid.UUID) error
	DeleteMeetingsByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	CountMeetingsByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// MySqlStore handles meeting persistence using GORM
type MySqlStore struct {
	db *gorm.DB
}

// NewMySqlStore creates a new meeting store with GORM connection
func NewMySqlStore(databaseURL string) (*MySqlStore, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &MySqlStore{db: db}

	// Auto-migrate tables
	if err := db.AutoMigrate(&Meeting{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	return store, nil
}

// NewMySqlStoreWithDB wraps an existing GORM connection, so multiple stores
// can share one pool
func NewMySqlStoreWithDB(db *gorm.DB) (*MySqlStore, error) {
	if err := db.AutoMigrate(&Meeting{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}
	return &MySqlStore{db: db}, nil
}

// CreateMeeting creates a new durable meeting row
func (s *MySqlStore) CreateMeeting(ctx context.Context, m *Meeting) error {
	result := s.db.WithContext(ctx).Create(m)
	if result.Error != nil {
		return fmt.Errorf("failed to create meeting: %w", result.Error)
	}
	return nil
}

// GetMeeting retrieves a meeting by ID
func (s *MySqlStore) GetMeeting(ctx context.Context, id uuid.UUID) (*Meeting, error) {
	var m Meeting
	result := s.db.WithContext(ctx).First(&m, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get meeting: %w", result.Error)
	}
	return &m, nil
}

// GetMeetingsByUser retrieves all meetings owned by a user, newest first
func (s *MySqlStore) GetMeetingsByUser(ctx context.Context, userID uuid.UUID) ([]*Meeting, error) {
	var rows []*Meeting
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query meetings: %w", result.Error)
	}
	return rows, nil
}

// SaveLiveState writes live aggregator state back onto the durable row
func (s *MySqlStore) SaveLiveState(ctx context.Context, id uuid.UUID, src *meeting.Meeting) error {
	m, err := s.GetMeeting(ctx, id)
	if err != nil {
		return err
	}

	m.ApplyLive(src)

	result := s.db.WithContext(ctx).Save(m)
	if result.Error != nil {
		return fmt.Errorf("failed to save live state: %w", result.Error)
	}
	return nil
}

// UpdateSummary writes the summary and its denormalized topic/decision/action
// columns, marking the meeting completed
func (s *MySqlStore) UpdateSummary(ctx context.Context, id uuid.UUID, summary *meeting.Summary) error {
	m, err := s.GetMeeting(ctx, id)
	if err != nil {
		return err
	}

	if err := m.serializeSummary(summary); err != nil {
		return fmt.Errorf("failed to serialize summary: %w", err)
	}
	m.Status = string(meeting.StatusCompleted)

	result := s.db.WithContext(ctx).Save(m)
	if result.Error != nil {
		return fmt.Errorf("failed to update summary: %w", result.Error)
	}
	return nil
}

// UpdateNotes merges only the note fields into the stored summary, leaving
// every other summary field untouched. A nil field is left as-is.
func (s *MySqlStore) UpdateNotes(ctx context.Context, id uuid.UUID, rawNotes, enhancedNotes *string) error {
	m, err := s.GetMeeting(ctx, id)
	if err != nil {
		return err
	}

	var summary meeting.Summary
	if m.Summary != "" {
		if err := json.Unmarshal([]byte(m.Summary), &summary); err != nil {
			return fmt.Errorf("failed to parse stored summary: %w", err)
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
		return fmt.Errorf("failed to serialize summary: %w", err)
	}
	m.Summary = string(data)

	result := s.db.WithContext(ctx).Save(m)
	if result.Error != nil {
		return fmt.Errorf("failed to update notes: %w", result.Error)
	}
	return nil
}

// SetAudioPath stores the blob URL for the meeting's audio
func (s *MySqlStore) SetAudioPath(ctx context.Context, id uuid.UUID, path string) error {
	result := s.db.WithContext(ctx).Model(&Meeting{}).Where("id = ?", id).Update("audio_path", path)
	if result.Error != nil {
		return fmt.Errorf("failed to set audio path: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMeeting removes a meeting row
func (s *MySqlStore) DeleteMeeting(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&Meeting{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete meeting: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMeetingsByUser removes all meetings owned by a user, returning how
// many rows were deleted
func (s *MySqlStore) DeleteMeetingsByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := s.db.WithContext(ctx).Delete(&Meeting{}, "user_id = ?", userID)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete meetings: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// CountMeetingsByUser counts meetings owned by a user
func (s *MySqlStore) CountMeetingsByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).Model(&Meeting{}).Where("user_id = ?", userID).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count meetings: %w", result.Error)
	}
	return count, nil
}
