package live

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meetingcopilot/api/pkg/meeting"
)

// Redis key prefix for live meeting entries
const keyPrefixLive = "live:meeting:"

// RedisStore implements meeting.LiveStore on top of Redis so that multiple
// API instances can share live meeting state. Entries carry a TTL, so stale
// meetings age out without a janitor.
//
// Read-modify-write operations run under WATCH; a concurrent writer causes a
// retry rather than a lost update.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	ctx    context.Context
}

// NewRedisStore creates a Redis-backed live meeting store. Entries expire
// after ttl of inactivity.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		ctx:    context.Background(),
	}
}

// Create inserts a new live entry, overwriting any existing entry with the
// same id
func (s *RedisStore) Create(id string, meetingType meeting.Type, title string) *meeting.Meeting {
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

	if err := s.put(m); err != nil {
		log.Printf("[LIVE-REDIS]: Failed to store meeting %s: %v", id, err)
	}
	return m
}

// Get returns the entry for id, or found=false if unknown or expired
func (s *RedisStore) Get(id string) (*meeting.Meeting, bool) {
	data, err := s.client.Get(s.ctx, keyPrefixLive+id).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[LIVE-REDIS]: Failed to get meeting %s: %v", id, err)
		}
		return nil, false
	}

	var m meeting.Meeting
	if err := json.Unmarshal(data, &m); err != nil {
		log.Printf("[LIVE-REDIS]: Corrupt entry for meeting %s: %v", id, err)
		return nil, false
	}
	return &m, true
}

// AddTranscript appends one free-form fragment to the transcript
func (s *RedisStore) AddTranscript(id string, text string) bool {
	return s.update(id, func(m *meeting.Meeting) {
		m.Transcript = append(m.Transcript, text)
	})
}

// SetTranscriptSegments replaces the segment list wholesale and rederives
// transcript, duration, and UpdatedAt
func (s *RedisStore) SetTranscriptSegments(id string, segments []meeting.TranscriptSegment) bool {
	return s.update(id, func(m *meeting.Meeting) {
		m.TranscriptSegments = segments

		transcript := make([]string, 0, len(segments))
		for _, seg := range segments {
			transcript = append(transcript, seg.Text)
		}
		m.Transcript = transcript

		if len(segments) > 0 {
			m.Duration = int(math.Ceil(segments[len(segments)-1].Timestamp))
		}
		m.UpdatedAt = time.Now().UTC()
	})
}

// UpdateSuggestions replaces the suggestions wholesale
func (s *RedisStore) UpdateSuggestions(id string, suggestions meeting.Suggestions) bool {
	return s.update(id, func(m *meeting.Meeting) {
		m.Suggestions = suggestions
	})
}

// SetSummary replaces the summary wholesale and forces status to completed
func (s *RedisStore) SetSummary(id string, summary *meeting.Summary) bool {
	return s.update(id, func(m *meeting.Meeting) {
		m.Summary = summary
		m.Status = meeting.StatusCompleted
	})
}

// UpdateStatus replaces the status without validating the transition
func (s *RedisStore) UpdateStatus(id string, status meeting.Status) bool {
	return s.update(id, func(m *meeting.Meeting) {
		m.Status = status
	})
}

// Delete removes an entry, reporting whether it existed
func (s *RedisStore) Delete(id string) bool {
	deleted, err := s.client.Del(s.ctx, keyPrefixLive+id).Result()
	if err != nil {
		log.Printf("[LIVE-REDIS]: Failed to delete meeting %s: %v", id, err)
		return false
	}
	return deleted > 0
}

// GetAll returns every live entry currently stored
func (s *RedisStore) GetAll() []*meeting.Meeting {
	var all []*meeting.Meeting

	iter := s.client.Scan(s.ctx, 0, keyPrefixLive+"*", 0).Iterator()
	for iter.Next(s.ctx) {
		data, err := s.client.Get(s.ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}
		var m meeting.Meeting
		if err := json.Unmarshal(data, &m); err != nil {
			continue
		}
		all = append(all, &m)
	}
	if err := iter.Err(); err != nil {
		log.Printf("[LIVE-REDIS]: Scan failed: %v", err)
	}

	return all
}

// put serializes and stores a meeting under its key with the store TTL
func (s *RedisStore) put(m *meeting.Meeting) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.client.Set(s.ctx, keyPrefixLive+m.ID, data, s.ttl).Err()
}

// update applies fn to the stored entry under WATCH, retrying on concurrent
// modification. Returns false when the id is unknown.
func (s *RedisStore) update(id string, fn func(*meeting.Meeting)) bool {
	key := keyPrefixLive + id

	for attempt := 0; attempt < 5; attempt++ {
		found := false

		err := s.client.Watch(s.ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(s.ctx, key).Bytes()
			if err == redis.Nil {
				return nil
			}
			if err != nil {
				return err
			}

			var m meeting.Meeting
			if err := json.Unmarshal(data, &m); err != nil {
				return err
			}

			fn(&m)

			updated, err := json.Marshal(&m)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(s.ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(s.ctx, key, updated, s.ttl)
				return nil
			})
			if err == nil {
				found = true
			}
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			log.Printf("[LIVE-REDIS]: Failed to update meeting %s: %v", id, err)
			return false
		}
		return found
	}

	log.Printf("[LIVE-REDIS]: Gave up updating meeting %s after repeated conflicts", id)
	return false
}
