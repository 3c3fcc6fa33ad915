package meeting_module

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/meetingcopilot/api/internal/ai"
	"github.com/meetingcopilot/api/internal/blob"
	"github.com/meetingcopilot/api/internal/observability"
	"github.com/meetingcopilot/api/internal/stores/meetings"
	"github.com/meetingcopilot/api/pkg/meeting"
)

// MeetingService coordinates the durable store, the live aggregator, blob
// storage, and the AI engine.
//
// The durable store is the source of truth; the live store is a best-effort
// accelerator whose entries may be absent at any time (restart, eviction,
// another instance), so every live lookup here tolerates a miss.
type MeetingService struct {
	meetings meetings.Store
	live     meeting.LiveStore
	blob     blob.Store
	ai       ai.Service
	metrics  *observability.Metrics
}

var meetingService *MeetingService

// Init creates the meeting service with its collaborators
func Init(store meetings.Store, liveStore meeting.LiveStore, blobStore blob.Store, aiService ai.Service, metrics *observability.Metrics) error {
	if store == nil {
		return fmt.Errorf("a valid meeting store must be provided")
	}
	if liveStore == nil {
		return fmt.Errorf("a valid live store must be provided")
	}

	meetingService = &MeetingService{
		meetings: store,
		live:     liveStore,
		blob:     blobStore,
		ai:       aiService,
		metrics:  metrics,
	}
	return nil
}

// StartMeeting creates the durable row and its live entry under one id
func (s *MeetingService) StartMeeting(ctx context.Context, userID uuid.UUID, meetingType meeting.Type, title string) (*meeting.Meeting, error) {
	id := uuid.New()

	row := meetings.NewMeeting(id, userID, meetingType, title)
	if err := s.meetings.CreateMeeting(ctx, row); err != nil {
		return nil, err
	}

	// The live entry mirrors the durable row for the fast update path
	s.live.Create(id.String(), meetingType, title)

	if s.metrics != nil {
		s.metrics.MeetingsStartedTotal.WithLabelValues(string(meetingType)).Inc()
	}

	created, err := s.meetings.GetMeeting(ctx, id)
	if err != nil {
		return nil, err
	}
	return created.ToAPI(), nil
}

// ListMeetings returns the caller's meetings, newest first
func (s *MeetingService) ListMeetings(ctx context.Context, userID uuid.UUID) ([]*meeting.Meeting, error) {
	rows, err := s.meetings.GetMeetingsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]*meeting.Meeting, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToAPI())
	}
	return out, nil
}

// GetMeeting returns one durable meeting, preferring live state when a live
// entry still exists
func (s *MeetingService) GetMeeting(ctx context.Context, id uuid.UUID) (*meeting.Meeting, uuid.UUID, error) {
	row, err := s.meetings.GetMeeting(ctx, id)
	if err != nil {
		return nil, uuid.Nil, err
	}

	out := row.ToAPI()
	if liveEntry, found := s.live.Get(id.String()); found {
		out.Transcript = liveEntry.Transcript
		out.TranscriptSegments = liveEntry.TranscriptSegments
		out.Suggestions = liveEntry.Suggestions
		out.Status = liveEntry.Status
		out.Duration = liveEntry.Duration
	}

	return out, row.UserID, nil
}

// DeleteMeeting removes the durable row and any live entry
func (s *MeetingService) DeleteMeeting(ctx context.Context, id uuid.UUID) error {
	if err := s.meetings.DeleteMeeting(ctx, id); err != nil {
		return err
	}
	s.live.Delete(id.String())
	return nil
}

// UpdateTranscript replaces live transcript segments; this path never
// touches the database
func (s *MeetingService) UpdateTranscript(id string, segments []meeting.TranscriptSegment) bool {
	found := s.live.SetTranscriptSegments(id, segments)
	if s.metrics != nil {
		s.metrics.ObserveLiveOp("set_transcript_segments", found)
	}
	return found
}

// RefreshSuggestions asks the AI engine for updated suggestions from the live
// transcript and stores them on the live entry
func (s *MeetingService) RefreshSuggestions(ctx context.Context, id string) (meeting.Suggestions, bool, error) {
	liveEntry, found := s.live.Get(id)
	if !found {
		if s.metrics != nil {
			s.metrics.ObserveLiveOp("update_suggestions", false)
		}
		return meeting.Suggestions{}, false, nil
	}

	suggestions, err := s.ai.GenerateSuggestions(ctx, liveEntry.Transcript)
	if s.metrics != nil {
		s.metrics.AIRequestsTotal.WithLabelValues("suggestions", aiStatus(err)).Inc()
	}
	if err != nil {
		return meeting.Suggestions{}, true, err
	}

	found = s.live.UpdateSuggestions(id, suggestions)
	if s.metrics != nil {
		s.metrics.ObserveLiveOp("update_suggestions", found)
	}
	return suggestions, found, nil
}

// FinalizeMeeting produces the final summary, persists it, and completes the
// live entry
func (s *MeetingService) FinalizeMeeting(ctx context.Context, id uuid.UUID) (*meeting.Summary, error) {
	liveEntry, found := s.live.Get(id.String())
	if !found {
		// Without live state the durable row is all we can summarize from
		row, err := s.meetings.GetMeeting(ctx, id)
		if err != nil {
			return nil, err
		}
		liveEntry = row.ToAPI()
	}

	priorStatus := liveEntry.Status
	s.live.UpdateStatus(id.String(), meeting.StatusProcessing)

	summary, err := s.ai.GenerateSummary(ctx, liveEntry.Title, liveEntry.TranscriptSegments)
	if s.metrics != nil {
		s.metrics.AIRequestsTotal.WithLabelValues("summary", aiStatus(err)).Inc()
	}
	if err != nil {
		s.live.UpdateStatus(id.String(), priorStatus)
		return nil, err
	}

	// Durable first: the row is the source of truth, the live entry is
	// best-effort
	if found {
		if err := s.meetings.SaveLiveState(ctx, id, liveEntry); err != nil {
			return nil, err
		}
	}
	if err := s.meetings.UpdateSummary(ctx, id, summary); err != nil {
		return nil, err
	}

	s.live.SetSummary(id.String(), summary)
	return summary, nil
}

// UpdateSummary replaces the durable summary and mirrors it onto any live
// entry
func (s *MeetingService) UpdateSummary(ctx context.Context, id uuid.UUID, summary *meeting.Summary) error {
	if err := s.meetings.UpdateSummary(ctx, id, summary); err != nil {
		return err
	}

	found := s.live.SetSummary(id.String(), summary)
	if s.metrics != nil {
		s.metrics.ObserveLiveOp("set_summary", found)
	}
	return nil
}

// UpdateNotes merges note fields into the durable summary
func (s *MeetingService) UpdateNotes(ctx context.Context, id uuid.UUID, rawNotes, enhancedNotes *string) error {
	return s.meetings.UpdateNotes(ctx, id, rawNotes, enhancedNotes)
}

// EnhanceNotes asks the AI engine to rewrite raw notes
func (s *MeetingService) EnhanceNotes(ctx context.Context, rawNotes string) (string, error) {
	enhanced, err := s.ai.EnhanceNotes(ctx, rawNotes)
	if s.metrics != nil {
		s.metrics.AIRequestsTotal.WithLabelValues("enhance_notes", aiStatus(err)).Inc()
	}
	return enhanced, err
}

// SaveAudio uploads a meeting's audio under a deterministic object name so
// repeated partial uploads overwrite the same object, then records the URL on
// the durable row
func (s *MeetingService) SaveAudio(ctx context.Context, id uuid.UUID, filename, contentType string, isPartial bool, data io.Reader) (string, error) {
	if _, err := s.meetings.GetMeeting(ctx, id); err != nil {
		return "", err
	}

	pathname := AudioObjectName(id.String(), filename, isPartial)
	url, err := s.blob.Upload(ctx, pathname, contentType, data)
	if err != nil {
		return "", err
	}

	if err := s.meetings.SetAudioPath(ctx, id, url); err != nil {
		return "", err
	}

	if s.metrics != nil {
		kind := "final"
		if isPartial {
			kind = "partial"
		}
		s.metrics.UploadsTotal.WithLabelValues(kind).Inc()
	}

	return url, nil
}

// CreateUploadToken generates a signed client upload token for browser
// uploads
func (s *MeetingService) CreateUploadToken(pathname, contentType string) (token, uploadURL string, err error) {
	token, err = s.blob.GenerateClientToken(pathname, contentType)
	if err != nil {
		return "", "", err
	}
	return token, s.blob.UploadURL(pathname), nil
}

// AudioObjectName derives the blob pathname for a meeting's audio. Partial
// uploads share one name, final uploads another, so re-uploads overwrite.
func AudioObjectName(id, filename string, isPartial bool) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".webm"
	}

	if isPartial {
		return fmt.Sprintf("%s-temp%s", id, ext)
	}
	return fmt.Sprintf("%s-live%s", id, ext)
}

// aiStatus converts an error to a metrics label
func aiStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
