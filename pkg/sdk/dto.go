package sdk

import (
	"time"

	"github.com/meetingcopilot/api/pkg/meeting"
)

/** Requests */

// StartMeetingRequest represents the request body for starting a meeting
type StartMeetingRequest struct {
	Title string `json:"title"`
}

// TranscriptUpdateRequest carries a wholesale replacement of the live
// transcript segments
type TranscriptUpdateRequest struct {
	MeetingID string                      `json:"meetingId" binding:"required"`
	Segments  []meeting.TranscriptSegment `json:"segments"`
}

// SuggestionsRequest asks for refreshed live suggestions for a meeting
type SuggestionsRequest struct {
	MeetingID string `json:"meetingId" binding:"required"`
}

// FinalizeRequest asks for a meeting to be summarized and completed
type FinalizeRequest struct {
	MeetingID string `json:"meetingId" binding:"required"`
}

// UpdateSummaryRequest represents the request body for replacing a summary
type UpdateSummaryRequest struct {
	Summary *meeting.Summary `json:"summary"`
}

// UpdateNotesRequest patches only the note fields of a stored summary. Nil
// fields are left untouched.
type UpdateNotesRequest struct {
	RawNotes      *string `json:"rawNotes"`
	EnhancedNotes *string `json:"enhancedNotes"`
}

// EnhanceNotesRequest asks for AI enhancement of raw notes
type EnhanceNotesRequest struct {
	RawNotes string `json:"rawNotes" binding:"required"`
}

// UploadURLRequest asks for a client upload token for direct-to-blob uploads
type UploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
	Pathname    string `json:"pathname" binding:"required"`
}

// RegisterRequest represents the request body for local account registration
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents the request body for local login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest represents the request body for changing a password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// ForgotPasswordRequest represents the request body for requesting a reset
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest represents the request body for redeeming a reset token
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

/** Responses */

// MeetingResponse wraps a single meeting
type MeetingResponse struct {
	Success bool             `json:"success"`
	Meeting *meeting.Meeting `json:"meeting"`
}

// MeetingsResponse wraps a meeting list
type MeetingsResponse struct {
	Success  bool               `json:"success"`
	Meetings []*meeting.Meeting `json:"meetings"`
}

// SuggestionsResponse wraps refreshed live suggestions
type SuggestionsResponse struct {
	Success     bool                `json:"success"`
	Suggestions meeting.Suggestions `json:"suggestions"`
}

// SummaryResponse wraps a finalized summary
type SummaryResponse struct {
	Success bool             `json:"success"`
	Summary *meeting.Summary `json:"summary"`
}

// SaveAudioResponse reports a stored audio object
type SaveAudioResponse struct {
	Success   bool   `json:"success"`
	AudioPath string `json:"audioPath"`
	IsPartial bool   `json:"isPartial"`
}

// UploadURLResponse carries a vendor client upload token
type UploadURLResponse struct {
	Success     bool   `json:"success"`
	UploadURL   string `json:"uploadUrl"`
	ClientToken string `json:"clientToken"`
}

// EnhanceNotesResponse carries AI-enhanced notes
type EnhanceNotesResponse struct {
	Success       bool   `json:"success"`
	EnhancedNotes string `json:"enhancedNotes"`
}

// UserResponse wraps the authenticated user's profile
type UserResponse struct {
	Success bool  `json:"success"`
	User    *User `json:"user"`
}

// SessionResponse carries a login session token
type SessionResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

// User is the API projection of an account
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
}

// AdminUser is the admin listing projection, including meeting counts
type AdminUser struct {
	User
	MeetingCount int64 `json:"meetingCount"`
}

// AdminUsersResponse wraps the admin user listing
type AdminUsersResponse struct {
	Success bool         `json:"success"`
	Users   []*AdminUser `json:"users"`
}

// AdminDeleteResponse reports a user deletion and its cascade
type AdminDeleteResponse struct {
	Success         bool  `json:"success"`
	DeletedMeetings int64 `json:"deletedMeetings"`
}
