package meeting_module

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auth_module "github.com/meetingcopilot/api/internal/api/modules/auth"
	"github.com/meetingcopilot/api/internal/blob"
	"github.com/meetingcopilot/api/internal/stores/meetings"
	"github.com/meetingcopilot/api/pkg/meeting"
	"github.com/meetingcopilot/api/pkg/sdk"
)

// StartMeeting handles POST requests to start an audio-only recording session
func StartMeeting(c *gin.Context) {
	startMeetingWithType(c, meeting.TypeAudioOnly)
}

// StartScreenShare handles POST requests to start a screen-share session
func StartScreenShare(c *gin.Context) {
	startMeetingWithType(c, meeting.TypeScreenShare)
}

// startMeetingWithType creates the durable row and matching live entry
func startMeetingWithType(c *gin.Context, meetingType meeting.Type) {
	user, ok := auth_module.GetAuthenticatedUser(c)
	if !ok {
		c.JSON(sdk.NewErrorResponse(http.StatusUnauthorized, "Not authenticated").AsGinResponse())
		return
	}

	// Title is optional; an unreadable body means a malformed request
	var req sdk.StartMeetingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body").AsGinResponse())
			return
		}
	}

	created, err := meetingService.StartMeeting(c.Request.Context(), user.ID, meetingType, req.Title)
	if err != nil {
		log.Printf("[MEETING]: Failed to start meeting: %v", err)
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to start meeting").AsGinResponse())
		return
	}

	c.JSON(http.StatusCreated, sdk.MeetingResponse{Success: true, Meeting: created})
}

// GetMeetings handles GET requests for the caller's meetings, newest first
func GetMeetings(c *gin.Context) {
	user, ok := auth_module.GetAuthenticatedUser(c)
	if !ok {
		c.JSON(sdk.NewErrorResponse(http.StatusUnauthorized, "Not authenticated").AsGinResponse())
		return
	}

	list, err := meetingService.ListMeetings(c.Request.Context(), user.ID)
	if err != nil {
		log.Printf("[MEETING]: Failed to list meetings: %v", err)
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to list meetings").AsGinResponse())
		return
	}

	c.JSON(http.StatusOK, sdk.MeetingsResponse{Success: true, Meetings: list})
}

// GetMeeting handles GET requests for one owned meeting
func GetMeeting(c *gin.Context) {
	user, ok := auth_module.GetAuthenticatedUser(c)
	if !ok {
		c.JSON(sdk.NewErrorResponse(http.StatusUnauthorized, "Not authenticated").AsGinResponse())
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Invalid meeting id").AsGinResponse())
		return
	}

	m, ownerID, err := meetingService.GetMeeting(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, meetings.ErrNotFound) {
			c.JSON(sdk.NewErrorResponse(http.StatusNotFound, "Meeting not found").AsGinResponse())
			return
		}
		log.Printf("[MEETING]: Failed to get meeting: %v", err)
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to get meeting").AsGinResponse())
		return
	}

	if ownerID != user.ID {
		c.JSON(sdk.NewErrorResponse(http.StatusForbidden, "Not your meeting").AsGinResponse())
		return
	}

	c.JSON(http.StatusOK, sdk.MeetingResponse{Success: true, Meeting: m})
}

// DeleteMeeting handles DELETE requests for one owned meeting
func DeleteMeeting(c *gin.Context) {
	user, ok := auth_module.GetAuthenticatedUser(c)
	if !ok {
		c.JSON(sdk.NewErrorResponse(http.StatusUnauthorized, "Not authenticated").AsGinResponse())
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Invalid meeting id").AsGinResponse())
		return
	}

	_, ownerID, err := meetingService.GetMeeting(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, meetings.ErrNotFound) {
			c.JSON(sdk.NewErrorResponse(http.StatusNotFound, "Meeting not found").AsGinResponse())
			return
		}
		log.Printf("[MEETING]: Failed to get meeting: %v", err)
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to delete meeting").AsGinResponse())
		return
	}
	if ownerID != user.ID {
		c.JSON(sdk.NewErrorResponse(http.StatusForbidden, "Not your meeting").AsGinResponse())
		return
	}

	if err := meetingService.DeleteMeeting(c.Request.Context(), id); err != nil {
		log.Printf("[MEETING]: Failed to delete meeting: %v", err)
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to delete meeting").AsGinResponse())
		return
	}

	c.JSON(http.StatusOK, sdk.NewSuccess("Meeting deleted"))
}

// UpdateTranscript handles POST requests that replace the live transcript
// segments for an in-progress meeting. Pure live-store fast path, no database
// round-trip.
func UpdateTranscript(c *gin.Context) {
	var req sdk.TranscriptUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body").AsGinResponse())
		return
	}

	if !meetingService.UpdateTranscript(req.MeetingID, req.Segments) {
		c.JSON(sdk.NewErrorResponse(http.StatusNotFound, "No live meeting with that id").AsGinResponse())
		return
	}

	c.JSON(http.StatusOK, sdk.NewSuccess("Transcript updated"))
}

// RefreshSuggestions handles POST requests asking for fresh AI suggestions
// from the live transcript
func RefreshSuggestions(c *gin.Context) {
	var req sdk.SuggestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body").AsGinResponse())
		return
	}

	suggestions, found, err := meetingService.RefreshSuggestions(c.Request.Context(), req.MeetingID)
	if err != nil {
		log.Printf("[MEETING]: Failed to generate suggestions: %v", err)
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to generate suggestions").AsGinResponse())
		return
	}
	if !found {
		c.JSON(sdk.NewErrorResponse(http.StatusNotFound, "No live meeting with that id").AsGinResponse())
		return
	}

	c.JSON(http.StatusOK, sdk.SuggestionsResponse{Success: true, Suggestions: suggestions})
}

// FinalizeMeeting handles POST requests that end a meeting: summarize,
// persist, and complete
func FinalizeMeeting(c *gin.Context) {
	var req sdk.FinalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body").AsGinResponse())
		return
	}

	id, err := uuid.Parse(req.MeetingID)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Invalid meeting id").AsGinResponse())
		return
	}

	summary, err := meetingService.FinalizeMeeting(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, meetings.ErrNotFound) {
			c.JSON(sdk.NewErrorResponse(http.StatusNotFound, "Meeting not found").AsGinResponse())
			return
		}
		log.Printf("[MEETING]: Failed to finalize meeting: %v", err)
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to finalize meeting").AsGinResponse())
		return
	}

	c.JSON(http.StatusOK, sdk.SummaryResponse{Success: true, Summary: summary})
}

// UpdateSummary handles PUT requests replacing a meeting's summary. This
// path only requires that the durable row exists.
func UpdateSummary(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Invalid meeting id").AsGinResponse())
		return
	}

	var req sdk.UpdateSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Summary == nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Missing summary").AsGinResponse())
		return
	}

	if err := meetingService.UpdateSummary(c.Request.Context(), id, req.Summary); err != nil {
		if errors.Is(err, meetings.ErrNotFound) {
			c.JSON(sdk.NewErrorResponse(http.StatusNotFound, "Meeting not found").AsGinResponse())
			return
		}
		log.Printf("[MEETING]: Failed to update summary: %v", err)
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to update summary").AsGinResponse())
		return
	}

	c.JSON(http.StatusOK, sdk.NewSuccess("Summary updated"))
}

// UpdateNotes handles PUT requests that patch only the note fields of a
// stored summary
func UpdateNotes(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Invalid meeting id").AsGinResponse())
		return
	}

	var req sdk.UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body").AsGinResponse())
		return
	}

	if err := meetingService.UpdateNotes(c.Request.Context(), id, req.RawNotes, req.EnhancedNotes); err != nil {
		if errors.Is(err, meetings.ErrNotFound) {
			c.JSON(sdk.NewErrorResponse(http.StatusNotFound, "Meeting not found").AsGinResponse())
			return
		}
		log.Printf("[MEETING]: Failed to update notes: %v", err)
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to update notes").AsGinResponse())
		return
	}

	c.JSON(http.StatusOK, sdk.NewSuccess("Notes updated"))
}

// EnhanceNotes handles POST requests asking the AI engine to rewrite raw
// notes, storing the result on the meeting's summary
func EnhanceNotes(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Invalid meeting id").AsGinResponse())
		return
	}

	var req sdk.EnhanceNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Missing rawNotes").AsGinResponse())
		return
	}

	enhanced, err := meetingService.EnhanceNotes(c.Request.Context(), req.RawNotes)
	if err != nil {
		log.Printf("[MEETING]: Failed to enhance notes: %v", err)
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to enhance notes").AsGinResponse())
		return
	}

	if err := meetingService.UpdateNotes(c.Request.Context(), id, &req.RawNotes, &enhanced); err != nil {
		if errors.Is(err, meetings.ErrNotFound) {
			c.JSON(sdk.NewErrorResponse(http.StatusNotFound, "Meeting not found").AsGinResponse())
			return
		}
		log.Printf("[MEETING]: Failed to store enhanced notes: %v", err)
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to store enhanced notes").AsGinResponse())
		return
	}

	c.JSON(http.StatusOK, sdk.EnhanceNotesResponse{Success: true, EnhancedNotes: enhanced})
}

// SaveAudio handles multipart POST requests uploading a meeting's audio
func SaveAudio(c *gin.Context) {
	file, err := c.FormFile("audio")
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Missing audio file").AsGinResponse())
		return
	}

	meetingID := c.PostForm("meetingId")
	if meetingID == "" {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Missing meetingId").AsGinResponse())
		return
	}
	id, err := uuid.Parse(meetingID)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Invalid meeting id").AsGinResponse())
		return
	}

	isPartialField := c.PostForm("isPartial")
	if isPartialField == "" {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Missing isPartial").AsGinResponse())
		return
	}
	isPartial, err := strconv.ParseBool(isPartialField)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Invalid isPartial value").AsGinResponse())
		return
	}

	reader, err := file.Open()
	if err != nil {
		log.Printf("[MEETING]: Failed to read uploaded file: %v", err)
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to read uploaded file").AsGinResponse())
		return
	}
	defer reader.Close()

	contentType := file.Header.Get("Content-Type")
	url, err := meetingService.SaveAudio(c.Request.Context(), id, file.Filename, contentType, isPartial, reader)
	if err != nil {
		if errors.Is(err, meetings.ErrNotFound) {
			c.JSON(sdk.NewErrorResponse(http.StatusNotFound, "Meeting not found").AsGinResponse())
			return
		}
		log.Printf("[MEETING]: Failed to save audio: %v", err)
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to save audio").AsGinResponse())
		return
	}

	c.JSON(http.StatusOK, sdk.SaveAudioResponse{Success: true, AudioPath: url, IsPartial: isPartial})
}

// CreateUploadURL handles POST requests for a signed client upload token
func CreateUploadURL(c *gin.Context) {
	var req sdk.UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body").AsGinResponse())
		return
	}

	if !blob.ContentTypeAllowed(req.ContentType) {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Content type not allowed").AsGinResponse())
		return
	}

	token, uploadURL, err := meetingService.CreateUploadToken(req.Pathname, req.ContentType)
	if err != nil {
		log.Printf("[MEETING]: Failed to create upload token: %v", err)
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to create upload token").AsGinResponse())
		return
	}

	c.JSON(http.StatusOK, sdk.UploadURLResponse{Success: true, UploadURL: uploadURL, ClientToken: token})
}
