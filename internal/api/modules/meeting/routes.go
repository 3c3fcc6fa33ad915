package meeting_module

import (
	"github.com/gin-gonic/gin"

	auth_module "github.com/meetingcopilot/api/internal/api/modules/auth"
)

// Register routes for the meeting module
func RegisterRoutes(g *gin.RouterGroup) {
	// Summary routes only require that the durable row exists; they are
	// driven by the processing backend, not user sessions
	g.PUT("/summary/:id", UpdateSummary)
	g.PUT("/summary/:id/notes", UpdateNotes)
	g.POST("/summary/:id/notes/enhance", EnhanceNotes)
	g.POST("/meeting/save-audio", SaveAudio)

	// Protected routes (require authentication)
	protected := g.Group("/")
	protected.Use(auth_module.AuthenticationHandler())
	protected.POST("/meeting/start", StartMeeting)
	protected.POST("/screen-share/start", StartScreenShare)
	protected.POST("/meeting/transcript", UpdateTranscript)
	protected.POST("/meeting/suggestions", RefreshSuggestions)
	protected.POST("/meeting/finalize", FinalizeMeeting)
	protected.GET("/meetings", GetMeetings)
	protected.GET("/meetings/:id", GetMeeting)
	protected.DELETE("/meetings/:id", DeleteMeeting)
	protected.POST("/upload-url", CreateUploadURL)
}
