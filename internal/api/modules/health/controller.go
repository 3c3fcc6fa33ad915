package health

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meetingcopilot/api/pkg/sdk"
)

// Return status of the API
func getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, sdk.NewSuccess("OK"))
}
