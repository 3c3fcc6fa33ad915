package admin_module

import (
	"github.com/gin-gonic/gin"

	auth_module "github.com/meetingcopilot/api/internal/api/modules/auth"
)

// Register routes for the admin module
func RegisterRoutes(g *gin.RouterGroup) {
	// Create base group for admin routes
	group := g.Group("/admin")
	group.Use(auth_module.AuthenticationHandler(), AdminHandler())

	group.GET("/users", GetUsers)
	group.DELETE("/users/:id", DeleteUser)
}
