package auth_module

import (
	"github.com/gin-gonic/gin"
)

// Register routes for the auth module
func RegisterRoutes(g *gin.RouterGroup) {
	// Create base group for auth routes
	group := g.Group("/auth")

	// Public routes
	group.POST("/register", Register)
	group.POST("/login", Login)
	group.POST("/forgot-password", ForgotPassword)
	group.POST("/reset-password", ResetPassword)
	group.GET("/google/login", GoogleLogin)
	group.GET("/google/callback", GoogleCallback)

	// Protected routes (require authentication)
	protected := group.Group("/")
	protected.Use(AuthenticationHandler())
	protected.POST("/logout", Logout)
	protected.GET("/me", Me)
	protected.POST("/change-password", ChangePassword)
}
