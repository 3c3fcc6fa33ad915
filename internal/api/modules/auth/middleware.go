package auth_module

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/meetingcopilot/api/internal/stores/users"
	"github.com/meetingcopilot/api/pkg/sdk"
)

// AuthenticationHandler middleware validates the bearer session token on
// protected endpoints and stores the resolved user in the gin context
func AuthenticationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(sdk.NewErrorResponse(http.StatusUnauthorized, "Authorization header required").AsGinResponse())
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(sdk.NewErrorResponse(http.StatusUnauthorized, "Invalid authorization format. Use Bearer <session token>").AsGinResponse())
			c.Abort()
			return
		}

		token, err := uuid.Parse(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.JSON(sdk.NewErrorResponse(http.StatusUnauthorized, "Invalid session token").AsGinResponse())
			c.Abort()
			return
		}

		user, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.JSON(sdk.NewErrorResponse(http.StatusUnauthorized, "Invalid or expired session").AsGinResponse())
			c.Abort()
			return
		}

		c.Set("authenticated_user", user)
		c.Set("session_token", token)

		c.Next()
	}
}

// GetAuthenticatedUser retrieves the authenticated user from the gin context
func GetAuthenticatedUser(c *gin.Context) (*users.User, bool) {
	value, exists := c.Get("authenticated_user")
	if !exists {
		return nil, false
	}

	if user, ok := value.(*users.User); ok {
		return user, true
	}
	return nil, false
}

// GetSessionToken retrieves the bearer token from the gin context
func GetSessionToken(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get("session_token")
	if !exists {
		return uuid.Nil, false
	}

	if token, ok := value.(uuid.UUID); ok {
		return token, true
	}
	return uuid.Nil, false
}
