package admin_module

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auth_module "github.com/meetingcopilot/api/internal/api/modules/auth"
	"github.com/meetingcopilot/api/internal/stores/users"
	"github.com/meetingcopilot/api/pkg/sdk"
)

// AdminHandler middleware rejects callers whose email does not match the
// configured admin email. Runs after authentication.
func AdminHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth_module.GetAuthenticatedUser(c)
		if !ok {
			c.JSON(sdk.NewErrorResponse(http.StatusUnauthorized, "Not authenticated").AsGinResponse())
			c.Abort()
			return
		}

		if !adminService.IsAdmin(user.Email) {
			c.JSON(sdk.NewErrorResponse(http.StatusForbidden, "Admin access required").AsGinResponse())
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUsers handles GET requests listing every account with meeting counts
func GetUsers(c *gin.Context) {
	listed, err := adminService.ListUsers(c.Request.Context())
	if err != nil {
		log.Printf("[ADMIN]: Failed to list users: %v", err)
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to list users").AsGinResponse())
		return
	}

	out := make([]*sdk.AdminUser, 0, len(listed))
	for _, entry := range listed {
		out = append(out, toSDKAdminUser(entry.user, entry.meetingCount))
	}

	c.JSON(http.StatusOK, sdk.AdminUsersResponse{Success: true, Users: out})
}

// DeleteUser handles DELETE requests removing an account and its meetings.
// The admin cannot delete their own account.
func DeleteUser(c *gin.Context) {
	caller, _ := auth_module.GetAuthenticatedUser(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Invalid user id").AsGinResponse())
		return
	}

	if caller != nil && caller.ID == id {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Cannot delete your own account").AsGinResponse())
		return
	}

	deleted, err := adminService.DeleteUser(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			c.JSON(sdk.NewErrorResponse(http.StatusNotFound, "User not found").AsGinResponse())
			return
		}
		log.Printf("[ADMIN]: Failed to delete user: %v", err)
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to delete user").AsGinResponse())
		return
	}

	c.JSON(http.StatusOK, sdk.AdminDeleteResponse{Success: true, DeletedMeetings: deleted})
}

// toSDKAdminUser converts a stored user to its admin listing projection
func toSDKAdminUser(user *users.User, meetingCount int64) *sdk.AdminUser {
	return &sdk.AdminUser{
		User: sdk.User{
			ID:        user.ID.String(),
			Email:     user.Email,
			Name:      user.Name,
			Provider:  user.Provider,
			CreatedAt: user.CreatedAt,
		},
		MeetingCount: meetingCount,
	}
}
