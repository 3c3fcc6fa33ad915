package auth_module

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/meetingcopilot/api/internal/stores/users"
	"github.com/meetingcopilot/api/pkg/sdk"
)

// Generic forgot-password reply, identical for every input so responses leak
// nothing about which accounts exist
const forgotPasswordMessage = "If an account exists for that email, a reset link has been sent"

// Register handles POST requests to create a local account
func Register(c *gin.Context) {
	var req sdk.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body").AsGinResponse())
		return
	}

	user, err := authService.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, ErrEmailTaken.Error()).AsGinResponse())
			return
		}
		log.Printf("[AUTH]: Failed to register user: %v", err)
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to create account").AsGinResponse())
		return
	}

	c.JSON(http.StatusCreated, sdk.UserResponse{Success: true, User: toSDKUser(user)})
}

// Login handles POST requests to authenticate a local account
func Login(c *gin.Context) {
	var req sdk.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body").AsGinResponse())
		return
	}

	user, session, err := authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(sdk.NewErrorResponse(http.StatusUnauthorized, ErrInvalidCredentials.Error()).AsGinResponse())
			return
		}
		log.Printf("[AUTH]: Failed to log in user: %v", err)
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to log in").AsGinResponse())
		return
	}

	c.JSON(http.StatusOK, sdk.SessionResponse{
		Success:   true,
		Token:     session.Token.String(),
		ExpiresAt: session.ExpiresAt,
		User:      toSDKUser(user),
	})
}

// Logout handles POST requests to end the current session
func Logout(c *gin.Context) {
	token, ok := GetSessionToken(c)
	if !ok {
		c.JSON(sdk.NewErrorResponse(http.StatusUnauthorized, "Not authenticated").AsGinResponse())
		return
	}

	if err := authService.Logout(c.Request.Context(), token); err != nil {
		log.Printf("[AUTH]: Failed to log out: %v", err)
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to log out").AsGinResponse())
		return
	}

	c.JSON(http.StatusOK, sdk.NewSuccess("Logged out"))
}

// Me handles GET requests for the authenticated user's profile
func Me(c *gin.Context) {
	user, ok := GetAuthenticatedUser(c)
	if !ok {
		c.JSON(sdk.NewErrorResponse(http.StatusUnauthorized, "Not authenticated").AsGinResponse())
		return
	}

	c.JSON(http.StatusOK, sdk.UserResponse{Success: true, User: toSDKUser(user)})
}

// ChangePassword handles POST requests to change the caller's password
func ChangePassword(c *gin.Context) {
	user, ok := GetAuthenticatedUser(c)
	if !ok {
		c.JSON(sdk.NewErrorResponse(http.StatusUnauthorized, "Not authenticated").AsGinResponse())
		return
	}

	var req sdk.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body").AsGinResponse())
		return
	}

	if err := authService.ChangePassword(c.Request.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, ErrFederatedAccount):
			c.JSON(sdk.NewErrorResponse(http.StatusForbidden, ErrFederatedAccount.Error()).AsGinResponse())
		case errors.Is(err, ErrInvalidCredentials):
			c.JSON(sdk.NewErrorResponse(http.StatusUnauthorized, "Current password is incorrect").AsGinResponse())
		default:
			log.Printf("[AUTH]: Failed to change password: %v", err)
			c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to change password").AsGinResponse())
		}
		return
	}

	c.JSON(http.StatusOK, sdk.NewSuccess("Password changed"))
}

// ForgotPassword handles POST requests to start the password reset flow
func ForgotPassword(c *gin.Context) {
	var req sdk.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body").AsGinResponse())
		return
	}

	if err := authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		// Internal failures are logged but the reply stays generic
		log.Printf("[AUTH]: Failed to process password reset for %s: %v", req.Email, err)
	}

	c.JSON(http.StatusOK, sdk.NewSuccess(forgotPasswordMessage))
}

// ResetPassword handles POST requests to redeem a reset token
func ResetPassword(c *gin.Context) {
	var req sdk.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body").AsGinResponse())
		return
	}

	if err := authService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, ErrInvalidResetToken.Error()).AsGinResponse())
			return
		}
		log.Printf("[AUTH]: Failed to reset password: %v", err)
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to reset password").AsGinResponse())
		return
	}

	c.JSON(http.StatusOK, sdk.NewSuccess("Password reset"))
}

// GoogleLogin handles GET requests to start the Google OAuth flow
func GoogleLogin(c *gin.Context) {
	state := uuid.New().String()

	url, err := authService.GoogleLoginURL(state)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusNotImplemented, "Google login is not configured").AsGinResponse())
		return
	}

	// State cookie closes the redirect loop on callback
	c.SetCookie("oauth_state", state, 600, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback handles the OAuth redirect back from Google
func GoogleCallback(c *gin.Context) {
	state, err := c.Cookie("oauth_state")
	if err != nil || state == "" || state != c.Query("state") {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Invalid OAuth state").AsGinResponse())
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Missing authorization code").AsGinResponse())
		return
	}

	user, session, err := authService.GoogleCallback(c.Request.Context(), code)
	if err != nil {
		log.Printf("[AUTH]: Google callback failed: %v", err)
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to complete Google login").AsGinResponse())
		return
	}

	c.JSON(http.StatusOK, sdk.SessionResponse{
		Success:   true,
		Token:     session.Token.String(),
		ExpiresAt: session.ExpiresAt,
		User:      toSDKUser(user),
	})
}

// toSDKUser converts a stored user to its API projection
func toSDKUser(user *users.User) *sdk.User {
	return &sdk.User{
		ID:        user.ID.String(),
		Email:     user.Email,
		Name:      user.Name,
		Provider:  user.Provider,
		CreatedAt: user.CreatedAt,
	}
}
