package admin_module

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/meetingcopilot/api/internal/stores/meetings"
	"github.com/meetingcopilot/api/internal/stores/users"
	"github.com/meetingcopilot/api/pkg/utils"
)

// AdminService handles user administration. Access is gated by exact match
// between the caller's email and the configured admin email.
type AdminService struct {
	users      users.Store
	meetings   meetings.Store
	adminEmail string
}

var adminService *AdminService

// Init creates the admin service. ADMIN_EMAIL must be configured or the
// module refuses to start rather than running with an open gate.
func Init(cfg *utils.Config, userStore users.Store, meetingStore meetings.Store) error {
	adminEmail := cfg.Get("ADMIN_EMAIL")
	if adminEmail == "" {
		return fmt.Errorf("ADMIN_EMAIL not set in environment")
	}

	adminService = &AdminService{
		users:      userStore,
		meetings:   meetingStore,
		adminEmail: adminEmail,
	}
	return nil
}

// IsAdmin reports whether the email matches the configured admin account
func (s *AdminService) IsAdmin(email string) bool {
	return email == s.adminEmail
}

// userWithCount pairs a user with their meeting count
type userWithCount struct {
	user         *users.User
	meetingCount int64
}

// ListUsers returns every account with its meeting count
func (s *AdminService) ListUsers(ctx context.Context) ([]userWithCount, error) {
	all, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]userWithCount, 0, len(all))
	for _, user := range all {
		count, err := s.meetings.CountMeetingsByUser(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, userWithCount{user: user, meetingCount: count})
	}
	return out, nil
}

// DeleteUser removes an account and cascades to its owned meetings,
// returning how many meetings were deleted
func (s *AdminService) DeleteUser(ctx context.Context, id uuid.UUID) (int64, error) {
	deleted, err := s.meetings.DeleteMeetingsByUser(ctx, id)
	if err != nil {
		return 0, err
	}

	if err := s.users.DeleteUser(ctx, id); err != nil {
		return deleted, err
	}
	return deleted, nil
}
