package notification

import "github.com/cmlabs-hris/hrms-backend-go/internal/pkg/apperror"

// Notification domain errors
var (
	ErrNotificationNotFound = apperror.NotFound("notification not found")
)
