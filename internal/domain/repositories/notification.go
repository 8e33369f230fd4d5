package repositories

import (
	"context"

	"studioflow/internal/domain/models"
)

// NotificationRepository defines data access for provider notifications
type NotificationRepository interface {
	// Create inserts a notification and returns it with generated ID
	Create(ctx context.Context, n *models.Notification) error

	// List retrieves notifications newest first, optionally only unread ones
	List(ctx context.Context, organizationID string, unreadOnly bool) ([]models.Notification, error)

	// MarkRead flags a notification as read
	MarkRead(ctx context.Context, id, organizationID string) error
}
