package notification

import "context"

// Service enqueues notifications for asynchronous, best-effort delivery.
type Service interface {
	// Notify queues a message; it never blocks the caller and never
	// returns delivery errors.
	Notify(orgID, recipientID string, typ Type, title, message string, data map[string]interface{})

	// GetMy returns the calling user's notifications.
	GetMy(ctx context.Context, page, limit int, unreadOnly bool) ([]*Notification, int, error)

	// MarkRead marks the given notifications read for the calling user.
	MarkRead(ctx context.Context, ids []string) error

	// Stop drains the queue and stops the workers.
	Stop()
}
