package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/crewclock/crewclock-backend-go/internal/domain/notification"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/clock"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/sse"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
)

const (
	queueSize   = 256
	workerCount = 2
)

type NotificationServiceImpl struct {
	repo  notification.Repository
	hub   *sse.Hub
	clock clock.Clock

	queue chan *notification.Notification
	wg    sync.WaitGroup
	once  sync.Once

	// mu guards closed so a Notify racing Stop drops instead of sending
	// on a closed channel.
	mu     sync.RWMutex
	closed bool
}

func NewNotificationService(repo notification.Repository, hub *sse.Hub, clk clock.Clock) notification.Service {
	s := &NotificationServiceImpl{
		repo:  repo,
		hub:   hub,
		clock: clk,
		queue: make(chan *notification.Notification, queueSize),
	}

	s.wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go s.worker()
	}
	return s
}

func (s *NotificationServiceImpl) worker() {
	defer s.wg.Done()
	for n := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.repo.Create(ctx, n); err != nil {
			slog.Warn("failed to persist notification",
				slog.String("type", string(n.Type)),
				slog.String("recipient_id", n.RecipientID),
				slog.Any("error", err))
		}
		cancel()

		s.hub.Publish(n.OrganizationID, sse.Event{
			Event: "notification.created",
			Data:  n,
		})
	}
}

// Notify implements notification.Service. Enqueue only; when the queue is
// full the message is dropped rather than blocking the shift lifecycle.
func (s *NotificationServiceImpl) Notify(orgID, recipientID string, typ notification.Type, title, message string, data map[string]interface{}) {
	n := &notification.Notification{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		RecipientID:    recipientID,
		Type:           typ,
		Title:          title,
		Message:        message,
		Data:           data,
		CreatedAt:      s.clock.Now(),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		slog.Warn("notification service stopped, dropping",
			slog.String("type", string(typ)),
			slog.String("recipient_id", recipientID))
		return
	}

	select {
	case s.queue <- n:
	default:
		slog.Warn("notification queue full, dropping",
			slog.String("type", string(typ)),
			slog.String("recipient_id", recipientID))
	}
}

func userFromContext(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user_id claim is missing or invalid")
	}
	return userID, nil
}

// GetMy implements notification.Service.
func (s *NotificationServiceImpl) GetMy(ctx context.Context, page, limit int, unreadOnly bool) ([]*notification.Notification, int, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.GetByUserID(ctx, userID, page, limit, unreadOnly)
}

// MarkRead implements notification.Service.
func (s *NotificationServiceImpl) MarkRead(ctx context.Context, ids []string) error {
	userID, err := userFromContext(ctx)
	if err != nil {
		return err
	}
	return s.repo.MarkAsRead(ctx, ids, userID)
}

// Stop implements notification.Service. Drains the queue: messages
// already enqueued are persisted before workers exit.
func (s *NotificationServiceImpl) Stop() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.queue)
	})
	s.wg.Wait()
}
