package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/crewclock/crewclock-backend-go/internal/domain/notification"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/clock"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotificationRepo struct {
	mu      sync.Mutex
	created []*notification.Notification
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, n)
	return nil
}

func (r *fakeNotificationRepo) CreateBatch(_ context.Context, ns []*notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, ns...)
	return nil
}

func (r *fakeNotificationRepo) GetByUserID(context.Context, string, int, int, bool) ([]*notification.Notification, int, error) {
	return nil, 0, nil
}

func (r *fakeNotificationRepo) GetUnreadCount(context.Context, string) (int, error) {
	return 0, nil
}

func (r *fakeNotificationRepo) MarkAsRead(context.Context, []string, string) error { return nil }

func (r *fakeNotificationRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.created)
}

func newNotifyEnv() (notification.Service, *fakeNotificationRepo) {
	repo := &fakeNotificationRepo{}
	clk := clock.NewFixed(time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC))
	return NewNotificationService(repo, sse.NewHub(), clk), repo
}

func TestNotify_PersistedBeforeStopReturns(t *testing.T) {
	svc, repo := newNotifyEnv()

	svc.Notify("org-1", "emp-1", notification.TypeOvertimeAlert,
		"Overtime", "Session running long", map[string]interface{}{"log_id": "w-1"})
	svc.Stop()

	require.Equal(t, 1, repo.count())
	n := repo.created[0]
	assert.Equal(t, "emp-1", n.RecipientID)
	assert.Equal(t, notification.TypeOvertimeAlert, n.Type)
	assert.NotEmpty(t, n.ID)
}

func TestNotify_AfterStopDropsInsteadOfPanicking(t *testing.T) {
	svc, repo := newNotifyEnv()
	svc.Stop()

	assert.NotPanics(t, func() {
		svc.Notify("org-1", "emp-1", notification.TypeShiftStopped, "Closed", "", nil)
	})
	assert.Zero(t, repo.count())
}

func TestStop_Idempotent(t *testing.T) {
	svc, _ := newNotifyEnv()

	assert.NotPanics(t, func() {
		svc.Stop()
		svc.Stop()
	})
}

func TestNotify_ConcurrentWithStop(t *testing.T) {
	svc, _ := newNotifyEnv()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				svc.Notify("org-1", "emp-1", notification.TypeShiftStarted, "Opened", "", nil)
			}
		}()
	}
	svc.Stop()
	wg.Wait()
}
