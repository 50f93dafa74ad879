package worklog

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/crewclock/crewclock-backend-go/internal/domain/notification"
	"github.com/crewclock/crewclock-backend-go/internal/domain/organization"
	"github.com/crewclock/crewclock-backend-go/internal/domain/position"
	"github.com/crewclock/crewclock-backend-go/internal/domain/shift"
	"github.com/crewclock/crewclock-backend-go/internal/domain/user"
	"github.com/crewclock/crewclock-backend-go/internal/domain/worklog"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/clock"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/policy"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/snapshot"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/sse"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/require"
)

const (
	testOrgID  = "org-1"
	testUserID = "emp-1"
)

type fakeWorkLogRepo struct {
	logs      map[string]worklog.WorkLog
	failWrite bool
	failRead  bool
}

func newFakeWorkLogRepo() *fakeWorkLogRepo {
	return &fakeWorkLogRepo{logs: make(map[string]worklog.WorkLog)}
}

func (r *fakeWorkLogRepo) GetByMonth(_ context.Context, orgID, month string) ([]worklog.WorkLog, error) {
	if r.failRead {
		return nil, errors.New("storage unreachable")
	}
	var out []worklog.WorkLog
	for _, l := range r.logs {
		if l.OrganizationID == orgID && strings.HasPrefix(l.Date, month) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeWorkLogRepo) GetByUserAndMonth(_ context.Context, userID, orgID, month string) ([]worklog.WorkLog, error) {
	var out []worklog.WorkLog
	for _, l := range r.logs {
		if l.UserID == userID && l.OrganizationID == orgID && strings.HasPrefix(l.Date, month) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeWorkLogRepo) GetByUserAndDate(_ context.Context, userID, date, orgID string) ([]worklog.WorkLog, error) {
	var out []worklog.WorkLog
	for _, l := range r.logs {
		if l.UserID == userID && l.OrganizationID == orgID && l.Date == date {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeWorkLogRepo) GetByID(_ context.Context, id, orgID string) (worklog.WorkLog, error) {
	l, ok := r.logs[id]
	if !ok || l.OrganizationID != orgID {
		return worklog.WorkLog{}, worklog.ErrLogNotFound
	}
	return l, nil
}

func (r *fakeWorkLogRepo) GetOpenSessions(_ context.Context, orgID string) ([]worklog.WorkLog, error) {
	var out []worklog.WorkLog
	for _, l := range r.logs {
		if l.OrganizationID == orgID && l.IsOpen() {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeWorkLogRepo) GetOpenSessionsByUser(_ context.Context, userID, orgID string) ([]worklog.WorkLog, error) {
	var out []worklog.WorkLog
	for _, l := range r.logs {
		if l.UserID == userID && l.OrganizationID == orgID && l.IsOpen() {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeWorkLogRepo) BatchUpsert(_ context.Context, logs []worklog.WorkLog, orgID string) error {
	if r.failWrite {
		return errors.New("storage unreachable")
	}
	for _, l := range logs {
		l.OrganizationID = orgID
		r.logs[l.ID] = l
	}
	return nil
}

func (r *fakeWorkLogRepo) Delete(_ context.Context, id, orgID string) error {
	if _, ok := r.logs[id]; !ok {
		return worklog.ErrLogNotFound
	}
	delete(r.logs, id)
	return nil
}

// fakeShiftService records Reconcile calls so tests can assert which
// employees had their slot maps rebuilt.
type reconcileCall struct {
	userID string
	logIDs []string
}

type fakeShiftService struct {
	reconciled []reconcileCall
}

func (s *fakeShiftService) StartSession(context.Context, shift.StartSessionRequest) (shift.SessionResponse, error) {
	return shift.SessionResponse{}, nil
}

func (s *fakeShiftService) StopSession(context.Context, shift.StopSessionRequest) (*shift.SessionResponse, error) {
	return nil, nil
}

func (s *fakeShiftService) ForceFinish(context.Context, string) (shift.SessionResponse, error) {
	return shift.SessionResponse{}, nil
}

func (s *fakeShiftService) Reconcile(_ context.Context, userID string, logs []worklog.WorkLog) (shift.SlotMap, error) {
	call := reconcileCall{userID: userID}
	for _, l := range logs {
		call.logIDs = append(call.logIDs, l.ID)
	}
	s.reconciled = append(s.reconciled, call)
	return shift.SlotMap{}, nil
}

func (s *fakeShiftService) AutoAssignSlots(context.Context, string) ([]shift.SlotAssignment, error) {
	return nil, nil
}

func (s *fakeShiftService) BusyMachines(context.Context) (map[string]bool, error) {
	return map[string]bool{}, nil
}

func (s *fakeShiftService) MySlots(context.Context) (shift.SlotMapResponse, error) {
	return shift.SlotMapResponse{}, nil
}

func (s *fakeShiftService) OrgSlots(context.Context) ([]shift.SlotMapResponse, error) {
	return nil, nil
}

type fakeUserRepo struct {
	users map[string]user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]user.User)}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id, orgID string) (user.User, error) {
	u, ok := r.users[id]
	if !ok || u.OrganizationID != orgID {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByIDAny(_ context.Context, id string) (user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *fakeUserRepo) List(_ context.Context, orgID string) ([]user.User, error) {
	var out []user.User
	for _, u := range r.users {
		if u.OrganizationID == orgID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u user.User) error {
	r.users[u.ID] = u
	return nil
}

type fakePositionRepo struct {
	positions map[string]position.Position
}

func newFakePositionRepo() *fakePositionRepo {
	return &fakePositionRepo{positions: make(map[string]position.Position)}
}

func (r *fakePositionRepo) Create(_ context.Context, pos position.Position) (position.Position, error) {
	r.positions[pos.ID] = pos
	return pos, nil
}

func (r *fakePositionRepo) GetByID(_ context.Context, id, orgID string) (position.Position, error) {
	p, ok := r.positions[id]
	if !ok || p.OrganizationID != orgID {
		return position.Position{}, position.ErrPositionNotFound
	}
	return p, nil
}

func (r *fakePositionRepo) List(_ context.Context, orgID string) ([]position.Position, error) {
	var out []position.Position
	for _, p := range r.positions {
		if p.OrganizationID == orgID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePositionRepo) Update(_ context.Context, pos position.Position) error {
	r.positions[pos.ID] = pos
	return nil
}

func (r *fakePositionRepo) Delete(_ context.Context, id, _ string) error {
	delete(r.positions, id)
	return nil
}

type fakeOrgRepo struct{}

func (fakeOrgRepo) ListIDs(context.Context) ([]string, error) {
	return []string{testOrgID}, nil
}

func (fakeOrgRepo) GetByID(_ context.Context, id string) (organization.Organization, error) {
	return organization.Organization{ID: id}, nil
}

func (fakeOrgRepo) GetByUsername(context.Context, string) (organization.Organization, error) {
	return organization.Organization{}, organization.ErrOrganizationNotFound
}

func (fakeOrgRepo) Update(context.Context, organization.Organization) error { return nil }

func (fakeOrgRepo) CountEmployees(context.Context, string) (int, error) { return 0, nil }

type notifyCall struct {
	RecipientID string
	Type        notification.Type
}

type fakeNotifier struct {
	calls []notifyCall
}

func (n *fakeNotifier) Notify(_, recipientID string, typ notification.Type, _, _ string, _ map[string]interface{}) {
	n.calls = append(n.calls, notifyCall{RecipientID: recipientID, Type: typ})
}

func (n *fakeNotifier) GetMy(context.Context, int, int, bool) ([]*notification.Notification, int, error) {
	return nil, 0, nil
}

func (n *fakeNotifier) MarkRead(context.Context, []string) error { return nil }

func (n *fakeNotifier) Stop() {}

type testEnv struct {
	svc       *WorkLogServiceImpl
	repo      *fakeWorkLogRepo
	shifts    *fakeShiftService
	users     *fakeUserRepo
	positions *fakePositionRepo
	notifier  *fakeNotifier
	clock     *clock.Fixed
	ctx       context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	snapshots, err := snapshot.Open(filepath.Join(t.TempDir(), "snap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { snapshots.Close() })

	repo := newFakeWorkLogRepo()
	shifts := &fakeShiftService{}
	users := newFakeUserRepo()
	positions := newFakePositionRepo()
	notifier := &fakeNotifier{}
	clk := clock.NewFixed(time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC))

	svc := NewWorkLogService(
		repo, shifts, users, positions, fakeOrgRepo{}, policy.NewEvaluator(),
		clk, sse.NewHub(), notifier, snapshots, 0,
	).(*WorkLogServiceImpl)

	return &testEnv{
		svc:       svc,
		repo:      repo,
		shifts:    shifts,
		users:     users,
		positions: positions,
		notifier:  notifier,
		clock:     clk,
		ctx:       authContext(t, testUserID),
	}
}

// seedMember registers a non-admin employee, optionally holding a
// position with the given admin tier, and returns their context.
func (e *testEnv) seedMember(t *testing.T, userID string, adminTier int) context.Context {
	t.Helper()
	u := user.User{ID: userID, OrganizationID: testOrgID}
	if adminTier >= 0 {
		posID := "pos-" + userID
		e.positions.positions[posID] = position.Position{
			ID:             posID,
			OrganizationID: testOrgID,
			Name:           "crew",
			Permissions:    position.Permissions{AdminTier: adminTier},
		}
		u.PositionID = &posID
	}
	e.users.users[userID] = u
	return memberContext(t, userID)
}

func authContext(t *testing.T, userID string) context.Context {
	t.Helper()
	return claimsContext(t, userID, true)
}

func memberContext(t *testing.T, userID string) context.Context {
	t.Helper()
	return claimsContext(t, userID, false)
}

func claimsContext(t *testing.T, userID string, isAdmin bool) context.Context {
	t.Helper()
	auth := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := auth.Encode(map[string]interface{}{
		"user_id":  userID,
		"org_id":   testOrgID,
		"is_admin": isAdmin,
		"type":     "access",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}
