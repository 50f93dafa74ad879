package shift

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/crewclock/crewclock-backend-go/internal/domain/machine"
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

type fakeWorkLogRepo struct {
	logs      map[string]worklog.WorkLog
	failWrite bool
}

func newFakeWorkLogRepo() *fakeWorkLogRepo {
	return &fakeWorkLogRepo{logs: make(map[string]worklog.WorkLog)}
}

func (r *fakeWorkLogRepo) GetByMonth(_ context.Context, orgID, month string) ([]worklog.WorkLog, error) {
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

type fakeShiftRepo struct {
	slots    map[string]shift.SlotMap
	failSave bool
	failRead bool
}

func newFakeShiftRepo() *fakeShiftRepo {
	return &fakeShiftRepo{slots: make(map[string]shift.SlotMap)}
}

func (r *fakeShiftRepo) GetAll(_ context.Context, _ string) (map[string]shift.SlotMap, error) {
	if r.failRead {
		return nil, errors.New("storage unreachable")
	}
	out := make(map[string]shift.SlotMap, len(r.slots))
	for userID, m := range r.slots {
		out[userID] = m.Clone()
	}
	return out, nil
}

func (r *fakeShiftRepo) Get(_ context.Context, userID, _ string) (shift.SlotMap, error) {
	if m, ok := r.slots[userID]; ok {
		return m.Clone(), nil
	}
	return make(shift.SlotMap), nil
}

func (r *fakeShiftRepo) Save(_ context.Context, userID string, slots shift.SlotMap, _ string) error {
	if r.failSave {
		return errors.New("storage unreachable")
	}
	r.slots[userID] = slots.Clone()
	return nil
}

type fakeUserRepo struct {
	users map[string]user.User
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

func (r *fakePositionRepo) Create(_ context.Context, p position.Position) (position.Position, error) {
	r.positions[p.ID] = p
	return p, nil
}

func (r *fakePositionRepo) GetByID(_ context.Context, id, _ string) (position.Position, error) {
	p, ok := r.positions[id]
	if !ok {
		return position.Position{}, position.ErrPositionNotFound
	}
	return p, nil
}

func (r *fakePositionRepo) List(_ context.Context, _ string) ([]position.Position, error) {
	var out []position.Position
	for _, p := range r.positions {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakePositionRepo) Update(_ context.Context, p position.Position) error {
	r.positions[p.ID] = p
	return nil
}

func (r *fakePositionRepo) Delete(_ context.Context, id, _ string) error {
	delete(r.positions, id)
	return nil
}

type fakeMachineRepo struct {
	machines map[string]machine.Machine
}

func (r *fakeMachineRepo) Create(_ context.Context, m machine.Machine) (machine.Machine, error) {
	r.machines[m.ID] = m
	return m, nil
}

func (r *fakeMachineRepo) GetByID(_ context.Context, id, _ string) (machine.Machine, error) {
	m, ok := r.machines[id]
	if !ok {
		return machine.Machine{}, machine.ErrMachineNotFound
	}
	return m, nil
}

func (r *fakeMachineRepo) List(_ context.Context, _ string) ([]machine.Machine, error) {
	var out []machine.Machine
	for _, m := range r.machines {
		out = append(out, m)
	}
	return out, nil
}

func (r *fakeMachineRepo) Delete(_ context.Context, id, _ string) error {
	delete(r.machines, id)
	return nil
}

type fakeOrgRepo struct {
	org organization.Organization
}

func (r *fakeOrgRepo) ListIDs(_ context.Context) ([]string, error) {
	return []string{r.org.ID}, nil
}

func (r *fakeOrgRepo) GetByID(_ context.Context, _ string) (organization.Organization, error) {
	return r.org, nil
}

func (r *fakeOrgRepo) GetByUsername(_ context.Context, _ string) (organization.Organization, error) {
	return r.org, nil
}

func (r *fakeOrgRepo) Update(_ context.Context, org organization.Organization) error {
	r.org = org
	return nil
}

func (r *fakeOrgRepo) CountEmployees(_ context.Context, _ string) (int, error) {
	return 1, nil
}

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

func (n *fakeNotifier) GetMy(_ context.Context, _, _ int, _ bool) ([]*notification.Notification, int, error) {
	return nil, 0, nil
}

func (n *fakeNotifier) MarkRead(_ context.Context, _ []string) error { return nil }

func (n *fakeNotifier) Stop() {}

// testEnv bundles the service with its collaborators so assertions can
// reach into the fakes.
type testEnv struct {
	svc      shift.Service
	logs     *fakeWorkLogRepo
	slots    *fakeShiftRepo
	users    *fakeUserRepo
	machines *fakeMachineRepo
	orgs     *fakeOrgRepo
	notifier *fakeNotifier
	clock    *clock.Fixed
}

const (
	testOrgID  = "org-1"
	testUserID = "emp-1"
)

func newTestEnv(t *testing.T, pos *position.Position) *testEnv {
	t.Helper()

	logs := newFakeWorkLogRepo()
	slots := newFakeShiftRepo()
	users := &fakeUserRepo{users: make(map[string]user.User)}
	positions := &fakePositionRepo{positions: make(map[string]position.Position)}
	machines := &fakeMachineRepo{machines: make(map[string]machine.Machine)}
	orgs := &fakeOrgRepo{org: organization.Organization{ID: testOrgID, Name: "Test Org", NightShiftBonusMinutes: 60}}
	notifier := &fakeNotifier{}

	u := user.User{ID: testUserID, OrganizationID: testOrgID, FullName: "Test Employee"}
	if pos != nil {
		positions.positions[pos.ID] = *pos
		u.PositionID = &pos.ID
	}
	users.users[testUserID] = u

	snapshots, err := snapshot.Open(filepath.Join(t.TempDir(), "snap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { snapshots.Close() })

	clk := clock.NewFixed(time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC))

	svc := NewShiftService(
		logs, slots, users, positions, machines, orgs,
		policy.NewEvaluator(), clk, sse.NewHub(), notifier, snapshots,
		24*time.Hour,
	)

	return &testEnv{
		svc:      svc,
		logs:     logs,
		slots:    slots,
		users:    users,
		machines: machines,
		orgs:     orgs,
		notifier: notifier,
		clock:    clk,
	}
}

// authContext builds a request context carrying the JWT claims the
// services read.
func authContext(t *testing.T, userID string) context.Context {
	t.Helper()

	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"user_id":  userID,
		"org_id":   testOrgID,
		"is_admin": true,
		"type":     "access",
	})
	require.NoError(t, err)

	return jwtauth.NewContext(context.Background(), token, nil)
}
