package auth

import (
	"context"
	"testing"

	"github.com/crewclock/crewclock-backend-go/internal/domain/auth"
	"github.com/crewclock/crewclock-backend-go/internal/domain/user"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/jwt"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
)

type fakeUserRepo struct {
	byEmail map[string]user.User
	byID    map[string]user.User
}

func newFakeUserRepo(users ...user.User) *fakeUserRepo {
	r := &fakeUserRepo{byEmail: make(map[string]user.User), byID: make(map[string]user.User)}
	for _, u := range users {
		r.byEmail[u.Email] = u
		r.byID[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) GetByID(_ context.Context, id, orgID string) (user.User, error) {
	u, ok := r.byID[id]
	if !ok || u.OrganizationID != orgID {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByIDAny(_ context.Context, id string) (user.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) List(context.Context, string) ([]user.User, error) { return nil, nil }
func (r *fakeUserRepo) Update(context.Context, user.User) error           { return nil }

type fakeGoogleService struct {
	info oauth.GoogleInformation
	err  error
}

func (g *fakeGoogleService) GenerateState(string) string { return "state" }

func (g *fakeGoogleService) RedirectURL(state string) string {
	return "https://accounts.example/" + state
}

func (g *fakeGoogleService) VerifyToken(context.Context, string) (*oauth2.Token, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &oauth2.Token{AccessToken: "ya29.test"}, nil
}

func (g *fakeGoogleService) VerifyUser(context.Context, *oauth2.Token) (oauth.GoogleInformation, error) {
	return g.info, g.err
}

func testUser(t *testing.T, password string) user.User {
	t.Helper()
	u := user.User{
		ID:             "emp-1",
		OrganizationID: "org-1",
		Email:          "ana@example.com",
		FullName:       "Ana Kovač",
		IsAdmin:        true,
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		u.PasswordHash = string(hash)
	}
	return u
}

func newAuthService(repo user.Repository, google oauth.GoogleService) auth.Service {
	return NewAuthService(repo, jwt.NewJWTService("test-secret", "15m", "168h"), google)
}

func TestLogin_Success(t *testing.T) {
	u := testUser(t, "correct horse")
	svc := newAuthService(newFakeUserRepo(u), &fakeGoogleService{})

	resp, err := svc.Login(context.Background(), auth.LoginRequest{
		Email:    u.Email,
		Password: "correct horse",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "emp-1", resp.UserID)
	assert.Equal(t, "org-1", resp.OrganizationID)
	assert.True(t, resp.IsAdmin)
}

func TestLogin_WrongPassword(t *testing.T) {
	u := testUser(t, "correct horse")
	svc := newAuthService(newFakeUserRepo(u), &fakeGoogleService{})

	_, err := svc.Login(context.Background(), auth.LoginRequest{
		Email:    u.Email,
		Password: "battery staple",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_UnknownEmailMatchesWrongPassword(t *testing.T) {
	svc := newAuthService(newFakeUserRepo(), &fakeGoogleService{})

	_, err := svc.Login(context.Background(), auth.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_GoogleOnlyAccountHasNoPassword(t *testing.T) {
	u := testUser(t, "")
	svc := newAuthService(newFakeUserRepo(u), &fakeGoogleService{})

	_, err := svc.Login(context.Background(), auth.LoginRequest{
		Email:    u.Email,
		Password: "anything",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLoginWithGoogle_UnknownEmail(t *testing.T) {
	svc := newAuthService(newFakeUserRepo(), &fakeGoogleService{
		info: oauth.GoogleInformation{Email: "stranger@example.com"},
	})

	_, err := svc.LoginWithGoogle(context.Background(), "auth-code")
	assert.ErrorIs(t, err, auth.ErrOAuthEmailNotFound)
}

func TestLoginWithGoogle_Success(t *testing.T) {
	u := testUser(t, "")
	svc := newAuthService(newFakeUserRepo(u), &fakeGoogleService{
		info: oauth.GoogleInformation{Email: u.Email},
	})

	resp, err := svc.LoginWithGoogle(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, u.ID, resp.UserID)
}

func TestRefresh_RoundTrip(t *testing.T) {
	u := testUser(t, "correct horse")
	svc := newAuthService(newFakeUserRepo(u), &fakeGoogleService{})

	login, err := svc.Login(context.Background(), auth.LoginRequest{
		Email:    u.Email,
		Password: "correct horse",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, u.ID, refreshed.UserID)
}

func TestRefresh_RevokedToken(t *testing.T) {
	u := testUser(t, "correct horse")
	svc := newAuthService(newFakeUserRepo(u), &fakeGoogleService{})

	login, err := svc.Login(context.Background(), auth.LoginRequest{
		Email:    u.Email,
		Password: "correct horse",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), login.RefreshToken))

	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)
}

func TestRefresh_GarbageToken(t *testing.T) {
	svc := newAuthService(newFakeUserRepo(), &fakeGoogleService{})

	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestLogout_EmptyTokenIsNoOp(t *testing.T) {
	svc := newAuthService(newFakeUserRepo(), &fakeGoogleService{})
	assert.NoError(t, svc.Logout(context.Background(), ""))
}
