package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitchenequip/equipment-backend/internal/registrations"
	pkgAuth "github.com/kitchenequip/equipment-backend/pkg/auth"
	"github.com/kitchenequip/equipment-backend/pkg/config"
	"github.com/kitchenequip/equipment-backend/pkg/db"
	"github.com/kitchenequip/equipment-backend/pkg/db/dbtest"
	"github.com/kitchenequip/equipment-backend/pkg/enums"
	pkgerrors "github.com/kitchenequip/equipment-backend/pkg/errors"
)

var testJWT = config.JWTConfig{Secret: "test-secret", Issuer: "kitchen-test", ExpirationMinutes: 30}

type fakeSessions struct {
	started map[string]int64
	revoked []string
	err     error
}

func (f *fakeSessions) Start(ctx context.Context, accessID string, userID int64) error {
	if f.err != nil {
		return f.err
	}
	if f.started == nil {
		f.started = map[string]int64{}
	}
	f.started[accessID] = userID
	return nil
}

func (f *fakeSessions) Revoke(ctx context.Context, accessID string) error {
	if f.err != nil {
		return f.err
	}
	f.revoked = append(f.revoked, accessID)
	return nil
}

func newService(t *testing.T, sessions sessionManager) (Service, *db.Client) {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewService(ServiceParams{
		DB:             client,
		SessionManager: sessions,
		JWTConfig:      testJWT,
		Now:            func() time.Time { return time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC) },
	})
	require.NoError(t, err)
	return svc, client
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, pkgerrors.CodeOf(err), "error: %v", err)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{JWTConfig: testJWT})
	require.Error(t, err)

	_, err = NewService(ServiceParams{DB: dbtest.Open(t)})
	require.Error(t, err)
}

func TestLoginIssuesToken(t *testing.T) {
	sessions := &fakeSessions{}
	svc, client := newService(t, sessions)
	user := dbtest.CreateUser(t, client, "alice", enums.UserTypeAdmin)

	res, err := svc.Login(context.Background(), LoginRequest{UserName: "ALICE", Password: dbtest.DefaultPassword})
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.UserID)
	assert.Equal(t, enums.UserTypeAdmin, res.UserType)
	assert.Equal(t, "Alice Tester", res.FullName)
	assert.Equal(t, time.Date(2030, 1, 2, 3, 34, 5, 0, time.UTC), res.ExpiresAt)

	claims, err := pkgAuth.ParseAccessToken(testJWT, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, enums.UserTypeAdmin, claims.UserType)
	assert.Equal(t, user.ID, sessions.started[claims.ID])
}

func TestLoginFailuresShareOneMessage(t *testing.T) {
	svc, client := newService(t, nil)
	dbtest.CreateUser(t, client, "alice", enums.UserTypeAdmin)
	gone := dbtest.CreateUser(t, client, "gone", enums.UserTypeAdmin)
	dbtest.SoftDelete(t, client, gone)

	cases := []LoginRequest{
		{UserName: "alice", Password: "wrong-password"},
		{UserName: "nobody", Password: dbtest.DefaultPassword},
		{UserName: "gone", Password: dbtest.DefaultPassword},
	}
	for _, req := range cases {
		_, err := svc.Login(context.Background(), req)
		requireCode(t, err, pkgerrors.CodeUnauthorized)
		assert.Equal(t, invalidCredentialsMessage, pkgerrors.As(err).Message())
	}
}

func TestLoginValidatesInput(t *testing.T) {
	svc, _ := newService(t, nil)

	_, err := svc.Login(context.Background(), LoginRequest{UserName: "  "})
	requireCode(t, err, pkgerrors.CodeValidation)
	assert.Equal(t, []string{"Username is required.", "Password is required."}, pkgerrors.Messages(err))
}

func TestLoginSessionFailureIsDependencyError(t *testing.T) {
	svc, client := newService(t, &fakeSessions{err: errors.New("redis down")})
	dbtest.CreateUser(t, client, "alice", enums.UserTypeAdmin)

	_, err := svc.Login(context.Background(), LoginRequest{UserName: "alice", Password: dbtest.DefaultPassword})
	requireCode(t, err, pkgerrors.CodeDependency)
}

func TestLogout(t *testing.T) {
	sessions := &fakeSessions{}
	svc, _ := newService(t, sessions)

	require.NoError(t, svc.Logout(context.Background(), "jti-1"))
	require.NoError(t, svc.Logout(context.Background(), " "))
	assert.Equal(t, []string{"jti-1"}, sessions.revoked)

	untracked, _ := newService(t, nil)
	require.NoError(t, untracked.Logout(context.Background(), "jti-2"))
}

func TestSignupApproveLogin(t *testing.T) {
	svc, client := newService(t, nil)
	ctx := context.Background()
	root := dbtest.CreateUser(t, client, "root", enums.UserTypeSuperAdmin)

	regs, err := registrations.NewService(registrations.ServiceParams{DB: client})
	require.NoError(t, err)

	id, err := regs.RequestSignup(ctx, registrations.SignupRequest{
		FirstName:    "Pat",
		LastName:     "Line",
		EmailAddress: "pat@kitchen.test",
		UserName:     "pat",
		Password:     "grill-master-1",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{UserName: "pat", Password: "grill-master-1"})
	requireCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = regs.Approve(ctx, root.ID, id)
	require.NoError(t, err)

	res, err := svc.Login(ctx, LoginRequest{UserName: "pat", Password: "grill-master-1"})
	require.NoError(t, err)
	assert.Equal(t, "Pat Line", res.FullName)
	assert.Equal(t, enums.UserTypeAdmin, res.UserType)

	_, err = svc.Login(ctx, LoginRequest{UserName: "pat", Password: "grill-master-2"})
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}
