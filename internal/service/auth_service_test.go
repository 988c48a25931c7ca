package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cursova/cursova-api/internal/models"
	appErrors "github.com/cursova/cursova-api/pkg/errors"
	"github.com/cursova/cursova-api/pkg/token"
)

func newAuthFixture(t *testing.T) (*onboardingFixture, *AuthService) {
	t.Helper()
	f := newOnboardingFixture(t)
	auth := NewAuthService(f.identitySvc, f.users, "jwt-secret", "cursova-api", time.Hour, zap.NewNop())
	return f, auth
}

// onboardUser runs the full invite flow so the account can log in.
func onboardUser(t *testing.T, f *onboardingFixture, email, password string) string {
	t.Helper()
	ctx := context.Background()

	result, err := f.userSvc.CreateUserWithInvite(ctx, &models.CreateUserRequest{
		Email:       email,
		DisplayName: "Account",
		Role:        models.RoleCoordinator,
	}, "")
	require.NoError(t, err)
	uid := result.User.UID

	code, err := f.identitySvc.GenerateActionCode(token.PurposeResetPassword, uid)
	require.NoError(t, err)
	_, err = f.userSvc.SetPassword(ctx, &models.SetPasswordRequest{Code: code, Password: password})
	require.NoError(t, err)
	return uid
}

func TestLoginWithPassword(t *testing.T) {
	f, auth := newAuthFixture(t)
	uid := onboardUser(t, f, "login@example.com", "str0ngpass")

	resp, err := auth.Login(context.Background(), &models.LoginRequest{
		Email:    "login@example.com",
		Password: "str0ngpass",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, uid, resp.User.UID)
	assert.Equal(t, models.RoleCoordinator, resp.User.Role)

	claims, err := auth.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uid, claims.UID)
	assert.Equal(t, models.RoleCoordinator, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	f, auth := newAuthFixture(t)
	onboardUser(t, f, "wrong@example.com", "str0ngpass")

	_, err := auth.Login(context.Background(), &models.LoginRequest{
		Email:    "wrong@example.com",
		Password: "different",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownEmailLooksLikeBadCredentials(t *testing.T) {
	_, auth := newAuthFixture(t)

	_, err := auth.Login(context.Background(), &models.LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginBeforeOnboardingRejected(t *testing.T) {
	f, auth := newAuthFixture(t)

	result, err := f.userSvc.CreateUserWithInvite(context.Background(), &models.CreateUserRequest{
		Email:       "pending@example.com",
		DisplayName: "Pending",
		Role:        models.RoleStudent,
	}, "")
	require.NoError(t, err)
	_ = result

	_, err = auth.Login(context.Background(), &models.LoginRequest{
		Email:    "pending@example.com",
		Password: "anything",
	})
	require.Error(t, err)
	// The account is still disabled, but bad credentials mask that first.
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginSuspendedAccount(t *testing.T) {
	f, auth := newAuthFixture(t)
	uid := onboardUser(t, f, "suspended@example.com", "str0ngpass")
	require.NoError(t, f.userSvc.Suspend(context.Background(), uid))

	_, err := auth.Login(context.Background(), &models.LoginRequest{
		Email:    "suspended@example.com",
		Password: "str0ngpass",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAccountSuspended.Code, appErrors.FromError(err).Code)
}

func TestLoginWithCustomToken(t *testing.T) {
	f, auth := newAuthFixture(t)
	uid := onboardUser(t, f, "custom@example.com", "str0ngpass")

	customToken, err := f.identitySvc.IssueCustomToken(uid)
	require.NoError(t, err)

	resp, err := auth.Login(context.Background(), &models.LoginRequest{
		Grant:       GrantCustomToken,
		CustomToken: customToken,
	})
	require.NoError(t, err)
	assert.Equal(t, uid, resp.User.UID)
}

func TestLoginCustomTokenRejectsAccessToken(t *testing.T) {
	f, auth := newAuthFixture(t)
	onboardUser(t, f, "mixup@example.com", "str0ngpass")

	resp, err := auth.Login(context.Background(), &models.LoginRequest{
		Email:    "mixup@example.com",
		Password: "str0ngpass",
	})
	require.NoError(t, err)

	// An access token lacks the custom-use claim and must not round-trip.
	_, err = auth.Login(context.Background(), &models.LoginRequest{
		Grant:       GrantCustomToken,
		CustomToken: resp.AccessToken,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidToken.Code, appErrors.FromError(err).Code)
}

func TestLoginUnsupportedGrant(t *testing.T) {
	_, auth := newAuthFixture(t)

	_, err := auth.Login(context.Background(), &models.LoginRequest{Grant: "client_credentials"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, auth := newAuthFixture(t)

	_, err := auth.ValidateToken("not.a.jwt")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
