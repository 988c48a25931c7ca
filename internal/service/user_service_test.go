package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cursova/cursova-api/internal/models"
	"github.com/cursova/cursova-api/pkg/config"
	appErrors "github.com/cursova/cursova-api/pkg/errors"
	"github.com/cursova/cursova-api/pkg/token"
)

type memIdentityStore struct {
	byUID   map[string]*models.Identity
	byEmail map[string]*models.Identity
	nextID  int
}

func newMemIdentityStore() *memIdentityStore {
	return &memIdentityStore{
		byUID:   map[string]*models.Identity{},
		byEmail: map[string]*models.Identity{},
	}
}

func (s *memIdentityStore) Create(_ context.Context, identity *models.Identity) error {
	if identity.UID == "" {
		s.nextID++
		identity.UID = fmt.Sprintf("uid-%d", s.nextID)
	}
	s.byUID[identity.UID] = identity
	s.byEmail[identity.Email] = identity
	return nil
}

func (s *memIdentityStore) FindByUID(_ context.Context, uid string) (*models.Identity, error) {
	identity, ok := s.byUID[uid]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *identity
	return &copied, nil
}

func (s *memIdentityStore) FindByEmail(_ context.Context, email string) (*models.Identity, error) {
	identity, ok := s.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *identity
	return &copied, nil
}

func (s *memIdentityStore) UpdatePassword(_ context.Context, uid, hash string) error {
	identity, ok := s.byUID[uid]
	if !ok {
		return sql.ErrNoRows
	}
	identity.PasswordHash = hash
	return nil
}

func (s *memIdentityStore) SetVerified(_ context.Context, uid string, verified bool) error {
	identity, ok := s.byUID[uid]
	if !ok {
		return sql.ErrNoRows
	}
	identity.EmailVerified = verified
	return nil
}

func (s *memIdentityStore) SetDisabled(_ context.Context, uid string, disabled bool) error {
	identity, ok := s.byUID[uid]
	if !ok {
		return sql.ErrNoRows
	}
	identity.Disabled = disabled
	return nil
}

func (s *memIdentityStore) Delete(_ context.Context, uid string) error {
	identity, ok := s.byUID[uid]
	if !ok {
		return sql.ErrNoRows
	}
	delete(s.byEmail, identity.Email)
	delete(s.byUID, uid)
	return nil
}

type memUserStore struct {
	byUID     map[string]*models.User
	createErr error
}

func newMemUserStore() *memUserStore {
	return &memUserStore{byUID: map[string]*models.User{}}
}

func (s *memUserStore) Create(_ context.Context, user *models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.byUID[user.UID] = user
	return nil
}

func (s *memUserStore) FindByUID(_ context.Context, uid string) (*models.User, error) {
	user, ok := s.byUID[uid]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (s *memUserStore) List(_ context.Context, _ models.UserFilter) ([]models.User, int, error) {
	var users []models.User
	for _, u := range s.byUID {
		users = append(users, *u)
	}
	return users, len(users), nil
}

func (s *memUserStore) UpdateStatus(_ context.Context, uid string, status models.UserStatus) error {
	user, ok := s.byUID[uid]
	if !ok {
		return sql.ErrNoRows
	}
	user.Status = status
	return nil
}

func (s *memUserStore) CompleteOnboarding(_ context.Context, uid string, completedAt time.Time) error {
	user, ok := s.byUID[uid]
	if !ok {
		return sql.ErrNoRows
	}
	user.Status = models.UserStatusActive
	user.PasswordSet = true
	user.OnboardingCompletedAt = &completedAt
	return nil
}

func (s *memUserStore) RecordLogin(_ context.Context, uid string, at time.Time) error {
	user, ok := s.byUID[uid]
	if !ok {
		return sql.ErrNoRows
	}
	user.LastLoginAt = &at
	user.LoginCount++
	return nil
}

func (s *memUserStore) Delete(_ context.Context, uid string) error {
	delete(s.byUID, uid)
	return nil
}

type memInvitationStore struct {
	invitations []*models.Invitation
	createErr   error
}

func (s *memInvitationStore) CreateSuperseding(_ context.Context, inv *models.Invitation) error {
	if s.createErr != nil {
		return s.createErr
	}
	for _, existing := range s.invitations {
		if existing.Email == inv.Email &&
			(existing.Status == models.InvitationStatusPending || existing.Status == models.InvitationStatusSent) {
			existing.Status = models.InvitationStatusExpired
		}
	}
	if inv.ID == "" {
		inv.ID = fmt.Sprintf("inv-%d", len(s.invitations)+1)
	}
	s.invitations = append(s.invitations, inv)
	return nil
}

func (s *memInvitationStore) FindByToken(_ context.Context, bearer string) (*models.Invitation, error) {
	for _, inv := range s.invitations {
		if inv.Token == bearer {
			return inv, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *memInvitationStore) List(_ context.Context, email string) ([]models.Invitation, error) {
	var out []models.Invitation
	for _, inv := range s.invitations {
		if email == "" || inv.Email == email {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (s *memInvitationStore) UpdateStatus(_ context.Context, id string, status models.InvitationStatus) error {
	for _, inv := range s.invitations {
		if inv.ID == id {
			inv.Status = status
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *memInvitationStore) AdvanceByEmail(_ context.Context, email string, from []models.InvitationStatus, to models.InvitationStatus) error {
	for _, inv := range s.invitations {
		if inv.Email != email {
			continue
		}
		for _, f := range from {
			if inv.Status == f {
				inv.Status = to
				break
			}
		}
	}
	return nil
}

type memInviteNotifier struct {
	notes []models.InvitationNotification
}

func (n *memInviteNotifier) NotifyInvitation(note models.InvitationNotification) {
	n.notes = append(n.notes, note)
}

type onboardingFixture struct {
	identities  *memIdentityStore
	users       *memUserStore
	invitations *memInvitationStore
	notifier    *memInviteNotifier
	identitySvc *IdentityService
	userSvc     *UserService
	signer      *token.Signer
}

func newOnboardingFixture(t *testing.T) *onboardingFixture {
	t.Helper()
	identities := newMemIdentityStore()
	users := newMemUserStore()
	invitations := &memInvitationStore{}
	notifier := &memInviteNotifier{}
	signer := token.NewSigner("fixture-secret", 7*24*time.Hour)

	identitySvc := NewIdentityService(identities, signer, "jwt-secret", "cursova-api", 5*time.Minute, zap.NewNop())
	userSvc := NewUserService(users, invitations, identitySvc, notifier, signer,
		config.InvitationConfig{AppBaseURL: "https://app.cursova.dev"}, zap.NewNop())

	return &onboardingFixture{
		identities:  identities,
		users:       users,
		invitations: invitations,
		notifier:    notifier,
		identitySvc: identitySvc,
		userSvc:     userSvc,
		signer:      signer,
	}
}

func TestCreateUserWithInviteHappyPath(t *testing.T) {
	f := newOnboardingFixture(t)

	result, err := f.userSvc.CreateUserWithInvite(context.Background(), &models.CreateUserRequest{
		Email:       "new@example.com",
		DisplayName: "New Person",
		Role:        models.RoleCoordinator,
	}, "admin-1")
	require.NoError(t, err)
	require.NotNil(t, result.User)
	require.NotNil(t, result.Invitation)
	assert.Empty(t, result.InvitationError)

	assert.Equal(t, models.UserStatusPending, result.User.Status)
	assert.Equal(t, models.InvitationStatusSent, result.Invitation.Status)
	assert.NotEmpty(t, result.Invitation.Token)
	assert.Contains(t, result.Invitation.VerificationLink, "https://app.cursova.dev/onboarding/verify-email?code=")

	identity, err := f.identities.FindByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.True(t, identity.Disabled)
	assert.False(t, identity.EmailVerified)

	require.Len(t, f.notifier.notes, 1)
	assert.Equal(t, "new@example.com", f.notifier.notes[0].Email)
}

func TestCreateUserWithInviteDuplicateEmail(t *testing.T) {
	f := newOnboardingFixture(t)
	req := &models.CreateUserRequest{Email: "dup@example.com", DisplayName: "Dup", Role: models.RoleStudent}

	_, err := f.userSvc.CreateUserWithInvite(context.Background(), req, "")
	require.NoError(t, err)

	_, err = f.userSvc.CreateUserWithInvite(context.Background(), req, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmailExists.Code, appErrors.FromError(err).Code)
}

func TestCreateUserWithInvitePartialSuccess(t *testing.T) {
	f := newOnboardingFixture(t)
	f.invitations.createErr = fmt.Errorf("db unavailable")

	result, err := f.userSvc.CreateUserWithInvite(context.Background(), &models.CreateUserRequest{
		Email:       "partial@example.com",
		DisplayName: "Partial",
		Role:        models.RoleStudent,
	}, "")
	require.NoError(t, err)
	require.NotNil(t, result.User)
	assert.Nil(t, result.Invitation)
	assert.NotEmpty(t, result.InvitationError)

	// The user survives and the invite can be resent once the store recovers.
	f.invitations.createErr = nil
	inv, err := f.userSvc.ResendInvitation(context.Background(), result.User.UID)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationStatusSent, inv.Status)
}

func TestCreateUserRollsBackIdentityWhenUserWriteFails(t *testing.T) {
	f := newOnboardingFixture(t)
	f.users.createErr = fmt.Errorf("disk full")

	_, err := f.userSvc.CreateUserWithInvite(context.Background(), &models.CreateUserRequest{
		Email:       "rollback@example.com",
		DisplayName: "Rollback",
		Role:        models.RoleStudent,
	}, "")
	require.Error(t, err)

	_, err = f.identities.FindByEmail(context.Background(), "rollback@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestResendInvitationSupersedesPrevious(t *testing.T) {
	f := newOnboardingFixture(t)

	result, err := f.userSvc.CreateUserWithInvite(context.Background(), &models.CreateUserRequest{
		Email:       "resend@example.com",
		DisplayName: "Resend",
		Role:        models.RoleStudent,
	}, "")
	require.NoError(t, err)
	first := result.Invitation

	second, err := f.userSvc.ResendInvitation(context.Background(), result.User.UID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	var statuses []models.InvitationStatus
	for _, inv := range f.invitations.invitations {
		statuses = append(statuses, inv.Status)
	}
	assert.Equal(t, []models.InvitationStatus{models.InvitationStatusExpired, models.InvitationStatusSent}, statuses)
}

func TestOnboardingFullFlow(t *testing.T) {
	f := newOnboardingFixture(t)
	ctx := context.Background()

	result, err := f.userSvc.CreateUserWithInvite(ctx, &models.CreateUserRequest{
		Email:       "flow@example.com",
		DisplayName: "Flow",
		Role:        models.RoleProfessor,
	}, "")
	require.NoError(t, err)
	uid := result.User.UID

	verifyCode, err := f.identitySvc.GenerateActionCode(token.PurposeVerifyEmail, uid)
	require.NoError(t, err)
	user, err := f.userSvc.VerifyEmail(ctx, &models.VerifyEmailRequest{Code: verifyCode})
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusVerified, user.Status)

	identity, err := f.identities.FindByUID(ctx, uid)
	require.NoError(t, err)
	assert.True(t, identity.EmailVerified)

	passwordCode, err := f.identitySvc.GenerateActionCode(token.PurposeResetPassword, uid)
	require.NoError(t, err)
	onboarding, err := f.userSvc.SetPassword(ctx, &models.SetPasswordRequest{Code: passwordCode, Password: "str0ngpass"})
	require.NoError(t, err)
	assert.Equal(t, uid, onboarding.UID)
	assert.NotEmpty(t, onboarding.CustomToken)

	user, err = f.userSvc.Get(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusActive, user.Status)
	assert.True(t, user.PasswordSet)
	require.NotNil(t, user.OnboardingCompletedAt)

	identity, err = f.identities.FindByUID(ctx, uid)
	require.NoError(t, err)
	assert.False(t, identity.Disabled)

	invitations, err := f.invitations.List(ctx, "flow@example.com")
	require.NoError(t, err)
	require.Len(t, invitations, 1)
	assert.Equal(t, models.InvitationStatusCompleted, invitations[0].Status)
}

func TestSetPasswordRejectsWeakPassword(t *testing.T) {
	f := newOnboardingFixture(t)
	ctx := context.Background()

	result, err := f.userSvc.CreateUserWithInvite(ctx, &models.CreateUserRequest{
		Email:       "weak@example.com",
		DisplayName: "Weak",
		Role:        models.RoleStudent,
	}, "")
	require.NoError(t, err)

	code, err := f.identitySvc.GenerateActionCode(token.PurposeResetPassword, result.User.UID)
	require.NoError(t, err)

	_, err = f.userSvc.SetPassword(ctx, &models.SetPasswordRequest{Code: code, Password: "abc"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrWeakPassword.Code, appErrors.FromError(err).Code)
}

func TestSetPasswordRejectsWrongPurposeCode(t *testing.T) {
	f := newOnboardingFixture(t)
	ctx := context.Background()

	result, err := f.userSvc.CreateUserWithInvite(ctx, &models.CreateUserRequest{
		Email:       "purpose@example.com",
		DisplayName: "Purpose",
		Role:        models.RoleStudent,
	}, "")
	require.NoError(t, err)

	verifyCode, err := f.identitySvc.GenerateActionCode(token.PurposeVerifyEmail, result.User.UID)
	require.NoError(t, err)

	_, err = f.userSvc.SetPassword(ctx, &models.SetPasswordRequest{Code: verifyCode, Password: "str0ngpass"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidToken.Code, appErrors.FromError(err).Code)
}

func TestSuspendAndReactivate(t *testing.T) {
	f := newOnboardingFixture(t)
	ctx := context.Background()

	result, err := f.userSvc.CreateUserWithInvite(ctx, &models.CreateUserRequest{
		Email:       "susp@example.com",
		DisplayName: "Susp",
		Role:        models.RoleStudent,
	}, "")
	require.NoError(t, err)
	uid := result.User.UID

	require.NoError(t, f.userSvc.Suspend(ctx, uid))
	user, err := f.userSvc.Get(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusSuspended, user.Status)

	require.NoError(t, f.userSvc.Reactivate(ctx, uid))
	user, err = f.userSvc.Get(ctx, uid)
	require.NoError(t, err)
	// No password was ever set, so reactivation lands back on pending.
	assert.Equal(t, models.UserStatusPending, user.Status)
}

func TestDeleteCancelsOpenInvitations(t *testing.T) {
	f := newOnboardingFixture(t)
	ctx := context.Background()

	result, err := f.userSvc.CreateUserWithInvite(ctx, &models.CreateUserRequest{
		Email:       "gone@example.com",
		DisplayName: "Gone",
		Role:        models.RoleStudent,
	}, "")
	require.NoError(t, err)

	require.NoError(t, f.userSvc.Delete(ctx, result.User.UID))

	_, err = f.identities.FindByEmail(ctx, "gone@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	invitations, err := f.invitations.List(ctx, "gone@example.com")
	require.NoError(t, err)
	require.Len(t, invitations, 1)
	assert.Equal(t, models.InvitationStatusCancelled, invitations[0].Status)
}

func TestCreateUserWithoutInvitation(t *testing.T) {
	f := newOnboardingFixture(t)
	skip := false

	result, err := f.userSvc.CreateUserWithInvite(context.Background(), &models.CreateUserRequest{
		Email:          "quiet@example.com",
		DisplayName:    "Quiet User",
		Role:           models.RoleProfessor,
		SendInvitation: &skip,
	}, "admin-1")
	require.NoError(t, err)
	assert.Nil(t, result.Invitation)
	assert.Empty(t, result.InvitationError)
	assert.Empty(t, f.notifier.notes)

	invitations, err := f.invitations.List(context.Background(), "quiet@example.com")
	require.NoError(t, err)
	assert.Empty(t, invitations)

	// The invitation can still be issued later through resend.
	invitation, err := f.userSvc.ResendInvitation(context.Background(), result.User.UID)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationStatusSent, invitation.Status)
	assert.Len(t, f.notifier.notes, 1)
}
