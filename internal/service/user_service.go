package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cursova/cursova-api/internal/models"
	"github.com/cursova/cursova-api/pkg/config"
	appErrors "github.com/cursova/cursova-api/pkg/errors"
	"github.com/cursova/cursova-api/pkg/token"
)

// UserStore is the persistence surface for user profile documents.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByUID(ctx context.Context, uid string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	UpdateStatus(ctx context.Context, uid string, status models.UserStatus) error
	CompleteOnboarding(ctx context.Context, uid string, completedAt time.Time) error
	Delete(ctx context.Context, uid string) error
}

// InvitationStore is the persistence surface for invitations.
type InvitationStore interface {
	CreateSuperseding(ctx context.Context, inv *models.Invitation) error
	FindByToken(ctx context.Context, token string) (*models.Invitation, error)
	List(ctx context.Context, email string) ([]models.Invitation, error)
	UpdateStatus(ctx context.Context, id string, status models.InvitationStatus) error
	AdvanceByEmail(ctx context.Context, email string, from []models.InvitationStatus, to models.InvitationStatus) error
}

// InvitationNotifier delivers onboarding invites asynchronously.
type InvitationNotifier interface {
	NotifyInvitation(note models.InvitationNotification)
}

// OnboardingResult is returned when onboarding completes. The custom token
// lets the client sign in immediately without re-entering the new password.
type OnboardingResult struct {
	UID         string            `json:"uid"`
	CustomToken string            `json:"customToken"`
	Status      models.UserStatus `json:"status"`
}

// UserService provisions users, drives the invitation/onboarding flow and
// manages user lifecycle for the admin console.
type UserService struct {
	users       UserStore
	invitations InvitationStore
	identities  *IdentityService
	notifier    InvitationNotifier
	signer      *token.Signer
	baseURL     string
	validate    *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewUserService constructs the service.
func NewUserService(users UserStore, invitations InvitationStore, identities *IdentityService, notifier InvitationNotifier, signer *token.Signer, cfg config.InvitationConfig, logger *zap.Logger) *UserService {
	return &UserService{
		users:       users,
		invitations: invitations,
		identities:  identities,
		notifier:    notifier,
		signer:      signer,
		baseURL:     cfg.AppBaseURL,
		validate:    validator.New(),
		logger:      logger,
		now:         time.Now,
	}
}

// CreateUserWithInvite provisions an identity plus a pending user document
// and issues an onboarding invitation. When the user is created but the
// invitation cannot be prepared, the user survives and the result carries
// the invitation failure so the admin can resend.
func (s *UserService) CreateUserWithInvite(ctx context.Context, req *models.CreateUserRequest, invitedBy string) (*models.CreateUserResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	if !models.ValidUserRole(req.Role) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown role %q", req.Role))
	}

	identity, err := s.identities.CreateIdentity(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	permissions, err := json.Marshal(models.RolePermissions[req.Role])
	if err != nil {
		return nil, appErrors.Internal(err, "failed to snapshot permissions")
	}

	user := &models.User{
		UID:         identity.UID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Role:        req.Role,
		Status:      models.UserStatusPending,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Department:  req.Department,
		Permissions: permissions,
		Preferences: []byte(`{}`),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Roll the identity back so the email is not burned.
		if delErr := s.identities.Delete(ctx, identity.UID); delErr != nil {
			s.logger.Error("failed to roll back identity",
				zap.String("uid", identity.UID), zap.Error(delErr))
		}
		return nil, appErrors.Internal(err, "failed to create user")
	}

	result := &models.CreateUserResult{User: user}

	if !req.ShouldSendInvitation() {
		s.logger.Info("user provisioned without invitation", zap.String("uid", user.UID))
		return result, nil
	}

	invitation, err := s.issueInvitation(ctx, user, invitedBy)
	if err != nil {
		s.logger.Error("user created but invitation failed",
			zap.String("uid", user.UID), zap.Error(err))
		result.InvitationError = "invitation could not be issued; resend it from the users list"
		return result, nil
	}
	result.Invitation = invitation

	s.logger.Info("user provisioned",
		zap.String("uid", user.UID),
		zap.String("role", string(user.Role)))
	return result, nil
}

// ResendInvitation issues a fresh invitation for a user still onboarding.
// Earlier sendable invitations for the same email are expired atomically.
func (s *UserService) ResendInvitation(ctx context.Context, uid string) (*models.Invitation, error) {
	user, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user.Status == models.UserStatusActive || user.Status == models.UserStatusSuspended {
		return nil, appErrors.Clone(appErrors.ErrConflict, "user is not in an invitable state")
	}
	return s.issueInvitation(ctx, user, "")
}

func (s *UserService) issueInvitation(ctx context.Context, user *models.User, invitedBy string) (*models.Invitation, error) {
	issuedAt := s.now().UTC()

	inviteToken, err := s.signer.GenerateInvite(user.UID, user.Email, issuedAt)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to sign invitation token")
	}
	verifyCode, err := s.signer.GenerateActionCode(token.PurposeVerifyEmail, user.UID, issuedAt)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to generate verification code")
	}
	passwordCode, err := s.signer.GenerateActionCode(token.PurposeResetPassword, user.UID, issuedAt)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to generate password code")
	}

	invitation := &models.Invitation{
		Email:            user.Email,
		Role:             user.Role,
		Token:            inviteToken,
		InvitedBy:        invitedBy,
		Status:           models.InvitationStatusSent,
		VerificationLink: fmt.Sprintf("%s/onboarding/verify-email?code=%s", s.baseURL, verifyCode),
		PasswordLink:     fmt.Sprintf("%s/onboarding/set-password?code=%s", s.baseURL, passwordCode),
		CreatedAt:        issuedAt,
		ExpiresAt:        issuedAt.Add(s.signer.TTL()),
	}
	if err := s.invitations.CreateSuperseding(ctx, invitation); err != nil {
		return nil, appErrors.Internal(err, "failed to store invitation")
	}

	s.notifier.NotifyInvitation(models.InvitationNotification{
		Email:            user.Email,
		DisplayName:      user.DisplayName,
		VerificationLink: invitation.VerificationLink,
		PasswordLink:     invitation.PasswordLink,
	})
	return invitation, nil
}

// VerifyEmail confirms ownership of the invited address. The user moves from
// PENDING to VERIFIED and sendable invitations advance alongside.
func (s *UserService) VerifyEmail(ctx context.Context, req *models.VerifyEmailRequest) (*models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "code is required")
	}

	uid, err := s.identities.VerifyActionCode(req.Code, token.PurposeVerifyEmail)
	if err != nil {
		return nil, err
	}

	user, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	if err := s.identities.SetVerified(ctx, uid, true); err != nil {
		return nil, err
	}
	if user.Status == models.UserStatusPending {
		if err := s.users.UpdateStatus(ctx, uid, models.UserStatusVerified); err != nil {
			return nil, appErrors.Internal(err, "failed to update user status")
		}
		user.Status = models.UserStatusVerified
	}
	if err := s.invitations.AdvanceByEmail(ctx, user.Email,
		[]models.InvitationStatus{models.InvitationStatusPending, models.InvitationStatusSent},
		models.InvitationStatusVerified); err != nil {
		s.logger.Warn("failed to advance invitations", zap.String("email", user.Email), zap.Error(err))
	}

	s.logger.Info("email verified", zap.String("uid", uid))
	return user, nil
}

// SetPassword completes onboarding: the password is stored, the account is
// enabled, the user becomes ACTIVE and a one-time sign-in token is issued.
func (s *UserService) SetPassword(ctx context.Context, req *models.SetPasswordRequest) (*OnboardingResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "code and password are required")
	}

	uid, err := s.identities.VerifyActionCode(req.Code, token.PurposeResetPassword)
	if err != nil {
		return nil, err
	}

	user, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	if err := s.identities.SetPassword(ctx, uid, req.Password); err != nil {
		return nil, err
	}
	// Setting a password implies link ownership, so verification is implied
	// even when the verify step was skipped.
	if err := s.identities.SetVerified(ctx, uid, true); err != nil {
		return nil, err
	}
	if err := s.identities.SetDisabled(ctx, uid, false); err != nil {
		return nil, err
	}
	if err := s.users.CompleteOnboarding(ctx, uid, s.now().UTC()); err != nil {
		return nil, appErrors.Internal(err, "failed to complete onboarding")
	}
	if err := s.invitations.AdvanceByEmail(ctx, user.Email,
		[]models.InvitationStatus{models.InvitationStatusPending, models.InvitationStatusSent, models.InvitationStatusVerified},
		models.InvitationStatusCompleted); err != nil {
		s.logger.Warn("failed to advance invitations", zap.String("email", user.Email), zap.Error(err))
	}

	customToken, err := s.identities.IssueCustomToken(uid)
	if err != nil {
		return nil, err
	}

	s.logger.Info("onboarding completed", zap.String("uid", uid))
	return &OnboardingResult{UID: uid, CustomToken: customToken, Status: models.UserStatusActive}, nil
}

// List returns users for the admin console with pagination.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	if filter.Role != "" && !models.ValidUserRole(filter.Role) {
		return nil, 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown role %q", filter.Role))
	}
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Internal(err, "failed to list users")
	}
	if users == nil {
		users = []models.User{}
	}
	return users, total, nil
}

// Get returns one user document.
func (s *UserService) Get(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.users.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Internal(err, "failed to load user")
	}
	return user, nil
}

// Suspend disables the account and marks the user suspended.
func (s *UserService) Suspend(ctx context.Context, uid string) error {
	if _, err := s.Get(ctx, uid); err != nil {
		return err
	}
	if err := s.identities.SetDisabled(ctx, uid, true); err != nil {
		return err
	}
	if err := s.users.UpdateStatus(ctx, uid, models.UserStatusSuspended); err != nil {
		return appErrors.Internal(err, "failed to suspend user")
	}
	s.logger.Info("user suspended", zap.String("uid", uid))
	return nil
}

// Reactivate re-enables a suspended account.
func (s *UserService) Reactivate(ctx context.Context, uid string) error {
	user, err := s.Get(ctx, uid)
	if err != nil {
		return err
	}
	if user.Status != models.UserStatusSuspended {
		return appErrors.Clone(appErrors.ErrConflict, "user is not suspended")
	}
	if err := s.identities.SetDisabled(ctx, uid, false); err != nil {
		return err
	}
	status := models.UserStatusActive
	if !user.PasswordSet {
		status = models.UserStatusPending
	}
	if err := s.users.UpdateStatus(ctx, uid, status); err != nil {
		return appErrors.Internal(err, "failed to reactivate user")
	}
	s.logger.Info("user reactivated", zap.String("uid", uid))
	return nil
}

// Delete removes the identity; the user document cascades. Open invitations
// for the address are cancelled.
func (s *UserService) Delete(ctx context.Context, uid string) error {
	user, err := s.Get(ctx, uid)
	if err != nil {
		return err
	}
	if err := s.identities.Delete(ctx, uid); err != nil {
		return err
	}
	if err := s.invitations.AdvanceByEmail(ctx, user.Email,
		models.ActiveInvitationStatuses, models.InvitationStatusCancelled); err != nil {
		s.logger.Warn("failed to cancel invitations", zap.String("email", user.Email), zap.Error(err))
	}
	s.logger.Info("user deleted", zap.String("uid", uid))
	return nil
}
