package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/cursova/cursova-api/internal/models"
	appErrors "github.com/cursova/cursova-api/pkg/errors"
	"github.com/cursova/cursova-api/pkg/token"
)

// OnboardingCompleter marks a user's onboarding finished.
type OnboardingCompleter interface {
	CompleteOnboarding(ctx context.Context, uid string, completedAt time.Time) error
}

// InvitationService validates and consumes invitation tokens.
type InvitationService struct {
	invitations InvitationStore
	users       OnboardingCompleter
	identities  *IdentityService
	signer      *token.Signer
	logger      *zap.Logger
	now         func() time.Time
}

// NewInvitationService constructs the service.
func NewInvitationService(invitations InvitationStore, users OnboardingCompleter, identities *IdentityService, signer *token.Signer, logger *zap.Logger) *InvitationService {
	return &InvitationService{
		invitations: invitations,
		users:       users,
		identities:  identities,
		signer:      signer,
		logger:      logger,
		now:         time.Now,
	}
}

// AcceptResult is what the onboarding client needs after consuming a token.
type AcceptResult struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// Verify checks a bearer token without consuming it, returning the pending
// invitation so onboarding UIs can prefill email and role.
func (s *InvitationService) Verify(ctx context.Context, bearer string) (*models.Invitation, error) {
	invitation, _, err := s.resolve(ctx, bearer)
	if err != nil {
		return nil, err
	}
	return invitation, nil
}

// Accept consumes a bearer token: the invitation flips to accepted and the
// invited account is enabled. When a password is supplied the whole
// onboarding completes in one step: password stored, identity verified and
// enabled, user activated. A token can be accepted once; later attempts see
// the inactive status and get not-found.
func (s *InvitationService) Accept(ctx context.Context, bearer, password string) (*AcceptResult, error) {
	invitation, claims, err := s.resolve(ctx, bearer)
	if err != nil {
		return nil, err
	}

	// Password problems must not consume the token, so they are checked
	// before the status flip.
	if password != "" {
		if err := s.identities.SetPassword(ctx, claims.UID, password); err != nil {
			return nil, err
		}
		if err := s.identities.SetVerified(ctx, claims.UID, true); err != nil {
			return nil, err
		}
		if err := s.users.CompleteOnboarding(ctx, claims.UID, s.now().UTC()); err != nil {
			return nil, appErrors.Internal(err, "failed to activate user")
		}
	}

	if err := s.invitations.UpdateStatus(ctx, invitation.ID, models.InvitationStatusAccepted); err != nil {
		return nil, appErrors.Internal(err, "failed to accept invitation")
	}

	if err := s.identities.SetDisabled(ctx, claims.UID, false); err != nil {
		var appErr *appErrors.Error
		if !errors.As(err, &appErr) || appErr.Code != appErrors.ErrNotFound.Code {
			return nil, err
		}
	}

	s.logger.Info("invitation accepted",
		zap.String("id", invitation.ID),
		zap.String("uid", claims.UID),
		zap.Bool("password_set", password != ""))
	return &AcceptResult{UID: claims.UID, Email: invitation.Email}, nil
}

// resolve validates the token cryptographically, then against the stored
// invitation state. Signature and shape problems are invalid-token errors,
// a past validity window is expired, and anything without a live matching
// row is not-found.
func (s *InvitationService) resolve(ctx context.Context, bearer string) (*models.Invitation, *token.InviteClaims, error) {
	now := s.now()
	claims, err := s.signer.ParseInvite(bearer, now)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrExpired):
			return nil, nil, appErrors.Clone(appErrors.ErrExpired, "invitation has expired")
		default:
			return nil, nil, appErrors.Clone(appErrors.ErrInvalidToken, "invitation token is invalid")
		}
	}

	invitation, err := s.invitations.FindByToken(ctx, bearer)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "invitation not found")
		}
		return nil, nil, appErrors.Internal(err, "failed to load invitation")
	}
	if invitation.IsExpired(now) {
		return nil, nil, appErrors.Clone(appErrors.ErrExpired, "invitation has expired")
	}
	if !invitation.IsActive(now) {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "invitation not found")
	}
	if invitation.Email != claims.Email {
		return nil, nil, appErrors.Clone(appErrors.ErrInvalidToken, "invitation token is invalid")
	}
	return invitation, claims, nil
}

// List returns invitations for the admin console, optionally by email.
func (s *InvitationService) List(ctx context.Context, email string) ([]models.Invitation, error) {
	invitations, err := s.invitations.List(ctx, email)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list invitations")
	}
	if invitations == nil {
		invitations = []models.Invitation{}
	}
	return invitations, nil
}
