package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cursova/cursova-api/internal/models"
	appErrors "github.com/cursova/cursova-api/pkg/errors"
)

// SubscriberStore persists newsletter signups.
type SubscriberStore interface {
	Upsert(ctx context.Context, sub *models.Subscriber) error
}

// DeviceTokenWriter persists push device registrations.
type DeviceTokenWriter interface {
	Upsert(ctx context.Context, token *models.DeviceToken) error
}

// SubscriberService handles newsletter signups and push device registration.
type SubscriberService struct {
	subscribers SubscriberStore
	devices     DeviceTokenWriter
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewSubscriberService constructs the service.
func NewSubscriberService(subscribers SubscriberStore, devices DeviceTokenWriter, logger *zap.Logger) *SubscriberService {
	return &SubscriberService{
		subscribers: subscribers,
		devices:     devices,
		validate:    validator.New(),
		logger:      logger,
	}
}

// Subscribe records a newsletter signup. Duplicate signups are no-ops so the
// public form stays idempotent.
func (s *SubscriberService) Subscribe(ctx context.Context, email string) (*models.Subscriber, error) {
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a valid email is required")
	}
	sub := &models.Subscriber{Email: email}
	if err := s.subscribers.Upsert(ctx, sub); err != nil {
		return nil, appErrors.Internal(err, "failed to store subscription")
	}
	return sub, nil
}

// RegisterDevice stores the push token for the authenticated user, stealing
// it from a previous owner when the device changed hands.
func (s *SubscriberService) RegisterDevice(ctx context.Context, uid, token, platform string) (*models.DeviceToken, error) {
	if token == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "token is required")
	}
	device := &models.DeviceToken{UID: uid, Token: token, Platform: platform}
	if err := s.devices.Upsert(ctx, device); err != nil {
		return nil, appErrors.Internal(err, "failed to register device")
	}
	s.logger.Debug("device registered", zap.String("uid", uid), zap.String("platform", platform))
	return device, nil
}
