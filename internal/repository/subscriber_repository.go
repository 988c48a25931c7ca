package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cursova/cursova-api/internal/models"
)

// SubscriberRepository persists newsletter signups.
type SubscriberRepository struct {
	db *sqlx.DB
}

// NewSubscriberRepository constructs the repository.
func NewSubscriberRepository(db *sqlx.DB) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

// Upsert stores a signup; re-subscribing the same email is a no-op.
func (r *SubscriberRepository) Upsert(ctx context.Context, sub *models.Subscriber) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO subscribers (id, email, created_at) VALUES (:id, :email, :created_at)
        ON CONFLICT (email) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return fmt.Errorf("upsert subscriber: %w", err)
	}
	return nil
}

// DeviceTokenRepository persists push device registrations.
type DeviceTokenRepository struct {
	db *sqlx.DB
}

// NewDeviceTokenRepository constructs the repository.
func NewDeviceTokenRepository(db *sqlx.DB) *DeviceTokenRepository {
	return &DeviceTokenRepository{db: db}
}

// Upsert registers a device token, reassigning it if another uid owned it.
func (r *DeviceTokenRepository) Upsert(ctx context.Context, token *models.DeviceToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO device_tokens (id, uid, token, platform, created_at)
        VALUES (:id, :uid, :token, :platform, :created_at)
        ON CONFLICT (token) DO UPDATE SET uid = EXCLUDED.uid, platform = EXCLUDED.platform`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("upsert device token: %w", err)
	}
	return nil
}

// ListByRole returns tokens belonging to users with the given role, used to
// fan administrative push notifications out to back-office devices.
func (r *DeviceTokenRepository) ListByRole(ctx context.Context, role models.UserRole) ([]string, error) {
	const query = `SELECT dt.token FROM device_tokens dt JOIN users u ON u.uid = dt.uid WHERE u.role = $1`
	var tokens []string
	if err := r.db.SelectContext(ctx, &tokens, query, role); err != nil {
		return nil, fmt.Errorf("list device tokens: %w", err)
	}
	return tokens, nil
}
