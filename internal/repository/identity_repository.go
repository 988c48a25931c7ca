package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cursova/cursova-api/internal/models"
)

// IdentityRepository persists authentication accounts backing the identity
// provider port.
type IdentityRepository struct {
	db *sqlx.DB
}

// NewIdentityRepository constructs the repository.
func NewIdentityRepository(db *sqlx.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

// Create inserts a new identity.
func (r *IdentityRepository) Create(ctx context.Context, identity *models.Identity) error {
	if identity.UID == "" {
		identity.UID = uuid.NewString()
	}
	now := time.Now().UTC()
	identity.CreatedAt = now
	identity.UpdatedAt = now
	const query = `INSERT INTO identities (uid, email, password_hash, email_verified, disabled, created_at, updated_at)
        VALUES (:uid, :email, :password_hash, :email_verified, :disabled, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, identity); err != nil {
		return fmt.Errorf("create identity: %w", err)
	}
	return nil
}

// FindByUID returns an identity by uid.
func (r *IdentityRepository) FindByUID(ctx context.Context, uid string) (*models.Identity, error) {
	const query = `SELECT uid, email, password_hash, email_verified, disabled, created_at, updated_at FROM identities WHERE uid = $1`
	var identity models.Identity
	if err := r.db.GetContext(ctx, &identity, query, uid); err != nil {
		return nil, err
	}
	return &identity, nil
}

// FindByEmail returns an identity by email.
func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	const query = `SELECT uid, email, password_hash, email_verified, disabled, created_at, updated_at FROM identities WHERE email = $1`
	var identity models.Identity
	if err := r.db.GetContext(ctx, &identity, query, email); err != nil {
		return nil, err
	}
	return &identity, nil
}

// UpdatePassword replaces the stored password hash.
func (r *IdentityRepository) UpdatePassword(ctx context.Context, uid, passwordHash string) error {
	return r.exec(ctx, `UPDATE identities SET password_hash = $2, updated_at = $3 WHERE uid = $1`, uid, passwordHash, time.Now().UTC())
}

// SetVerified flips the email_verified flag.
func (r *IdentityRepository) SetVerified(ctx context.Context, uid string, verified bool) error {
	return r.exec(ctx, `UPDATE identities SET email_verified = $2, updated_at = $3 WHERE uid = $1`, uid, verified, time.Now().UTC())
}

// SetDisabled enables or disables the account.
func (r *IdentityRepository) SetDisabled(ctx context.Context, uid string, disabled bool) error {
	return r.exec(ctx, `UPDATE identities SET disabled = $2, updated_at = $3 WHERE uid = $1`, uid, disabled, time.Now().UTC())
}

// Delete removes an identity. The owning user document cascades.
func (r *IdentityRepository) Delete(ctx context.Context, uid string) error {
	return r.exec(ctx, `DELETE FROM identities WHERE uid = $1`, uid)
}

func (r *IdentityRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("identity update: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("identity update: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
