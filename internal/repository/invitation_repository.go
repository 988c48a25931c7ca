package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cursova/cursova-api/internal/models"
)

// InvitationRepository handles persistence of invitations.
type InvitationRepository struct {
	db *sqlx.DB
}

// NewInvitationRepository constructs the repository.
func NewInvitationRepository(db *sqlx.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

// Create persists a new invitation.
func (r *InvitationRepository) Create(ctx context.Context, inv *models.Invitation) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	inv.UpdatedAt = inv.CreatedAt
	const query = `INSERT INTO invitations (id, email, role, token, invited_by, status, verification_link, password_link, created_at, expires_at, updated_at)
        VALUES (:id, :email, :role, :token, :invited_by, :status, :verification_link, :password_link, :created_at, :expires_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, inv); err != nil {
		return fmt.Errorf("create invitation: %w", err)
	}
	return nil
}

// CreateSuperseding inserts a new invitation and, in the same transaction,
// expires every other invitation for the same email still in a sendable
// state. Partial supersede cannot happen: either all rows flip or none do.
func (r *InvitationRepository) CreateSuperseding(ctx context.Context, inv *models.Invitation) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	inv.UpdatedAt = inv.CreatedAt

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin supersede: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`UPDATE invitations SET status = $2, updated_at = $3 WHERE email = $1 AND status IN ('pending', 'sent')`,
		inv.Email, models.InvitationStatusExpired, now); err != nil {
		return fmt.Errorf("expire superseded invitations: %w", err)
	}

	const insert = `INSERT INTO invitations (id, email, role, token, invited_by, status, verification_link, password_link, created_at, expires_at, updated_at)
        VALUES (:id, :email, :role, :token, :invited_by, :status, :verification_link, :password_link, :created_at, :expires_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insert, inv); err != nil {
		return fmt.Errorf("insert superseding invitation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit supersede: %w", err)
	}
	return nil
}

// FindByToken returns the invitation carrying the exact token.
func (r *InvitationRepository) FindByToken(ctx context.Context, token string) (*models.Invitation, error) {
	const query = `SELECT id, email, role, token, invited_by, status, verification_link, password_link, created_at, expires_at, updated_at
        FROM invitations WHERE token = $1`
	var inv models.Invitation
	if err := r.db.GetContext(ctx, &inv, query, token); err != nil {
		return nil, err
	}
	return &inv, nil
}

// List returns invitations ordered newest first, optionally by email.
func (r *InvitationRepository) List(ctx context.Context, email string) ([]models.Invitation, error) {
	query := `SELECT id, email, role, token, invited_by, status, verification_link, password_link, created_at, expires_at, updated_at
        FROM invitations`
	var args []interface{}
	if email != "" {
		query += ` WHERE email = $1`
		args = append(args, email)
	}
	query += ` ORDER BY created_at DESC`

	var invitations []models.Invitation
	if err := r.db.SelectContext(ctx, &invitations, query, args...); err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return invitations, nil
}

// UpdateStatus sets the status of one invitation.
func (r *InvitationRepository) UpdateStatus(ctx context.Context, id string, status models.InvitationStatus) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE invitations SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update invitation status: %w", err)
	}
	return nil
}

// AdvanceByEmail moves every invitation for email whose status is in from to
// the target status, as one statement so the batch flips atomically.
func (r *InvitationRepository) AdvanceByEmail(ctx context.Context, email string, from []models.InvitationStatus, to models.InvitationStatus) error {
	if len(from) == 0 {
		return nil
	}
	query := `UPDATE invitations SET status = $1, updated_at = $2 WHERE email = $3 AND status IN (`
	args := []interface{}{to, time.Now().UTC(), email}
	for i, s := range from {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("$%d", len(args)+1)
		args = append(args, s)
	}
	query += ")"

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("advance invitations for %s: %w", email, err)
	}
	return nil
}
