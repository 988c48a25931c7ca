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

// RegistrationRepository handles persistence of registrations and their
// append-only status history.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Create persists a new registration with pending status.
func (r *RegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = now
	}
	reg.UpdatedAt = reg.CreatedAt
	if reg.Status == "" {
		reg.Status = models.RegistrationStatusPending
	}
	const query = `INSERT INTO registrations (id, name, email, course, answers, status, last_message, created_at, updated_at)
        VALUES (:id, :name, :email, :course, :answers, :status, :last_message, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reg); err != nil {
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

// List returns registrations ordered newest first, optionally filtered by
// status. The admin bulk view is unpaginated by contract.
func (r *RegistrationRepository) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, error) {
	query := `SELECT id, name, email, course, answers, status, last_message, created_at, updated_at FROM registrations`
	var args []interface{}
	if filter.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY created_at DESC`

	var registrations []models.Registration
	if err := r.db.SelectContext(ctx, &registrations, query, args...); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return registrations, nil
}

// FindByID returns a registration with its ordered status history.
func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	const query = `SELECT id, name, email, course, answers, status, last_message, created_at, updated_at FROM registrations WHERE id = $1`
	var reg models.Registration
	if err := r.db.GetContext(ctx, &reg, query, id); err != nil {
		return nil, err
	}

	history, err := r.listHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	reg.StatusHistory = history
	return &reg, nil
}

func (r *RegistrationRepository) listHistory(ctx context.Context, id string) ([]models.StatusChange, error) {
	const query = `SELECT id, registration_id, position, status, message, changed_at
        FROM registration_status_history WHERE registration_id = $1 ORDER BY position`
	var history []models.StatusChange
	if err := r.db.SelectContext(ctx, &history, query, id); err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	return history, nil
}

// Transition atomically sets the status, stamps updated_at and appends a
// history entry. The row lock serializes concurrent transitions on the same
// registration so each produces a distinct, correctly ordered entry.
func (r *RegistrationRepository) Transition(ctx context.Context, id string, status models.RegistrationStatus, message *string, now time.Time) (*models.TransitionResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transition: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var current models.RegistrationStatus
	if err := tx.GetContext(ctx, &current, `SELECT status FROM registrations WHERE id = $1 FOR UPDATE`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("lock registration: %w", err)
	}

	var historyLen int
	if err := tx.GetContext(ctx, &historyLen, `SELECT COUNT(*) FROM registration_status_history WHERE registration_id = $1`, id); err != nil {
		return nil, fmt.Errorf("count status history: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE registrations SET status = $2, last_message = $3, updated_at = $4 WHERE id = $1`,
		id, status, message, now); err != nil {
		return nil, fmt.Errorf("update registration status: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO registration_status_history (id, registration_id, position, status, message, changed_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.NewString(), id, historyLen+1, status, message, now); err != nil {
		return nil, fmt.Errorf("append status history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transition: %w", err)
	}

	result := &models.TransitionResult{ID: id, Status: status, UpdatedAt: now}
	if historyLen > 0 {
		// Before this append, the current status equals the last history
		// entry, which becomes the second-to-last one.
		prev := current
		result.PreviousStatus = &prev
	}
	return result, nil
}

// Delete removes a registration. sql.ErrNoRows is returned when absent.
func (r *RegistrationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
