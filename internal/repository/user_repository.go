package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cursova/cursova-api/internal/models"
)

// UserRepository handles persistence of user profile documents.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create persists a new user document.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	const query = `INSERT INTO users (uid, email, display_name, role, status, first_name, last_name, bio, department,
        permissions, preferences, password_set, onboarding_completed_at, last_login_at, login_count, created_at, updated_at)
        VALUES (:uid, :email, :display_name, :role, :status, :first_name, :last_name, :bio, :department,
        :permissions, :preferences, :password_set, :onboarding_completed_at, :last_login_at, :login_count, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindByUID returns a user document by uid.
func (r *UserRepository) FindByUID(ctx context.Context, uid string) (*models.User, error) {
	const query = `SELECT uid, email, display_name, role, status, first_name, last_name, bio, department,
        permissions, preferences, password_set, onboarding_completed_at, last_login_at, login_count, created_at, updated_at
        FROM users WHERE uid = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, uid); err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns users filtered and paginated for the admin console.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, filter.Role)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(email ILIKE $%d OR display_name ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	query := fmt.Sprintf(`SELECT uid, email, display_name, role, status, first_name, last_name, bio, department,
        permissions, preferences, password_set, onboarding_completed_at, last_login_at, login_count, created_at, updated_at
        FROM users%s ORDER BY created_at %s LIMIT %d OFFSET %d`, clause, order, size, offset)

	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM users"+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	return users, total, nil
}

// UpdateStatus sets the lifecycle status.
func (r *UserRepository) UpdateStatus(ctx context.Context, uid string, status models.UserStatus) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE users SET status = $2, updated_at = $3 WHERE uid = $1`,
		uid, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update user status: %w", err)
	}
	return nil
}

// CompleteOnboarding marks the password as set and activates the user.
func (r *UserRepository) CompleteOnboarding(ctx context.Context, uid string, completedAt time.Time) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE users SET status = $2, password_set = TRUE, onboarding_completed_at = $3, updated_at = $3 WHERE uid = $1`,
		uid, models.UserStatusActive, completedAt); err != nil {
		return fmt.Errorf("complete onboarding: %w", err)
	}
	return nil
}

// RecordLogin stamps last_login_at and bumps login_count.
func (r *UserRepository) RecordLogin(ctx context.Context, uid string, at time.Time) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = $2, login_count = login_count + 1 WHERE uid = $1`,
		uid, at); err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	return nil
}

// Delete removes a user document. Normally unnecessary because the identity
// cascade covers it; kept for the admin hard-delete path.
func (r *UserRepository) Delete(ctx context.Context, uid string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE uid = $1`, uid); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
