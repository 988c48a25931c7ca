package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cursova/cursova-api/internal/models"
)

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"uid", "email", "display_name", "role", "status", "first_name", "last_name", "bio", "department",
		"permissions", "preferences", "password_set", "onboarding_completed_at", "last_login_at", "login_count",
		"created_at", "updated_at",
	})
}

func TestUserRepositoryCreateStampsTimestamps(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := &models.User{
		UID:         "uid-1",
		Email:       "ana@cursova.dev",
		DisplayName: "Ana",
		Role:        models.RoleStudent,
		Status:      models.UserStatusPending,
		Permissions: []byte(`[]`),
		Preferences: []byte(`{}`),
	}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByUIDMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE uid").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByUID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryListAppliesRoleFilter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(`FROM users WHERE role = \$1 ORDER BY created_at DESC LIMIT 20 OFFSET 0`).
		WithArgs(string(models.RoleProfessor)).
		WillReturnRows(userRows().AddRow(
			"uid-1", "prof@cursova.dev", "Prof", "PROFESSOR", "ACTIVE", "", "", "", "",
			[]byte(`[]`), []byte(`{}`), true, nil, nil, 3, now, now,
		))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM users WHERE role = $1`)).
		WithArgs(string(models.RoleProfessor)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	users, total, err := repo.List(context.Background(), models.UserFilter{Role: models.RoleProfessor})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.RoleProfessor, users[0].Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryListClampsPageSize(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(`FROM users ORDER BY created_at DESC LIMIT 20 OFFSET 0`).
		WillReturnRows(userRows())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM users`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := repo.List(context.Background(), models.UserFilter{Page: -1, PageSize: 500})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCompleteOnboarding(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)
	completedAt := time.Now().UTC()

	mock.ExpectExec("UPDATE users SET status").
		WithArgs("uid-1", string(models.UserStatusActive), completedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CompleteOnboarding(context.Background(), "uid-1", completedAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryRecordLoginBumpsCounter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)
	at := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET last_login_at = $2, login_count = login_count + 1 WHERE uid = $1")).
		WithArgs("uid-1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.RecordLogin(context.Background(), "uid-1", at))
	require.NoError(t, mock.ExpectationsWereMet())
}
