package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cursova/cursova-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRegistrationRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectExec("INSERT INTO registrations").
		WillReturnResult(sqlmock.NewResult(0, 1))

	reg := &models.Registration{Name: "Ana", Email: "ana@x.com", Course: "QA101", Answers: []byte(`{}`)}
	require.NoError(t, repo.Create(context.Background(), reg))
	assert.NotEmpty(t, reg.ID)
	assert.Equal(t, models.RegistrationStatusPending, reg.Status)
	assert.Equal(t, reg.CreatedAt, reg.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryListOrdered(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "email", "course", "answers", "status", "last_message", "created_at", "updated_at"}).
		AddRow("reg-2", "Bea", "bea@x.com", "GO201", []byte(`{}`), "pending", nil, time.Now(), time.Now()).
		AddRow("reg-1", "Ana", "ana@x.com", "QA101", []byte(`{}`), "approved", nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, course, answers, status, last_message, created_at, updated_at FROM registrations ORDER BY created_at DESC")).
		WillReturnRows(rows)

	registrations, err := repo.List(context.Background(), models.RegistrationFilter{})
	require.NoError(t, err)
	require.Len(t, registrations, 2)
	assert.Equal(t, "reg-2", registrations[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryTransitionFirst(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM registrations WHERE id = $1 FOR UPDATE")).
		WithArgs("reg-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM registration_status_history WHERE registration_id = $1")).
		WithArgs("reg-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("UPDATE registrations SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO registration_status_history").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	msg := "Welcome!"
	result, err := repo.Transition(context.Background(), "reg-1", models.RegistrationStatusApproved, &msg, now)
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationStatusApproved, result.Status)
	assert.Nil(t, result.PreviousStatus)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryTransitionCarriesPreviousStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM registrations WHERE id = $1 FOR UPDATE")).
		WithArgs("reg-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("approved"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM registration_status_history WHERE registration_id = $1")).
		WithArgs("reg-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec("UPDATE registrations SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO registration_status_history").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := repo.Transition(context.Background(), "reg-1", models.RegistrationStatusRejected, nil, time.Now().UTC())
	require.NoError(t, err)
	require.NotNil(t, result.PreviousStatus)
	assert.Equal(t, models.RegistrationStatusApproved, *result.PreviousStatus)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryTransitionNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM registrations WHERE id = $1 FOR UPDATE")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Transition(context.Background(), "missing", models.RegistrationStatusApproved, nil, time.Now().UTC())
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM registrations WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
