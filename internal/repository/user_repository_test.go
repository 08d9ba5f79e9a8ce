package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/digital-diary-api/internal/models"
)

var userRowColumns = []string{"id", "email", "password_hash", "full_name", "role", "active", "last_login", "created_at", "updated_at"}

func TestFindByEmail(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(userRowColumns).
		AddRow("1", "teacher@example.com", "hash", "Мария Петровна", string(models.RoleTeacher), true, now, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, full_name, role, active, last_login, created_at, updated_at FROM users WHERE LOWER(email) = $1 LIMIT 1")).
		WithArgs("teacher@example.com").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), " Teacher@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindFirstTeacherNone(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE role = $1 AND active ORDER BY created_at LIMIT 1")).
		WithArgs(models.RoleTeacher).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindFirstTeacher(context.Background())
	assert.True(t, IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserDuplicate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.User{Email: "a@b.c", Role: models.RoleTeacher, Active: true})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLastLogin(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewUserRepository(db)

	ts := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET last_login = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("1", ts, ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateLastLogin(context.Background(), "1", ts))
	assert.NoError(t, mock.ExpectationsWereMet())
}
