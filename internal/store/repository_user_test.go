package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-rest-common/internal/logger"
	"github.com/MKhiriev/go-rest-common/models"
	"github.com/MKhiriev/go-rest-common/querylog"
)

func TestCreateUser_Success(t *testing.T) {
	db, mock, _ := newMockDB(t)
	repo := NewUserRepository(db, logger.Nop())

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("john", "hash", true, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(1))

	created, err := repo.CreateUser(context.Background(), models.User{
		Username:     "john",
		Password:     "plain",
		PasswordHash: "hash",
		IsActive:     true,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), created.UserID)
	assert.Equal(t, "john", created.Username)
	assert.Empty(t, created.Password)
	assert.False(t, created.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_UniqueViolation(t *testing.T) {
	db, mock, _ := newMockDB(t)
	repo := NewUserRepository(db, logger.Nop())

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(pgError(pgerrcode.UniqueViolation))

	_, err := repo.CreateUser(context.Background(), models.User{Username: "john"})
	assert.ErrorIs(t, err, ErrUsernameAlreadyExists)
}

func TestCreateUser_UnexpectedDBError(t *testing.T) {
	db, mock, _ := newMockDB(t)
	repo := NewUserRepository(db, logger.Nop())

	dbErr := errors.New("db network error")
	mock.ExpectQuery("INSERT INTO users").WillReturnError(dbErr)

	_, err := repo.CreateUser(context.Background(), models.User{Username: "john"})
	assert.ErrorIs(t, err, ErrExecutingQuery)
	assert.ErrorIs(t, err, dbErr)
}

func TestFindUserByUsername_Success(t *testing.T) {
	db, mock, _ := newMockDB(t)
	repo := NewUserRepository(db, logger.Nop())

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE username = \\$1").
		WithArgs("john").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(3, "john", "hash", true, now))

	u, err := repo.FindUserByUsername(context.Background(), "john")
	require.NoError(t, err)

	assert.Equal(t, models.User{UserID: 3, Username: "john", PasswordHash: "hash", IsActive: true, CreatedAt: now}, u)
}

func TestFindUserByUsername_NotFound(t *testing.T) {
	db, mock, _ := newMockDB(t)
	repo := NewUserRepository(db, logger.Nop())

	mock.ExpectQuery("FROM users").WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.FindUserByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNoUserWasFound)
}

func TestFindUserByUsername_ScanError(t *testing.T) {
	db, mock, _ := newMockDB(t)
	repo := NewUserRepository(db, logger.Nop())

	mock.ExpectQuery("FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(1)) // wrong shape

	_, err := repo.FindUserByUsername(context.Background(), "john")
	assert.ErrorIs(t, err, ErrScanningRow)
}

func TestUserRepository_RecordsQueries(t *testing.T) {
	db, mock, _ := newMockDB(t)
	repo := NewUserRepository(db, logger.Nop())
	ctx, rec := querylog.WithRecorder(context.Background())

	mock.ExpectQuery("FROM users").WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectQuery("FROM users").WillReturnRows(sqlmock.NewRows(userColumns))

	_, _ = repo.FindUserByUsername(ctx, "a")
	_, _ = repo.FindUserByUsername(ctx, "b")

	assert.Equal(t, 2, rec.Count())
	assert.Contains(t, rec.Last(), "FROM users")
}
