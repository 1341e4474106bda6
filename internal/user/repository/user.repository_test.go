package repository

import (
	"context"
	"errors"
	"testing"

	"diarioweb/config/database"
	"diarioweb/pkg/apperror"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepository(&database.DB{DB: db, Dialect: database.DialectPostgres}), mock
}

func TestEnsureOwner(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`INSERT INTO users \(username, password_hash\) VALUES \(\$1, \$2\) ON CONFLICT`).
		WithArgs("admin", "$2a$10$hash").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	id, err := repo.EnsureOwner(context.Background(), "admin", "$2a$10$hash")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIDByUsername(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT id FROM users WHERE username = \$1`).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectQuery(`SELECT id FROM users WHERE username = \$1`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT id FROM users`).
		WillReturnError(errors.New("pq: too many connections"))

	id, err := repo.IDByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)

	_, err = repo.IDByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = repo.IDByUsername(context.Background(), "admin")
	assert.ErrorIs(t, err, apperror.ErrStore)
}
