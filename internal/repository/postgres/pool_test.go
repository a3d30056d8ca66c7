package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/ferdousbhai/echo/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

func TestIsUniqueViolation(t *testing.T) {
	require.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	require.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	require.False(t, isUniqueViolation(errors.New("x")))
	require.False(t, isUniqueViolation(nil))
}

func TestNotFound(t *testing.T) {
	require.ErrorIs(t, notFound(pgx.ErrNoRows), errs.ErrNotFound)
	boom := errors.New("boom")
	require.Equal(t, boom, notFound(boom))
}

func TestInTx_RollbackOnError(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()
	boom := errors.New("boom")
	err := db.inTx(context.Background(), func(pgx.Tx) error { return boom })
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx_CommitError(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("commit failed"))
	err := db.inTx(context.Background(), func(pgx.Tx) error { return nil })
	require.EqualError(t, err, "commit failed")
}

func TestPing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	db := &DB{Pool: mock}

	mock.ExpectPing()
	require.NoError(t, db.Ping(context.Background()))
	mock.ExpectPing().WillReturnError(errors.New("down"))
	require.EqualError(t, db.Ping(context.Background()), "down")
	require.NoError(t, mock.ExpectationsWereMet())
}
