package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewFromDB(db), mock
}

func TestMigrate_CommitsAllStatements(t *testing.T) {
	c, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE a").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX b").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, c.Migrate(context.Background(), "CREATE TABLE a", "CREATE INDEX b"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_RollsBackOnFailure(t *testing.T) {
	c, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE a").WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	err := c.Migrate(context.Background(), "CREATE TABLE a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration 0")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx_PropagatesFnError(t *testing.T) {
	c, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	sentinel := errors.New("nope")
	err := c.InTx(context.Background(), func(tx *sql.Tx) error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
	assert.NoError(t, mock.ExpectationsWereMet())
}
