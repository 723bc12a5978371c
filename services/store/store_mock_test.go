package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/blogsyndicator/internal/post"
	apperrors "sjsage522/blogsyndicator/pkg/errors"
	"sjsage522/blogsyndicator/services/store"
)

func newMockStore(t *testing.T) (*store.SQLiteStore, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return store.NewSQLiteStore(sqlx.NewDb(mockDB, "sqlite3")), mock
}

func TestInsert_SkippedWhenNoRowsAffected(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO posts").
		WithArgs("Hello All!", "https://codingdose.info/hello/").
		WillReturnResult(sqlmock.NewResult(0, 0))

	result, err := s.Insert(context.Background(), post.Post{Title: "Hello All!", Link: "https://codingdose.info/hello/"})
	require.NoError(t, err)
	assert.Equal(t, store.SkippedDuplicate, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertNew_StorageErrorAbortsBatch(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO posts").
		WithArgs("A", "https://codingdose.info/a/").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO posts").
		WithArgs("B", "https://codingdose.info/b/").
		WillReturnError(errors.New("database is locked"))

	inserted, err := s.InsertNew(context.Background(), []post.Post{
		{Title: "A", Link: "https://codingdose.info/a/"},
		{Title: "B", Link: "https://codingdose.info/b/"},
		{Title: "C", Link: "https://codingdose.info/c/"},
	}, nil)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeStorage))
	assert.Contains(t, err.Error(), "database is locked")
	assert.Equal(t, []post.Post{{Title: "A", Link: "https://codingdose.info/a/"}}, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_PurgeDropsFirst(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("DROP TABLE IF EXISTS posts").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS posts").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.EnsureSchema(context.Background(), true))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExists_QueryError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM sqlite_master").
		WithArgs("posts").
		WillReturnError(errors.New("disk I/O error"))

	_, err := s.Exists(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeStorage))
	assert.NoError(t, mock.ExpectationsWereMet())
}
