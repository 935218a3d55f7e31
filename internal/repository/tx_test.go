package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/rongwang/book-exchange-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepository(t *testing.T) (*SQLRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestInTxRollbackOnCallbackError(t *testing.T) {
	repo, mock := newMockRepository(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM wishlist").WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := repo.InTx(ctx, func(q Queries) error {
		n, err := q.ClearWishlist(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTxRollbackOnQueryError(t *testing.T) {
	repo, mock := newMockRepository(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM library_books").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM wishlist").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.InTx(ctx, func(q Queries) error {
		if _, err := q.DeleteLibraryEntriesForBook(ctx, 1); err != nil {
			return err
		}
		if _, err := q.RemoveBookFromWishlists(ctx, 1); err != nil {
			return fmt.Errorf("error removing book from wishlists: %w", err)
		}
		return q.DeleteBook(ctx, 1)
	})

	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTxRollbackOnPanic(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = repo.InTx(context.Background(), func(q Queries) error {
			panic("unexpected")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTxCommit(t *testing.T) {
	repo, mock := newMockRepository(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO books").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectCommit()

	book := &models.Book{Name: "Dune", Author: "Herbert"}
	err := repo.InTx(ctx, func(q Queries) error {
		return q.CreateBook(ctx, book)
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), book.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockUserOnlyLocksOnPostgres(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "username", "user_group", "address_id"}).AddRow(1, "ann", "reader", nil)
	mock.ExpectQuery(`SELECT id, username, user_group, address_id FROM users WHERE id = $1 FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	q := &queries{ext: sqlx.NewDb(db, "postgres")}
	user, err := q.LockUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "ann", user.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))

	pgDup := &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"}
	assert.ErrorIs(t, classify(pgDup), ErrDuplicate)

	pgFK := &pq.Error{Code: "23503", Message: "foreign key violation"}
	assert.NotErrorIs(t, classify(pgFK), ErrDuplicate)

	liteDup := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}
	assert.ErrorIs(t, classify(liteDup), ErrDuplicate)

	other := errors.New("boom")
	assert.Same(t, other, classify(other))
}
