package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rongwang/book-exchange-server/internal/models"
)

// Queries defines the data operations available both on the pool and
// inside a transaction. Single-row getters return (nil, nil) when the row
// does not exist.
type Queries interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	LockUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
	ClearAddressReferences(ctx context.Context, addressID int64) (int64, error)

	// Address operations
	CreateAddress(ctx context.Context, addr *models.Address) error
	GetAddress(ctx context.Context, id int64) (*models.Address, error)
	GetAddressByStreetCity(ctx context.Context, street, city string) (*models.Address, error)
	ListAddresses(ctx context.Context) ([]models.Address, error)
	UpdateAddress(ctx context.Context, addr *models.Address) error
	DeleteAddress(ctx context.Context, id int64) error

	// Book operations
	CreateBook(ctx context.Context, book *models.Book) error
	GetBook(ctx context.Context, id int64) (*models.Book, error)
	ListBooks(ctx context.Context) ([]models.Book, error)
	UpdateBook(ctx context.Context, book *models.Book) error
	DeleteBook(ctx context.Context, id int64) error

	// Library operations
	CreateLibrary(ctx context.Context, lib *models.Library) error
	GetLibrary(ctx context.Context, id int64) (*models.Library, error)
	GetLibraryByUserID(ctx context.Context, userID int64) (*models.Library, error)
	UpdateLibrary(ctx context.Context, lib *models.Library) error
	DeleteLibrary(ctx context.Context, id int64) error

	// Library entry operations
	ListLibraryEntries(ctx context.Context, libraryID int64) ([]models.LibraryEntry, error)
	GetLibraryEntry(ctx context.Context, libraryID, bookID int64) (*models.LibraryEntry, error)
	AddLibraryEntry(ctx context.Context, entry *models.LibraryEntry) error
	UpdateLibraryEntry(ctx context.Context, entry *models.LibraryEntry) error
	DeleteLibraryEntry(ctx context.Context, libraryID, bookID int64) (bool, error)
	DeleteLibraryEntries(ctx context.Context, libraryID int64) (int64, error)
	DeleteLibraryEntriesForBook(ctx context.Context, bookID int64) (int64, error)

	// Wishlist operations
	ListWishlist(ctx context.Context, userID int64) ([]models.Book, error)
	IsInWishlist(ctx context.Context, userID, bookID int64) (bool, error)
	AddToWishlist(ctx context.Context, entry *models.WishlistEntry) error
	RemoveFromWishlist(ctx context.Context, userID, bookID int64) (bool, error)
	ClearWishlist(ctx context.Context, userID int64) (int64, error)
	RemoveBookFromWishlists(ctx context.Context, bookID int64) (int64, error)
}

// Repository is the entity store: Queries on the pool plus a unit of work
type Repository interface {
	Queries

	// InTx runs fn inside one transaction. The transaction commits when fn
	// returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(q Queries) error) error
	Ping(ctx context.Context) error
}

// SQLRepository implements the Repository interface on top of sqlx. It works
// with both the postgres and sqlite3 drivers.
type SQLRepository struct {
	*queries
	db *sqlx.DB
}

// NewSQLRepository creates a new repository over db
func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{
		queries: &queries{ext: db},
		db:      db,
	}
}

func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLRepository) InTx(ctx context.Context, fn func(q Queries) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&queries{ext: tx}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", classify(err))
	}
	return nil
}

// queries binds every data operation to either the pool or a transaction.
type queries struct {
	ext sqlx.ExtContext
}

func (q *queries) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return classify(sqlx.GetContext(ctx, q.ext, dest, q.ext.Rebind(query), args...))
}

// getOne is get with sql.ErrNoRows reported as found == false.
func (q *queries) getOne(ctx context.Context, dest interface{}, query string, args ...interface{}) (bool, error) {
	err := q.get(ctx, dest, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (q *queries) selectAll(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return classify(sqlx.SelectContext(ctx, q.ext, dest, q.ext.Rebind(query), args...))
}

func (q *queries) exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := q.ext.ExecContext(ctx, q.ext.Rebind(query), args...)
	if err != nil {
		return 0, classify(err)
	}
	return res.RowsAffected()
}

// insert runs an INSERT ... RETURNING id and returns the generated id
func (q *queries) insert(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var id int64
	if err := q.ext.QueryRowxContext(ctx, q.ext.Rebind(query), args...).Scan(&id); err != nil {
		return 0, classify(err)
	}
	return id, nil
}

func (q *queries) isPostgres() bool {
	return q.ext.DriverName() == "postgres"
}
