package repository

import (
	"context"

	"github.com/rongwang/book-exchange-server/internal/models"
)

const libraryColumns = `id, user_id, hidden_lib`

// entrySelect joins each entry with its book; the quoted aliases let sqlx
// scan the book columns into LibraryEntry.Book.
const entrySelect = `
	SELECT lb.id, lb.library_id, lb.book_id, lb.hidden, lb.status,
		b.id AS "book.id", b.name AS "book.name", b.author AS "book.author",
		b.translator AS "book.translator", b.genre AS "book.genre", b.year AS "book.year",
		b.publisher AS "book.publisher", b.isbn AS "book.isbn"
	FROM library_books lb
	JOIN books b ON b.id = lb.book_id`

// Library repository methods
func (q *queries) CreateLibrary(ctx context.Context, lib *models.Library) error {
	id, err := q.insert(ctx,
		`INSERT INTO libraries (user_id, hidden_lib) VALUES (?, ?) RETURNING id`,
		lib.UserID, lib.HiddenLib)
	if err != nil {
		return err
	}
	lib.ID = id
	return nil
}

func (q *queries) GetLibrary(ctx context.Context, id int64) (*models.Library, error) {
	var lib models.Library
	found, err := q.getOne(ctx, &lib, `SELECT `+libraryColumns+` FROM libraries WHERE id = ?`, id)
	if err != nil || !found {
		return nil, err
	}
	return &lib, nil
}

func (q *queries) GetLibraryByUserID(ctx context.Context, userID int64) (*models.Library, error) {
	var lib models.Library
	found, err := q.getOne(ctx, &lib, `SELECT `+libraryColumns+` FROM libraries WHERE user_id = ?`, userID)
	if err != nil || !found {
		return nil, err
	}
	return &lib, nil
}

func (q *queries) UpdateLibrary(ctx context.Context, lib *models.Library) error {
	_, err := q.exec(ctx, `UPDATE libraries SET hidden_lib = ? WHERE id = ?`, lib.HiddenLib, lib.ID)
	return err
}

func (q *queries) DeleteLibrary(ctx context.Context, id int64) error {
	_, err := q.exec(ctx, `DELETE FROM libraries WHERE id = ?`, id)
	return err
}

// Library entry repository methods
func (q *queries) ListLibraryEntries(ctx context.Context, libraryID int64) ([]models.LibraryEntry, error) {
	entries := []models.LibraryEntry{}
	err := q.selectAll(ctx, &entries, entrySelect+` WHERE lb.library_id = ? ORDER BY lb.id ASC`, libraryID)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (q *queries) GetLibraryEntry(ctx context.Context, libraryID, bookID int64) (*models.LibraryEntry, error) {
	var entry models.LibraryEntry
	found, err := q.getOne(ctx, &entry,
		entrySelect+` WHERE lb.library_id = ? AND lb.book_id = ?`, libraryID, bookID)
	if err != nil || !found {
		return nil, err
	}
	return &entry, nil
}

// AddLibraryEntry inserts the entry. A second insert of the same
// (library, book) pair fails with ErrDuplicate.
func (q *queries) AddLibraryEntry(ctx context.Context, entry *models.LibraryEntry) error {
	if entry.Status == "" {
		entry.Status = models.DefaultEntryStatus
	}
	id, err := q.insert(ctx,
		`INSERT INTO library_books (library_id, book_id, hidden, status) VALUES (?, ?, ?, ?) RETURNING id`,
		entry.LibraryID, entry.BookID, entry.Hidden, entry.Status)
	if err != nil {
		return err
	}
	entry.ID = id
	return nil
}

func (q *queries) UpdateLibraryEntry(ctx context.Context, entry *models.LibraryEntry) error {
	_, err := q.exec(ctx,
		`UPDATE library_books SET hidden = ?, status = ? WHERE library_id = ? AND book_id = ?`,
		entry.Hidden, entry.Status, entry.LibraryID, entry.BookID)
	return err
}

func (q *queries) DeleteLibraryEntry(ctx context.Context, libraryID, bookID int64) (bool, error) {
	n, err := q.exec(ctx, `DELETE FROM library_books WHERE library_id = ? AND book_id = ?`, libraryID, bookID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (q *queries) DeleteLibraryEntries(ctx context.Context, libraryID int64) (int64, error) {
	return q.exec(ctx, `DELETE FROM library_books WHERE library_id = ?`, libraryID)
}

func (q *queries) DeleteLibraryEntriesForBook(ctx context.Context, bookID int64) (int64, error) {
	return q.exec(ctx, `DELETE FROM library_books WHERE book_id = ?`, bookID)
}
