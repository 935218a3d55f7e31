package repository

import (
	"context"

	"github.com/rongwang/book-exchange-server/internal/models"
)

const bookColumns = `id, name, author, translator, genre, year, publisher, isbn`

func (q *queries) CreateBook(ctx context.Context, book *models.Book) error {
	id, err := q.insert(ctx,
		`INSERT INTO books (name, author, translator, genre, year, publisher, isbn)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		book.Name, book.Author, book.Translator, book.Genre, book.Year, book.Publisher, book.ISBN)
	if err != nil {
		return err
	}
	book.ID = id
	return nil
}

func (q *queries) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	var book models.Book
	found, err := q.getOne(ctx, &book, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id)
	if err != nil || !found {
		return nil, err
	}
	return &book, nil
}

func (q *queries) ListBooks(ctx context.Context) ([]models.Book, error) {
	books := []models.Book{}
	if err := q.selectAll(ctx, &books, `SELECT `+bookColumns+` FROM books ORDER BY id ASC`); err != nil {
		return nil, err
	}
	return books, nil
}

func (q *queries) UpdateBook(ctx context.Context, book *models.Book) error {
	_, err := q.exec(ctx,
		`UPDATE books SET name = ?, author = ?, translator = ?, genre = ?, year = ?, publisher = ?, isbn = ?
		WHERE id = ?`,
		book.Name, book.Author, book.Translator, book.Genre, book.Year, book.Publisher, book.ISBN, book.ID)
	return err
}

func (q *queries) DeleteBook(ctx context.Context, id int64) error {
	_, err := q.exec(ctx, `DELETE FROM books WHERE id = ?`, id)
	return err
}
