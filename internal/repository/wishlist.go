package repository

import (
	"context"

	"github.com/rongwang/book-exchange-server/internal/models"
)

// ListWishlist returns the user's wished books in the order they were added
func (q *queries) ListWishlist(ctx context.Context, userID int64) ([]models.Book, error) {
	books := []models.Book{}
	err := q.selectAll(ctx, &books, `
		SELECT b.id, b.name, b.author, b.translator, b.genre, b.year, b.publisher, b.isbn
		FROM wishlist w
		JOIN books b ON b.id = w.book_id
		WHERE w.user_id = ?
		ORDER BY w.id ASC`, userID)
	if err != nil {
		return nil, err
	}
	return books, nil
}

func (q *queries) IsInWishlist(ctx context.Context, userID, bookID int64) (bool, error) {
	var exists bool
	err := q.get(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM wishlist WHERE user_id = ? AND book_id = ?)`, userID, bookID)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// AddToWishlist fails with ErrDuplicate when the pair already exists
func (q *queries) AddToWishlist(ctx context.Context, entry *models.WishlistEntry) error {
	id, err := q.insert(ctx,
		`INSERT INTO wishlist (user_id, book_id) VALUES (?, ?) RETURNING id`,
		entry.UserID, entry.BookID)
	if err != nil {
		return err
	}
	entry.ID = id
	return nil
}

func (q *queries) RemoveFromWishlist(ctx context.Context, userID, bookID int64) (bool, error) {
	n, err := q.exec(ctx, `DELETE FROM wishlist WHERE user_id = ? AND book_id = ?`, userID, bookID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (q *queries) ClearWishlist(ctx context.Context, userID int64) (int64, error) {
	return q.exec(ctx, `DELETE FROM wishlist WHERE user_id = ?`, userID)
}

func (q *queries) RemoveBookFromWishlists(ctx context.Context, bookID int64) (int64, error) {
	return q.exec(ctx, `DELETE FROM wishlist WHERE book_id = ?`, bookID)
}
