package service

import (
	"context"
	"fmt"

	"github.com/rongwang/book-exchange-server/internal/metrics"
	"github.com/rongwang/book-exchange-server/internal/models"
	"github.com/rongwang/book-exchange-server/internal/repository"
)

func (s *DefaultService) ListBooks(ctx context.Context) ([]models.BookView, error) {
	books, err := s.repo.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing books: %w", err)
	}
	return models.NewBookViews(books), nil
}

// GetBook reads through the book cache
func (s *DefaultService) GetBook(ctx context.Context, id int64) (*models.BookView, error) {
	if view, ok := s.cache.GetBook(ctx, id); ok {
		return view, nil
	}

	book, err := getBook(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	view := models.NewBookView(*book)
	s.cache.SetBook(ctx, view)
	return &view, nil
}

func (s *DefaultService) CreateBook(ctx context.Context, req models.CreateBookRequest) (*models.BookView, error) {
	book := &models.Book{
		Name:       req.Name,
		Author:     req.Author,
		Translator: req.Translator,
		Genre:      req.Genre,
		Year:       req.Year,
		Publisher:  req.Publisher,
		ISBN:       req.ISBN,
	}
	if err := s.repo.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("error creating book: %w", err)
	}

	view := models.NewBookView(*book)
	return &view, nil
}

func (s *DefaultService) UpdateBook(ctx context.Context, id int64, req models.UpdateBookRequest) (*models.BookView, error) {
	var view models.BookView
	err := s.repo.InTx(ctx, func(q repository.Queries) error {
		book, err := getBook(ctx, q, id)
		if err != nil {
			return err
		}

		applyString(req.Name, &book.Name)
		applyString(req.Author, &book.Author)
		applyNullable(req.Translator, &book.Translator)
		applyNullable(req.Genre, &book.Genre)
		applyNullable(req.Year, &book.Year)
		applyNullable(req.Publisher, &book.Publisher)
		applyNullable(req.ISBN, &book.ISBN)

		if err := q.UpdateBook(ctx, book); err != nil {
			return fmt.Errorf("error updating book: %w", err)
		}
		view = models.NewBookView(*book)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateBook(ctx, id)
	return &view, nil
}

// DeleteBook removes the book from every library and wishlist, deletes it
// and returns the remaining books.
func (s *DefaultService) DeleteBook(ctx context.Context, id int64) ([]models.BookView, error) {
	var (
		views          []models.BookView
		entriesRemoved int64
		wishRemoved    int64
	)
	err := s.repo.InTx(ctx, func(q repository.Queries) error {
		if _, err := getBook(ctx, q, id); err != nil {
			return err
		}

		var err error
		if entriesRemoved, err = q.DeleteLibraryEntriesForBook(ctx, id); err != nil {
			return fmt.Errorf("error deleting library entries: %w", err)
		}
		if wishRemoved, err = q.RemoveBookFromWishlists(ctx, id); err != nil {
			return fmt.Errorf("error removing book from wishlists: %w", err)
		}
		if err := q.DeleteBook(ctx, id); err != nil {
			return fmt.Errorf("error deleting book: %w", err)
		}

		books, err := q.ListBooks(ctx)
		if err != nil {
			return fmt.Errorf("error listing books: %w", err)
		}
		views = models.NewBookViews(books)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateBook(ctx, id)
	metrics.CascadeDeletes.WithLabelValues("library_books").Add(float64(entriesRemoved))
	metrics.CascadeDeletes.WithLabelValues("wishlist").Add(float64(wishRemoved))
	s.logger.Info("book deleted",
		"book_id", id,
		"library_entries_removed", entriesRemoved,
		"wishlist_removed", wishRemoved,
	)
	return views, nil
}
