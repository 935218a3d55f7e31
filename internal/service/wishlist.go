package service

import (
	"context"
	"fmt"

	"github.com/rongwang/book-exchange-server/internal/apperror"
	"github.com/rongwang/book-exchange-server/internal/models"
	"github.com/rongwang/book-exchange-server/internal/repository"
)

const (
	msgAlreadyWished = "This book is already in wishlist"
	msgNotWished     = "No such book in wishlist"
)

func (s *DefaultService) GetWishlist(ctx context.Context, userID int64) ([]models.BookView, error) {
	var views []models.BookView
	err := s.repo.InTx(ctx, func(q repository.Queries) error {
		user, err := q.GetUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("error getting user: %w", err)
		}
		if user == nil {
			return errNoSuchUser
		}
		views, err = wishlistViews(ctx, q, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// AddToWishlist rejects books the user already owns or already wishes for
func (s *DefaultService) AddToWishlist(ctx context.Context, userID, bookID int64) ([]models.BookView, error) {
	var views []models.BookView
	err := s.repo.InTx(ctx, func(q repository.Queries) error {
		lib, err := userLibrary(ctx, q, userID, true)
		if err != nil {
			return err
		}
		if _, err := getBook(ctx, q, bookID); err != nil {
			return err
		}

		owned, err := q.GetLibraryEntry(ctx, lib.ID, bookID)
		if err != nil {
			return fmt.Errorf("error checking library entry: %w", err)
		}
		if owned != nil {
			return apperror.New(apperror.Conflict, msgAlreadyInLibrary)
		}

		wished, err := q.IsInWishlist(ctx, userID, bookID)
		if err != nil {
			return fmt.Errorf("error checking wishlist: %w", err)
		}
		if wished {
			return apperror.New(apperror.Conflict, msgAlreadyWished)
		}

		entry := &models.WishlistEntry{UserID: userID, BookID: bookID}
		if err := q.AddToWishlist(ctx, entry); err != nil {
			return conflictOn(fmt.Errorf("error adding to wishlist: %w", err), msgAlreadyWished)
		}

		views, err = wishlistViews(ctx, q, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (s *DefaultService) RemoveFromWishlist(ctx context.Context, userID, bookID int64) ([]models.BookView, error) {
	var views []models.BookView
	err := s.repo.InTx(ctx, func(q repository.Queries) error {
		user, err := q.LockUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("error getting user: %w", err)
		}
		if user == nil {
			return errNoSuchUser
		}

		removed, err := q.RemoveFromWishlist(ctx, userID, bookID)
		if err != nil {
			return fmt.Errorf("error removing from wishlist: %w", err)
		}
		if !removed {
			return apperror.New(apperror.NotFound, msgNotWished)
		}

		views, err = wishlistViews(ctx, q, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

func wishlistViews(ctx context.Context, q repository.Queries, userID int64) ([]models.BookView, error) {
	books, err := q.ListWishlist(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing wishlist: %w", err)
	}
	return models.NewBookViews(books), nil
}
