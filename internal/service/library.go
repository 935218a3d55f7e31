package service

import (
	"context"
	"fmt"

	"github.com/rongwang/book-exchange-server/internal/apperror"
	"github.com/rongwang/book-exchange-server/internal/models"
	"github.com/rongwang/book-exchange-server/internal/repository"
)

const (
	msgAlreadyInLibrary = "This book is already in library"
	msgNotInLibrary     = "No such book in library"
	msgNotInUserLibrary = "No such book in user's library"
)

func (s *DefaultService) GetLibrary(ctx context.Context, userID int64) (*models.LibraryView, error) {
	var view *models.LibraryView
	err := s.repo.InTx(ctx, func(q repository.Queries) error {
		lib, err := userLibrary(ctx, q, userID, false)
		if err != nil {
			return err
		}
		view, err = libraryView(ctx, q, lib)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *DefaultService) GetLibraryByID(ctx context.Context, libraryID int64) (*models.LibraryView, error) {
	var view *models.LibraryView
	err := s.repo.InTx(ctx, func(q repository.Queries) error {
		lib, err := q.GetLibrary(ctx, libraryID)
		if err != nil {
			return fmt.Errorf("error getting library: %w", err)
		}
		if lib == nil {
			return errNoSuchLibrary
		}
		view, err = libraryView(ctx, q, lib)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// AddToLibrary adds the book to the user's library with default
// attributes. A book the user had wished for leaves the wishlist.
func (s *DefaultService) AddToLibrary(ctx context.Context, userID, bookID int64) (*models.LibraryView, error) {
	var (
		view      *models.LibraryView
		wasWished bool
	)
	err := s.repo.InTx(ctx, func(q repository.Queries) error {
		lib, err := userLibrary(ctx, q, userID, true)
		if err != nil {
			return err
		}
		if _, err := getBook(ctx, q, bookID); err != nil {
			return err
		}

		existing, err := q.GetLibraryEntry(ctx, lib.ID, bookID)
		if err != nil {
			return fmt.Errorf("error checking library entry: %w", err)
		}
		if existing != nil {
			return apperror.New(apperror.Conflict, msgAlreadyInLibrary)
		}

		if wasWished, err = q.RemoveFromWishlist(ctx, userID, bookID); err != nil {
			return fmt.Errorf("error removing book from wishlist: %w", err)
		}

		entry := &models.LibraryEntry{
			LibraryID: lib.ID,
			BookID:    bookID,
			Status:    models.DefaultEntryStatus,
		}
		if err := q.AddLibraryEntry(ctx, entry); err != nil {
			return conflictOn(fmt.Errorf("error adding library entry: %w", err), msgAlreadyInLibrary)
		}

		view, err = libraryView(ctx, q, lib)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("book added to library",
		"user_id", userID,
		"book_id", bookID,
		"removed_from_wishlist", wasWished,
	)
	return view, nil
}

func (s *DefaultService) RemoveFromLibrary(ctx context.Context, userID, bookID int64) (*models.LibraryView, error) {
	var view *models.LibraryView
	err := s.repo.InTx(ctx, func(q repository.Queries) error {
		lib, err := userLibrary(ctx, q, userID, true)
		if err != nil {
			return err
		}

		deleted, err := q.DeleteLibraryEntry(ctx, lib.ID, bookID)
		if err != nil {
			return fmt.Errorf("error deleting library entry: %w", err)
		}
		if !deleted {
			return apperror.New(apperror.NotFound, msgNotInUserLibrary)
		}

		view, err = libraryView(ctx, q, lib)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// UpdateLibraryEntry applies a partial update of hidden and status
func (s *DefaultService) UpdateLibraryEntry(
	ctx context.Context,
	userID int64,
	bookID int64,
	req models.UpdateLibraryEntryRequest,
) (*models.LibraryEntryView, error) {
	var view models.LibraryEntryView
	err := s.repo.InTx(ctx, func(q repository.Queries) error {
		lib, err := userLibrary(ctx, q, userID, true)
		if err != nil {
			return err
		}

		entry, err := q.GetLibraryEntry(ctx, lib.ID, bookID)
		if err != nil {
			return fmt.Errorf("error getting library entry: %w", err)
		}
		if entry == nil {
			return apperror.New(apperror.NotFound, msgNotInLibrary)
		}

		if req.Hidden.Set && req.Hidden.Value != nil {
			entry.Hidden = *req.Hidden.Value
		}
		applyString(req.Status, &entry.Status)

		if err := q.UpdateLibraryEntry(ctx, entry); err != nil {
			return fmt.Errorf("error updating library entry: %w", err)
		}
		view = models.NewLibraryEntryView(*entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ToggleLibraryVisibility sets the hidden flag of the whole library
func (s *DefaultService) ToggleLibraryVisibility(
	ctx context.Context,
	userID int64,
	req models.UpdateLibraryRequest,
) (*models.LibraryView, error) {
	if req.HiddenLib == nil {
		return nil, apperror.New(apperror.MissingArgument, "Not enough arguments")
	}

	var view *models.LibraryView
	err := s.repo.InTx(ctx, func(q repository.Queries) error {
		lib, err := userLibrary(ctx, q, userID, true)
		if err != nil {
			return err
		}

		lib.HiddenLib = *req.HiddenLib
		if err := q.UpdateLibrary(ctx, lib); err != nil {
			return fmt.Errorf("error updating library: %w", err)
		}

		view, err = libraryView(ctx, q, lib)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}
