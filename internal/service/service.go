package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rongwang/book-exchange-server/internal/apperror"
	"github.com/rongwang/book-exchange-server/internal/cache"
	"github.com/rongwang/book-exchange-server/internal/models"
	"github.com/rongwang/book-exchange-server/internal/repository"
	"github.com/rongwang/book-exchange-server/internal/utils"
)

// Service defines all the business logic operations. Every mutation runs
// in a single transaction, so a failed cascade never leaves partial state.
type Service interface {
	// User operations
	ListUsers(ctx context.Context) ([]models.UserView, error)
	GetUser(ctx context.Context, id int64) (*models.UserDetailView, error)
	CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.UserView, error)
	UpdateUser(ctx context.Context, id int64, req models.UpdateUserRequest) (*models.UserView, error)
	DeleteUser(ctx context.Context, id int64) ([]models.UserView, error)

	// Address operations
	ListAddresses(ctx context.Context) ([]models.AddressView, error)
	GetAddress(ctx context.Context, id int64) (*models.AddressView, error)
	CreateAddress(ctx context.Context, req models.CreateAddressRequest) (*models.AddressView, error)
	UpdateAddress(ctx context.Context, id int64, req models.UpdateAddressRequest) (*models.AddressView, error)
	DeleteAddress(ctx context.Context, id int64) ([]models.AddressView, error)

	// Book operations
	ListBooks(ctx context.Context) ([]models.BookView, error)
	GetBook(ctx context.Context, id int64) (*models.BookView, error)
	CreateBook(ctx context.Context, req models.CreateBookRequest) (*models.BookView, error)
	UpdateBook(ctx context.Context, id int64, req models.UpdateBookRequest) (*models.BookView, error)
	DeleteBook(ctx context.Context, id int64) ([]models.BookView, error)

	// Library operations
	GetLibrary(ctx context.Context, userID int64) (*models.LibraryView, error)
	GetLibraryByID(ctx context.Context, libraryID int64) (*models.LibraryView, error)
	AddToLibrary(ctx context.Context, userID, bookID int64) (*models.LibraryView, error)
	RemoveFromLibrary(ctx context.Context, userID, bookID int64) (*models.LibraryView, error)
	UpdateLibraryEntry(ctx context.Context, userID, bookID int64, req models.UpdateLibraryEntryRequest) (*models.LibraryEntryView, error)
	ToggleLibraryVisibility(ctx context.Context, userID int64, req models.UpdateLibraryRequest) (*models.LibraryView, error)

	// Wishlist operations
	GetWishlist(ctx context.Context, userID int64) ([]models.BookView, error)
	AddToWishlist(ctx context.Context, userID, bookID int64) ([]models.BookView, error)
	RemoveFromWishlist(ctx context.Context, userID, bookID int64) ([]models.BookView, error)

	Health(ctx context.Context) models.HealthResponse
}

// BookCache caches rendered books. Implementations must tolerate their
// own failures.
type BookCache interface {
	GetBook(ctx context.Context, id int64) (*models.BookView, bool)
	SetBook(ctx context.Context, view models.BookView)
	InvalidateBook(ctx context.Context, id int64)
	Ping(ctx context.Context) error
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo   repository.Repository
	cache  BookCache
	logger *utils.Logger
}

// NewDefaultService creates a new DefaultService. A nil cache disables
// caching and a nil logger discards logs.
func NewDefaultService(repo repository.Repository, bookCache BookCache, logger *utils.Logger) Service {
	if bookCache == nil {
		bookCache = cache.Noop{}
	}
	if logger == nil {
		logger = utils.Discard()
	}
	return &DefaultService{
		repo:   repo,
		cache:  bookCache,
		logger: logger,
	}
}

var (
	errNoSuchUser    = apperror.New(apperror.NotFound, "No such user")
	errNoSuchBook    = apperror.New(apperror.NotFound, "No such book")
	errNoSuchAddress = apperror.New(apperror.NotFound, "No such address")
	errNoSuchLibrary = apperror.New(apperror.NotFound, "No such library")
)

// conflictOn turns a unique-constraint violation into a Conflict with msg.
func conflictOn(err error, msg string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperror.New(apperror.Conflict, msg)
	}
	return err
}

// Health reports the reachability of the store and the cache
func (s *DefaultService) Health(ctx context.Context) models.HealthResponse {
	resp := models.HealthResponse{Status: "ok", Database: "ok", Cache: "ok"}
	if err := s.repo.Ping(ctx); err != nil {
		s.logger.Error("database ping failed", "error", err)
		resp.Status = "degraded"
		resp.Database = "unreachable"
	}
	if _, ok := s.cache.(cache.Noop); ok {
		resp.Cache = "disabled"
	} else if err := s.cache.Ping(ctx); err != nil {
		s.logger.Warn("cache ping failed", "error", err)
		resp.Cache = "unreachable"
	}
	return resp
}

// userLibrary resolves the library of userID. With lock set the user row
// stays locked until the transaction ends.
func userLibrary(ctx context.Context, q repository.Queries, userID int64, lock bool) (*models.Library, error) {
	var (
		user *models.User
		err  error
	)
	if lock {
		user, err = q.LockUser(ctx, userID)
	} else {
		user, err = q.GetUser(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if user == nil {
		return nil, errNoSuchUser
	}

	lib, err := q.GetLibraryByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting library: %w", err)
	}
	if lib == nil {
		return nil, fmt.Errorf("user %d has no library", userID)
	}
	return lib, nil
}

func libraryView(ctx context.Context, q repository.Queries, lib *models.Library) (*models.LibraryView, error) {
	entries, err := q.ListLibraryEntries(ctx, lib.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing library entries: %w", err)
	}
	view := models.NewLibraryView(*lib, entries)
	return &view, nil
}

func getBook(ctx context.Context, q repository.Queries, id int64) (*models.Book, error) {
	book, err := q.GetBook(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting book: %w", err)
	}
	if book == nil {
		return nil, errNoSuchBook
	}
	return book, nil
}
