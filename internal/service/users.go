package service

import (
	"context"
	"fmt"

	"github.com/rongwang/book-exchange-server/internal/apperror"
	"github.com/rongwang/book-exchange-server/internal/metrics"
	"github.com/rongwang/book-exchange-server/internal/models"
	"github.com/rongwang/book-exchange-server/internal/repository"
)

const msgUsernameTaken = "User with this username already exists"

func (s *DefaultService) ListUsers(ctx context.Context) ([]models.UserView, error) {
	var views []models.UserView
	err := s.repo.InTx(ctx, func(q repository.Queries) error {
		var err error
		views, err = userViews(ctx, q)
		return err
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

func userViews(ctx context.Context, q repository.Queries) ([]models.UserView, error) {
	users, err := q.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	addrs, err := q.ListAddresses(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing addresses: %w", err)
	}

	byID := make(map[int64]models.Address, len(addrs))
	for _, a := range addrs {
		byID[a.ID] = a
	}
	return models.NewUserViews(users, byID), nil
}

// GetUser renders the user with its address, library and wishlist
func (s *DefaultService) GetUser(ctx context.Context, id int64) (*models.UserDetailView, error) {
	var graph models.UserGraph
	err := s.repo.InTx(ctx, func(q repository.Queries) error {
		user, err := q.GetUser(ctx, id)
		if err != nil {
			return fmt.Errorf("error getting user: %w", err)
		}
		if user == nil {
			return errNoSuchUser
		}
		graph.User = *user

		if user.AddressID != nil {
			if graph.Address, err = q.GetAddress(ctx, *user.AddressID); err != nil {
				return fmt.Errorf("error getting address: %w", err)
			}
		}

		if graph.Library, err = q.GetLibraryByUserID(ctx, id); err != nil {
			return fmt.Errorf("error getting library: %w", err)
		}
		if graph.Library != nil {
			if graph.Entries, err = q.ListLibraryEntries(ctx, graph.Library.ID); err != nil {
				return fmt.Errorf("error listing library entries: %w", err)
			}
		}

		if graph.Wishlist, err = q.ListWishlist(ctx, id); err != nil {
			return fmt.Errorf("error listing wishlist: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	view := models.NewUserDetailView(graph)
	return &view, nil
}

// CreateUser creates the user and its empty library together
func (s *DefaultService) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.UserView, error) {
	var view models.UserView
	err := s.repo.InTx(ctx, func(q repository.Queries) error {
		// Check if user already exists
		existing, err := q.GetUserByUsername(ctx, req.Username)
		if err != nil {
			return fmt.Errorf("error checking user existence: %w", err)
		}
		if existing != nil {
			return apperror.New(apperror.Conflict, msgUsernameTaken)
		}

		var addr *models.Address
		if req.AddressID != nil {
			if addr, err = q.GetAddress(ctx, *req.AddressID); err != nil {
				return fmt.Errorf("error getting address: %w", err)
			}
			if addr == nil {
				return errNoSuchAddress
			}
		}

		user := &models.User{
			Username:  req.Username,
			Group:     req.Group,
			AddressID: req.AddressID,
		}
		if err := q.CreateUser(ctx, user); err != nil {
			return conflictOn(fmt.Errorf("error creating user: %w", err), msgUsernameTaken)
		}

		lib := &models.Library{UserID: user.ID}
		if err := q.CreateLibrary(ctx, lib); err != nil {
			return fmt.Errorf("error creating library: %w", err)
		}

		view = models.NewUserView(*user, addr)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created", "user_id", view.ID, "username", view.Username)
	return &view, nil
}

func (s *DefaultService) UpdateUser(ctx context.Context, id int64, req models.UpdateUserRequest) (*models.UserView, error) {
	var view models.UserView
	err := s.repo.InTx(ctx, func(q repository.Queries) error {
		user, err := q.LockUser(ctx, id)
		if err != nil {
			return fmt.Errorf("error getting user: %w", err)
		}
		if user == nil {
			return errNoSuchUser
		}

		if req.Username.Set && req.Username.Value != nil && *req.Username.Value != user.Username {
			other, err := q.GetUserByUsername(ctx, *req.Username.Value)
			if err != nil {
				return fmt.Errorf("error checking user existence: %w", err)
			}
			if other != nil {
				return apperror.New(apperror.Conflict, msgUsernameTaken)
			}
			user.Username = *req.Username.Value
		}
		if req.Group.Set && req.Group.Value != nil {
			user.Group = *req.Group.Value
		}

		var addr *models.Address
		if req.AddressID.Set {
			user.AddressID = req.AddressID.Value
		}
		// Resolved even when unchanged: the response renders it.
		if user.AddressID != nil {
			if addr, err = q.GetAddress(ctx, *user.AddressID); err != nil {
				return fmt.Errorf("error getting address: %w", err)
			}
			if addr == nil {
				return errNoSuchAddress
			}
		}

		if err := q.UpdateUser(ctx, user); err != nil {
			return conflictOn(fmt.Errorf("error updating user: %w", err), msgUsernameTaken)
		}

		view = models.NewUserView(*user, addr)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// DeleteUser removes the user with its wishlist, library and library
// entries, and returns the remaining users.
func (s *DefaultService) DeleteUser(ctx context.Context, id int64) ([]models.UserView, error) {
	var (
		views            []models.UserView
		wishRemoved      int64
		entriesRemoved   int64
		librariesRemoved int64
	)
	err := s.repo.InTx(ctx, func(q repository.Queries) error {
		user, err := q.LockUser(ctx, id)
		if err != nil {
			return fmt.Errorf("error getting user: %w", err)
		}
		if user == nil {
			return errNoSuchUser
		}

		if wishRemoved, err = q.ClearWishlist(ctx, id); err != nil {
			return fmt.Errorf("error clearing wishlist: %w", err)
		}

		lib, err := q.GetLibraryByUserID(ctx, id)
		if err != nil {
			return fmt.Errorf("error getting library: %w", err)
		}
		if lib != nil {
			if entriesRemoved, err = q.DeleteLibraryEntries(ctx, lib.ID); err != nil {
				return fmt.Errorf("error deleting library entries: %w", err)
			}
			if err := q.DeleteLibrary(ctx, lib.ID); err != nil {
				return fmt.Errorf("error deleting library: %w", err)
			}
			librariesRemoved = 1
		}

		if err := q.DeleteUser(ctx, id); err != nil {
			return fmt.Errorf("error deleting user: %w", err)
		}

		views, err = userViews(ctx, q)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.CascadeDeletes.WithLabelValues("wishlist").Add(float64(wishRemoved))
	metrics.CascadeDeletes.WithLabelValues("library_books").Add(float64(entriesRemoved))
	metrics.CascadeDeletes.WithLabelValues("libraries").Add(float64(librariesRemoved))
	s.logger.Info("user deleted",
		"user_id", id,
		"wishlist_removed", wishRemoved,
		"library_entries_removed", entriesRemoved,
	)
	return views, nil
}
