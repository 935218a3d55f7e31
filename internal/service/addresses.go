package service

import (
	"context"
	"fmt"

	"github.com/rongwang/book-exchange-server/internal/apperror"
	"github.com/rongwang/book-exchange-server/internal/metrics"
	"github.com/rongwang/book-exchange-server/internal/models"
	"github.com/rongwang/book-exchange-server/internal/repository"
)

const msgAddressExists = "This address already exists"

func (s *DefaultService) ListAddresses(ctx context.Context) ([]models.AddressView, error) {
	addrs, err := s.repo.ListAddresses(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing addresses: %w", err)
	}
	return models.NewAddressViews(addrs), nil
}

func (s *DefaultService) GetAddress(ctx context.Context, id int64) (*models.AddressView, error) {
	addr, err := s.repo.GetAddress(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting address: %w", err)
	}
	if addr == nil {
		return nil, errNoSuchAddress
	}
	view := models.NewAddressView(*addr)
	return &view, nil
}

// CreateAddress rejects a second address with the same street and city
func (s *DefaultService) CreateAddress(ctx context.Context, req models.CreateAddressRequest) (*models.AddressView, error) {
	addr := &models.Address{
		StreetAddr: req.StreetAddr,
		City:       req.City,
		Region:     req.Region,
		Zip:        req.Zip,
		Country:    req.Country,
	}

	err := s.repo.InTx(ctx, func(q repository.Queries) error {
		existing, err := q.GetAddressByStreetCity(ctx, addr.StreetAddr, addr.City)
		if err != nil {
			return fmt.Errorf("error checking address existence: %w", err)
		}
		if existing != nil {
			return apperror.New(apperror.Conflict, msgAddressExists)
		}
		if err := q.CreateAddress(ctx, addr); err != nil {
			return conflictOn(fmt.Errorf("error creating address: %w", err), msgAddressExists)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	view := models.NewAddressView(*addr)
	return &view, nil
}

func (s *DefaultService) UpdateAddress(ctx context.Context, id int64, req models.UpdateAddressRequest) (*models.AddressView, error) {
	var view models.AddressView
	err := s.repo.InTx(ctx, func(q repository.Queries) error {
		addr, err := q.GetAddress(ctx, id)
		if err != nil {
			return fmt.Errorf("error getting address: %w", err)
		}
		if addr == nil {
			return errNoSuchAddress
		}

		street, city := addr.StreetAddr, addr.City
		applyString(req.StreetAddr, &addr.StreetAddr)
		applyString(req.City, &addr.City)
		applyString(req.Region, &addr.Region)
		applyString(req.Zip, &addr.Zip)
		applyString(req.Country, &addr.Country)

		if addr.StreetAddr != street || addr.City != city {
			other, err := q.GetAddressByStreetCity(ctx, addr.StreetAddr, addr.City)
			if err != nil {
				return fmt.Errorf("error checking address existence: %w", err)
			}
			if other != nil && other.ID != id {
				return apperror.New(apperror.Conflict, msgAddressExists)
			}
		}

		if err := q.UpdateAddress(ctx, addr); err != nil {
			return conflictOn(fmt.Errorf("error updating address: %w", err), msgAddressExists)
		}
		view = models.NewAddressView(*addr)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// DeleteAddress detaches the address from its users, deletes it and
// returns the remaining addresses.
func (s *DefaultService) DeleteAddress(ctx context.Context, id int64) ([]models.AddressView, error) {
	var (
		views    []models.AddressView
		detached int64
	)
	err := s.repo.InTx(ctx, func(q repository.Queries) error {
		addr, err := q.GetAddress(ctx, id)
		if err != nil {
			return fmt.Errorf("error getting address: %w", err)
		}
		if addr == nil {
			return errNoSuchAddress
		}

		if detached, err = q.ClearAddressReferences(ctx, id); err != nil {
			return fmt.Errorf("error detaching users from address: %w", err)
		}
		if err := q.DeleteAddress(ctx, id); err != nil {
			return fmt.Errorf("error deleting address: %w", err)
		}

		addrs, err := q.ListAddresses(ctx)
		if err != nil {
			return fmt.Errorf("error listing addresses: %w", err)
		}
		views = models.NewAddressViews(addrs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.CascadeDeletes.WithLabelValues("users.address_id").Add(float64(detached))
	s.logger.Info("address deleted", "address_id", id, "users_detached", detached)
	return views, nil
}

// applyString copies a set, non-null patch value into dst
func applyString(o models.Opt[string], dst *string) {
	if o.Set && o.Value != nil {
		*dst = *o.Value
	}
}

// applyNullable copies a set patch value into dst, including null
func applyNullable[T any](o models.Opt[T], dst **T) {
	if o.Set {
		*dst = o.Value
	}
}
