package repository

import (
	"context"

	"github.com/rongwang/book-exchange-server/internal/models"
)

const addressColumns = `id, street_addr, city, region, zip, country`

func (q *queries) CreateAddress(ctx context.Context, addr *models.Address) error {
	id, err := q.insert(ctx,
		`INSERT INTO addresses (street_addr, city, region, zip, country)
		VALUES (?, ?, ?, ?, ?) RETURNING id`,
		addr.StreetAddr, addr.City, addr.Region, addr.Zip, addr.Country)
	if err != nil {
		return err
	}
	addr.ID = id
	return nil
}

func (q *queries) GetAddress(ctx context.Context, id int64) (*models.Address, error) {
	var addr models.Address
	found, err := q.getOne(ctx, &addr, `SELECT `+addressColumns+` FROM addresses WHERE id = ?`, id)
	if err != nil || !found {
		return nil, err
	}
	return &addr, nil
}

func (q *queries) GetAddressByStreetCity(ctx context.Context, street, city string) (*models.Address, error) {
	var addr models.Address
	found, err := q.getOne(ctx, &addr,
		`SELECT `+addressColumns+` FROM addresses WHERE street_addr = ? AND city = ?`,
		street, city)
	if err != nil || !found {
		return nil, err
	}
	return &addr, nil
}

func (q *queries) ListAddresses(ctx context.Context) ([]models.Address, error) {
	addrs := []models.Address{}
	if err := q.selectAll(ctx, &addrs, `SELECT `+addressColumns+` FROM addresses ORDER BY id ASC`); err != nil {
		return nil, err
	}
	return addrs, nil
}

func (q *queries) UpdateAddress(ctx context.Context, addr *models.Address) error {
	_, err := q.exec(ctx,
		`UPDATE addresses SET street_addr = ?, city = ?, region = ?, zip = ?, country = ? WHERE id = ?`,
		addr.StreetAddr, addr.City, addr.Region, addr.Zip, addr.Country, addr.ID)
	return err
}

func (q *queries) DeleteAddress(ctx context.Context, id int64) error {
	_, err := q.exec(ctx, `DELETE FROM addresses WHERE id = ?`, id)
	return err
}
