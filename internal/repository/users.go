package repository

import (
	"context"

	"github.com/rongwang/book-exchange-server/internal/models"
)

const userColumns = `id, username, user_group, address_id`

// User repository methods
func (q *queries) CreateUser(ctx context.Context, user *models.User) error {
	id, err := q.insert(ctx,
		`INSERT INTO users (username, user_group, address_id) VALUES (?, ?, ?) RETURNING id`,
		user.Username, user.Group, user.AddressID)
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

func (q *queries) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	found, err := q.getOne(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

// LockUser reads the user and, on Postgres, holds its row lock until the
// surrounding transaction ends. Library and wishlist mutations take this
// lock so that per-user check-then-insert sequences serialize.
func (q *queries) LockUser(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	if q.isPostgres() {
		query += ` FOR UPDATE`
	}

	var user models.User
	found, err := q.getOne(ctx, &user, query, id)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

func (q *queries) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	found, err := q.getOne(ctx, &user, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

func (q *queries) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := q.selectAll(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (q *queries) UpdateUser(ctx context.Context, user *models.User) error {
	_, err := q.exec(ctx,
		`UPDATE users SET username = ?, user_group = ?, address_id = ? WHERE id = ?`,
		user.Username, user.Group, user.AddressID, user.ID)
	return err
}

func (q *queries) DeleteUser(ctx context.Context, id int64) error {
	_, err := q.exec(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

// ClearAddressReferences detaches every user from the address
func (q *queries) ClearAddressReferences(ctx context.Context, addressID int64) (int64, error) {
	return q.exec(ctx, `UPDATE users SET address_id = NULL WHERE address_id = ?`, addressID)
}
