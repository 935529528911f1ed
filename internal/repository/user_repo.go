package repository

import (
	"context"
	"errors"

	"choresbot/internal/domain"

	"github.com/jackc/pgx/v5"
)

// UserRepository stores registered bot members keyed by Telegram id.
type UserRepository struct {
	db Querier
}

func NewUserRepository(db Querier) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Get(ctx context.Context, id int64) (*domain.User, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT id, first_name, last_name, username, is_bot, role
		 FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByFirstName(ctx context.Context, firstName string) (*domain.User, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT id, first_name, last_name, username, is_bot, role
		 FROM users WHERE first_name = $1 LIMIT 1`, firstName))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT id, first_name, last_name, username, is_bot, role
		 FROM users WHERE username = $1`, username))
}

func (r *UserRepository) Add(ctx context.Context, u *domain.User) (*domain.User, error) {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, first_name, last_name, username, is_bot, role)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.FirstName, u.LastName, u.Username, u.IsBot, u.Role,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, first_name, last_name, username, is_bot, role
		 FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.IsBot, &u.Role); err != nil {
			return nil, err
		}
		res = append(res, &u)
	}
	return res, rows.Err()
}

func (r *UserRepository) scanOne(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.IsBot, &u.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
