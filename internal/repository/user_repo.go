package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/steve2482/simspeedserver/internal/model"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, name, email, user_name, password_hash, created_at`

// Create inserts a new user. Returns ErrDuplicate when the email or
// user name is already taken.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, name, email, user_name, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		u.ID, u.Name, u.Email, u.UserName, u.PasswordHash).Scan(&u.CreatedAt)
	return mapErr(err)
}

// FindByID returns a user by primary key, without favorites.
func (r *UserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByUserName returns a user by login name, without favorites.
func (r *UserRepo) FindByUserName(ctx context.Context, userName string) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE user_name = $1`, userName)
}

// EmailTaken reports whether an account already uses the given email.
func (r *UserRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`, email).Scan(&taken)
	return taken, err
}

func (r *UserRepo) findOne(ctx context.Context, query string, arg any) (*model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.UserName, &u.PasswordHash, &u.CreatedAt,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}
