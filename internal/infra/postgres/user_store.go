package postgres

import (
	"context"
	"errors"
	"fmt"

	"globent-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) Create(ctx context.Context, user domain.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.CreatedAt)
	switch {
	case err == nil:
		return nil
	case violates(err, "users_email_key"):
		return domain.ErrEmailTaken
	case violates(err, "users_username_key"):
		return domain.ErrUsernameTaken
	}
	return fmt.Errorf("insert user: %w", err)
}

func (s *UserStore) ByID(ctx context.Context, id string) (domain.User, error) {
	if !domain.ValidID(id) {
		return domain.User{}, domain.ErrUserNotFound
	}
	return s.find(ctx, `id = $1`, id)
}

func (s *UserStore) ByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.find(ctx, `email = $1`, email)
}

func (s *UserStore) find(ctx context.Context, where, arg string) (domain.User, error) {
	var u domain.User
	err := s.pool.QueryRow(ctx,
		`SELECT id::text, username, email, password_hash, created_at FROM users WHERE `+where, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}
