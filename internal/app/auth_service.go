package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"globent-quiz-service/internal/auth"
	"globent-quiz-service/internal/domain"
)

// UserStore is the credential store. Create must report duplicates as
// domain.ErrEmailTaken or domain.ErrUsernameTaken.
type UserStore interface {
	Create(ctx context.Context, user domain.User) error
	ByID(ctx context.Context, id string) (domain.User, error)
	ByEmail(ctx context.Context, email string) (domain.User, error)
}

// TokenIssuer signs session tokens for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// Credentials is what signup and login hand back to the client.
type Credentials struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type AuthService struct {
	users  UserStore
	tokens TokenIssuer
	now    func() time.Time
	log    *slog.Logger
}

func NewAuthService(users UserStore, tokens TokenIssuer, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{users: users, tokens: tokens, now: time.Now, log: log}
}

func (s *AuthService) Signup(ctx context.Context, username, email, password string) (Credentials, error) {
	req, err := domain.ValidateSignup(username, email, password)
	if err != nil {
		return Credentials{}, err
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return Credentials{}, err
	}
	user := domain.User{
		ID:           domain.NewID(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			return Credentials{}, domain.NewValidationError("email", domain.ErrEmailTaken.Error())
		case errors.Is(err, domain.ErrUsernameTaken):
			return Credentials{}, domain.NewValidationError("username", domain.ErrUsernameTaken.Error())
		}
		return Credentials{}, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("user signed up", "user_id", user.ID)
	return s.credentials(user)
}

// Login answers an unknown email and a wrong password the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (Credentials, error) {
	email, err := domain.ValidateLogin(email, password)
	if err != nil {
		return Credentials{}, err
	}

	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return Credentials{}, domain.ErrInvalidCredentials
		}
		return Credentials{}, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return Credentials{}, domain.ErrInvalidCredentials
	}
	return s.credentials(user)
}

func (s *AuthService) credentials(user domain.User) (Credentials, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{Token: token, Username: user.Username, Email: user.Email}, nil
}
