package auth

import (
	"context"
	"errors"
	"strings"

	"globent-quiz-service/internal/domain"
)

// UserLookup resolves a user by id; the credential stores implement it.
type UserLookup interface {
	ByID(ctx context.Context, id string) (domain.User, error)
}

// Gate authenticates bearer tokens and decides admin rights. The admin
// allow-list is fixed at construction.
type Gate struct {
	tokens *Tokens
	users  UserLookup
	admins map[string]struct{}
}

func NewGate(tokens *Tokens, users UserLookup, adminEmails []string) *Gate {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		if email = domain.NormalizeEmail(email); email != "" {
			admins[email] = struct{}{}
		}
	}
	return &Gate{tokens: tokens, users: users, admins: admins}
}

// Authenticate extracts the user id from an Authorization header value.
func (g *Gate) Authenticate(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInvalidToken
	}
	return g.tokens.Parse(strings.TrimSpace(token))
}

// IsAdmin re-reads the user's email so a changed allow-list or a deleted
// account takes effect without reissuing tokens.
func (g *Gate) IsAdmin(ctx context.Context, userID string) (bool, error) {
	user, err := g.users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, ErrInvalidToken
		}
		return false, err
	}
	_, ok := g.admins[domain.NormalizeEmail(user.Email)]
	return ok, nil
}
