package ports

import (
	"context"

	"github.com/usermgmt/admin-console/internal/core/domain"
)

// SessionService owns the token lifecycle and the login/register/logout flows.
type SessionService interface {
	Login(ctx context.Context, creds domain.Credentials) (string, *domain.User, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.User, error)
	Logout(ctx context.Context)
	IsSessionValid(ctx context.Context) bool

	SaveToken(ctx context.Context, token string) error
	LoadToken(ctx context.Context) error
	Token() string
	LoggedInUsername() string

	AddUserToCache(ctx context.Context, user domain.User) error
	UserFromCache(ctx context.Context) (*domain.User, error)
}

// TokenSource yields the current bearer token, reloading it from the store.
type TokenSource interface {
	CurrentToken(ctx context.Context) (string, error)
}

// TokenDecoder decodes a token payload without verifying its signature.
type TokenDecoder interface {
	Decode(token string) (domain.Claims, error)
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func(ctx context.Context) (string, error)

func (f TokenSourceFunc) CurrentToken(ctx context.Context) (string, error) {
	return f(ctx)
}
