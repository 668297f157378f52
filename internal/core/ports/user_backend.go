package ports

import (
	"context"

	"github.com/usermgmt/admin-console/internal/core/domain"
)

// LoginResponse is the raw outcome of a login call. Token is read from the
// response header and User from the body; either may be missing.
type LoginResponse struct {
	Token string
	User  *domain.User
}

// ProgressFunc receives the number of request bytes sent so far and the
// total body size (-1 when unknown).
type ProgressFunc func(loaded, total int64)

// UserBackend is the user-management REST API as seen by the console.
type UserBackend interface {
	Login(ctx context.Context, creds domain.Credentials) (LoginResponse, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	AddUser(ctx context.Context, form domain.UserForm) (*domain.User, error)
	UpdateUser(ctx context.Context, form domain.UserForm) (*domain.User, error)
	ResetPassword(ctx context.Context, email string) (domain.Ack, error)
	UpdateProfileImage(ctx context.Context, form domain.ProfileImageForm, progress ProgressFunc) (*domain.User, error)
	DeleteUser(ctx context.Context, username string) (domain.Ack, error)
}
