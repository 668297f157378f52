package ports

import (
	"context"

	"github.com/usermgmt/admin-console/internal/core/domain"
)

// DirectoryService is the user directory: CRUD against the backend plus the
// locally cached snapshot of the last list.
type DirectoryService interface {
	List(ctx context.Context) ([]domain.User, error)
	Create(ctx context.Context, form domain.UserForm) (*domain.User, error)
	Update(ctx context.Context, form domain.UserForm) (*domain.User, error)
	Delete(ctx context.Context, username string) (domain.Ack, error)
	ResetPassword(ctx context.Context, email string) (domain.Ack, error)
	UploadProfileImage(ctx context.Context, form domain.ProfileImageForm) <-chan domain.UploadEvent

	CacheSnapshot(ctx context.Context, users []domain.User) error
	ReadSnapshot(ctx context.Context) ([]domain.User, error)
	Search(ctx context.Context, term string) ([]domain.User, error)
}
