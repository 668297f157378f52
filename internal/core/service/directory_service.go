package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/usermgmt/admin-console/internal/core/domain"
	"github.com/usermgmt/admin-console/internal/core/ports"
	"github.com/usermgmt/admin-console/internal/pkg/validation"
)

// uploadEventBuffer holds every distinct percentage (0..100) plus the final
// response, so the upload goroutine never blocks on a slow reader.
const uploadEventBuffer = 102

// DirectoryService talks to the user endpoints and keeps the directory
// snapshot. The snapshot is a strict cache: it is replaced wholesale after
// each successful list and never merged.
type DirectoryService struct {
	backend ports.UserBackend
	cache   *LocalCache
	log     zerolog.Logger
}

func NewDirectoryService(backend ports.UserBackend, cache *LocalCache, log zerolog.Logger) *DirectoryService {
	return &DirectoryService{backend: backend, cache: cache, log: log}
}

var _ ports.DirectoryService = (*DirectoryService)(nil)

// List fetches every user and replaces the snapshot with the result.
// Overlapping calls are not ordered: the last response to arrive wins.
func (s *DirectoryService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.backend.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	if err := s.CacheSnapshot(ctx, users); err != nil {
		s.log.Warn().Err(err).Int("count", len(users)).Msg("failed to cache user snapshot")
	}
	return users, nil
}

func (s *DirectoryService) Create(ctx context.Context, form domain.UserForm) (*domain.User, error) {
	if err := validation.Struct(form); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	user, err := s.backend.AddUser(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info().Str("username", form.Username).Msg("user created")
	return user, nil
}

// Update addresses the record by form.CurrentUsername.
func (s *DirectoryService) Update(ctx context.Context, form domain.UserForm) (*domain.User, error) {
	if err := validation.Struct(form); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if err := validation.Var("currentusername", form.CurrentUsername, "required"); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	user, err := s.backend.UpdateUser(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.log.Info().Str("username", form.CurrentUsername).Msg("user updated")
	return user, nil
}

func (s *DirectoryService) Delete(ctx context.Context, username string) (domain.Ack, error) {
	if err := validation.Var("username", username, "required"); err != nil {
		return domain.Ack{}, domain.NewValidationError(err.Error())
	}

	ack, err := s.backend.DeleteUser(ctx, username)
	if err != nil {
		return domain.Ack{}, fmt.Errorf("delete user: %w", err)
	}
	s.log.Info().Str("username", username).Msg("user deleted")
	return ack, nil
}

func (s *DirectoryService) ResetPassword(ctx context.Context, email string) (domain.Ack, error) {
	if err := validation.Var("email", email, "required,email"); err != nil {
		return domain.Ack{}, domain.NewValidationError(err.Error())
	}

	ack, err := s.backend.ResetPassword(ctx, email)
	if err != nil {
		return domain.Ack{}, fmt.Errorf("reset password: %w", err)
	}
	return ack, nil
}

// UploadProfileImage streams the upload as events: non-decreasing progress
// percentages followed by exactly one response event. The channel is closed
// after the response.
func (s *DirectoryService) UploadProfileImage(ctx context.Context, form domain.ProfileImageForm) <-chan domain.UploadEvent {
	events := make(chan domain.UploadEvent, uploadEventBuffer)

	go func() {
		defer close(events)

		if err := validation.Struct(form); err != nil {
			events <- domain.UploadEvent{Type: domain.UploadResponse, Err: domain.NewValidationError(err.Error())}
			return
		}

		last := -1
		user, err := s.backend.UpdateProfileImage(ctx, form, func(loaded, total int64) {
			pct := domain.ProgressPercent(loaded, total)
			if pct <= last {
				return
			}
			last = pct
			events <- domain.UploadEvent{Type: domain.UploadProgress, Percent: pct}
		})
		if err != nil {
			events <- domain.UploadEvent{Type: domain.UploadResponse, Err: fmt.Errorf("upload profile image: %w", err)}
			return
		}

		s.log.Info().Str("username", form.Username).Msg("profile image updated")
		events <- domain.UploadEvent{Type: domain.UploadResponse, User: user}
	}()

	return events
}

// CacheSnapshot replaces the cached directory with users.
func (s *DirectoryService) CacheSnapshot(ctx context.Context, users []domain.User) error {
	return s.cache.SetUsers(ctx, users)
}

func (s *DirectoryService) ReadSnapshot(ctx context.Context) ([]domain.User, error) {
	return s.cache.Users(ctx)
}

// Search filters the snapshot on first name, last name, username, email and
// userId, case-insensitively. An empty term, or a term matching nobody,
// yields the whole snapshot so the directory view never collapses to empty.
func (s *DirectoryService) Search(ctx context.Context, term string) ([]domain.User, error) {
	users, err := s.ReadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	if term == "" {
		return users, nil
	}

	needle := strings.ToLower(term)
	var results []domain.User
	for _, u := range users {
		if u.Matches(needle) {
			results = append(results, u)
		}
	}
	if len(results) == 0 {
		return users, nil
	}
	return results, nil
}
