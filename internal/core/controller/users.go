package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/usermgmt/admin-console/internal/core/domain"
	"github.com/usermgmt/admin-console/internal/core/ports"
)

const defaultTitle = "Users"

// UserState is what the user-management view renders.
type UserState struct {
	Title          string
	Users          []domain.User
	Refreshing     bool
	SelectedUser   *domain.User
	Uploading      bool
	UploadProgress int
}

// UserController backs the user-management view.
type UserController struct {
	notifier
	session   ports.SessionService
	directory ports.DirectoryService
	scope     *Scope

	mu    sync.Mutex
	state UserState
}

func NewUserController(session ports.SessionService, directory ports.DirectoryService, n ports.Notifier, log zerolog.Logger) *UserController {
	return &UserController{
		notifier:  notifier{fallback: n, log: log},
		session:   session,
		directory: directory,
		scope:     NewScope(),
		state:     UserState{Title: defaultTitle},
	}
}

// State returns a snapshot of the view state.
func (c *UserController) State() UserState {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Users = append([]domain.User(nil), c.state.Users...)
	if c.state.SelectedUser != nil {
		u := *c.state.SelectedUser
		s.SelectedUser = &u
	}
	return s
}

// Init loads the directory and announces the count.
func (c *UserController) Init(ctx context.Context) error {
	_, err := c.GetUsers(ctx, true)
	return err
}

func (c *UserController) ChangeTitle(title string) {
	c.mu.Lock()
	c.state.Title = title
	c.mu.Unlock()
}

// GetUsers refreshes the directory from the backend.
func (c *UserController) GetUsers(ctx context.Context, showNotification bool) ([]domain.User, error) {
	ctx, done := c.scope.Track(ctx)
	defer done()

	c.update(func(s *UserState) { s.Refreshing = true })
	defer c.update(func(s *UserState) { s.Refreshing = false })

	users, err := c.directory.List(ctx)
	if err != nil {
		c.fail(ctx, "list users", err)
		return nil, err
	}

	c.update(func(s *UserState) { s.Users = users })
	if showNotification {
		c.success(ctx, fmt.Sprintf("%d user(s) loaded successfully.", len(users)))
	}
	return users, nil
}

// Search filters the cached snapshot; it never calls the backend.
func (c *UserController) Search(ctx context.Context, term string) ([]domain.User, error) {
	users, err := c.directory.Search(ctx, term)
	if err != nil {
		c.fail(ctx, "search users", err)
		return nil, err
	}
	c.update(func(s *UserState) { s.Users = users })
	return users, nil
}

// SelectUser marks the listed user with the given username as selected.
func (c *UserController) SelectUser(username string) (domain.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.state.Users {
		if c.state.Users[i].Username == username {
			u := c.state.Users[i]
			c.state.SelectedUser = &u
			return u, true
		}
	}
	return domain.User{}, false
}

func (c *UserController) AddUser(ctx context.Context, form domain.UserForm) (*domain.User, error) {
	ctx, done := c.scope.Track(ctx)
	defer done()

	user, err := c.directory.Create(ctx, form)
	if err != nil {
		c.fail(ctx, "add user", err)
		return nil, err
	}
	c.success(ctx, fmt.Sprintf("%s %s added successfully.", user.FirstName, user.LastName))
	c.refresh(ctx)
	return user, nil
}

// UpdateUser saves form over the record addressed by form.CurrentUsername,
// defaulting to the selected user.
func (c *UserController) UpdateUser(ctx context.Context, form domain.UserForm) (*domain.User, error) {
	ctx, done := c.scope.Track(ctx)
	defer done()

	if form.CurrentUsername == "" {
		c.mu.Lock()
		if c.state.SelectedUser != nil {
			form.CurrentUsername = c.state.SelectedUser.Username
		}
		c.mu.Unlock()
	}

	user, err := c.directory.Update(ctx, form)
	if err != nil {
		c.fail(ctx, "update user", err)
		return nil, err
	}
	c.update(func(s *UserState) { s.SelectedUser = nil })
	c.success(ctx, fmt.Sprintf("%s %s updated successfully.", user.FirstName, user.LastName))
	c.refresh(ctx)
	return user, nil
}

func (c *UserController) DeleteUser(ctx context.Context, username string) (domain.Ack, error) {
	ctx, done := c.scope.Track(ctx)
	defer done()

	ack, err := c.directory.Delete(ctx, username)
	if err != nil {
		c.fail(ctx, "delete user", err)
		return domain.Ack{}, err
	}
	c.success(ctx, ack.Message)
	c.refresh(ctx)
	return ack, nil
}

func (c *UserController) ResetPassword(ctx context.Context, email string) (domain.Ack, error) {
	ctx, done := c.scope.Track(ctx)
	defer done()

	ack, err := c.directory.ResetPassword(ctx, email)
	if err != nil {
		c.fail(ctx, "reset password", err)
		return domain.Ack{}, err
	}
	c.success(ctx, ack.Message)
	return ack, nil
}

// UpdateProfileImage uploads the image, tracking progress in the state, and
// refreshes the directory once the backend has answered.
func (c *UserController) UpdateProfileImage(ctx context.Context, form domain.ProfileImageForm) (*domain.User, error) {
	ctx, done := c.scope.Track(ctx)
	defer done()

	c.update(func(s *UserState) { s.Uploading, s.UploadProgress = true, 0 })
	defer c.update(func(s *UserState) { s.Uploading = false })

	var (
		user *domain.User
		err  error
	)
	for ev := range c.directory.UploadProfileImage(ctx, form) {
		switch ev.Type {
		case domain.UploadProgress:
			pct := ev.Percent
			c.update(func(s *UserState) { s.UploadProgress = pct })
		case domain.UploadResponse:
			user, err = ev.User, ev.Err
		}
	}
	if err == nil && user == nil {
		err = domain.ErrMissingUser
	}
	if err != nil {
		c.fail(ctx, "update profile image", err)
		return nil, err
	}

	c.update(func(s *UserState) { s.UploadProgress = 100 })
	c.success(ctx, fmt.Sprintf("%s's profile image updated successfully", user.Username))
	c.refresh(ctx)
	return user, nil
}

// Logout ends the session and returns the login route.
func (c *UserController) Logout(ctx context.Context) string {
	c.session.Logout(ctx)
	c.update(func(s *UserState) {
		*s = UserState{Title: defaultTitle}
	})
	c.success(ctx, "You've been successfully logged out")
	return domain.RouteLogin
}

func (c *UserController) Close() {
	c.scope.Close()
}

// refresh reloads the directory without announcing it.
func (c *UserController) refresh(ctx context.Context) {
	_, _ = c.GetUsers(ctx, false)
}

func (c *UserController) update(fn func(s *UserState)) {
	c.mu.Lock()
	fn(&c.state)
	c.mu.Unlock()
}
