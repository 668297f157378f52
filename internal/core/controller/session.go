package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/usermgmt/admin-console/internal/core/domain"
	"github.com/usermgmt/admin-console/internal/core/ports"
)

// entryRoute is where the login and register views send the user on init.
func entryRoute(ctx context.Context, session ports.SessionService, anonymous string) string {
	if session.IsSessionValid(ctx) {
		return domain.RouteManagement
	}
	return anonymous
}

// LoginController backs the login view.
type LoginController struct {
	notifier
	session ports.SessionService
	scope   *Scope

	mu      sync.Mutex
	loading bool
}

func NewLoginController(session ports.SessionService, n ports.Notifier, log zerolog.Logger) *LoginController {
	return &LoginController{
		notifier: notifier{fallback: n, log: log},
		session:  session,
		scope:    NewScope(),
	}
}

// Init returns the route to show: the management view when the session is
// still valid, the login view otherwise.
func (c *LoginController) Init(ctx context.Context) string {
	return entryRoute(ctx, c.session, domain.RouteLogin)
}

// Login authenticates and returns the management route on success. Failures
// are reported as an error notification and returned.
func (c *LoginController) Login(ctx context.Context, creds domain.Credentials) (string, *domain.User, error) {
	ctx, done := c.scope.Track(ctx)
	defer done()

	c.setLoading(true)
	defer c.setLoading(false)

	_, user, err := c.session.Login(ctx, creds)
	if err != nil {
		c.fail(ctx, "login", err)
		return "", nil, err
	}
	return domain.RouteManagement, user, nil
}

func (c *LoginController) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *LoginController) setLoading(v bool) {
	c.mu.Lock()
	c.loading = v
	c.mu.Unlock()
}

// Close cancels in-flight calls and waits for them.
func (c *LoginController) Close() {
	c.scope.Close()
}

// RegisterController backs the registration view.
type RegisterController struct {
	notifier
	session ports.SessionService
	scope   *Scope

	mu      sync.Mutex
	loading bool
}

func NewRegisterController(session ports.SessionService, n ports.Notifier, log zerolog.Logger) *RegisterController {
	return &RegisterController{
		notifier: notifier{fallback: n, log: log},
		session:  session,
		scope:    NewScope(),
	}
}

func (c *RegisterController) Init(ctx context.Context) string {
	return entryRoute(ctx, c.session, domain.RouteRegister)
}

// Register creates the account. The backend mails the password, so the
// session stays anonymous.
func (c *RegisterController) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	ctx, done := c.scope.Track(ctx)
	defer done()

	c.setLoading(true)
	defer c.setLoading(false)

	user, err := c.session.Register(ctx, reg)
	if err != nil {
		c.fail(ctx, "register", err)
		return nil, err
	}

	c.success(ctx, fmt.Sprintf(
		"A new account was created for %s. Please check your email for password to log in.", user.FirstName))
	return user, nil
}

func (c *RegisterController) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *RegisterController) setLoading(v bool) {
	c.mu.Lock()
	c.loading = v
	c.mu.Unlock()
}

func (c *RegisterController) Close() {
	c.scope.Close()
}
