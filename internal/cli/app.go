package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/usermgmt/admin-console/internal/core/controller"
	"github.com/usermgmt/admin-console/internal/core/ports"
	"github.com/usermgmt/admin-console/internal/core/service"
	"github.com/usermgmt/admin-console/internal/infrastructure/backend"
	"github.com/usermgmt/admin-console/internal/infrastructure/config"
	"github.com/usermgmt/admin-console/pkg/logger"
)

// App is the wired console: one session context shared by the backend
// client and every controller.
type App struct {
	Config *config.Config
	Log    zerolog.Logger
	Store  *Store

	Session   *service.SessionService
	Directory *service.DirectoryService

	Login    *controller.LoginController
	Register *controller.RegisterController
	Users    *controller.UserController
}

// NewApp opens the configured store and wires the services and controllers.
// Notifications nobody collects per call go to n.
func NewApp(ctx context.Context, cfg *config.Config, n ports.Notifier) (*App, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	log := logger.Component("console")
	cache := service.NewLocalCache(store)

	// The client authenticates through the session, which itself needs the
	// client; the token source closes over the session assigned below.
	var session *service.SessionService
	tokens := ports.TokenSourceFunc(func(ctx context.Context) (string, error) {
		return session.CurrentToken(ctx)
	})

	client, err := backend.NewClient(backend.Config{
		BaseURL:     cfg.API.URL,
		Timeout:     cfg.API.Timeout,
		TokenHeader: cfg.API.TokenHeader,
	}, tokens, logger.Component("backend"))
	if err != nil {
		_ = store.Close(ctx)
		return nil, err
	}

	session = service.NewSessionService(client, cache, service.NewJWTDecoder(), logger.Component("session"))
	directory := service.NewDirectoryService(client, cache, logger.Component("directory"))

	return &App{
		Config:    cfg,
		Log:       log,
		Store:     store,
		Session:   session,
		Directory: directory,
		Login:     controller.NewLoginController(session, n, log),
		Register:  controller.NewRegisterController(session, n, log),
		Users:     controller.NewUserController(session, directory, n, log),
	}, nil
}

// Close cancels in-flight controller calls, then releases the store.
func (a *App) Close(ctx context.Context) error {
	a.Login.Close()
	a.Register.Close()
	a.Users.Close()

	if err := a.Store.Close(ctx); err != nil {
		return fmt.Errorf("close %s store: %w", a.Store.Driver, err)
	}
	return nil
}
