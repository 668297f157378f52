package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/usermgmt/admin-console/internal/api/metrics"
	"github.com/usermgmt/admin-console/internal/core/controller"
	"github.com/usermgmt/admin-console/internal/core/domain"
	"github.com/usermgmt/admin-console/internal/core/ports"
)

type SessionHandler struct {
	session  ports.SessionService
	login    *controller.LoginController
	register *controller.RegisterController
	users    *controller.UserController
}

func NewSessionHandler(
	session ports.SessionService,
	login *controller.LoginController,
	register *controller.RegisterController,
	users *controller.UserController,
) *SessionHandler {
	return &SessionHandler{session: session, login: login, register: register, users: users}
}

type sessionStatus struct {
	Authenticated bool         `json:"authenticated"`
	Username      string       `json:"username,omitempty"`
	User          *domain.User `json:"user,omitempty"`
}

// Status reports whether the stored session is still usable.
//
// @Summary      Session status
// @Tags         session
// @Produce      json
// @Success      200  {object}  Response{data=sessionStatus}
// @Router       /api/session [get]
func (h *SessionHandler) Status(c echo.Context) error {
	k := newCall(c)

	route := h.login.Init(k.ctx)
	status := sessionStatus{Authenticated: route == domain.RouteManagement}
	metrics.ObserveSessionCheck(status.Authenticated)

	if status.Authenticated {
		status.Username = h.session.LoggedInUsername()
		user, err := h.session.UserFromCache(k.ctx)
		if err != nil {
			return k.fail(err)
		}
		status.User = user
	}
	return k.ok(c, http.StatusOK, route, status)
}

// Login authenticates against the backend and stores the session.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      domain.Credentials  true  "Login credentials"
// @Success      200   {object}  Response{data=domain.User}
// @Failure      401   {object}  Response
// @Failure      422   {object}  Response
// @Failure      502   {object}  Response
// @Router       /api/session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var creds domain.Credentials
	if err := bindAndValidate(c, &creds); err != nil {
		return err
	}

	k := newCall(c)
	route, user, err := h.login.Login(k.ctx, creds)
	if err != nil {
		return k.fail(err)
	}
	return k.ok(c, http.StatusOK, route, user)
}

// Register creates an account; the backend mails the password.
//
// @Summary      Register
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      domain.Registration  true  "New account"
// @Success      201   {object}  Response{data=domain.User}
// @Failure      400   {object}  Response
// @Failure      422   {object}  Response
// @Router       /api/session/register [post]
func (h *SessionHandler) Register(c echo.Context) error {
	var reg domain.Registration
	if err := bindAndValidate(c, &reg); err != nil {
		return err
	}

	k := newCall(c)
	user, err := h.register.Register(k.ctx, reg)
	if err != nil {
		return k.fail(err)
	}
	return k.ok(c, http.StatusCreated, domain.RouteLogin, user)
}

// Logout clears the stored session. It never fails.
//
// @Summary      Logout
// @Tags         session
// @Produce      json
// @Success      200  {object}  Response
// @Router       /api/session/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	k := newCall(c)
	route := h.users.Logout(k.ctx)
	return k.ok(c, http.StatusOK, route, nil)
}
