package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/usermgmt/admin-console/internal/api/metrics"
	"github.com/usermgmt/admin-console/internal/core/domain"
	"github.com/usermgmt/admin-console/internal/core/ports"
)

// ContextUsername is the echo.Context key holding the logged-in username.
const ContextUsername = "username"

// RequireSession is the navigation guard: it lets the request through only
// while the stored session is valid. An invalid session is logged out and
// answered with 401.
func RequireSession(session ports.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			valid := session.IsSessionValid(c.Request().Context())
			metrics.ObserveSessionCheck(valid)
			if !valid {
				return echo.NewHTTPError(http.StatusUnauthorized, domain.MsgLoginRequired)
			}

			c.Set(ContextUsername, session.LoggedInUsername())
			return next(c)
		}
	}
}
