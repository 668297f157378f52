package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/usermgmt/admin-console/internal/core/domain"
	"github.com/usermgmt/admin-console/internal/core/ports"
)

// MsgForbidden is shown when the cached user's role does not allow a route.
const MsgForbidden = "You do not have enough permission to perform this action"

// RBAC enforces role-based access control against the role of the user
// cached at login. Mount it after RequireSession.
func RBAC(session ports.SessionService, allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := session.UserFromCache(c.Request().Context())
			if err != nil {
				return err
			}
			if user == nil {
				return echo.NewHTTPError(http.StatusForbidden, MsgForbidden)
			}
			if _, ok := allowed[user.Role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, MsgForbidden)
			}
			return next(c)
		}
	}
}

// RequireAdmin allows ADMIN and SUPER_ADMIN.
func RequireAdmin(session ports.SessionService) echo.MiddlewareFunc {
	return RBAC(session, domain.RoleAdmin, domain.RoleSuperAdmin)
}
