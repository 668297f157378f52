package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/usermgmt/admin-console/internal/api/docs"
	"github.com/usermgmt/admin-console/internal/api/handler"
	"github.com/usermgmt/admin-console/internal/api/metrics"
	"github.com/usermgmt/admin-console/internal/api/middleware"
	"github.com/usermgmt/admin-console/internal/core/controller"
	"github.com/usermgmt/admin-console/internal/core/ports"
)

// Deps are the wired components the router serves.
type Deps struct {
	Log      zerolog.Logger
	Session  ports.SessionService
	Login    *controller.LoginController
	Register *controller.RegisterController
	Users    *controller.UserController
	// Health lists the dependencies checked by the readiness probe, by name.
	Health map[string]handler.Pinger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(middleware.Metrics())

	// --- Health probes, metrics and docs (no session required) ---
	health := handler.NewHealthHandler(d.Health)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Session routes ---
	sessions := handler.NewSessionHandler(d.Session, d.Login, d.Register, d.Users)
	s := e.Group("/api/session")
	s.GET("", sessions.Status)
	s.POST("/login", sessions.Login)
	s.POST("/register", sessions.Register)
	s.POST("/logout", sessions.Logout)

	// --- User management (valid session required) ---
	users := handler.NewUsersHandler(d.Users)
	u := e.Group("/api/users", middleware.RequireSession(d.Session))
	u.GET("", users.List)
	u.POST("", users.Create)
	u.POST("/update", users.Update)
	u.POST("/reset-password/:email", users.ResetPassword)
	u.POST("/profile-image", users.ProfileImage)
	u.DELETE("/:username", users.Delete, middleware.RequireAdmin(d.Session))

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
