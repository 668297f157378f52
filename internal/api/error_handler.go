package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/usermgmt/admin-console/internal/api/handler"
	"github.com/usermgmt/admin-console/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error         string                `json:"error"`
	Route         string                `json:"route,omitempty"`
	Notifications []domain.Notification `json:"notifications"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps console errors to their HTTP status codes.
//   - Logs unexpected errors without leaking details to the client.
//   - Renders {"error", "route", "notifications"} for every failure.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if code == http.StatusUnauthorized && body.Route == "" {
			body.Route = domain.RouteLogin
		}
		if body.Notifications == nil {
			body.Notifications = []domain.Notification{}
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, guards, 404 from router).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := fmt.Sprintf("%v", he.Message)
		return he.Code, errorResponse{
			Error:         msg,
			Notifications: []domain.Notification{domain.NewNotification(domain.NotificationError, msg)},
		}
	}

	var f *handler.Failure
	if errors.As(err, &f) {
		code := f.StatusCode()
		if code >= http.StatusInternalServerError {
			logFailure(log, c, err, code)
		}
		return code, errorResponse{
			Error:         domain.UserMessage(f.Err),
			Route:         f.Route,
			Notifications: f.Notifications,
		}
	}

	if domain.KindOf(err) != "" {
		code := handler.StatusOf(err)
		if code >= http.StatusInternalServerError {
			logFailure(log, c, err, code)
		}
		return code, errorResponse{
			Error:         domain.UserMessage(err),
			Notifications: []domain.Notification{domain.ErrorNotification(err)},
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	logFailure(log, c, err, http.StatusInternalServerError)
	return http.StatusInternalServerError, errorResponse{
		Error:         domain.GenericErrorMessage,
		Notifications: []domain.Notification{domain.ErrorNotification(err)},
	}
}

func logFailure(log zerolog.Logger, c echo.Context, err error, code int) {
	log.Error().
		Err(err).
		Int("status", code).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("request failed")
}
