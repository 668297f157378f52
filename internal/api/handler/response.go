package handler

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/usermgmt/admin-console/internal/api/metrics"
	"github.com/usermgmt/admin-console/internal/core/controller"
	"github.com/usermgmt/admin-console/internal/core/domain"
)

// maxImageSize bounds profile image uploads.
const maxImageSize = 10 << 20

// Response is the envelope of every console API answer.
type Response struct {
	Route         string                `json:"route,omitempty"`
	Data          any                   `json:"data,omitempty"`
	Notifications []domain.Notification `json:"notifications"`
}

// Failure carries a failed call's error together with the notifications it
// produced. The HTTP error handler renders it.
type Failure struct {
	Err           error
	Route         string
	Notifications []domain.Notification
}

func (f *Failure) Error() string { return f.Err.Error() }

func (f *Failure) Unwrap() error { return f.Err }

// StatusCode is the HTTP status the failure is rendered with.
func (f *Failure) StatusCode() int { return StatusOf(f.Err) }

// StatusOf maps a console error to an HTTP status. Backend failures keep the
// upstream status when it is an error status; transport and protocol
// failures are a bad gateway.
func StatusOf(err error) int {
	var e *domain.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case domain.KindValidation:
		return http.StatusUnprocessableEntity
	case domain.KindBackend:
		if e.Status >= 400 && e.Status < 600 {
			return e.Status
		}
		return http.StatusBadGateway
	case domain.KindNetwork, domain.KindMissingToken, domain.KindMissingUser:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// call is the per-request notification sink handed to the controllers.
type call struct {
	ctx   context.Context
	notes *controller.Collector
}

func newCall(c echo.Context) call {
	notes := &controller.Collector{}
	ctx := controller.WithNotifier(c.Request().Context(), metrics.CountNotifications(notes))
	return call{ctx: ctx, notes: notes}
}

func (k call) ok(c echo.Context, status int, route string, data any) error {
	return c.JSON(status, Response{Route: route, Data: data, Notifications: k.notes.Notifications()})
}

func (k call) fail(err error) error {
	return &Failure{Err: err, Notifications: k.notes.Notifications()}
}

// invalid reports a request rejected before any controller ran.
func invalid(err error) error {
	verr := domain.NewValidationError(err.Error())
	return &Failure{Err: verr, Notifications: []domain.Notification{domain.ErrorNotification(verr)}}
}

func bindAndValidate(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(v); err != nil {
		return invalid(err)
	}
	return nil
}

func formBool(s string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(s))
	return b
}

func formRole(s string) domain.Role {
	if r, ok := domain.ParseRole(s); ok {
		return r
	}
	return domain.Role(s)
}

// formImage reads an optional file field. A missing field yields nil.
func formImage(c echo.Context, field string) (*domain.ImageFile, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return readImage(fh)
}

func readImage(fh *multipart.FileHeader) (*domain.ImageFile, error) {
	if fh.Size > maxImageSize {
		return nil, errors.New("profile image exceeds 10 MiB")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxImageSize))
	if err != nil {
		return nil, err
	}
	return &domain.ImageFile{Name: fh.Filename, Content: content}, nil
}
