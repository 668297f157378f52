package domain

import (
	"errors"
	"fmt"
)

// GenericErrorMessage is shown whenever a failure carries no server message.
const GenericErrorMessage = "AN ERROR OCCURRED. PLEASE TRY AGAIN"

// ErrorKind classifies every failure a console operation can return.
type ErrorKind string

const (
	KindNetwork      ErrorKind = "NETWORK_ERROR"
	KindBackend      ErrorKind = "BACKEND_ERROR"
	KindMissingToken ErrorKind = "MISSING_TOKEN"
	KindMissingUser  ErrorKind = "MISSING_USER"
	KindValidation   ErrorKind = "VALIDATION_ERROR"
)

// Error is the result of a failed console operation. Message is the text
// meant for the user (the server's message when there is one); Status is the
// backend HTTP status for KindBackend.
type Error struct {
	Kind    ErrorKind
	Message string
	Status  int
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrMissingToken)
// holds for every missing-token failure.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrMissingToken = &Error{Kind: KindMissingToken, Message: "login response carried no token"}
	ErrMissingUser  = &Error{Kind: KindMissingUser, Message: "login response carried no user"}
	ErrNetwork      = &Error{Kind: KindNetwork}
	ErrBackend      = &Error{Kind: KindBackend}
	ErrValidation   = &Error{Kind: KindValidation}
)

func NewNetworkError(cause error) *Error {
	return &Error{Kind: KindNetwork, Cause: cause}
}

func NewBackendError(status int, message string) *Error {
	return &Error{Kind: KindBackend, Status: status, Message: message}
}

func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// KindOf returns the kind of err, or "" when err is not a console error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// UserMessage returns the text to show for err: the carried message for
// backend and validation failures, GenericErrorMessage otherwise.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		switch e.Kind {
		case KindBackend, KindValidation:
			return e.Message
		}
	}
	return GenericErrorMessage
}
