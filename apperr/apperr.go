// Package apperr carries the error taxonomy shared by the store and
// moderation services. Handlers map kinds to HTTP statuses; everything else
// just wraps and propagates.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindAuthorization
	KindConflict
	KindSpamBlocked
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	case KindSpamBlocked:
		return "spam_blocked"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind    Kind
	Message string
	// SpamReason is set on spam_blocked errors so callers can surface why
	// the submitter is suspended.
	SpamReason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Authorizationf(format string, args ...any) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func SpamBlocked(reason string) *Error {
	return &Error{
		Kind:       KindSpamBlocked,
		Message:    "submitter is suspended for spam",
		SpamReason: reason,
	}
}

// KindOf extracts the kind from anywhere in the wrap chain; KindUnknown for
// plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// HTTPStatus maps an error to the status the handlers respond with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthorization:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindSpamBlocked:
		return http.StatusLocked
	default:
		return http.StatusInternalServerError
	}
}
