// Package apperr defines the stable error taxonomy shared by every guard,
// engine, and service in the platform. Callers branch on Code, never on
// message text; messages exist only to be rendered verbatim to users.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error classification.
type Code string

const (
	CodeUnauthenticated      Code = "UNAUTHENTICATED"
	CodeNoActiveOrganization Code = "NO_ACTIVE_ORGANIZATION"
	CodeForbidden            Code = "FORBIDDEN"
	CodeNotFound             Code = "NOT_FOUND"
	CodeInvalidTransition    Code = "INVALID_TRANSITION"
	CodeValidation           Code = "VALIDATION"
)

// Locale identifies a supported message language.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleHI Locale = "hi"
)

// Error is a recoverable, caller-facing failure. Details carries structured
// diagnostics (e.g. current/target status on an invalid transition).
type Error struct {
	Code    Code
	Msg     map[Locale]string
	Details map[string]string
}

func (e *Error) Error() string {
	if m, ok := e.Msg[LocaleEN]; ok {
		return fmt.Sprintf("%s: %s", e.Code, m)
	}
	return string(e.Code)
}

// Message returns the localized message, falling back to English.
func (e *Error) Message(loc Locale) string {
	if m, ok := e.Msg[loc]; ok {
		return m
	}
	return e.Msg[LocaleEN]
}

// WithDetail returns a copy of the error carrying an extra detail field.
func (e *Error) WithDetail(key, value string) *Error {
	details := make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &Error{Code: e.Code, Msg: e.Msg, Details: details}
}

// New builds an Error with English and Hindi messages.
func New(code Code, en, hi string) *Error {
	return &Error{Code: code, Msg: map[Locale]string{LocaleEN: en, LocaleHI: hi}}
}

// Prebuilt failures for the common guard outcomes. Services return these
// directly; wrap with WithDetail when diagnostics help the caller.
var (
	ErrUnauthenticated = New(CodeUnauthenticated,
		"authentication required",
		"प्रमाणीकरण आवश्यक है")

	ErrNoActiveOrganization = New(CodeNoActiveOrganization,
		"no active organization for this account",
		"इस खाते के लिए कोई सक्रिय संगठन नहीं है")

	ErrForbidden = New(CodeForbidden,
		"you do not have permission to perform this action",
		"आपको यह कार्रवाई करने की अनुमति नहीं है")

	ErrSelfAction = New(CodeForbidden,
		"you cannot approve your own item",
		"आप अपने स्वयं के अनुरोध को स्वीकृत नहीं कर सकते")

	ErrInsufficientRole = New(CodeForbidden,
		"your role does not permit this action",
		"आपकी भूमिका इस कार्रवाई की अनुमति नहीं देती")

	ErrNotFound = New(CodeNotFound,
		"resource not found",
		"संसाधन नहीं मिला")
)

// InvalidTransition reports a status change not permitted by the resource's
// transition table, carrying both statuses for caller-side diagnostics.
func InvalidTransition(current, target string) *Error {
	return &Error{
		Code: CodeInvalidTransition,
		Msg: map[Locale]string{
			LocaleEN: fmt.Sprintf("cannot move from %q to %q", current, target),
			LocaleHI: fmt.Sprintf("%q से %q में परिवर्तन संभव नहीं है", current, target),
		},
		Details: map[string]string{
			"currentStatus": current,
			"targetStatus":  target,
		},
	}
}

// Validation reports malformed input.
func Validation(en, hi string) *Error {
	return New(CodeValidation, en, hi)
}

// As unwraps err into an *Error.
func As(err error, target **Error) bool {
	return errors.As(err, target)
}

// CodeOf extracts the Code from err, or "" when err is not an *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// HTTPStatus maps an error code to its HTTP status. Unknown errors map to 500.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeNoActiveOrganization, CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidTransition:
		return http.StatusConflict
	case CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
