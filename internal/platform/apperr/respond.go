package apperr

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// Payload is the wire shape of a caller-facing failure.
type Payload struct {
	Code    Code              `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// LocaleFromRequest picks the response locale from the Accept-Language header.
// Anything that is not Hindi falls back to English.
func LocaleFromRequest(c echo.Context) Locale {
	lang := c.Request().Header.Get("Accept-Language")
	if strings.HasPrefix(strings.ToLower(lang), "hi") {
		return LocaleHI
	}
	return LocaleEN
}

// JSON writes err as a JSON error response with the mapped HTTP status.
// Errors outside the taxonomy become an opaque 500 without leaking internals.
func JSON(c echo.Context, err error) error {
	var e *Error
	if !As(err, &e) {
		return c.JSON(HTTPStatus(err), Payload{
			Code:    "INTERNAL",
			Message: "internal server error",
		})
	}
	return c.JSON(HTTPStatus(e), Payload{
		Code:    e.Code,
		Message: e.Message(LocaleFromRequest(c)),
		Details: e.Details,
	})
}
