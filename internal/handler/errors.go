package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mercado-storefront/internal/service"
)

// writeError renders err as the API error body
// {"error": kind, "message": text, "code": status, "field": name}.
// Internal errors are logged with the route and answered with an opaque
// message.
func writeError(c echo.Context, err error) error {
	return writeErrorWith(c, err, nil)
}

// writeErrorWith is writeError plus extra top-level fields.
func writeErrorWith(c echo.Context, err error, extra echo.Map) error {
	var se *service.Error
	if !errors.As(err, &se) {
		se = &service.Error{Kind: service.KindInternal, Message: "unexpected error", Err: err}
	}

	status := se.Status()
	body := echo.Map{"error": string(se.Kind), "code": status}
	if se.Kind == service.KindInternal {
		log.Printf("%s %s: %v", c.Request().Method, c.Path(), err)
		body["message"] = "internal server error"
	} else {
		body["message"] = se.Message
		if se.Field != "" {
			body["field"] = se.Field
		}
	}
	for k, v := range extra {
		body[k] = v
	}
	return c.JSON(status, body)
}

// badRequest answers malformed bodies and path parameters.
func badRequest(c echo.Context, msg string) error {
	return writeError(c, &service.Error{Kind: service.KindInvalidInput, Message: msg})
}

func internalError(c echo.Context, what string, err error) error {
	return writeError(c, &service.Error{Kind: service.KindInternal, Message: what, Err: err})
}

// message is the body of simple acknowledgements.
func message(c echo.Context, text string) error {
	return c.JSON(http.StatusOK, echo.Map{"message": text})
}
