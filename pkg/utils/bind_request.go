package utils

import (
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"
)

// BindRequest decodes the request body into T and validates it. Path ids are parsed by
// the handlers themselves.
func BindRequest[T any](c echo.Context) (T, error) {
	var req T

	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return req, httperror.NewHTTPError(http.StatusBadRequest, bodyErrorMessage(err))
	}

	req, err := Validate(req)
	if err != nil {
		return req, httperror.WrapError(http.StatusBadRequest, err)
	}

	return req, nil
}

func bodyErrorMessage(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code == http.StatusUnsupportedMediaType {
			return "request body must be JSON"
		}
		if msg, ok := he.Message.(string); ok && msg != "" {
			return "invalid request body: " + msg
		}
	}
	return "invalid request body"
}
