package middleware

import (
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/kitchin/pkg/context"
	kitchinerrors "github.com/Ramsey-B/kitchin/pkg/errors"
	"github.com/Ramsey-B/kitchin/pkg/tracing"
	"github.com/labstack/echo/v4"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message   string         `json:"message"`
	RequestID string         `json:"request_id"`
	TraceID   string         `json:"trace_id"`
	Meta      map[string]any `json:"meta"`
}

// Error renders handler errors. Precondition failures keep their code and operation in
// meta; errors the handlers did not classify become an opaque 500.
func Error(logger ectologger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		ctx := c.Request().Context()
		code, body := resolveError(err)
		body.RequestID = context.GetRequestID(ctx)
		body.TraceID = tracing.GetTraceID(ctx)

		log := logger.WithContext(ctx).WithError(err).WithField("status", code)
		if code >= http.StatusInternalServerError {
			log.Error("Request failed")
		} else {
			log.Warn("Request rejected")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error) (int, ErrorResponse) {
	body := ErrorResponse{Message: http.StatusText(http.StatusInternalServerError), Meta: map[string]any{}}

	if precondition, ok := kitchinerrors.AsPreconditionError(err); ok {
		err = precondition.ToHTTPError()
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if msg, ok := echoErr.Message.(string); ok {
			body.Message = msg
		} else {
			body.Message = http.StatusText(echoErr.Code)
		}
		return echoErr.Code, body
	}

	if !httperror.IsHTTPError(err) {
		return http.StatusInternalServerError, body
	}

	he := httperror.ToHTTPError(err)
	body.Message = he.Error()
	if he.Meta != nil {
		body.Meta = he.Meta
	}
	return httperror.GetStatusCode(err), body
}
