package middleware

import (
	"github.com/Ramsey-B/kitchin/pkg/context"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// HeaderClientID identifies the replica issuing a request.
const HeaderClientID = "X-Client-ID"

// Context stores the request info on the request context and echoes the request id back.
func Context() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			info := context.RequestInfo{
				RequestID: req.Header.Get(echo.HeaderXRequestID),
				Method:    req.Method,
				Route:     c.Path(),
				RemoteIP:  c.RealIP(),
				ClientID:  req.Header.Get(HeaderClientID),
			}
			if info.RequestID == "" {
				info.RequestID = uuid.New().String()
			}
			if info.Route == "" {
				info.Route = req.URL.Path
			}
			c.Response().Header().Set(echo.HeaderXRequestID, info.RequestID)

			c.SetRequest(req.WithContext(context.WithRequestInfo(req.Context(), info)))
			return next(c)
		}
	}
}
