package middleware

import (
	"net/http"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/kitchin/pkg/context"
	"github.com/labstack/echo/v4"
)

// Logger writes one line per request. Server errors log at error level, client errors at
// warn, and health or metrics probes at debug.
func Logger(logger ectologger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			fields := context.RequestInfoFrom(req.Context()).Fields()
			fields["status"] = res.Status
			fields["duration_ms"] = time.Since(start).Milliseconds()
			fields["response_size"] = res.Size
			fields["user_agent"] = req.UserAgent()

			entry := logger.WithContext(req.Context()).WithFields(fields)
			switch {
			case res.Status >= http.StatusInternalServerError:
				entry.Errorf("%s %s", req.Method, req.URL.Path)
			case res.Status >= http.StatusBadRequest:
				entry.Warnf("%s %s", req.Method, req.URL.Path)
			case isProbe(c.Path()):
				entry.Debugf("%s %s", req.Method, req.URL.Path)
			default:
				entry.Infof("%s %s", req.Method, req.URL.Path)
			}
			return nil
		}
	}
}

func isProbe(route string) bool {
	switch route {
	case "/health", "/health/live", "/health/ready", "/metrics":
		return true
	}
	return false
}
