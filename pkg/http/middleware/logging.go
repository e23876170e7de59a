package middleware

import (
	"time"

	applogger "SentimentOracle/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs HTTP requests.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			fields := []applogger.Field{
				applogger.String("method", req.Method),
				applogger.String("uri", req.RequestURI),
				applogger.String("remote_ip", c.RealIP()),
				applogger.Int("status", res.Status),
				applogger.Duration("latency_ms", time.Since(start)),
			}
			if err != nil {
				fields = append(fields, applogger.Error(err))
				l.Warn("http request", fields...)
				return nil
			}
			l.Debug("http request", fields...)
			return nil
		}
	}
}
