package middleware

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
)

// CharmLog logs every request through the charm logger.
func CharmLog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			log.Debug("ipc request",
				"method", req.Method,
				"uri", req.RequestURI,
				"status", c.Response().Status,
				"latency", time.Since(start),
			)
			return nil
		}
	}
}
