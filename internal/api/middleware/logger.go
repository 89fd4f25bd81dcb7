// Package middleware holds fiber middleware shared by the local gateway
package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader carries the id assigned to each proxied request
const RequestIDHeader = "X-Request-Id"

// Logger returns a middleware that logs HTTP requests
func Logger(log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Continue chain
		err := c.Next()

		latency := time.Since(start)
		entry := log.WithFields(logrus.Fields{
			"status":    c.Response().StatusCode(),
			"latency":   latency.String(),
			"ip":        c.IP(),
			"method":    c.Method(),
			"path":      c.Path(),
			"requestId": string(c.Response().Header.Peek(RequestIDHeader)),
		})
		if err != nil {
			entry.WithError(err).Warn("Request failed")
			return err
		}
		entry.Info("Request")
		return nil
	}
}
