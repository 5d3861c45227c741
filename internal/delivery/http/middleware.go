package http

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const (
	requestIDKey = "requestid"
	loggerKey    = "logger"
)

// RequestLogger stores a request-scoped logger in locals and emits one line
// per request, with severity driven by the final status.
func RequestLogger(base zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		reqLog := base.With().Logger()
		if id, ok := c.Locals(requestIDKey).(string); ok && id != "" {
			reqLog = base.With().Str("request_id", id).Logger()
		}
		c.Locals(loggerKey, &reqLog)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		var e *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			e = reqLog.Error()
		case status >= fiber.StatusBadRequest:
			e = reqLog.Warn()
		default:
			e = reqLog.Info()
		}

		e.
			Dur("latency", time.Since(start)).
			Int("status", status).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("ip", c.IP()).
			Str("user_agent", c.Get(fiber.HeaderUserAgent)).
			Msg("API")

		return err
	}
}

// RestrictOrigin only lets requests through whose Origin, or failing that
// Referer, belongs to one of allowed. An empty list disables the check.
func RestrictOrigin(allowed []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(allowed) == 0 {
			return c.Next()
		}

		source := c.Get(fiber.HeaderOrigin)
		if source == "" {
			source = c.Get(fiber.HeaderReferer)
		}

		for _, origin := range allowed {
			if source == origin || strings.HasPrefix(source, origin+"/") {
				return c.Next()
			}
		}

		return fiber.NewError(fiber.StatusForbidden, "Forbidden")
	}
}
