package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler writes every error as a plain text body. Handlers decide the
// status and message via fiber.NewError; anything else is an opaque 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(code).SendString(message)
}
