package serverutils

import (
	"errors"
	"strings"

	"finance-dashboard/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler turns a handler error into a response. API routes get the JSON
// envelope, pages get plain text.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	code := StatusOf(err)
	message := err.Error()
	if code == fiber.StatusInternalServerError {
		message = "internal server error"
	}

	if strings.HasPrefix(ctx.Path(), "/api") || strings.Contains(ctx.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON) {
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
	return ctx.Status(code).SendString(message)
}

// StatusOf maps an error to the HTTP status it should be reported with.
func StatusOf(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		if StatusOf(err) >= fiber.StatusInternalServerError {
			log.Error("HTTP", "Unhandled request error", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"error":  err.Error(),
			})
		}
		return ErrorHandler(ctx, err)
	}
}
