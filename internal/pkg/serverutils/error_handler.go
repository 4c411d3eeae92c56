package serverutils

import (
	"errors"

	"deepseek-chat-be/internal/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// NewErrorHandler turns every error returned by a handler into the failure
// envelope with a non-2xx status.
func NewErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"
		detail := ""

		var appErr *AppError
		var fiberErr *fiber.Error
		var validationErrs validator.ValidationErrors

		switch {
		case errors.As(err, &appErr):
			code = appErr.Code
			message = appErr.Message
			if appErr.Err != nil {
				detail = appErr.Err.Error()
			}
		case errors.As(err, &validationErrs):
			code = fiber.StatusBadRequest
			message = describeValidation(validationErrs)
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
			message = fiberErr.Message
		default:
			detail = err.Error()
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("HTTP", message, map[string]interface{}{
				"error":  err,
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"status": code,
			})
		}

		res := ErrorResponse(code, message)
		res.Error = detail
		return ctx.Status(code).JSON(res)
	}
}
