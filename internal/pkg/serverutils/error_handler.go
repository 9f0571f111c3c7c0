// FILE: internal/pkg/serverutils/error_handler.go
package serverutils

import (
	"errors"
	"strings"

	"medivault-be/pkg/search"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler maps service errors to HTTP statuses. Corpus retrieval
// failures are the one retryable condition and answer 503; everything the
// caller can fix answers 4xx.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(validationErr.Message))
	}

	var corpusErr *search.CorpusError
	if errors.As(err, &corpusErr) {
		ctx.Set("Retry-After", "5")
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse("document corpus is temporarily unavailable"))
	}

	if strings.Contains(err.Error(), "not found or access denied") {
		return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(err.Error()))
	}

	return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("Internal server error"))
}

func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return ErrorHandler(ctx, err)
	}
}
