package serverutils

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type ApiResponse[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) *ApiResponse[T] {
	return &ApiResponse[T]{
		Message: message,
		Data:    data,
	}
}

var validate = validator.New()

// ValidateRequest runs struct-tag validation and converts failures into a
// BAD_REQUEST ApiError.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		return BadRequest("validation failed: %s", err.Error())
	}
	return nil
}

// ErrorHandlerMiddleware maps ApiError values (and fiber errors) to JSON
// responses. Anything unrecognized becomes a 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var apiErr *ApiError
		if errors.As(err, &apiErr) {
			return ctx.Status(apiErr.Status).JSON(fiber.Map{
				"code":    apiErr.Code,
				"message": apiErr.Message,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(fiber.Map{
				"code":    "HTTP_ERROR",
				"message": fiberErr.Message,
			})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"code":    "INTERNAL_ERROR",
			"message": err.Error(),
		})
	}
}
