package serverutils

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes surfaced to callers. Every invalid transition yields a typed
// failure; there are no silent no-ops.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidState    = "INVALID_STATE"
	CodeAlreadyAnswered = "ALREADY_ANSWERED"
	CodeUpstreamFailure = "UPSTREAM_FAILURE"
	CodeCancelled       = "CANCELLED"
	CodeBadRequest      = "BAD_REQUEST"
)

// ApiError is the service-wide error type. Services return it; the error
// middleware maps it to an HTTP response.
type ApiError struct {
	Code    string `json:"code"`
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NotFound(format string, args ...interface{}) *ApiError {
	return &ApiError{Code: CodeNotFound, Status: fiber.StatusNotFound, Message: fmt.Sprintf(format, args...)}
}

func InvalidState(format string, args ...interface{}) *ApiError {
	return &ApiError{Code: CodeInvalidState, Status: fiber.StatusConflict, Message: fmt.Sprintf(format, args...)}
}

func AlreadyAnswered(format string, args ...interface{}) *ApiError {
	return &ApiError{Code: CodeAlreadyAnswered, Status: fiber.StatusConflict, Message: fmt.Sprintf(format, args...)}
}

func UpstreamFailure(format string, args ...interface{}) *ApiError {
	return &ApiError{Code: CodeUpstreamFailure, Status: fiber.StatusBadGateway, Message: fmt.Sprintf(format, args...)}
}

func Cancelled(format string, args ...interface{}) *ApiError {
	return &ApiError{Code: CodeCancelled, Status: fiber.StatusConflict, Message: fmt.Sprintf(format, args...)}
}

func BadRequest(format string, args ...interface{}) *ApiError {
	return &ApiError{Code: CodeBadRequest, Status: fiber.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}
