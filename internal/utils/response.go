package utils

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/localnerve/equirecords/internal/types"
)

// SuccessResponse sends a standard success envelope
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(SuccessResponseStruct{
		Success: true,
		Data:    data,
	})
}

// MessageResponse sends a success envelope carrying a message
func MessageResponse(c *fiber.Ctx, data interface{}, message string, status int) error {
	return c.Status(status).JSON(SuccessResponseStruct{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// ErrorResponse sends a standard error envelope
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(ErrorResponseStruct{
		Success:   false,
		Error:     message,
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		URL:       c.OriginalURL(),
		Type:      errorType,
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusNotFound, "NotFound")
}

// ErrorHandler converts errors returned by handlers into the error envelope.
// CustomErrors keep their code, Fiber errors their status, anything else is a 500 with the raw message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "ServerError"

	var fe *fiber.Error
	if ce, ok := types.AsCustomError(err); ok {
		code = ce.Code
		message = ce.Message
		errorType = ce.Type
	} else if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
		errorType = "HTTPError"
	}

	if code >= fiber.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", c.Method()),
			zap.String("url", c.OriginalURL()),
			zap.Any("requestId", c.Locals(RequestIDKey)),
			zap.Error(err),
		)
	}

	return ErrorResponse(c, message, code, errorType)
}

// RequestIDKey is the Locals key holding the request id
const RequestIDKey = "requestId"

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Status    int    `json:"status"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
	Type      string `json:"type,omitempty"`
}

// SuccessResponseStruct defines the schema for success responses
type SuccessResponseStruct struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message string      `json:"message,omitempty"`
}
