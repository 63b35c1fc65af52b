package types

import (
	"errors"
	"fmt"
	"net/http"
)

// CustomError is an error carrying the HTTP status it should be reported with
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// BadRequest creates a 400 validation error
func BadRequest(errorType, format string, args ...any) *CustomError {
	return &CustomError{Code: http.StatusBadRequest, Message: fmt.Sprintf(format, args...), Type: errorType}
}

// NotFound creates a 404 error
func NotFound(errorType, format string, args ...any) *CustomError {
	return &CustomError{Code: http.StatusNotFound, Message: fmt.Sprintf(format, args...), Type: errorType}
}

// AsCustomError unwraps err into a *CustomError when it is one
func AsCustomError(err error) (*CustomError, bool) {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsNotFound reports whether err is a 404 CustomError
func IsNotFound(err error) bool {
	ce, ok := AsCustomError(err)
	return ok && ce.Code == http.StatusNotFound
}
