package httpapi

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/gofiber/fiber/v3"
)

// AppError carries an explicit status and client message.
type AppError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewAppError(statusCode int, message string, cause error) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Cause: cause}
}

type ErrorMiddleware struct {
	logger logging.Logger
}

func NewErrorMiddleware(l logging.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{logger: l}
}

// Middleware turns errors returned by later handlers, and panics, into
// {"error": message} responses.
func (m *ErrorMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error(c.Context(), "panic recovered", "panic", fmt.Sprint(r), "path", c.Path())
				err = writeError(c, fiber.StatusInternalServerError, MessageInternalServerError)
			}
		}()

		err = c.Next()
		if err == nil {
			return nil
		}

		status, msg := normalizeError(err)
		if status >= fiber.StatusInternalServerError {
			m.logger.Error(c.Context(), "request failed", "method", c.Method(), "path", c.Path(), "error", err)
		}
		return writeError(c, status, msg)
	}
}

func normalizeError(err error) (int, string) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.StatusCode <= 0 || appErr.StatusCode >= fiber.StatusInternalServerError {
			return fiber.StatusInternalServerError, MessageInternalServerError
		}
		return appErr.StatusCode, appErr.Message
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		if fiberErr.Code >= fiber.StatusInternalServerError || fiberErr.Code <= 0 {
			return fiber.StatusInternalServerError, MessageInternalServerError
		}
		return fiberErr.Code, fiberErr.Message
	}

	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		return fiber.StatusUnauthorized, common.Message(err)
	case errors.Is(err, common.ErrorNotFound):
		return fiber.StatusNotFound, common.Message(err)
	case errors.Is(err, common.ErrorInvalidRequest):
		return fiber.StatusBadRequest, common.Message(err)
	default:
		return fiber.StatusInternalServerError, MessageInternalServerError
	}
}
