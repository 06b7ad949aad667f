package util

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/prakkhar03/skillbridge/internal/config"
	"github.com/prakkhar03/skillbridge/internal/model"
	"github.com/prakkhar03/skillbridge/internal/response"
)

type SuccessResponseFormat struct {
	Code       int
	Message    string
	Data       any
	Pagination *response.Pagination
	Meta       any
}

type OrderedSuccessResponse struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Meta       any                  `json:"meta,omitempty"`
	Pagination *response.Pagination `json:"pagination,omitempty"`
	Data       any                  `json:"data,omitempty"`
}

type ErrorResponseFormat struct {
	Code       int
	Message    string
	DevMessage string
	Details    any
}

type OrderedErrorResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	DevMessage string `json:"dev_message,omitempty"`
	Details    any    `json:"details,omitempty"`
}

// FormError carries field-level validation messages.
type FormError struct {
	Errors  map[string]string
	Message string
}

func (e *FormError) Error() string {
	return fmt.Sprintf("form error: %s", e.Message)
}

func (e *FormError) Is(target error) bool {
	return target == model.ErrValidation
}

func NewFormError(message string, errors map[string]string) *FormError {
	return &FormError{
		Message: message,
		Errors:  errors,
	}
}

// SuccessResponse writes the standard success envelope.
func SuccessResponse(c *fiber.Ctx, params SuccessResponseFormat) error {
	code := params.Code
	if code == 0 {
		code = fiber.StatusOK
	}
	return c.Status(code).JSON(OrderedSuccessResponse{
		Success:    true,
		Message:    params.Message,
		Data:       params.Data,
		Pagination: params.Pagination,
		Meta:       params.Meta,
	})
}

// ErrorResponse writes the standard error envelope. Developer details are
// only included outside production.
func ErrorResponse(c *fiber.Ctx, params ErrorResponseFormat, errs ...error) error {
	resp := OrderedErrorResponse{
		Success: false,
		Message: params.Message,
		Details: params.Details,
	}
	if !config.LoadAppConfig().IsProduction() {
		if len(errs) > 0 && errs[0] != nil {
			resp.DevMessage = errs[0].Error()
		}
		if params.DevMessage != "" {
			resp.DevMessage = params.DevMessage
		}
	}

	errorCode := params.Code
	if errorCode == 0 {
		errorCode = fiber.StatusInternalServerError
	}
	return c.Status(errorCode).JSON(resp)
}

// StatusFromError maps the error taxonomy onto HTTP status codes.
func StatusFromError(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, model.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, model.ErrConflict):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// HandleError renders err with the status its class maps to. Internal errors
// are logged and answered with a generic message.
func HandleError(c *fiber.Ctx, message string, err error) error {
	code := StatusFromError(err)
	params := ErrorResponseFormat{Code: code, Message: message}

	var formErr *FormError
	if errors.As(err, &formErr) {
		params.Message = formErr.Message
		params.Details = formErr.Errors
	} else if code != fiber.StatusInternalServerError {
		params.Message = err.Error()
	}

	if code == fiber.StatusInternalServerError {
		slog.Error(message,
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Any("error", err))
		params.Message = "Internal Server Error"
	}
	return ErrorResponse(c, params, err)
}
