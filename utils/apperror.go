package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorKind classifies every failure the domain repositories can surface.
// Controllers map the kind to an HTTP status; callers decide whether to
// retry, except allocation errors which are retried inside the allocator.
type ErrorKind string

const (
	ErrKindValidation           ErrorKind = "VALIDATION"
	ErrKindNotFound             ErrorKind = "NOT_FOUND"
	ErrKindForbidden            ErrorKind = "FORBIDDEN"
	ErrKindInvalidState         ErrorKind = "INVALID_STATE"
	ErrKindInsufficientQuantity ErrorKind = "INSUFFICIENT_QUANTITY"
	ErrKindConflict             ErrorKind = "CONFLICT"
	ErrKindAllocation           ErrorKind = "ALLOCATION"
)

type AppError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewValidationError(message string) *AppError {
	return &AppError{Kind: ErrKindValidation, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Kind: ErrKindNotFound, Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Kind: ErrKindForbidden, Message: message}
}

func NewInvalidStateError(message string) *AppError {
	return &AppError{Kind: ErrKindInvalidState, Message: message}
}

func NewInsufficientQuantityError(message string) *AppError {
	return &AppError{Kind: ErrKindInsufficientQuantity, Message: message}
}

func NewConflictError(message string) *AppError {
	return &AppError{Kind: ErrKindConflict, Message: message}
}

func NewAllocationError(message string) *AppError {
	return &AppError{Kind: ErrKindAllocation, Message: message}
}

func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// HTTPStatus maps an error to the fiber status a controller should answer with.
func HTTPStatus(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Kind {
	case ErrKindValidation:
		return fiber.StatusBadRequest
	case ErrKindNotFound:
		return fiber.StatusNotFound
	case ErrKindForbidden:
		return fiber.StatusForbidden
	case ErrKindInvalidState, ErrKindConflict:
		return fiber.StatusConflict
	case ErrKindInsufficientQuantity:
		return fiber.StatusUnprocessableEntity
	case ErrKindAllocation:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorJSON answers a fiber request with the standard error envelope.
func ErrorJSON(ctx *fiber.Ctx, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return ctx.Status(HTTPStatus(err)).JSON(fiber.Map{
			"success": false,
			"message": appErr.Message,
			"code":    string(appErr.Kind),
		})
	}
	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": "Internal server error",
		"error":   err.Error(),
	})
}
