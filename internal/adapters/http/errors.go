package http

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/metropass/internal/core/domain"
	"github.com/samirrijal/metropass/internal/core/usecases"
)

// APIError is a structured error response.
type APIError struct {
	Status    int               `json:"status"`
	Code      string            `json:"code"`    // Error code: bad_request, not_found, conflict, etc.
	Message   string            `json:"message"` // Human-readable message
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	return writeError(c, APIError{Status: status, Code: code, Message: message})
}

func writeError(c *fiber.Ctx, e APIError) error {
	e.RequestID, _ = c.Locals("requestid").(string)
	return c.Status(e.Status).JSON(e)
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// errConflict returns a 409 error.
func errConflict(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusConflict, "conflict", msg)
}

// errUnprocessable returns a 422 error.
func errUnprocessable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusUnprocessableEntity, "unprocessable", msg)
}

// errValidation returns a 422 error listing the failing fields.
func errValidation(c *fiber.Ctx, err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return newError(c, fiber.StatusUnprocessableEntity, "validation_error", err.Error())
	}
	details := make(map[string]string, len(ve))
	for _, fe := range ve {
		details[fe.Field()] = formatFieldError(fe)
	}
	return writeError(c, APIError{
		Status:  fiber.StatusUnprocessableEntity,
		Code:    "validation_error",
		Message: "validation failed",
		Details: details,
	})
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return "this field is required"
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "numeric":
		return "must contain digits only"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "nefield":
		return "must differ from " + fe.Param()
	default:
		return "invalid value"
	}
}

// errFromDomain maps purchase and catalog errors onto HTTP statuses.
func errFromDomain(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, usecases.ErrFlowNotFound):
		return errNotFound(c, err.Error())
	case errors.Is(err, usecases.ErrTooManyFlows):
		return newError(c, fiber.StatusServiceUnavailable, "unavailable", err.Error())
	case errors.Is(err, domain.ErrUnknownTicketType),
		errors.Is(err, domain.ErrUnknownStation),
		errors.Is(err, domain.ErrUnknownPaymentMethod),
		errors.Is(err, domain.ErrSameStation):
		return errUnprocessable(c, err.Error())
	case errors.Is(err, domain.ErrSessionLocked),
		errors.Is(err, domain.ErrStationsNotApplicable),
		errors.Is(err, domain.ErrStepIncomplete),
		errors.Is(err, domain.ErrSelectionIncomplete),
		errors.Is(err, domain.ErrPaymentMethodRequired),
		errors.Is(err, domain.ErrNotProcessing),
		errors.Is(err, domain.ErrNotComplete):
		return errConflict(c, err.Error())
	default:
		return errInternal(c, err.Error())
	}
}
