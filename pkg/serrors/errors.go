package serrors

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// BaseError is a coded error that maps onto the API error envelope.
type BaseError struct {
	Code    string
	Message string
	Meta    map[string]string
}

func NewError(code, message string) *BaseError {
	return &BaseError{Code: code, Message: message}
}

func (e *BaseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BaseError) WithMeta(meta map[string]string) *BaseError {
	clone := *e
	clone.Meta = meta
	return &clone
}

// Is matches by code so wrapped coded errors compare with errors.Is.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	return ok && t.Code == e.Code
}

// ValidationErrors maps a request field to a human-readable problem.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(v))
}

// ProcessValidatorErrors flattens go-playground validation errors into
// per-field messages keyed by the struct field name.
func ProcessValidatorErrors(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, len(errs))
	for _, fieldErr := range errs {
		out[fieldErr.Field()] = messageForTag(fieldErr)
	}
	return out
}

func messageForTag(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())
	case "gtfield":
		return fmt.Sprintf("must be after %s", err.Param())
	case "e164":
		return "must be a valid phone number"
	default:
		return fmt.Sprintf("failed %s validation", err.Tag())
	}
}
