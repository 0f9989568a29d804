package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-faster/errors"

	"github.com/stafflink/backoffice/pkg/serrors"
)

// ErrorEnvelope standardizes JSON error responses for API namespaces.
type ErrorEnvelope struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// ListEnvelope standardizes paginated collection responses.
type ListEnvelope struct {
	Items any   `json:"items"`
	Total int64 `json:"total"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteList(w http.ResponseWriter, items any, total int64) error {
	return WriteJSON(w, http.StatusOK, &ListEnvelope{Items: items, Total: total})
}

func WriteError(w http.ResponseWriter, status int, code, message string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:    code,
		Message: message,
		Meta:    meta,
	})
}

// WriteBaseError renders a coded error with the status the caller mapped it to.
func WriteBaseError(w http.ResponseWriter, status int, err *serrors.BaseError) error {
	return WriteError(w, status, err.Code, err.Message, err.Meta)
}

// WriteValidationError renders per-field validation problems as envelope meta.
func WriteValidationError(w http.ResponseWriter, fields serrors.ValidationErrors) error {
	return WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", fields)
}

// conflictCodes are business-rule violations rendered as 409.
var conflictCodes = map[string]struct{}{
	"EMAIL_TAKEN":         {},
	"CODE_TAKEN":          {},
	"SERIAL_TAKEN":        {},
	"TASK_BAD_TRANSITION": {},
	"MEETING_CONFLICT":    {},
	"DEPARTMENT_IN_USE":   {},
	"JOB_ROLE_IN_USE":     {},
	"ASSET_ASSIGNED":      {},
	"FOLLOW_UP_DONE":      {},
	"LEAD_CLOSED":         {},
}

func statusForCode(code string) int {
	switch {
	case code == "AUTHZ_FORBIDDEN":
		return http.StatusForbidden
	case code == "RATE_LIMITED":
		return http.StatusTooManyRequests
	case strings.HasPrefix(code, "AUTH_"):
		return http.StatusUnauthorized
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	default:
		if _, ok := conflictCodes[code]; ok {
			return http.StatusConflict
		}
		return http.StatusBadRequest
	}
}

// RespondError maps coded and validation errors onto the envelope; anything
// unrecognized becomes an opaque 500.
func RespondError(w http.ResponseWriter, err error) error {
	var fields serrors.ValidationErrors
	if errors.As(err, &fields) {
		return WriteValidationError(w, fields)
	}
	var base *serrors.BaseError
	if errors.As(err, &base) {
		return WriteBaseError(w, statusForCode(base.Code), base)
	}
	return WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "internal server error", nil)
}
