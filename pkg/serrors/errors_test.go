package serrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func TestBaseError_Is(t *testing.T) {
	base := NewError("TASK_NOT_FOUND", "task not found")
	wrapped := fmt.Errorf("loading task: %w", base)

	require.True(t, errors.Is(wrapped, NewError("TASK_NOT_FOUND", "different text")))
	require.False(t, errors.Is(wrapped, NewError("LEAD_NOT_FOUND", "lead not found")))
}

func TestBaseError_WithMeta(t *testing.T) {
	base := NewError("AUTHZ_FORBIDDEN", "permission denied")
	withMeta := base.WithMeta(map[string]string{"object": "tasks.tasks"})

	require.Nil(t, base.Meta, "WithMeta must not mutate the original")
	require.Equal(t, "tasks.tasks", withMeta.Meta["object"])
	require.True(t, errors.Is(withMeta, base))
}

func TestProcessValidatorErrors(t *testing.T) {
	type dto struct {
		Email string `validate:"required,email"`
		Name  string `validate:"required"`
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.Struct(&dto{Email: "not-an-email"})
	require.Error(t, err)

	var validatorErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validatorErrs)

	fields := ProcessValidatorErrors(validatorErrs)
	require.Equal(t, "must be a valid email address", fields["Email"])
	require.Equal(t, "is required", fields["Name"])
}
