package user

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", 4)
	require.NoError(t, err)

	u := New("Jane", "Doe", "jane@example.com", RoleEmployee, WithPasswordHash(hash))
	require.True(t, u.CheckPassword("s3cret-pass"))
	require.False(t, u.CheckPassword("wrong"))

	noHash := New("Jane", "Doe", "jane@example.com", RoleEmployee)
	require.False(t, noHash.CheckPassword(""), "empty hash never matches")
}

func TestNewNormalizesFields(t *testing.T) {
	u := New(" Jane ", " Doe ", " Jane@Example.COM ", RoleAdmin, WithPhone(" +123 "))
	require.Equal(t, "Jane", u.FirstName())
	require.Equal(t, "jane@example.com", u.Email())
	require.Equal(t, "+123", u.Phone())
	require.Equal(t, "Jane Doe", u.FullName())
	require.True(t, u.IsActive())
}

func TestCreateDTO_Ok(t *testing.T) {
	dto := &CreateDTO{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "JANE@example.com ",
		Password:  "long-enough",
		Role:      "manager",
	}
	fields, ok := dto.Ok()
	require.True(t, ok, "unexpected validation errors: %v", fields)
	require.Equal(t, "jane@example.com", dto.Email)

	dto = &CreateDTO{Email: "nope", Password: "short", Role: "superadmin"}
	fields, ok = dto.Ok()
	require.False(t, ok)
	require.Contains(t, fields, "FirstName")
	require.Contains(t, fields, "Email")
	require.Contains(t, fields, "Password")
	require.Contains(t, fields, "Role", "superadmin cannot be granted through the API")
}

func TestUpdateDTO_ApplyPreservesIdentity(t *testing.T) {
	tenantID := uuid.New()
	existing := New("Jane", "Doe", "jane@example.com", RoleEmployee,
		WithID(7),
		WithTenantID(tenantID),
		WithPasswordHash("hash"),
	)

	updated := (&UpdateDTO{FirstName: "Janet", LastName: "Doe", Role: "manager"}).Apply(existing)
	require.EqualValues(t, 7, updated.ID())
	require.Equal(t, tenantID, updated.TenantID())
	require.Equal(t, "jane@example.com", updated.Email())
	require.Equal(t, "hash", updated.PasswordHash())
	require.Equal(t, RoleManager, updated.Role())
	require.Equal(t, "Janet", updated.FirstName())
}
