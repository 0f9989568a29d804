package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stafflink/backoffice/modules/core/domain/aggregates/user"
	"github.com/stafflink/backoffice/pkg/composables"
)

func ctxWithRole(role user.Role) context.Context {
	u := user.New("Test", "User", "test@example.com", role)
	return composables.WithUser(context.Background(), u)
}

func TestAuthorize_RoleHierarchy(t *testing.T) {
	svc, err := NewService(Config{Mode: ModeEnforce})
	require.NoError(t, err)

	cases := []struct {
		role    user.Role
		object  string
		action  string
		allowed bool
	}{
		{user.RoleSuperadmin, "core.tenants", "list", true},
		{user.RoleAdmin, "core.tenants", "list", false},
		{user.RoleAdmin, "core.users", "create", true},
		{user.RoleAdmin, "hrm.departments", "delete", true},
		{user.RoleManager, "hrm.departments", "delete", false},
		{user.RoleManager, "tasks.tasks", "create", true},
		{user.RoleManager, "tasks.tasks", "status", true}, // inherited from employee
		{user.RoleManager, "crm.leads", "create", true},
		{user.RoleEmployee, "tasks.tasks", "status", true},
		{user.RoleEmployee, "tasks.tasks", "create", false},
		{user.RoleEmployee, "crm.leads", "create", false},
		{user.RoleEmployee, "dashboard.summary", "read", false},
	}
	for _, tc := range cases {
		err := svc.Authorize(ctxWithRole(tc.role), tc.object, tc.action)
		if tc.allowed {
			require.NoError(t, err, "%s %s %s", tc.role, tc.object, tc.action)
		} else {
			require.ErrorIs(t, err, ErrForbidden, "%s %s %s", tc.role, tc.object, tc.action)
		}
	}
}

func TestAuthorize_ShadowModeAllowsDenials(t *testing.T) {
	svc, err := NewService(Config{Mode: ModeShadow})
	require.NoError(t, err)

	require.NoError(t, svc.Authorize(ctxWithRole(user.RoleEmployee), "core.users", "create"))
}

func TestAuthorize_NoUser(t *testing.T) {
	svc, err := NewService(Config{Mode: ModeEnforce})
	require.NoError(t, err)

	err = svc.Authorize(context.Background(), "tasks.tasks", "list")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrForbidden), "missing user is an auth error, not a policy denial")
}

func TestDefaultService_UnsetAllows(t *testing.T) {
	require.NoError(t, Authorize(context.Background(), "tasks.tasks", "list"))
}
