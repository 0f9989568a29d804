// Package itf holds shared test fixtures for service and controller tests.
package itf

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stafflink/backoffice/modules/core/domain/aggregates/user"
	"github.com/stafflink/backoffice/pkg/composables"
)

// TestContext provides a fluent API for building test contexts
type TestContext struct {
	ctx      context.Context
	tenantID uuid.UUID
	user     user.User
}

// NewTestContext creates a new TestContext builder with a fresh tenant scope.
func NewTestContext() *TestContext {
	return &TestContext{
		ctx:      context.Background(),
		tenantID: uuid.New(),
	}
}

func (tc *TestContext) WithTenantID(id uuid.UUID) *TestContext {
	tc.tenantID = id
	return tc
}

// WithUser sets the acting user for the test context
func (tc *TestContext) WithUser(u user.User) *TestContext {
	tc.user = u
	return tc
}

// Build assembles the context with tenant, user, logger and request params.
func (tc *TestContext) Build(tb testing.TB) context.Context {
	tb.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ctx := composables.WithTenantID(tc.ctx, tc.tenantID)
	ctx = composables.WithTx(ctx, stubTx{})
	ctx = composables.WithLogger(ctx, logrus.NewEntry(logger))
	req := httptest.NewRequest("GET", "/", nil)
	ctx = composables.WithParams(ctx, &composables.Params{
		IP:        "127.0.0.1",
		UserAgent: "test-agent",
		Request:   req,
		Writer:    httptest.NewRecorder(),
	})
	if tc.user != nil {
		ctx = composables.WithUser(ctx, tc.user)
	}
	return ctx
}

// TenantID returns the tenant scope the context was built with.
func (tc *TestContext) TenantID() uuid.UUID {
	return tc.tenantID
}

// TestUser builds an active user with the given id and role for tests.
func TestUser(id uint, role user.Role, tenantID uuid.UUID) user.User {
	return user.New(
		"Test", "User", "test.user@example.com", role,
		user.WithID(id),
		user.WithTenantID(tenantID),
	)
}
