package composables

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/stafflink/backoffice/pkg/constants"
)

var ErrNoTenantID = errors.New("tenant not found in context")

// WithTenantID returns a new context scoped to the given tenant.
func WithTenantID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, constants.TenantIDKey, id)
}

// UseTenantID returns the tenant id the request was resolved to. Every
// tenant-owned repository filters by it.
func UseTenantID(ctx context.Context) (uuid.UUID, error) {
	id, ok := ctx.Value(constants.TenantIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, ErrNoTenantID
	}
	return id, nil
}
