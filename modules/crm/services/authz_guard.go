package services

import (
	"context"

	"github.com/stafflink/backoffice/pkg/authz"
)

// Swapped out in tests.
var authorizeCRM = func(ctx context.Context, object, action string) error {
	return authz.Authorize(ctx, object, action)
}
