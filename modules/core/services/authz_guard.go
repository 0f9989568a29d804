package services

import (
	"context"

	"github.com/stafflink/backoffice/pkg/authz"
)

// authorizeCore is swappable so service tests can observe or bypass the guard.
var authorizeCore = func(ctx context.Context, object, action string) error {
	return authz.Authorize(ctx, object, action)
}
