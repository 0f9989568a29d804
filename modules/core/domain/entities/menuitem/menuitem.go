package menuitem

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var ErrNotFound = errors.New("menu item not found")

// MenuItem is global reference data seeded at install time; tenants grant
// items to roles rather than defining their own.
type MenuItem struct {
	ID        uint      `json:"id"`
	Label     string    `json:"label"`
	Path      string    `json:"path"`
	Icon      string    `json:"icon"`
	SortOrder int       `json:"sort_order"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository interface {
	GetAll(ctx context.Context) ([]MenuItem, error)
	// GetForRole returns the active items granted to the role within the
	// tenant from context, ordered by SortOrder.
	GetForRole(ctx context.Context, role string) ([]MenuItem, error)
	// GrantIDs returns the menu item ids granted to the role.
	GrantIDs(ctx context.Context, role string) ([]uint, error)
	// SetGrants replaces the role's grants with the given item ids.
	SetGrants(ctx context.Context, role string, itemIDs []uint) error
}
