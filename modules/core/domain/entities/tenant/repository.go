package tenant

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("tenant not found")
	ErrCodeTaken = errors.New("tenant code already in use")
)

type Repository interface {
	GetAll(ctx context.Context) ([]*Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	GetByCode(ctx context.Context, code string) (*Tenant, error)
	GetByDomain(ctx context.Context, domain string) (*Tenant, error)
	Create(ctx context.Context, t *Tenant) error
	Update(ctx context.Context, t *Tenant) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}
