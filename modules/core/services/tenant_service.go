package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/stafflink/backoffice/modules/core/domain/entities/tenant"
	"github.com/stafflink/backoffice/pkg/composables"
	"github.com/stafflink/backoffice/pkg/eventbus"
)

const tenantsAuthzObject = "core.tenants"

func authorizeTenants(ctx context.Context, action string) error {
	return authorizeCore(ctx, tenantsAuthzObject, action)
}

type TenantService struct {
	repo      tenant.Repository
	publisher eventbus.EventBus
}

func NewTenantService(repo tenant.Repository, publisher eventbus.EventBus) *TenantService {
	return &TenantService{repo: repo, publisher: publisher}
}

// GetByCode and GetByDomain serve pre-auth company resolution and are
// deliberately unguarded.
func (s *TenantService) GetByCode(ctx context.Context, code string) (*tenant.Tenant, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *TenantService) GetByDomain(ctx context.Context, domain string) (*tenant.Tenant, error) {
	return s.repo.GetByDomain(ctx, domain)
}

func (s *TenantService) GetAll(ctx context.Context) ([]*tenant.Tenant, error) {
	if err := authorizeTenants(ctx, "list"); err != nil {
		return nil, err
	}
	return s.repo.GetAll(ctx)
}

func (s *TenantService) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	if err := authorizeTenants(ctx, "read"); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *TenantService) Create(ctx context.Context, data *tenant.CreateDTO) (*tenant.Tenant, error) {
	if err := authorizeTenants(ctx, "create"); err != nil {
		return nil, err
	}
	if fields, ok := data.Ok(); !ok {
		return nil, fields
	}
	created := data.ToEntity()
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Create(txCtx, created)
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("tenant.created", created)
	return created, nil
}

func (s *TenantService) Update(ctx context.Context, id uuid.UUID, data *tenant.UpdateDTO) (*tenant.Tenant, error) {
	if err := authorizeTenants(ctx, "update"); err != nil {
		return nil, err
	}
	if fields, ok := data.Ok(); !ok {
		return nil, fields
	}
	var updated *tenant.Tenant
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		data.Apply(existing)
		updated = existing
		return s.repo.Update(txCtx, existing)
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("tenant.updated", updated)
	return updated, nil
}

func (s *TenantService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := authorizeTenants(ctx, "delete"); err != nil {
		return err
	}
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Deactivate(txCtx, id)
	})
	if err != nil {
		return err
	}
	s.publisher.Publish("tenant.deactivated", id)
	return nil
}
