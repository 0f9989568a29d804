package services

import (
	"context"

	"github.com/stafflink/backoffice/modules/core/domain/entities/menuitem"
	"github.com/stafflink/backoffice/pkg/composables"
	"github.com/stafflink/backoffice/pkg/eventbus"
)

const menuAuthzObject = "core.menu"

func authorizeMenu(ctx context.Context, action string) error {
	return authorizeCore(ctx, menuAuthzObject, action)
}

type MenuService struct {
	repo      menuitem.Repository
	publisher eventbus.EventBus
}

func NewMenuService(repo menuitem.Repository, publisher eventbus.EventBus) *MenuService {
	return &MenuService{repo: repo, publisher: publisher}
}

// Sidebar returns the menu items visible to the current user.
func (s *MenuService) Sidebar(ctx context.Context) ([]menuitem.MenuItem, error) {
	u, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	if u.IsSuperadmin() {
		return s.repo.GetAll(ctx)
	}
	return s.repo.GetForRole(ctx, string(u.Role()))
}

func (s *MenuService) GetAll(ctx context.Context) ([]menuitem.MenuItem, error) {
	if err := authorizeMenu(ctx, "list"); err != nil {
		return nil, err
	}
	return s.repo.GetAll(ctx)
}

func (s *MenuService) GrantIDs(ctx context.Context, role string) ([]uint, error) {
	if err := authorizeMenu(ctx, "read"); err != nil {
		return nil, err
	}
	return s.repo.GrantIDs(ctx, role)
}

func (s *MenuService) SetGrants(ctx context.Context, role string, itemIDs []uint) error {
	if err := authorizeMenu(ctx, "update"); err != nil {
		return err
	}
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.SetGrants(txCtx, role, itemIDs)
	})
	if err != nil {
		return err
	}
	s.publisher.Publish("menu.grants_updated", role)
	return nil
}
