package services

import (
	"context"

	"github.com/stafflink/backoffice/modules/core/domain/aggregates/user"
	"github.com/stafflink/backoffice/pkg/composables"
	"github.com/stafflink/backoffice/pkg/configuration"
	"github.com/stafflink/backoffice/pkg/eventbus"
)

const usersAuthzObject = "core.users"

func authorizeUsers(ctx context.Context, action string) error {
	return authorizeCore(ctx, usersAuthzObject, action)
}

type UserService struct {
	repo      user.Repository
	publisher eventbus.EventBus
}

func NewUserService(repo user.Repository, publisher eventbus.EventBus) *UserService {
	return &UserService{repo: repo, publisher: publisher}
}

func (s *UserService) GetPaginated(ctx context.Context, params *user.FindParams) ([]user.User, int64, error) {
	if err := authorizeUsers(ctx, "list"); err != nil {
		return nil, 0, err
	}
	return s.repo.GetPaginated(ctx, params)
}

func (s *UserService) GetByID(ctx context.Context, id uint) (user.User, error) {
	if err := authorizeUsers(ctx, "read"); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) Create(ctx context.Context, data *user.CreateDTO) (user.User, error) {
	if err := authorizeUsers(ctx, "create"); err != nil {
		return nil, err
	}
	if fields, ok := data.Ok(); !ok {
		return nil, fields
	}
	hash, err := user.HashPassword(data.Password, configuration.Use().Auth.BcryptCost)
	if err != nil {
		return nil, err
	}
	var created user.User
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		created, err = s.repo.Create(txCtx, data.ToEntity(hash))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("user.created", created)
	return created, nil
}

func (s *UserService) Update(ctx context.Context, id uint, data *user.UpdateDTO) (user.User, error) {
	if err := authorizeUsers(ctx, "update"); err != nil {
		return nil, err
	}
	if fields, ok := data.Ok(); !ok {
		return nil, fields
	}
	var updated user.User
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		updated, err = s.repo.Update(txCtx, data.Apply(existing))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("user.updated", updated)
	return updated, nil
}

func (s *UserService) Deactivate(ctx context.Context, id uint) error {
	if err := authorizeUsers(ctx, "delete"); err != nil {
		return err
	}
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Deactivate(txCtx, id)
	})
	if err != nil {
		return err
	}
	s.publisher.Publish("user.deactivated", id)
	return nil
}
