package services

import (
	"context"

	"github.com/stafflink/backoffice/modules/core/domain/aggregates/user"
	"github.com/stafflink/backoffice/modules/hrm/domain/entities/department"
	"github.com/stafflink/backoffice/pkg/authz"
	"github.com/stafflink/backoffice/pkg/composables"
	"github.com/stafflink/backoffice/pkg/eventbus"
	"github.com/stafflink/backoffice/pkg/serrors"
)

// ErrDepartmentInUse blocks deletion while active users remain assigned.
var ErrDepartmentInUse = serrors.NewError("DEPARTMENT_IN_USE", "department has active users assigned")

var authorizeHRM = func(ctx context.Context, object, action string) error {
	return authz.Authorize(ctx, object, action)
}

type DepartmentService struct {
	repo      department.Repository
	users     user.Repository
	publisher eventbus.EventBus
}

func NewDepartmentService(repo department.Repository, users user.Repository, publisher eventbus.EventBus) *DepartmentService {
	return &DepartmentService{repo: repo, users: users, publisher: publisher}
}

func (s *DepartmentService) GetPaginated(ctx context.Context, params *department.FindParams) ([]department.Department, int64, error) {
	if err := authorizeHRM(ctx, "hrm.departments", "list"); err != nil {
		return nil, 0, err
	}
	return s.repo.GetPaginated(ctx, params)
}

func (s *DepartmentService) GetByID(ctx context.Context, id uint) (*department.Department, error) {
	if err := authorizeHRM(ctx, "hrm.departments", "read"); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *DepartmentService) Create(ctx context.Context, data *department.CreateDTO) (*department.Department, error) {
	if err := authorizeHRM(ctx, "hrm.departments", "create"); err != nil {
		return nil, err
	}
	if fields, ok := data.Ok(); !ok {
		return nil, fields
	}
	var created *department.Department
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.repo.Create(txCtx, data.ToEntity())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("department.created", created)
	return created, nil
}

func (s *DepartmentService) Update(ctx context.Context, id uint, data *department.UpdateDTO) (*department.Department, error) {
	if err := authorizeHRM(ctx, "hrm.departments", "update"); err != nil {
		return nil, err
	}
	if fields, ok := data.Ok(); !ok {
		return nil, fields
	}
	var updated *department.Department
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		data.Apply(existing)
		updated, err = s.repo.Update(txCtx, existing)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("department.updated", updated)
	return updated, nil
}

// Delete soft-deletes the department unless active users still belong to it.
func (s *DepartmentService) Delete(ctx context.Context, id uint) error {
	if err := authorizeHRM(ctx, "hrm.departments", "delete"); err != nil {
		return err
	}
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		count, err := s.users.CountActiveByDepartment(txCtx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrDepartmentInUse
		}
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}
	s.publisher.Publish("department.deleted", id)
	return nil
}
