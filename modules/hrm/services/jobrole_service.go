package services

import (
	"context"

	"github.com/stafflink/backoffice/modules/core/domain/aggregates/user"
	"github.com/stafflink/backoffice/modules/hrm/domain/entities/department"
	"github.com/stafflink/backoffice/modules/hrm/domain/entities/jobrole"
	"github.com/stafflink/backoffice/pkg/composables"
	"github.com/stafflink/backoffice/pkg/eventbus"
	"github.com/stafflink/backoffice/pkg/serrors"
)

// ErrJobRoleInUse blocks deletion while active users hold the role.
var ErrJobRoleInUse = serrors.NewError("JOB_ROLE_IN_USE", "job role has active users assigned")

type JobRoleService struct {
	repo        jobrole.Repository
	departments department.Repository
	users       user.Repository
	publisher   eventbus.EventBus
}

func NewJobRoleService(repo jobrole.Repository, departments department.Repository, users user.Repository, publisher eventbus.EventBus) *JobRoleService {
	return &JobRoleService{repo: repo, departments: departments, users: users, publisher: publisher}
}

func (s *JobRoleService) GetPaginated(ctx context.Context, params *jobrole.FindParams) ([]jobrole.JobRole, int64, error) {
	if err := authorizeHRM(ctx, "hrm.jobroles", "list"); err != nil {
		return nil, 0, err
	}
	return s.repo.GetPaginated(ctx, params)
}

func (s *JobRoleService) GetByID(ctx context.Context, id uint) (*jobrole.JobRole, error) {
	if err := authorizeHRM(ctx, "hrm.jobroles", "read"); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *JobRoleService) Create(ctx context.Context, data *jobrole.CreateDTO) (*jobrole.JobRole, error) {
	if err := authorizeHRM(ctx, "hrm.jobroles", "create"); err != nil {
		return nil, err
	}
	if fields, ok := data.Ok(); !ok {
		return nil, fields
	}
	var created *jobrole.JobRole
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		// The parent department must exist within the tenant and be active.
		d, err := s.departments.GetByID(txCtx, data.DepartmentID)
		if err != nil {
			return err
		}
		if !d.IsActive {
			return department.ErrNotFound
		}
		created, err = s.repo.Create(txCtx, data.ToEntity())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("jobrole.created", created)
	return created, nil
}

func (s *JobRoleService) Update(ctx context.Context, id uint, data *jobrole.UpdateDTO) (*jobrole.JobRole, error) {
	if err := authorizeHRM(ctx, "hrm.jobroles", "update"); err != nil {
		return nil, err
	}
	if fields, ok := data.Ok(); !ok {
		return nil, fields
	}
	var updated *jobrole.JobRole
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
	s.publisher.Publish("jobrole.updated", updated)
	return updated, nil
}

func (s *JobRoleService) Delete(ctx context.Context, id uint) error {
	if err := authorizeHRM(ctx, "hrm.jobroles", "delete"); err != nil {
		return err
	}
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		count, err := s.users.CountActiveByJobRole(txCtx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrJobRoleInUse
		}
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}
	s.publisher.Publish("jobrole.deleted", id)
	return nil
}
