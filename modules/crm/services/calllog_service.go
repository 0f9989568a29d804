package services

import (
	"context"

	"github.com/stafflink/backoffice/modules/crm/domain/entities/calllog"
	"github.com/stafflink/backoffice/modules/crm/domain/entities/lead"
	"github.com/stafflink/backoffice/pkg/composables"
	"github.com/stafflink/backoffice/pkg/eventbus"
)

type CallLogService struct {
	repo      calllog.Repository
	leads     lead.Repository
	publisher eventbus.EventBus
}

func NewCallLogService(repo calllog.Repository, leads lead.Repository, publisher eventbus.EventBus) *CallLogService {
	return &CallLogService{repo: repo, leads: leads, publisher: publisher}
}

func (s *CallLogService) GetPaginated(ctx context.Context, params *calllog.FindParams) ([]calllog.CallLog, int64, error) {
	if err := authorizeCRM(ctx, "crm.calllogs", "list"); err != nil {
		return nil, 0, err
	}
	return s.repo.GetPaginated(ctx, params)
}

func (s *CallLogService) GetByID(ctx context.Context, id uint) (*calllog.CallLog, error) {
	if err := authorizeCRM(ctx, "crm.calllogs", "read"); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Create records a call made by the acting user.
func (s *CallLogService) Create(ctx context.Context, data *calllog.CreateDTO) (*calllog.CallLog, error) {
	if err := authorizeCRM(ctx, "crm.calllogs", "create"); err != nil {
		return nil, err
	}
	if fields, ok := data.Ok(); !ok {
		return nil, fields
	}
	u, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	var created *calllog.CallLog
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		if data.LeadID != nil {
			l, err := s.leads.GetByID(txCtx, *data.LeadID)
			if err != nil {
				return err
			}
			if !l.IsActive {
				return lead.ErrNotFound
			}
		}
		var err error
		created, err = s.repo.Create(txCtx, data.ToEntity(u.ID()))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("calllog.created", created)
	return created, nil
}

func (s *CallLogService) Delete(ctx context.Context, id uint) error {
	if err := authorizeCRM(ctx, "crm.calllogs", "delete"); err != nil {
		return err
	}
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}
	s.publisher.Publish("calllog.deleted", id)
	return nil
}
