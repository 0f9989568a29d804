package services

import (
	"context"

	"github.com/stafflink/backoffice/modules/crm/domain/entities/lead"
	"github.com/stafflink/backoffice/pkg/composables"
	"github.com/stafflink/backoffice/pkg/eventbus"
	"github.com/stafflink/backoffice/pkg/serrors"
)

// ErrLeadClosed rejects edits to a lead whose pipeline ended in won or lost.
var ErrLeadClosed = serrors.NewError("LEAD_CLOSED", "lead is closed")

type LeadService struct {
	repo      lead.Repository
	publisher eventbus.EventBus
}

func NewLeadService(repo lead.Repository, publisher eventbus.EventBus) *LeadService {
	return &LeadService{repo: repo, publisher: publisher}
}

func (s *LeadService) GetPaginated(ctx context.Context, params *lead.FindParams) ([]lead.Lead, int64, error) {
	if err := authorizeCRM(ctx, "crm.leads", "list"); err != nil {
		return nil, 0, err
	}
	return s.repo.GetPaginated(ctx, params)
}

func (s *LeadService) GetByID(ctx context.Context, id uint) (*lead.Lead, error) {
	if err := authorizeCRM(ctx, "crm.leads", "read"); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *LeadService) Create(ctx context.Context, data *lead.CreateDTO) (*lead.Lead, error) {
	if err := authorizeCRM(ctx, "crm.leads", "create"); err != nil {
		return nil, err
	}
	if fields, ok := data.Ok(); !ok {
		return nil, fields
	}
	var created *lead.Lead
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.repo.Create(txCtx, data.ToEntity())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("lead.created", created)
	return created, nil
}

func (s *LeadService) Update(ctx context.Context, id uint, data *lead.UpdateDTO) (*lead.Lead, error) {
	if err := authorizeCRM(ctx, "crm.leads", "update"); err != nil {
		return nil, err
	}
	if fields, ok := data.Ok(); !ok {
		return nil, fields
	}
	var updated *lead.Lead
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if existing.Status.Terminal() {
			return ErrLeadClosed.WithMeta(map[string]string{"status": string(existing.Status)})
		}
		data.Apply(existing)
		updated, err = s.repo.Update(txCtx, existing)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("lead.updated", updated)
	return updated, nil
}

// SetStatus moves the lead along the pipeline. Won and lost are terminal;
// once reached the lead is read-only.
func (s *LeadService) SetStatus(ctx context.Context, id uint, data *lead.StatusDTO) (*lead.Lead, error) {
	if err := authorizeCRM(ctx, "crm.leads", "update"); err != nil {
		return nil, err
	}
	if fields, ok := data.Ok(); !ok {
		return nil, fields
	}
	var result *lead.Lead
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if existing.Status.Terminal() {
			return ErrLeadClosed.WithMeta(map[string]string{"status": string(existing.Status)})
		}
		if err := s.repo.UpdateStatus(txCtx, id, lead.Status(data.Status)); err != nil {
			return err
		}
		result, err = s.repo.GetByID(txCtx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("lead.status_changed", result)
	return result, nil
}

func (s *LeadService) Delete(ctx context.Context, id uint) error {
	if err := authorizeCRM(ctx, "crm.leads", "delete"); err != nil {
		return err
	}
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}
	s.publisher.Publish("lead.deleted", id)
	return nil
}
