package services

import (
	"context"
	"time"

	"github.com/stafflink/backoffice/modules/crm/domain/entities/followup"
	"github.com/stafflink/backoffice/modules/crm/domain/entities/lead"
	"github.com/stafflink/backoffice/pkg/composables"
	"github.com/stafflink/backoffice/pkg/eventbus"
	"github.com/stafflink/backoffice/pkg/serrors"
)

// ErrFollowUpDone rejects completing or editing a follow-up twice.
var ErrFollowUpDone = serrors.NewError("FOLLOW_UP_DONE", "follow-up is already completed")

type FollowUpService struct {
	repo      followup.Repository
	leads     lead.Repository
	publisher eventbus.EventBus
}

func NewFollowUpService(repo followup.Repository, leads lead.Repository, publisher eventbus.EventBus) *FollowUpService {
	return &FollowUpService{repo: repo, leads: leads, publisher: publisher}
}

func (s *FollowUpService) GetPaginated(ctx context.Context, params *followup.FindParams) ([]followup.FollowUp, int64, error) {
	if err := authorizeCRM(ctx, "crm.followups", "list"); err != nil {
		return nil, 0, err
	}
	return s.repo.GetPaginated(ctx, params)
}

func (s *FollowUpService) GetByID(ctx context.Context, id uint) (*followup.FollowUp, error) {
	if err := authorizeCRM(ctx, "crm.followups", "read"); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *FollowUpService) Create(ctx context.Context, data *followup.CreateDTO) (*followup.FollowUp, error) {
	if err := authorizeCRM(ctx, "crm.followups", "create"); err != nil {
		return nil, err
	}
	if fields, ok := data.Ok(); !ok {
		return nil, fields
	}
	var created *followup.FollowUp
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		// The parent lead must exist in this tenant and not be archived.
		l, err := s.leads.GetByID(txCtx, data.LeadID)
		if err != nil {
			return err
		}
		if !l.IsActive {
			return lead.ErrNotFound
		}
		created, err = s.repo.Create(txCtx, data.ToEntity())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("followup.created", created)
	return created, nil
}

func (s *FollowUpService) Update(ctx context.Context, id uint, data *followup.UpdateDTO) (*followup.FollowUp, error) {
	if err := authorizeCRM(ctx, "crm.followups", "update"); err != nil {
		return nil, err
	}
	if fields, ok := data.Ok(); !ok {
		return nil, fields
	}
	var updated *followup.FollowUp
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if existing.Done() {
			return ErrFollowUpDone
		}
		data.Apply(existing)
		updated, err = s.repo.Update(txCtx, existing)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("followup.updated", updated)
	return updated, nil
}

// Complete stamps done_at once. Completing a follow-up that is already done
// is a conflict, not a no-op, so clients learn their view is stale.
func (s *FollowUpService) Complete(ctx context.Context, id uint) (*followup.FollowUp, error) {
	if err := authorizeCRM(ctx, "crm.followups", "update"); err != nil {
		return nil, err
	}
	var result *followup.FollowUp
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if existing.Done() {
			return ErrFollowUpDone
		}
		if err := s.repo.MarkDone(txCtx, id, time.Now()); err != nil {
			return err
		}
		result, err = s.repo.GetByID(txCtx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("followup.completed", result)
	return result, nil
}

func (s *FollowUpService) Delete(ctx context.Context, id uint) error {
	if err := authorizeCRM(ctx, "crm.followups", "delete"); err != nil {
		return err
	}
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}
	s.publisher.Publish("followup.deleted", id)
	return nil
}
