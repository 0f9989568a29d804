package services

import (
	"context"

	"github.com/stafflink/backoffice/modules/crm/domain/entities/meeting"
	"github.com/stafflink/backoffice/pkg/composables"
	"github.com/stafflink/backoffice/pkg/eventbus"
	"github.com/stafflink/backoffice/pkg/serrors"
)

var (
	// ErrMeetingConflict rejects a slot overlapping another scheduled meeting
	// of the same organizer.
	ErrMeetingConflict = serrors.NewError("MEETING_CONFLICT", "organizer already has a meeting in this time slot")

	// ErrMeetingNotScheduled rejects lifecycle changes on completed or
	// cancelled meetings.
	ErrMeetingNotScheduled = serrors.NewError("MEETING_NOT_SCHEDULED", "meeting is not in scheduled state")
)

type MeetingService struct {
	repo      meeting.Repository
	publisher eventbus.EventBus
}

func NewMeetingService(repo meeting.Repository, publisher eventbus.EventBus) *MeetingService {
	return &MeetingService{repo: repo, publisher: publisher}
}

func (s *MeetingService) GetPaginated(ctx context.Context, params *meeting.FindParams) ([]meeting.Meeting, int64, error) {
	if err := authorizeCRM(ctx, "crm.meetings", "list"); err != nil {
		return nil, 0, err
	}
	return s.repo.GetPaginated(ctx, params)
}

func (s *MeetingService) GetByID(ctx context.Context, id uint) (*meeting.Meeting, error) {
	if err := authorizeCRM(ctx, "crm.meetings", "read"); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Create schedules a meeting with the acting user as organizer. The slot is
// checked against the organizer's other scheduled meetings inside the same
// transaction as the insert.
func (s *MeetingService) Create(ctx context.Context, data *meeting.CreateDTO) (*meeting.Meeting, error) {
	if err := authorizeCRM(ctx, "crm.meetings", "create"); err != nil {
		return nil, err
	}
	if fields, ok := data.Ok(); !ok {
		return nil, fields
	}
	u, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	var created *meeting.Meeting
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		overlap, err := s.repo.HasOverlap(txCtx, u.ID(), data.StartsAt, data.EndsAt, 0)
		if err != nil {
			return err
		}
		if overlap {
			return ErrMeetingConflict
		}
		created, err = s.repo.Create(txCtx, data.ToEntity(u.ID()))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("meeting.created", created)
	return created, nil
}

func (s *MeetingService) Update(ctx context.Context, id uint, data *meeting.UpdateDTO) (*meeting.Meeting, error) {
	if err := authorizeCRM(ctx, "crm.meetings", "update"); err != nil {
		return nil, err
	}
	if fields, ok := data.Ok(); !ok {
		return nil, fields
	}
	var updated *meeting.Meeting
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if existing.Status != meeting.StatusScheduled {
			return ErrMeetingNotScheduled.WithMeta(map[string]string{"status": string(existing.Status)})
		}
		overlap, err := s.repo.HasOverlap(txCtx, existing.OrganizerID, data.StartsAt, data.EndsAt, id)
		if err != nil {
			return err
		}
		if overlap {
			return ErrMeetingConflict
		}
		data.Apply(existing)
		updated, err = s.repo.Update(txCtx, existing)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("meeting.updated", updated)
	return updated, nil
}

func (s *MeetingService) Complete(ctx context.Context, id uint) (*meeting.Meeting, error) {
	return s.setStatus(ctx, id, meeting.StatusCompleted, "meeting.completed")
}

func (s *MeetingService) Cancel(ctx context.Context, id uint) (*meeting.Meeting, error) {
	return s.setStatus(ctx, id, meeting.StatusCancelled, "meeting.cancelled")
}

func (s *MeetingService) setStatus(ctx context.Context, id uint, status meeting.Status, event string) (*meeting.Meeting, error) {
	if err := authorizeCRM(ctx, "crm.meetings", "update"); err != nil {
		return nil, err
	}
	var result *meeting.Meeting
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if existing.Status != meeting.StatusScheduled {
			return ErrMeetingNotScheduled.WithMeta(map[string]string{"status": string(existing.Status)})
		}
		if err := s.repo.UpdateStatus(txCtx, id, status); err != nil {
			return err
		}
		result, err = s.repo.GetByID(txCtx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(event, result)
	return result, nil
}

func (s *MeetingService) Delete(ctx context.Context, id uint) error {
	if err := authorizeCRM(ctx, "crm.meetings", "delete"); err != nil {
		return err
	}
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}
	s.publisher.Publish("meeting.deleted", id)
	return nil
}
