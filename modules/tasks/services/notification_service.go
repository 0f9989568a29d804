package services

import (
	"context"

	"github.com/stafflink/backoffice/modules/tasks/domain/entities/notification"
	"github.com/stafflink/backoffice/pkg/composables"
)

// NotificationService only ever operates on the acting user's notifications,
// so it carries no authz objects beyond requiring authentication.
type NotificationService struct {
	repo notification.Repository
}

func NewNotificationService(repo notification.Repository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) GetMine(ctx context.Context, unreadOnly bool, limit, offset int) ([]notification.Notification, int64, error) {
	u, err := composables.UseUser(ctx)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.GetPaginated(ctx, &notification.FindParams{
		UserID:     u.ID(),
		UnreadOnly: unreadOnly,
		Limit:      limit,
		Offset:     offset,
	})
}

func (s *NotificationService) UnreadCount(ctx context.Context) (int64, error) {
	u, err := composables.UseUser(ctx)
	if err != nil {
		return 0, err
	}
	return s.repo.CountUnread(ctx, u.ID())
}

func (s *NotificationService) MarkRead(ctx context.Context, id uint) error {
	u, err := composables.UseUser(ctx)
	if err != nil {
		return err
	}
	return composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.MarkRead(txCtx, id, u.ID())
	})
}

func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	u, err := composables.UseUser(ctx)
	if err != nil {
		return err
	}
	return composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.MarkAllRead(txCtx, u.ID())
	})
}
