package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stafflink/backoffice/modules/tasks/domain/entities/notification"
	"github.com/stafflink/backoffice/modules/tasks/domain/entities/task"
	"github.com/stafflink/backoffice/pkg/eventbus"
)

// OverdueService sweeps unfinished tasks past their due date and reminds the
// open assignees. The dedup insert keeps it at one reminder per task per day,
// so the sweep is safe to run as often as the ticker fires.
type OverdueService struct {
	tasks         task.Repository
	notifications notification.Repository
	publisher     eventbus.EventBus
	logger        *logrus.Logger
}

func NewOverdueService(tasks task.Repository, notifications notification.Repository, publisher eventbus.EventBus, logger *logrus.Logger) *OverdueService {
	return &OverdueService{
		tasks:         tasks,
		notifications: notifications,
		publisher:     publisher,
		logger:        logger,
	}
}

// Run executes a single sweep. The context must carry a database pool.
func (s *OverdueService) Run(ctx context.Context) error {
	overdue, err := s.tasks.ListOverdue(ctx, time.Now())
	if err != nil {
		return err
	}
	for i := range overdue {
		t := &overdue[i]
		for _, a := range t.Assignees {
			if a.Status == task.AssigneeRejected || a.Status == task.AssigneeCompleted {
				continue
			}
			taskID := t.ID
			err := s.notifications.CreateDedup(ctx, &notification.Notification{
				TenantID: t.TenantID,
				UserID:   a.UserID,
				Kind:     notification.KindTaskOverdue,
				TaskID:   &taskID,
				Message:  fmt.Sprintf("Task %q is overdue", t.Title),
			})
			if err != nil {
				s.logger.WithError(err).WithField("task_id", t.ID).Error("failed to create overdue notification")
			}
		}
		s.publisher.Publish("task.overdue", t)
	}
	if len(overdue) > 0 {
		s.logger.WithField("count", len(overdue)).Info("overdue sweep completed")
	}
	return nil
}

// Start runs the sweep on the given interval until the context is cancelled.
func (s *OverdueService) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Run(ctx); err != nil {
					s.logger.WithError(err).Error("overdue sweep failed")
				}
			}
		}
	}()
}
