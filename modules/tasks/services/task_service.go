package services

import (
	"context"
	"fmt"
	"time"

	"github.com/stafflink/backoffice/modules/core/domain/aggregates/user"
	"github.com/stafflink/backoffice/modules/tasks/domain/entities/notification"
	"github.com/stafflink/backoffice/modules/tasks/domain/entities/task"
	"github.com/stafflink/backoffice/pkg/authz"
	"github.com/stafflink/backoffice/pkg/composables"
	"github.com/stafflink/backoffice/pkg/eventbus"
	"github.com/stafflink/backoffice/pkg/serrors"
)

// ErrBadTransition rejects status changes the lifecycle does not allow.
var ErrBadTransition = serrors.NewError("TASK_BAD_TRANSITION", "status transition not allowed")

var authorizeTasks = func(ctx context.Context, object, action string) error {
	return authz.Authorize(ctx, object, action)
}

type TaskService struct {
	repo          task.Repository
	notifications notification.Repository
	publisher     eventbus.EventBus
}

func NewTaskService(repo task.Repository, notifications notification.Repository, publisher eventbus.EventBus) *TaskService {
	return &TaskService{repo: repo, notifications: notifications, publisher: publisher}
}

func (s *TaskService) GetPaginated(ctx context.Context, params *task.FindParams) ([]task.Task, int64, error) {
	if err := authorizeTasks(ctx, "tasks.tasks", "list"); err != nil {
		return nil, 0, err
	}
	u, err := composables.UseUser(ctx)
	if err != nil {
		return nil, 0, err
	}
	// Employees only see work assigned to them.
	if u.Role() == user.RoleEmployee {
		id := u.ID()
		params.AssigneeID = &id
	}
	return s.repo.GetPaginated(ctx, params)
}

func (s *TaskService) GetByID(ctx context.Context, id uint) (*task.Task, error) {
	if err := authorizeTasks(ctx, "tasks.tasks", "read"); err != nil {
		return nil, err
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	if u.Role() == user.RoleEmployee && !isParticipant(t, u.ID()) {
		return nil, authz.ErrForbidden
	}
	return t, nil
}

func (s *TaskService) Create(ctx context.Context, data *task.CreateDTO) (*task.Task, error) {
	if err := authorizeTasks(ctx, "tasks.tasks", "create"); err != nil {
		return nil, err
	}
	if fields, ok := data.Ok(); !ok {
		return nil, fields
	}
	u, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	var created *task.Task
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		created, err = s.repo.Create(txCtx, data.ToEntity(u.ID()), data.AssigneeIDs)
		if err != nil {
			return err
		}
		for _, userID := range data.AssigneeIDs {
			if err := s.notifyAssigned(txCtx, created, userID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("task.created", created)
	return created, nil
}

func (s *TaskService) Update(ctx context.Context, id uint, data *task.UpdateDTO) (*task.Task, error) {
	if err := authorizeTasks(ctx, "tasks.tasks", "update"); err != nil {
		return nil, err
	}
	if fields, ok := data.Ok(); !ok {
		return nil, fields
	}
	var updated *task.Task
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if existing.Status == task.StatusCompleted || existing.Status == task.StatusCancelled {
			return ErrBadTransition.WithMeta(map[string]string{"status": string(existing.Status)})
		}
		data.Apply(existing)
		updated, err = s.repo.Update(txCtx, existing)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("task.updated", updated)
	return updated, nil
}

// SetMyStatus records the acting assignee's decision and folds the result
// into the task status. All assignments rejected reopens the task and tells
// the creator; all of them completed closes it.
func (s *TaskService) SetMyStatus(ctx context.Context, taskID uint, data *task.StatusDTO) (*task.Task, error) {
	if err := authorizeTasks(ctx, "tasks.tasks", "status"); err != nil {
		return nil, err
	}
	if fields, ok := data.Ok(); !ok {
		return nil, fields
	}
	u, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	target := task.AssigneeStatus(data.Status)

	var result *task.Task
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		t, err := s.repo.GetByID(txCtx, taskID)
		if err != nil {
			return err
		}
		if !t.IsActive || t.Status == task.StatusCancelled || t.Status == task.StatusCompleted {
			return ErrBadTransition.WithMeta(map[string]string{"status": string(t.Status)})
		}
		var mine *task.Assignee
		for i := range t.Assignees {
			if t.Assignees[i].UserID == u.ID() {
				mine = &t.Assignees[i]
				break
			}
		}
		if mine == nil {
			return authz.ErrForbidden
		}
		if !mine.Status.CanTransition(target) {
			return ErrBadTransition.WithMeta(map[string]string{
				"from": string(mine.Status),
				"to":   string(target),
			})
		}
		if err := s.repo.SetAssigneeStatus(txCtx, taskID, u.ID(), target, data.Note); err != nil {
			return err
		}
		mine.Status = target

		derived := task.DeriveStatus(t.Assignees)
		if derived != t.Status {
			var completedAt *time.Time
			if derived == task.StatusCompleted {
				now := time.Now()
				completedAt = &now
			}
			if err := s.repo.UpdateStatus(txCtx, taskID, derived, completedAt); err != nil {
				return err
			}
			if derived == task.StatusCompleted {
				if err := s.notifyCreator(txCtx, t, notification.KindTaskCompleted,
					fmt.Sprintf("Task %q has been completed", t.Title)); err != nil {
					return err
				}
			}
		}
		// The full-rejection check is independent of a status flip: a task
		// that never left open still needs to tell its creator.
		if task.AllRejected(t.Assignees) {
			if err := s.notifyCreator(txCtx, t, notification.KindTaskReopened,
				fmt.Sprintf("Task %q was rejected by all assignees and reopened", t.Title)); err != nil {
				return err
			}
		}
		result, err = s.repo.GetByID(txCtx, taskID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("task.status_changed", result)
	return result, nil
}

// Reassign replaces the assignee set, returning everyone to pending.
func (s *TaskService) Reassign(ctx context.Context, taskID uint, assigneeIDs []uint) (*task.Task, error) {
	if err := authorizeTasks(ctx, "tasks.tasks", "update"); err != nil {
		return nil, err
	}
	if len(assigneeIDs) == 0 {
		return nil, serrors.ValidationErrors{"assignee_ids": "is required"}
	}
	var result *task.Task
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		t, err := s.repo.GetByID(txCtx, taskID)
		if err != nil {
			return err
		}
		if t.Status == task.StatusCompleted || t.Status == task.StatusCancelled {
			return ErrBadTransition.WithMeta(map[string]string{"status": string(t.Status)})
		}
		if err := s.repo.ResetAssignees(txCtx, taskID, assigneeIDs); err != nil {
			return err
		}
		if err := s.repo.UpdateStatus(txCtx, taskID, task.StatusOpen, nil); err != nil {
			return err
		}
		for _, userID := range assigneeIDs {
			if err := s.notifyAssigned(txCtx, t, userID); err != nil {
				return err
			}
		}
		result, err = s.repo.GetByID(txCtx, taskID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("task.reassigned", result)
	return result, nil
}

func (s *TaskService) Cancel(ctx context.Context, id uint) (*task.Task, error) {
	if err := authorizeTasks(ctx, "tasks.tasks", "cancel"); err != nil {
		return nil, err
	}
	var result *task.Task
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		t, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if t.Status == task.StatusCompleted || t.Status == task.StatusCancelled {
			return ErrBadTransition.WithMeta(map[string]string{"status": string(t.Status)})
		}
		if err := s.repo.UpdateStatus(txCtx, id, task.StatusCancelled, nil); err != nil {
			return err
		}
		result, err = s.repo.GetByID(txCtx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("task.cancelled", result)
	return result, nil
}

func (s *TaskService) Delete(ctx context.Context, id uint) error {
	if err := authorizeTasks(ctx, "tasks.tasks", "delete"); err != nil {
		return err
	}
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}
	s.publisher.Publish("task.deleted", id)
	return nil
}

func (s *TaskService) notifyAssigned(ctx context.Context, t *task.Task, userID uint) error {
	taskID := t.ID
	return s.notifications.Create(ctx, &notification.Notification{
		TenantID: t.TenantID,
		UserID:   userID,
		Kind:     notification.KindTaskAssigned,
		TaskID:   &taskID,
		Message:  fmt.Sprintf("You have been assigned to task %q", t.Title),
	})
}

func (s *TaskService) notifyCreator(ctx context.Context, t *task.Task, kind, message string) error {
	taskID := t.ID
	return s.notifications.Create(ctx, &notification.Notification{
		TenantID: t.TenantID,
		UserID:   t.CreatedBy,
		Kind:     kind,
		TaskID:   &taskID,
		Message:  message,
	})
}

func isParticipant(t *task.Task, userID uint) bool {
	if t.CreatedBy == userID {
		return true
	}
	for _, a := range t.Assignees {
		if a.UserID == userID {
			return true
		}
	}
	return false
}
