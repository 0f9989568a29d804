package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/stafflink/backoffice/modules/core/domain/aggregates/user"
	"github.com/stafflink/backoffice/modules/tasks/domain/entities/notification"
	"github.com/stafflink/backoffice/modules/tasks/domain/entities/task"
	"github.com/stafflink/backoffice/pkg/authz"
	"github.com/stafflink/backoffice/pkg/eventbus"
	"github.com/stafflink/backoffice/pkg/itf"
	"github.com/stafflink/backoffice/pkg/serrors"
)

type memTaskRepo struct {
	nextID uint
	tasks  map[uint]*task.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{nextID: 1, tasks: make(map[uint]*task.Task)}
}

func (m *memTaskRepo) clone(t *task.Task) *task.Task {
	cp := *t
	cp.Assignees = append([]task.Assignee(nil), t.Assignees...)
	return &cp
}

func (m *memTaskRepo) GetPaginated(ctx context.Context, params *task.FindParams) ([]task.Task, int64, error) {
	out := make([]task.Task, 0)
	for _, t := range m.tasks {
		if params.AssigneeID != nil {
			found := false
			for _, a := range t.Assignees {
				if a.UserID == *params.AssigneeID {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, *m.clone(t))
	}
	return out, int64(len(out)), nil
}

func (m *memTaskRepo) GetByID(ctx context.Context, id uint) (*task.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, task.ErrNotFound
	}
	return m.clone(t), nil
}

func (m *memTaskRepo) Create(ctx context.Context, t *task.Task, assigneeIDs []uint) (*task.Task, error) {
	cp := m.clone(t)
	cp.ID = m.nextID
	m.nextID++
	for _, userID := range assigneeIDs {
		cp.Assignees = append(cp.Assignees, task.Assignee{TaskID: cp.ID, UserID: userID, Status: task.AssigneePending})
	}
	m.tasks[cp.ID] = cp
	return m.clone(cp), nil
}

func (m *memTaskRepo) Update(ctx context.Context, t *task.Task) (*task.Task, error) {
	if _, ok := m.tasks[t.ID]; !ok {
		return nil, task.ErrNotFound
	}
	existing := m.tasks[t.ID]
	cp := m.clone(t)
	cp.Assignees = append([]task.Assignee(nil), existing.Assignees...)
	m.tasks[t.ID] = cp
	return m.clone(cp), nil
}

func (m *memTaskRepo) UpdateStatus(ctx context.Context, id uint, status task.Status, completedAt *time.Time) error {
	t, ok := m.tasks[id]
	if !ok {
		return task.ErrNotFound
	}
	t.Status = status
	t.CompletedAt = completedAt
	return nil
}

func (m *memTaskRepo) SetAssigneeStatus(ctx context.Context, taskID, userID uint, status task.AssigneeStatus, note string) error {
	t, ok := m.tasks[taskID]
	if !ok {
		return task.ErrNotFound
	}
	for i := range t.Assignees {
		if t.Assignees[i].UserID == userID {
			t.Assignees[i].Status = status
			t.Assignees[i].Note = note
			return nil
		}
	}
	return task.ErrNotFound
}

func (m *memTaskRepo) ResetAssignees(ctx context.Context, taskID uint, assigneeIDs []uint) error {
	t, ok := m.tasks[taskID]
	if !ok {
		return task.ErrNotFound
	}
	t.Assignees = nil
	for _, userID := range assigneeIDs {
		t.Assignees = append(t.Assignees, task.Assignee{TaskID: taskID, UserID: userID, Status: task.AssigneePending})
	}
	return nil
}

func (m *memTaskRepo) Delete(ctx context.Context, id uint) error {
	t, ok := m.tasks[id]
	if !ok {
		return task.ErrNotFound
	}
	t.IsActive = false
	return nil
}

func (m *memTaskRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]task.Task, error) {
	out := make([]task.Task, 0)
	for _, t := range m.tasks {
		if !t.IsActive || t.DueDate == nil || !t.DueDate.Before(asOf) {
			continue
		}
		if t.Status == task.StatusOpen || t.Status == task.StatusInProgress {
			out = append(out, *m.clone(t))
		}
	}
	return out, nil
}

type memNotificationRepo struct {
	created []notification.Notification
	deduped []notification.Notification
}

func (m *memNotificationRepo) GetPaginated(ctx context.Context, params *notification.FindParams) ([]notification.Notification, int64, error) {
	return nil, 0, nil
}

func (m *memNotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	m.created = append(m.created, *n)
	return nil
}

func (m *memNotificationRepo) CreateDedup(ctx context.Context, n *notification.Notification) error {
	for _, existing := range m.deduped {
		if existing.UserID == n.UserID && existing.Kind == n.Kind && existing.TaskID != nil && n.TaskID != nil && *existing.TaskID == *n.TaskID {
			return nil
		}
	}
	m.deduped = append(m.deduped, *n)
	return nil
}

func (m *memNotificationRepo) MarkRead(ctx context.Context, id, userID uint) error  { return nil }
func (m *memNotificationRepo) MarkAllRead(ctx context.Context, userID uint) error   { return nil }
func (m *memNotificationRepo) CountUnread(ctx context.Context, userID uint) (int64, error) {
	return 0, nil
}

func (m *memNotificationRepo) byKind(kind string) []notification.Notification {
	out := make([]notification.Notification, 0)
	for _, n := range m.created {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

func testBus() eventbus.EventBus {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return eventbus.NewEventPublisher(logger)
}

func allowAll(t *testing.T) {
	t.Helper()
	prev := authorizeTasks
	authorizeTasks = func(ctx context.Context, object, action string) error { return nil }
	t.Cleanup(func() { authorizeTasks = prev })
}

func setupTask(t *testing.T, repo *memTaskRepo, notifications *memNotificationRepo, assigneeIDs []uint) (*TaskService, *task.Task, context.Context) {
	t.Helper()
	allowAll(t)
	svc := NewTaskService(repo, notifications, testBus())

	tc := itf.NewTestContext()
	creator := itf.TestUser(100, user.RoleManager, tc.TenantID())
	ctx := tc.WithUser(creator).Build(t)

	created, err := svc.Create(ctx, &task.CreateDTO{
		Title:       "Prepare onboarding",
		AssigneeIDs: assigneeIDs,
	})
	require.NoError(t, err)
	require.Equal(t, task.StatusOpen, created.Status)
	require.Len(t, created.Assignees, len(assigneeIDs))
	return svc, created, ctx
}

func asUser(t *testing.T, id uint, role user.Role) context.Context {
	t.Helper()
	tc := itf.NewTestContext()
	return tc.WithUser(itf.TestUser(id, role, tc.TenantID())).Build(t)
}

func TestTaskService_CreateNotifiesAssignees(t *testing.T) {
	repo := newMemTaskRepo()
	notifications := &memNotificationRepo{}
	_, created, _ := setupTask(t, repo, notifications, []uint{1, 2})

	assigned := notifications.byKind(notification.KindTaskAssigned)
	require.Len(t, assigned, 2)
	require.Equal(t, created.ID, *assigned[0].TaskID)
}

func TestTaskService_AcceptThenComplete(t *testing.T) {
	repo := newMemTaskRepo()
	notifications := &memNotificationRepo{}
	svc, created, _ := setupTask(t, repo, notifications, []uint{1})

	ctx := asUser(t, 1, user.RoleEmployee)
	updated, err := svc.SetMyStatus(ctx, created.ID, &task.StatusDTO{Status: "accepted"})
	require.NoError(t, err)
	require.Equal(t, task.StatusInProgress, updated.Status)

	updated, err = svc.SetMyStatus(ctx, created.ID, &task.StatusDTO{Status: "completed"})
	require.NoError(t, err)
	require.Equal(t, task.StatusCompleted, updated.Status)
	require.NotNil(t, repo.tasks[created.ID].CompletedAt)

	completedNotices := notifications.byKind(notification.KindTaskCompleted)
	require.Len(t, completedNotices, 1)
	require.EqualValues(t, 100, completedNotices[0].UserID, "creator is notified")
}

func TestTaskService_CompleteWithoutAcceptRejected(t *testing.T) {
	repo := newMemTaskRepo()
	svc, created, _ := setupTask(t, repo, &memNotificationRepo{}, []uint{1})

	ctx := asUser(t, 1, user.RoleEmployee)
	_, err := svc.SetMyStatus(ctx, created.ID, &task.StatusDTO{Status: "completed"})

	var base *serrors.BaseError
	require.ErrorAs(t, err, &base)
	require.Equal(t, "TASK_BAD_TRANSITION", base.Code)
	require.Equal(t, task.StatusOpen, repo.tasks[created.ID].Status)
}

func TestTaskService_AllRejectedReopens(t *testing.T) {
	repo := newMemTaskRepo()
	notifications := &memNotificationRepo{}
	svc, created, _ := setupTask(t, repo, notifications, []uint{1, 2})

	_, err := svc.SetMyStatus(asUser(t, 1, user.RoleEmployee), created.ID, &task.StatusDTO{Status: "rejected"})
	require.NoError(t, err)
	require.Equal(t, task.StatusOpen, repo.tasks[created.ID].Status, "partial rejection keeps the task open")

	updated, err := svc.SetMyStatus(asUser(t, 2, user.RoleEmployee), created.ID, &task.StatusDTO{Status: "rejected"})
	require.NoError(t, err)
	require.Equal(t, task.StatusOpen, updated.Status)

	reopened := notifications.byKind(notification.KindTaskReopened)
	require.Len(t, reopened, 1)
	require.EqualValues(t, 100, reopened[0].UserID)
}

func TestTaskService_MixedRejectionAndCompletionCloses(t *testing.T) {
	repo := newMemTaskRepo()
	svc, created, _ := setupTask(t, repo, &memNotificationRepo{}, []uint{1, 2})

	_, err := svc.SetMyStatus(asUser(t, 1, user.RoleEmployee), created.ID, &task.StatusDTO{Status: "rejected"})
	require.NoError(t, err)

	ctx := asUser(t, 2, user.RoleEmployee)
	_, err = svc.SetMyStatus(ctx, created.ID, &task.StatusDTO{Status: "accepted"})
	require.NoError(t, err)
	updated, err := svc.SetMyStatus(ctx, created.ID, &task.StatusDTO{Status: "completed"})
	require.NoError(t, err)
	require.Equal(t, task.StatusCompleted, updated.Status)
}

func TestTaskService_NonAssigneeForbidden(t *testing.T) {
	repo := newMemTaskRepo()
	svc, created, _ := setupTask(t, repo, &memNotificationRepo{}, []uint{1})

	_, err := svc.SetMyStatus(asUser(t, 99, user.RoleEmployee), created.ID, &task.StatusDTO{Status: "accepted"})
	require.ErrorIs(t, err, authz.ErrForbidden)
}

func TestTaskService_StatusChangeOnClosedTaskRejected(t *testing.T) {
	repo := newMemTaskRepo()
	svc, created, ctx := setupTask(t, repo, &memNotificationRepo{}, []uint{1})

	_, err := svc.Cancel(ctx, created.ID)
	require.NoError(t, err)

	_, err = svc.SetMyStatus(asUser(t, 1, user.RoleEmployee), created.ID, &task.StatusDTO{Status: "accepted"})
	var base *serrors.BaseError
	require.ErrorAs(t, err, &base)
	require.Equal(t, "TASK_BAD_TRANSITION", base.Code)
}

func TestTaskService_ReassignResetsProgress(t *testing.T) {
	repo := newMemTaskRepo()
	notifications := &memNotificationRepo{}
	svc, created, ctx := setupTask(t, repo, notifications, []uint{1})

	_, err := svc.SetMyStatus(asUser(t, 1, user.RoleEmployee), created.ID, &task.StatusDTO{Status: "accepted"})
	require.NoError(t, err)

	updated, err := svc.Reassign(ctx, created.ID, []uint{2, 3})
	require.NoError(t, err)
	require.Equal(t, task.StatusOpen, updated.Status)
	require.Len(t, updated.Assignees, 2)
	for _, a := range updated.Assignees {
		require.Equal(t, task.AssigneePending, a.Status)
	}
	require.Len(t, notifications.byKind(notification.KindTaskAssigned), 3)
}

func TestTaskService_EmployeeListScopedToSelf(t *testing.T) {
	repo := newMemTaskRepo()
	svc, _, ctx := setupTask(t, repo, &memNotificationRepo{}, []uint{1})
	_, err := svc.Create(ctx, &task.CreateDTO{Title: "Another", AssigneeIDs: []uint{2}})
	require.NoError(t, err)

	tasks, total, err := svc.GetPaginated(asUser(t, 1, user.RoleEmployee), &task.FindParams{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, tasks, 1)
	require.Equal(t, "Prepare onboarding", tasks[0].Title)
}

func TestTaskService_EmployeeCannotReadForeignTask(t *testing.T) {
	repo := newMemTaskRepo()
	svc, created, _ := setupTask(t, repo, &memNotificationRepo{}, []uint{1})

	_, err := svc.GetByID(asUser(t, 99, user.RoleEmployee), created.ID)
	require.ErrorIs(t, err, authz.ErrForbidden)

	got, err := svc.GetByID(asUser(t, 1, user.RoleEmployee), created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
}

func TestOverdueService_DedupsDaily(t *testing.T) {
	repo := newMemTaskRepo()
	notifications := &memNotificationRepo{}
	_, created, _ := setupTask(t, repo, notifications, []uint{1, 2})

	yesterday := time.Now().Add(-24 * time.Hour)
	repo.tasks[created.ID].DueDate = &yesterday
	require.NoError(t, repo.SetAssigneeStatus(context.Background(), created.ID, 2, task.AssigneeRejected, ""))

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	sweeper := NewOverdueService(repo, notifications, testBus(), logger)

	require.NoError(t, sweeper.Run(context.Background()))
	require.NoError(t, sweeper.Run(context.Background()))

	require.Len(t, notifications.deduped, 1, "rejected assignee skipped, repeat sweep deduped")
	require.EqualValues(t, 1, notifications.deduped[0].UserID)
	require.Equal(t, notification.KindTaskOverdue, notifications.deduped[0].Kind)
}

func TestTaskService_ValidationErrors(t *testing.T) {
	repo := newMemTaskRepo()
	allowAll(t)
	svc := NewTaskService(repo, &memNotificationRepo{}, testBus())
	ctx := asUser(t, 100, user.RoleManager)

	_, err := svc.Create(ctx, &task.CreateDTO{Title: ""})
	var fields serrors.ValidationErrors
	require.True(t, errors.As(err, &fields))
	require.Contains(t, fields, "Title")
	require.Contains(t, fields, "AssigneeIDs")
}
