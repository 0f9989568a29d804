package persistence

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/go-faster/errors"

	"github.com/stafflink/backoffice/modules/tasks/domain/entities/task"
	"github.com/stafflink/backoffice/pkg/composables"
	"github.com/stafflink/backoffice/pkg/repo"
)

const (
	taskFindQuery = `
		SELECT t.id, t.tenant_id, t.title, t.description, t.priority, t.status,
			t.due_date, t.created_by, t.completed_at, t.is_active, t.created_at, t.updated_at
		FROM tasks t`

	taskCountQuery = `SELECT COUNT(*) FROM tasks t`

	taskInsertQuery = `
		INSERT INTO tasks (tenant_id, title, description, priority, status, due_date, created_by, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	taskUpdateQuery = `
		UPDATE tasks
		SET title = $3, description = $4, priority = $5, due_date = $6, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2`

	taskUpdateStatusQuery = `
		UPDATE tasks
		SET status = $3, completed_at = $4, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2`

	taskDeleteQuery = `UPDATE tasks SET is_active = false, updated_at = NOW() WHERE id = $1 AND tenant_id = $2`

	taskOverdueQuery = `
		SELECT t.id, t.tenant_id, t.title, t.description, t.priority, t.status,
			t.due_date, t.created_by, t.completed_at, t.is_active, t.created_at, t.updated_at
		FROM tasks t
		WHERE t.is_active
			AND t.status IN ('open', 'in_progress')
			AND t.due_date IS NOT NULL
			AND t.due_date < $1`

	assigneeFindQuery = `
		SELECT ta.task_id, ta.user_id, ta.status, ta.note, ta.updated_at
		FROM task_assignees ta
		WHERE ta.task_id = ANY($1)
		ORDER BY ta.user_id`

	assigneeInsertQuery = `INSERT INTO task_assignees (task_id, user_id, status) VALUES ($1, $2, 'pending')`

	assigneeUpdateQuery = `
		UPDATE task_assignees
		SET status = $3, note = $4, updated_at = NOW()
		WHERE task_id = $1 AND user_id = $2`

	assigneeDeleteQuery = `DELETE FROM task_assignees WHERE task_id = $1`
)

type PgTaskRepository struct{}

func NewTaskRepository() task.Repository {
	return &PgTaskRepository{}
}

func (g *PgTaskRepository) queryTasks(ctx context.Context, query string, args ...interface{}) ([]task.Task, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query tasks")
	}
	defer rows.Close()

	tasks := make([]task.Task, 0)
	for rows.Next() {
		var t task.Task
		var description sql.NullString
		var dueDate, completedAt sql.NullTime
		if err := rows.Scan(
			&t.ID,
			&t.TenantID,
			&t.Title,
			&description,
			&t.Priority,
			&t.Status,
			&dueDate,
			&t.CreatedBy,
			&completedAt,
			&t.IsActive,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan task")
		}
		t.Description = description.String
		if dueDate.Valid {
			d := dueDate.Time
			t.DueDate = &d
		}
		if completedAt.Valid {
			c := completedAt.Time
			t.CompletedAt = &c
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// loadAssignees attaches assignee rows to the given tasks in one query.
func (g *PgTaskRepository) loadAssignees(ctx context.Context, tasks []task.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	ids := make([]int64, 0, len(tasks))
	byID := make(map[uint]*task.Task, len(tasks))
	for i := range tasks {
		ids = append(ids, int64(tasks[i].ID))
		byID[tasks[i].ID] = &tasks[i]
	}
	rows, err := tx.Query(ctx, assigneeFindQuery, ids)
	if err != nil {
		return errors.Wrap(err, "failed to query task assignees")
	}
	defer rows.Close()
	for rows.Next() {
		var a task.Assignee
		var note sql.NullString
		if err := rows.Scan(&a.TaskID, &a.UserID, &a.Status, &note, &a.UpdatedAt); err != nil {
			return errors.Wrap(err, "failed to scan task assignee")
		}
		a.Note = note.String
		if t, ok := byID[a.TaskID]; ok {
			t.Assignees = append(t.Assignees, a)
		}
	}
	return rows.Err()
}

func (g *PgTaskRepository) buildFilters(ctx context.Context, params *task.FindParams) (string, string, []interface{}, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return "", "", nil, err
	}
	where := []string{"t.tenant_id = $1"}
	args := []interface{}{tenantID.String()}
	join := ""
	if !params.IncludeInactive {
		where = append(where, "t.is_active")
	}
	if params.Status != "" {
		args = append(args, string(params.Status))
		where = append(where, "t.status = $"+strconv.Itoa(len(args)))
	}
	if params.Priority != "" {
		args = append(args, string(params.Priority))
		where = append(where, "t.priority = $"+strconv.Itoa(len(args)))
	}
	if params.CreatedBy != nil {
		args = append(args, *params.CreatedBy)
		where = append(where, "t.created_by = $"+strconv.Itoa(len(args)))
	}
	if params.AssigneeID != nil {
		join = "INNER JOIN task_assignees taf ON taf.task_id = t.id"
		args = append(args, *params.AssigneeID)
		where = append(where, "taf.user_id = $"+strconv.Itoa(len(args)))
	}
	if params.DueFrom != nil {
		args = append(args, *params.DueFrom)
		where = append(where, "t.due_date >= $"+strconv.Itoa(len(args)))
	}
	if params.DueTo != nil {
		args = append(args, *params.DueTo)
		where = append(where, "t.due_date <= $"+strconv.Itoa(len(args)))
	}
	if params.Overdue {
		where = append(where, "t.status IN ('open', 'in_progress')", "t.due_date IS NOT NULL", "t.due_date < NOW()")
	}
	if params.Search != "" {
		where = append(where, repo.ILike(len(args)+1, "t.title", "t.description"))
		args = append(args, "%"+params.Search+"%")
	}
	return join, repo.JoinWhere(where...), args, nil
}

func (g *PgTaskRepository) GetPaginated(ctx context.Context, params *task.FindParams) ([]task.Task, int64, error) {
	join, whereClause, args, err := g.buildFilters(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := tx.QueryRow(ctx, repo.Join(taskCountQuery, join, whereClause), args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count tasks")
	}
	query := repo.Join(
		taskFindQuery,
		join,
		whereClause,
		"ORDER BY t.created_at DESC",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	tasks, err := g.queryTasks(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	if err := g.loadAssignees(ctx, tasks); err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (g *PgTaskRepository) GetByID(ctx context.Context, id uint) (*task.Task, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := g.queryTasks(ctx, taskFindQuery+" WHERE t.id = $1 AND t.tenant_id = $2", id, tenantID.String())
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, task.ErrNotFound
	}
	if err := g.loadAssignees(ctx, tasks); err != nil {
		return nil, err
	}
	return &tasks[0], nil
}

func (g *PgTaskRepository) Create(ctx context.Context, t *task.Task, assigneeIDs []uint) (*task.Task, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var id uint
	err = tx.QueryRow(
		ctx,
		taskInsertQuery,
		tenantID.String(),
		t.Title,
		stringToNullString(t.Description),
		string(t.Priority),
		string(t.Status),
		timePtrToNullTime(t.DueDate),
		t.CreatedBy,
		t.IsActive,
	).Scan(&id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create task")
	}
	for _, userID := range assigneeIDs {
		if _, err := tx.Exec(ctx, assigneeInsertQuery, id, userID); err != nil {
			return nil, errors.Wrap(err, "failed to assign task")
		}
	}
	return g.GetByID(ctx, id)
}

func (g *PgTaskRepository) Update(ctx context.Context, t *task.Task) (*task.Task, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tag, err := tx.Exec(
		ctx,
		taskUpdateQuery,
		t.ID,
		tenantID.String(),
		t.Title,
		stringToNullString(t.Description),
		string(t.Priority),
		timePtrToNullTime(t.DueDate),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update task")
	}
	if tag.RowsAffected() == 0 {
		return nil, task.ErrNotFound
	}
	return g.GetByID(ctx, t.ID)
}

func (g *PgTaskRepository) UpdateStatus(ctx context.Context, id uint, status task.Status, completedAt *time.Time) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, taskUpdateStatusQuery, id, tenantID.String(), string(status), timePtrToNullTime(completedAt))
	if err != nil {
		return errors.Wrap(err, "failed to update task status")
	}
	if tag.RowsAffected() == 0 {
		return task.ErrNotFound
	}
	return nil
}

func (g *PgTaskRepository) SetAssigneeStatus(ctx context.Context, taskID, userID uint, status task.AssigneeStatus, note string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, assigneeUpdateQuery, taskID, userID, string(status), stringToNullString(note))
	if err != nil {
		return errors.Wrap(err, "failed to update assignee status")
	}
	if tag.RowsAffected() == 0 {
		return task.ErrNotFound
	}
	return nil
}

// ResetAssignees replaces all assignments, returning them to pending.
func (g *PgTaskRepository) ResetAssignees(ctx context.Context, taskID uint, assigneeIDs []uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, assigneeDeleteQuery, taskID); err != nil {
		return errors.Wrap(err, "failed to clear task assignees")
	}
	for _, userID := range assigneeIDs {
		if _, err := tx.Exec(ctx, assigneeInsertQuery, taskID, userID); err != nil {
			return errors.Wrap(err, "failed to assign task")
		}
	}
	return nil
}

func (g *PgTaskRepository) Delete(ctx context.Context, id uint) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, taskDeleteQuery, id, tenantID.String())
	if err != nil {
		return errors.Wrap(err, "failed to delete task")
	}
	if tag.RowsAffected() == 0 {
		return task.ErrNotFound
	}
	return nil
}

func (g *PgTaskRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]task.Task, error) {
	tasks, err := g.queryTasks(ctx, taskOverdueQuery, asOf)
	if err != nil {
		return nil, err
	}
	if err := g.loadAssignees(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func stringToNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func timePtrToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
