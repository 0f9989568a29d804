package persistence

import (
	"context"
	"database/sql"

	"github.com/go-faster/errors"

	"github.com/stafflink/backoffice/modules/tasks/domain/entities/notification"
	"github.com/stafflink/backoffice/pkg/composables"
	"github.com/stafflink/backoffice/pkg/repo"
)

const (
	notificationFindQuery = `
		SELECT n.id, n.tenant_id, n.user_id, n.kind, n.task_id, n.message, n.is_read, n.created_at
		FROM notifications n`

	notificationCountQuery = `SELECT COUNT(*) FROM notifications n`

	notificationInsertQuery = `
		INSERT INTO notifications (tenant_id, user_id, kind, task_id, message)
		VALUES ($1, $2, $3, $4, $5)`

	// The partial unique index on (task_id, user_id, kind, day) absorbs
	// duplicate overdue reminders.
	notificationInsertDedupQuery = `
		INSERT INTO notifications (tenant_id, user_id, kind, task_id, message)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING`

	notificationMarkReadQuery    = `UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2 AND tenant_id = $3`
	notificationMarkAllReadQuery = `UPDATE notifications SET is_read = true WHERE user_id = $1 AND tenant_id = $2 AND NOT is_read`
	notificationCountUnreadQuery = `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND tenant_id = $2 AND NOT is_read`
)

type PgNotificationRepository struct{}

func NewNotificationRepository() notification.Repository {
	return &PgNotificationRepository{}
}

func (g *PgNotificationRepository) GetPaginated(ctx context.Context, params *notification.FindParams) ([]notification.Notification, int64, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, 0, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}
	where := []string{"n.tenant_id = $1", "n.user_id = $2"}
	args := []interface{}{tenantID.String(), params.UserID}
	if params.UnreadOnly {
		where = append(where, "NOT n.is_read")
	}
	whereClause := repo.JoinWhere(where...)

	var total int64
	if err := tx.QueryRow(ctx, repo.Join(notificationCountQuery, whereClause), args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count notifications")
	}

	query := repo.Join(
		notificationFindQuery,
		whereClause,
		"ORDER BY n.created_at DESC",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to query notifications")
	}
	defer rows.Close()

	notifications := make([]notification.Notification, 0)
	for rows.Next() {
		var n notification.Notification
		var taskID sql.NullInt64
		if err := rows.Scan(&n.ID, &n.TenantID, &n.UserID, &n.Kind, &taskID, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, 0, errors.Wrap(err, "failed to scan notification")
		}
		if taskID.Valid {
			id := uint(taskID.Int64)
			n.TaskID = &id
		}
		notifications = append(notifications, n)
	}
	return notifications, total, rows.Err()
}

func (g *PgNotificationRepository) insert(ctx context.Context, query string, n *notification.Notification) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	var taskID sql.NullInt64
	if n.TaskID != nil {
		taskID = sql.NullInt64{Int64: int64(*n.TaskID), Valid: true}
	}
	if _, err := tx.Exec(ctx, query, n.TenantID.String(), n.UserID, n.Kind, taskID, n.Message); err != nil {
		return errors.Wrap(err, "failed to create notification")
	}
	return nil
}

func (g *PgNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return g.insert(ctx, notificationInsertQuery, n)
}

func (g *PgNotificationRepository) CreateDedup(ctx context.Context, n *notification.Notification) error {
	return g.insert(ctx, notificationInsertDedupQuery, n)
}

func (g *PgNotificationRepository) MarkRead(ctx context.Context, id, userID uint) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, notificationMarkReadQuery, id, userID, tenantID.String())
	if err != nil {
		return errors.Wrap(err, "failed to mark notification read")
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotFound
	}
	return nil
}

func (g *PgNotificationRepository) MarkAllRead(ctx context.Context, userID uint) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, notificationMarkAllReadQuery, userID, tenantID.String()); err != nil {
		return errors.Wrap(err, "failed to mark notifications read")
	}
	return nil
}

func (g *PgNotificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return 0, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, notificationCountUnreadQuery, userID, tenantID.String()).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count unread notifications")
	}
	return count, nil
}
