package persistence

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/stafflink/backoffice/modules/crm/domain/entities/calllog"
	"github.com/stafflink/backoffice/pkg/composables"
	"github.com/stafflink/backoffice/pkg/repo"
)

const (
	callLogFindQuery = `
		SELECT c.id, c.tenant_id, c.lead_id, c.user_id, c.direction, c.outcome,
			c.duration_seconds, c.notes, c.called_at, c.created_at
		FROM call_logs c`

	callLogCountQuery = `SELECT COUNT(*) FROM call_logs c`

	callLogInsertQuery = `
		INSERT INTO call_logs (tenant_id, lead_id, user_id, direction, outcome, duration_seconds, notes, called_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	callLogDeleteQuery = `DELETE FROM call_logs WHERE id = $1 AND tenant_id = $2`
)

type PgCallLogRepository struct{}

func NewCallLogRepository() calllog.Repository {
	return &PgCallLogRepository{}
}

func (g *PgCallLogRepository) queryCallLogs(ctx context.Context, query string, args ...interface{}) ([]calllog.CallLog, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query call logs")
	}
	defer rows.Close()

	callLogs := make([]calllog.CallLog, 0)
	for rows.Next() {
		var c calllog.CallLog
		var leadID sql.NullInt64
		var notes sql.NullString
		if err := rows.Scan(
			&c.ID,
			&c.TenantID,
			&leadID,
			&c.UserID,
			&c.Direction,
			&c.Outcome,
			&c.DurationSeconds,
			&notes,
			&c.CalledAt,
			&c.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan call log")
		}
		c.LeadID = nullInt64ToUintPtr(leadID)
		c.Notes = notes.String
		callLogs = append(callLogs, c)
	}
	return callLogs, rows.Err()
}

func (g *PgCallLogRepository) buildFilters(ctx context.Context, params *calllog.FindParams) (string, []interface{}, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return "", nil, err
	}
	where := []string{"c.tenant_id = $1"}
	args := []interface{}{tenantID.String()}
	if params.LeadID != nil {
		args = append(args, *params.LeadID)
		where = append(where, "c.lead_id = $"+strconv.Itoa(len(args)))
	}
	if params.UserID != nil {
		args = append(args, *params.UserID)
		where = append(where, "c.user_id = $"+strconv.Itoa(len(args)))
	}
	if params.Direction != "" {
		args = append(args, string(params.Direction))
		where = append(where, "c.direction = $"+strconv.Itoa(len(args)))
	}
	if params.Outcome != "" {
		args = append(args, string(params.Outcome))
		where = append(where, "c.outcome = $"+strconv.Itoa(len(args)))
	}
	if params.From != nil {
		args = append(args, *params.From)
		where = append(where, "c.called_at >= $"+strconv.Itoa(len(args)))
	}
	if params.To != nil {
		args = append(args, *params.To)
		where = append(where, "c.called_at <= $"+strconv.Itoa(len(args)))
	}
	return repo.JoinWhere(where...), args, nil
}

func (g *PgCallLogRepository) GetPaginated(ctx context.Context, params *calllog.FindParams) ([]calllog.CallLog, int64, error) {
	whereClause, args, err := g.buildFilters(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := tx.QueryRow(ctx, repo.Join(callLogCountQuery, whereClause), args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count call logs")
	}
	query := repo.Join(
		callLogFindQuery,
		whereClause,
		"ORDER BY c.called_at DESC",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	callLogs, err := g.queryCallLogs(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return callLogs, total, nil
}

func (g *PgCallLogRepository) GetByID(ctx context.Context, id uint) (*calllog.CallLog, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	callLogs, err := g.queryCallLogs(ctx, callLogFindQuery+" WHERE c.id = $1 AND c.tenant_id = $2", id, tenantID.String())
	if err != nil {
		return nil, err
	}
	if len(callLogs) == 0 {
		return nil, calllog.ErrNotFound
	}
	return &callLogs[0], nil
}

func (g *PgCallLogRepository) Create(ctx context.Context, c *calllog.CallLog) (*calllog.CallLog, error) {
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
		callLogInsertQuery,
		tenantID.String(),
		uintPtrToNullInt64(c.LeadID),
		c.UserID,
		string(c.Direction),
		string(c.Outcome),
		c.DurationSeconds,
		stringToNullString(c.Notes),
		c.CalledAt,
	).Scan(&id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create call log")
	}
	return g.GetByID(ctx, id)
}

func (g *PgCallLogRepository) Delete(ctx context.Context, id uint) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, callLogDeleteQuery, id, tenantID.String())
	if err != nil {
		return errors.Wrap(err, "failed to delete call log")
	}
	if tag.RowsAffected() == 0 {
		return calllog.ErrNotFound
	}
	return nil
}
