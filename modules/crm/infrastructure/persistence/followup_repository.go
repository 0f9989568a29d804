package persistence

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/go-faster/errors"

	"github.com/stafflink/backoffice/modules/crm/domain/entities/followup"
	"github.com/stafflink/backoffice/pkg/composables"
	"github.com/stafflink/backoffice/pkg/repo"
)

const (
	followUpFindQuery = `
		SELECT f.id, f.tenant_id, f.lead_id, f.assignee_id, f.note, f.due_at, f.done_at, f.created_at, f.updated_at
		FROM follow_ups f`

	followUpCountQuery = `SELECT COUNT(*) FROM follow_ups f`

	followUpInsertQuery = `
		INSERT INTO follow_ups (tenant_id, lead_id, assignee_id, note, due_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	followUpUpdateQuery = `
		UPDATE follow_ups
		SET assignee_id = $3, note = $4, due_at = $5, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2`

	followUpMarkDoneQuery = `
		UPDATE follow_ups SET done_at = $3, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2 AND done_at IS NULL`

	followUpDeleteQuery = `DELETE FROM follow_ups WHERE id = $1 AND tenant_id = $2`
)

type PgFollowUpRepository struct{}

func NewFollowUpRepository() followup.Repository {
	return &PgFollowUpRepository{}
}

func (g *PgFollowUpRepository) queryFollowUps(ctx context.Context, query string, args ...interface{}) ([]followup.FollowUp, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query follow-ups")
	}
	defer rows.Close()

	followUps := make([]followup.FollowUp, 0)
	for rows.Next() {
		var f followup.FollowUp
		var note sql.NullString
		var doneAt sql.NullTime
		if err := rows.Scan(
			&f.ID,
			&f.TenantID,
			&f.LeadID,
			&f.AssigneeID,
			&note,
			&f.DueAt,
			&doneAt,
			&f.CreatedAt,
			&f.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan follow-up")
		}
		f.Note = note.String
		if doneAt.Valid {
			t := doneAt.Time
			f.DoneAt = &t
		}
		followUps = append(followUps, f)
	}
	return followUps, rows.Err()
}

func (g *PgFollowUpRepository) buildFilters(ctx context.Context, params *followup.FindParams) (string, []interface{}, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return "", nil, err
	}
	where := []string{"f.tenant_id = $1"}
	args := []interface{}{tenantID.String()}
	if params.LeadID != nil {
		args = append(args, *params.LeadID)
		where = append(where, "f.lead_id = $"+strconv.Itoa(len(args)))
	}
	if params.AssigneeID != nil {
		args = append(args, *params.AssigneeID)
		where = append(where, "f.assignee_id = $"+strconv.Itoa(len(args)))
	}
	if params.PendingOnly {
		where = append(where, "f.done_at IS NULL")
	}
	if params.DueFrom != nil {
		args = append(args, *params.DueFrom)
		where = append(where, "f.due_at >= $"+strconv.Itoa(len(args)))
	}
	if params.DueTo != nil {
		args = append(args, *params.DueTo)
		where = append(where, "f.due_at <= $"+strconv.Itoa(len(args)))
	}
	return repo.JoinWhere(where...), args, nil
}

func (g *PgFollowUpRepository) GetPaginated(ctx context.Context, params *followup.FindParams) ([]followup.FollowUp, int64, error) {
	whereClause, args, err := g.buildFilters(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := tx.QueryRow(ctx, repo.Join(followUpCountQuery, whereClause), args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count follow-ups")
	}
	query := repo.Join(
		followUpFindQuery,
		whereClause,
		"ORDER BY f.due_at",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	followUps, err := g.queryFollowUps(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return followUps, total, nil
}

func (g *PgFollowUpRepository) GetByID(ctx context.Context, id uint) (*followup.FollowUp, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	followUps, err := g.queryFollowUps(ctx, followUpFindQuery+" WHERE f.id = $1 AND f.tenant_id = $2", id, tenantID.String())
	if err != nil {
		return nil, err
	}
	if len(followUps) == 0 {
		return nil, followup.ErrNotFound
	}
	return &followUps[0], nil
}

func (g *PgFollowUpRepository) Create(ctx context.Context, f *followup.FollowUp) (*followup.FollowUp, error) {
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
		followUpInsertQuery,
		tenantID.String(),
		f.LeadID,
		f.AssigneeID,
		stringToNullString(f.Note),
		f.DueAt,
	).Scan(&id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create follow-up")
	}
	return g.GetByID(ctx, id)
}

func (g *PgFollowUpRepository) Update(ctx context.Context, f *followup.FollowUp) (*followup.FollowUp, error) {
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
		followUpUpdateQuery,
		f.ID,
		tenantID.String(),
		f.AssigneeID,
		stringToNullString(f.Note),
		f.DueAt,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update follow-up")
	}
	if tag.RowsAffected() == 0 {
		return nil, followup.ErrNotFound
	}
	return g.GetByID(ctx, f.ID)
}

// MarkDone only touches rows still pending. A zero RowsAffected therefore
// means either a missing row or an already-completed follow-up; the caller
// disambiguates with a prior GetByID.
func (g *PgFollowUpRepository) MarkDone(ctx context.Context, id uint, doneAt time.Time) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, followUpMarkDoneQuery, id, tenantID.String(), doneAt)
	if err != nil {
		return errors.Wrap(err, "failed to mark follow-up done")
	}
	if tag.RowsAffected() == 0 {
		return followup.ErrNotFound
	}
	return nil
}

func (g *PgFollowUpRepository) Delete(ctx context.Context, id uint) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, followUpDeleteQuery, id, tenantID.String())
	if err != nil {
		return errors.Wrap(err, "failed to delete follow-up")
	}
	if tag.RowsAffected() == 0 {
		return followup.ErrNotFound
	}
	return nil
}
