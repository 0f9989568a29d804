package persistence

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/stafflink/backoffice/modules/hrm/domain/entities/jobrole"
	"github.com/stafflink/backoffice/pkg/composables"
	"github.com/stafflink/backoffice/pkg/repo"
)

const (
	jobRoleFindQuery = `
		SELECT j.id, j.tenant_id, j.department_id, j.title, j.description, j.is_active, j.created_at, j.updated_at
		FROM job_roles j`

	jobRoleCountQuery = `SELECT COUNT(*) FROM job_roles j`

	jobRoleInsertQuery = `
		INSERT INTO job_roles (tenant_id, department_id, title, description, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	jobRoleUpdateQuery = `
		UPDATE job_roles
		SET title = $3, description = $4, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2`

	jobRoleDeleteQuery = `UPDATE job_roles SET is_active = false, updated_at = NOW() WHERE id = $1 AND tenant_id = $2`
)

type PgJobRoleRepository struct{}

func NewJobRoleRepository() jobrole.Repository {
	return &PgJobRoleRepository{}
}

func (g *PgJobRoleRepository) queryJobRoles(ctx context.Context, query string, args ...interface{}) ([]jobrole.JobRole, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query job roles")
	}
	defer rows.Close()

	roles := make([]jobrole.JobRole, 0)
	for rows.Next() {
		var j jobrole.JobRole
		var description sql.NullString
		if err := rows.Scan(
			&j.ID,
			&j.TenantID,
			&j.DepartmentID,
			&j.Title,
			&description,
			&j.IsActive,
			&j.CreatedAt,
			&j.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan job role")
		}
		j.Description = description.String
		roles = append(roles, j)
	}
	return roles, rows.Err()
}

func (g *PgJobRoleRepository) GetPaginated(ctx context.Context, params *jobrole.FindParams) ([]jobrole.JobRole, int64, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, 0, err
	}
	where := []string{"j.tenant_id = $1"}
	args := []interface{}{tenantID.String()}
	if !params.IncludeInactive {
		where = append(where, "j.is_active")
	}
	if params.DepartmentID != nil {
		args = append(args, *params.DepartmentID)
		where = append(where, "j.department_id = $"+strconv.Itoa(len(args)))
	}
	if params.Search != "" {
		where = append(where, repo.ILike(len(args)+1, "j.title", "j.description"))
		args = append(args, "%"+params.Search+"%")
	}
	whereClause := repo.JoinWhere(where...)

	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := tx.QueryRow(ctx, repo.Join(jobRoleCountQuery, whereClause), args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count job roles")
	}
	query := repo.Join(
		jobRoleFindQuery,
		whereClause,
		"ORDER BY j.title",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	roles, err := g.queryJobRoles(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return roles, total, nil
}

func (g *PgJobRoleRepository) GetByID(ctx context.Context, id uint) (*jobrole.JobRole, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	roles, err := g.queryJobRoles(ctx, jobRoleFindQuery+" WHERE j.id = $1 AND j.tenant_id = $2", id, tenantID.String())
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, jobrole.ErrNotFound
	}
	return &roles[0], nil
}

func (g *PgJobRoleRepository) Create(ctx context.Context, j *jobrole.JobRole) (*jobrole.JobRole, error) {
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
		jobRoleInsertQuery,
		tenantID.String(),
		j.DepartmentID,
		j.Title,
		stringToNullString(j.Description),
		j.IsActive,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, jobrole.ErrTitleTaken
		}
		return nil, errors.Wrap(err, "failed to create job role")
	}
	return g.GetByID(ctx, id)
}

func (g *PgJobRoleRepository) Update(ctx context.Context, j *jobrole.JobRole) (*jobrole.JobRole, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tag, err := tx.Exec(ctx, jobRoleUpdateQuery, j.ID, tenantID.String(), j.Title, stringToNullString(j.Description))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, jobrole.ErrTitleTaken
		}
		return nil, errors.Wrap(err, "failed to update job role")
	}
	if tag.RowsAffected() == 0 {
		return nil, jobrole.ErrNotFound
	}
	return g.GetByID(ctx, j.ID)
}

func (g *PgJobRoleRepository) Delete(ctx context.Context, id uint) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, jobRoleDeleteQuery, id, tenantID.String())
	if err != nil {
		return errors.Wrap(err, "failed to delete job role")
	}
	if tag.RowsAffected() == 0 {
		return jobrole.ErrNotFound
	}
	return nil
}
