package persistence

import (
	"context"
	"database/sql"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stafflink/backoffice/modules/hrm/domain/entities/department"
	"github.com/stafflink/backoffice/pkg/composables"
	"github.com/stafflink/backoffice/pkg/repo"
)

const (
	departmentFindQuery = `
		SELECT d.id, d.tenant_id, d.name, d.description, d.head_user_id, d.is_active, d.created_at, d.updated_at
		FROM departments d`

	departmentCountQuery = `SELECT COUNT(*) FROM departments d`

	departmentInsertQuery = `
		INSERT INTO departments (tenant_id, name, description, head_user_id, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	departmentUpdateQuery = `
		UPDATE departments
		SET name = $3, description = $4, head_user_id = $5, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2`

	departmentDeleteQuery = `UPDATE departments SET is_active = false, updated_at = NOW() WHERE id = $1 AND tenant_id = $2`
)

type PgDepartmentRepository struct{}

func NewDepartmentRepository() department.Repository {
	return &PgDepartmentRepository{}
}

func (g *PgDepartmentRepository) queryDepartments(ctx context.Context, query string, args ...interface{}) ([]department.Department, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query departments")
	}
	defer rows.Close()

	departments := make([]department.Department, 0)
	for rows.Next() {
		var d department.Department
		var description sql.NullString
		var headUserID sql.NullInt64
		if err := rows.Scan(
			&d.ID,
			&d.TenantID,
			&d.Name,
			&description,
			&headUserID,
			&d.IsActive,
			&d.CreatedAt,
			&d.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan department")
		}
		d.Description = description.String
		if headUserID.Valid {
			id := uint(headUserID.Int64)
			d.HeadUserID = &id
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

func (g *PgDepartmentRepository) buildFilters(ctx context.Context, params *department.FindParams) (string, []interface{}, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return "", nil, err
	}
	where := []string{"d.tenant_id = $1"}
	args := []interface{}{tenantID.String()}
	if !params.IncludeInactive {
		where = append(where, "d.is_active")
	}
	if params.Search != "" {
		where = append(where, repo.ILike(len(args)+1, "d.name", "d.description"))
		args = append(args, "%"+params.Search+"%")
	}
	return repo.JoinWhere(where...), args, nil
}

func (g *PgDepartmentRepository) GetPaginated(ctx context.Context, params *department.FindParams) ([]department.Department, int64, error) {
	whereClause, args, err := g.buildFilters(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := tx.QueryRow(ctx, repo.Join(departmentCountQuery, whereClause), args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count departments")
	}
	query := repo.Join(
		departmentFindQuery,
		whereClause,
		"ORDER BY d.name",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	departments, err := g.queryDepartments(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return departments, total, nil
}

func (g *PgDepartmentRepository) GetByID(ctx context.Context, id uint) (*department.Department, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	departments, err := g.queryDepartments(ctx, departmentFindQuery+" WHERE d.id = $1 AND d.tenant_id = $2", id, tenantID.String())
	if err != nil {
		return nil, err
	}
	if len(departments) == 0 {
		return nil, department.ErrNotFound
	}
	return &departments[0], nil
}

func (g *PgDepartmentRepository) Create(ctx context.Context, d *department.Department) (*department.Department, error) {
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
		departmentInsertQuery,
		tenantID.String(),
		d.Name,
		stringToNullString(d.Description),
		uintPtrToNullInt64(d.HeadUserID),
		d.IsActive,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, department.ErrNameTaken
		}
		return nil, errors.Wrap(err, "failed to create department")
	}
	return g.GetByID(ctx, id)
}

func (g *PgDepartmentRepository) Update(ctx context.Context, d *department.Department) (*department.Department, error) {
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
		departmentUpdateQuery,
		d.ID,
		tenantID.String(),
		d.Name,
		stringToNullString(d.Description),
		uintPtrToNullInt64(d.HeadUserID),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, department.ErrNameTaken
		}
		return nil, errors.Wrap(err, "failed to update department")
	}
	if tag.RowsAffected() == 0 {
		return nil, department.ErrNotFound
	}
	return g.GetByID(ctx, d.ID)
}

func (g *PgDepartmentRepository) Delete(ctx context.Context, id uint) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, departmentDeleteQuery, id, tenantID.String())
	if err != nil {
		return errors.Wrap(err, "failed to delete department")
	}
	if tag.RowsAffected() == 0 {
		return department.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func stringToNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func uintPtrToNullInt64(v *uint) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
