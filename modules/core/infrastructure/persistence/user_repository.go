package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"

	"github.com/stafflink/backoffice/modules/core/domain/aggregates/user"
	"github.com/stafflink/backoffice/modules/core/infrastructure/persistence/models"
	"github.com/stafflink/backoffice/pkg/composables"
	"github.com/stafflink/backoffice/pkg/repo"
)

const (
	userFindQuery = `
		SELECT
			u.id,
			u.tenant_id,
			u.first_name,
			u.last_name,
			u.email,
			u.phone,
			u.password,
			u.role,
			u.department_id,
			u.job_role_id,
			u.is_active,
			u.last_login,
			u.created_at,
			u.updated_at
		FROM users u`

	userCountQuery = `SELECT COUNT(u.id) FROM users u`

	userInsertQuery = `
		INSERT INTO users (tenant_id, first_name, last_name, email, phone, password, role, department_id, job_role_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	userUpdateQuery = `
		UPDATE users
		SET first_name = $3, last_name = $4, phone = $5, role = $6, department_id = $7, job_role_id = $8, is_active = $9, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2`

	userUpdatePasswordQuery  = `UPDATE users SET password = $3, updated_at = NOW() WHERE id = $1 AND tenant_id = $2`
	userUpdateLastLoginQuery = `UPDATE users SET last_login = NOW() WHERE id = $1`
	userDeactivateQuery      = `UPDATE users SET is_active = false, updated_at = NOW() WHERE id = $1 AND tenant_id = $2`

	userCountByDepartmentQuery = `SELECT COUNT(*) FROM users WHERE tenant_id = $1 AND department_id = $2 AND is_active`
	userCountByJobRoleQuery    = `SELECT COUNT(*) FROM users WHERE tenant_id = $1 AND job_role_id = $2 AND is_active`
)

type PgUserRepository struct{}

func NewUserRepository() user.Repository {
	return &PgUserRepository{}
}

func (g *PgUserRepository) buildUserFilters(ctx context.Context, params *user.FindParams) ([]string, []any, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to get tenant from context")
	}

	where := []string{"u.tenant_id = $1"}
	args := []any{tenantID.String()}

	if !params.IncludeInactive {
		where = append(where, "u.is_active")
	}
	if params.Role != "" {
		args = append(args, string(params.Role))
		where = append(where, fmt.Sprintf("u.role = $%d", len(args)))
	}
	if params.DepartmentID != nil {
		args = append(args, int64(*params.DepartmentID))
		where = append(where, fmt.Sprintf("u.department_id = $%d", len(args)))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where = append(where, repo.ILike(len(args), "u.first_name", "u.last_name", "u.email", "u.phone"))
	}

	return where, args, nil
}

func (g *PgUserRepository) GetPaginated(ctx context.Context, params *user.FindParams) ([]user.User, int64, error) {
	if params == nil {
		params = &user.FindParams{}
	}
	where, args, err := g.buildUserFilters(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	query := repo.Join(
		userFindQuery,
		repo.JoinWhere(where...),
		"ORDER BY u.last_name, u.first_name",
		repo.FormatLimitOffset(limit, offset),
	)
	users, err := g.queryUsers(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	countQuery := repo.Join(userCountQuery, repo.JoinWhere(where...))
	if err := tx.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (g *PgUserRepository) GetByID(ctx context.Context, id uint) (user.User, error) {
	tenantID, err := composables.UseTenantID(ctx)
	var users []user.User
	if err != nil {
		// No tenant scope: only tenant-less superadmin accounts are reachable.
		users, err = g.queryUsers(ctx, userFindQuery+" WHERE u.id = $1 AND u.tenant_id IS NULL AND u.role = 'superadmin'", id)
	} else {
		users, err = g.queryUsers(ctx, userFindQuery+" WHERE u.id = $1 AND (u.tenant_id = $2 OR (u.tenant_id IS NULL AND u.role = 'superadmin'))", id, tenantID.String())
	}
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, user.ErrNotFound
	}
	return users[0], nil
}

// GetByEmail serves login: it matches tenant members and tenant-less
// superadmin accounts in one pass.
func (g *PgUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	query := userFindQuery + ` WHERE u.email = $1 AND (u.tenant_id = $2 OR (u.tenant_id IS NULL AND u.role = 'superadmin'))`
	users, err := g.queryUsers(ctx, query, strings.ToLower(strings.TrimSpace(email)), tenantID.String())
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, user.ErrNotFound
	}
	return users[0], nil
}

func (g *PgUserRepository) Create(ctx context.Context, data user.User) (user.User, error) {
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
		userInsertQuery,
		tenantID.String(),
		data.FirstName(),
		data.LastName(),
		data.Email(),
		stringToNullString(data.Phone()),
		stringToNullString(data.PasswordHash()),
		string(data.Role()),
		uintPtrToNullInt64(data.DepartmentID()),
		uintPtrToNullInt64(data.JobRoleID()),
		data.IsActive(),
	).Scan(&id)
	if isUniqueViolation(err) {
		return nil, user.ErrEmailTaken
	}
	if err != nil {
		return nil, errors.Wrap(err, "create user")
	}

	return g.GetByID(ctx, id)
}

func (g *PgUserRepository) Update(ctx context.Context, data user.User) (user.User, error) {
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
		userUpdateQuery,
		data.ID(),
		tenantID.String(),
		data.FirstName(),
		data.LastName(),
		stringToNullString(data.Phone()),
		string(data.Role()),
		uintPtrToNullInt64(data.DepartmentID()),
		uintPtrToNullInt64(data.JobRoleID()),
		data.IsActive(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "update user")
	}
	if tag.RowsAffected() == 0 {
		return nil, user.ErrNotFound
	}

	return g.GetByID(ctx, data.ID())
}

func (g *PgUserRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, userUpdatePasswordQuery, id, tenantID.String(), passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (g *PgUserRepository) UpdateLastLogin(ctx context.Context, id uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, userUpdateLastLoginQuery, id)
	return err
}

func (g *PgUserRepository) Deactivate(ctx context.Context, id uint) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, userDeactivateQuery, id, tenantID.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (g *PgUserRepository) CountActiveByDepartment(ctx context.Context, departmentID uint) (int64, error) {
	return g.countActive(ctx, userCountByDepartmentQuery, departmentID)
}

func (g *PgUserRepository) CountActiveByJobRole(ctx context.Context, jobRoleID uint) (int64, error) {
	return g.countActive(ctx, userCountByJobRoleQuery, jobRoleID)
}

func (g *PgUserRepository) countActive(ctx context.Context, query string, refID uint) (int64, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return 0, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, query, tenantID.String(), refID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (g *PgUserRepository) queryUsers(ctx context.Context, query string, args ...any) ([]user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]user.User, 0)
	for rows.Next() {
		var row models.User
		if err := rows.Scan(
			&row.ID,
			&row.TenantID,
			&row.FirstName,
			&row.LastName,
			&row.Email,
			&row.Phone,
			&row.Password,
			&row.Role,
			&row.DepartmentID,
			&row.JobRoleID,
			&row.IsActive,
			&row.LastLogin,
			&row.CreatedAt,
			&row.UpdatedAt,
		); err != nil {
			return nil, err
		}
		u, err := ToDomainUser(&row)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
