package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stafflink/backoffice/modules/core/domain/entities/tenant"
	"github.com/stafflink/backoffice/modules/core/infrastructure/persistence/models"
	"github.com/stafflink/backoffice/pkg/composables"
)

const (
	tenantFindQuery = `
		SELECT id, name, code, domain, address, phone, is_active, created_at, updated_at
		FROM tenants`

	tenantInsertQuery = `
		INSERT INTO tenants (id, name, code, domain, address, phone, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	tenantUpdateQuery = `
		UPDATE tenants
		SET name = $2, code = $3, domain = $4, address = $5, phone = $6, is_active = $7, updated_at = NOW()
		WHERE id = $1`

	tenantDeactivateQuery = `UPDATE tenants SET is_active = false, updated_at = NOW() WHERE id = $1`
)

type TenantRepository struct{}

func NewTenantRepository() tenant.Repository {
	return &TenantRepository{}
}

func (r *TenantRepository) GetAll(ctx context.Context) ([]*tenant.Tenant, error) {
	return r.queryTenants(ctx, tenantFindQuery+" ORDER BY name")
}

func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return r.queryOne(ctx, tenantFindQuery+" WHERE id = $1", id.String())
}

func (r *TenantRepository) GetByCode(ctx context.Context, code string) (*tenant.Tenant, error) {
	return r.queryOne(ctx, tenantFindQuery+" WHERE code = $1", strings.ToLower(strings.TrimSpace(code)))
}

func (r *TenantRepository) GetByDomain(ctx context.Context, domain string) (*tenant.Tenant, error) {
	return r.queryOne(ctx, tenantFindQuery+" WHERE domain = $1", strings.ToLower(strings.TrimSpace(domain)))
}

func (r *TenantRepository) Create(ctx context.Context, t *tenant.Tenant) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		ctx,
		tenantInsertQuery,
		t.ID().String(),
		t.Name(),
		t.Code(),
		stringToNullString(t.Domain()),
		stringToNullString(t.Address()),
		stringToNullString(t.Phone()),
		t.IsActive(),
		t.CreatedAt(),
		t.UpdatedAt(),
	)
	if isUniqueViolation(err) {
		return tenant.ErrCodeTaken
	}
	return err
}

func (r *TenantRepository) Update(ctx context.Context, t *tenant.Tenant) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(
		ctx,
		tenantUpdateQuery,
		t.ID().String(),
		t.Name(),
		t.Code(),
		stringToNullString(t.Domain()),
		stringToNullString(t.Address()),
		stringToNullString(t.Phone()),
		t.IsActive(),
	)
	if isUniqueViolation(err) {
		return tenant.ErrCodeTaken
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return tenant.ErrNotFound
	}
	return nil
}

func (r *TenantRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, tenantDeactivateQuery, id.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return tenant.ErrNotFound
	}
	return nil
}

func (r *TenantRepository) queryOne(ctx context.Context, query string, args ...any) (*tenant.Tenant, error) {
	tenants, err := r.queryTenants(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(tenants) == 0 {
		return nil, tenant.ErrNotFound
	}
	return tenants[0], nil
}

func (r *TenantRepository) queryTenants(ctx context.Context, query string, args ...any) ([]*tenant.Tenant, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tenants := make([]*tenant.Tenant, 0)
	for rows.Next() {
		var row models.Tenant
		if err := rows.Scan(
			&row.ID,
			&row.Name,
			&row.Code,
			&row.Domain,
			&row.Address,
			&row.Phone,
			&row.IsActive,
			&row.CreatedAt,
			&row.UpdatedAt,
		); err != nil {
			return nil, err
		}
		t, err := ToDomainTenant(&row)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
