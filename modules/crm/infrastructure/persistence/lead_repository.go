package persistence

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/stafflink/backoffice/modules/crm/domain/entities/lead"
	"github.com/stafflink/backoffice/pkg/composables"
	"github.com/stafflink/backoffice/pkg/repo"
)

const (
	leadFindQuery = `
		SELECT l.id, l.tenant_id, l.name, l.company_name, l.email, l.phone,
			l.source, l.status, l.estimated_value, l.owner_id, l.notes,
			l.is_active, l.created_at, l.updated_at
		FROM leads l`

	leadCountQuery = `SELECT COUNT(*) FROM leads l`

	leadInsertQuery = `
		INSERT INTO leads (tenant_id, name, company_name, email, phone, source, status, estimated_value, owner_id, notes, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	leadUpdateQuery = `
		UPDATE leads
		SET name = $3, company_name = $4, email = $5, phone = $6, source = $7,
			estimated_value = $8, owner_id = $9, notes = $10, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2`

	leadUpdateStatusQuery = `UPDATE leads SET status = $3, updated_at = NOW() WHERE id = $1 AND tenant_id = $2`

	leadDeleteQuery = `UPDATE leads SET is_active = false, updated_at = NOW() WHERE id = $1 AND tenant_id = $2`
)

type PgLeadRepository struct{}

func NewLeadRepository() lead.Repository {
	return &PgLeadRepository{}
}

func (g *PgLeadRepository) queryLeads(ctx context.Context, query string, args ...interface{}) ([]lead.Lead, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query leads")
	}
	defer rows.Close()

	leads := make([]lead.Lead, 0)
	for rows.Next() {
		var l lead.Lead
		var companyName, email, phone, notes sql.NullString
		var ownerID sql.NullInt64
		if err := rows.Scan(
			&l.ID,
			&l.TenantID,
			&l.Name,
			&companyName,
			&email,
			&phone,
			&l.Source,
			&l.Status,
			&l.EstimatedValue,
			&ownerID,
			&notes,
			&l.IsActive,
			&l.CreatedAt,
			&l.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan lead")
		}
		l.CompanyName = companyName.String
		l.Email = email.String
		l.Phone = phone.String
		l.Notes = notes.String
		l.OwnerID = nullInt64ToUintPtr(ownerID)
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func (g *PgLeadRepository) buildFilters(ctx context.Context, params *lead.FindParams) (string, []interface{}, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return "", nil, err
	}
	where := []string{"l.tenant_id = $1"}
	args := []interface{}{tenantID.String()}
	if !params.IncludeInactive {
		where = append(where, "l.is_active")
	}
	if params.Status != "" {
		args = append(args, string(params.Status))
		where = append(where, "l.status = $"+strconv.Itoa(len(args)))
	}
	if params.Source != "" {
		args = append(args, string(params.Source))
		where = append(where, "l.source = $"+strconv.Itoa(len(args)))
	}
	if params.OwnerID != nil {
		args = append(args, *params.OwnerID)
		where = append(where, "l.owner_id = $"+strconv.Itoa(len(args)))
	}
	if params.Search != "" {
		where = append(where, repo.ILike(len(args)+1, "l.name", "l.company_name", "l.email"))
		args = append(args, "%"+params.Search+"%")
	}
	return repo.JoinWhere(where...), args, nil
}

func (g *PgLeadRepository) GetPaginated(ctx context.Context, params *lead.FindParams) ([]lead.Lead, int64, error) {
	whereClause, args, err := g.buildFilters(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := tx.QueryRow(ctx, repo.Join(leadCountQuery, whereClause), args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count leads")
	}
	query := repo.Join(
		leadFindQuery,
		whereClause,
		"ORDER BY l.created_at DESC",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	leads, err := g.queryLeads(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func (g *PgLeadRepository) GetByID(ctx context.Context, id uint) (*lead.Lead, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	leads, err := g.queryLeads(ctx, leadFindQuery+" WHERE l.id = $1 AND l.tenant_id = $2", id, tenantID.String())
	if err != nil {
		return nil, err
	}
	if len(leads) == 0 {
		return nil, lead.ErrNotFound
	}
	return &leads[0], nil
}

func (g *PgLeadRepository) Create(ctx context.Context, l *lead.Lead) (*lead.Lead, error) {
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
		leadInsertQuery,
		tenantID.String(),
		l.Name,
		stringToNullString(l.CompanyName),
		stringToNullString(l.Email),
		stringToNullString(l.Phone),
		string(l.Source),
		string(l.Status),
		l.EstimatedValue,
		uintPtrToNullInt64(l.OwnerID),
		stringToNullString(l.Notes),
		l.IsActive,
	).Scan(&id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create lead")
	}
	return g.GetByID(ctx, id)
}

func (g *PgLeadRepository) Update(ctx context.Context, l *lead.Lead) (*lead.Lead, error) {
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
		leadUpdateQuery,
		l.ID,
		tenantID.String(),
		l.Name,
		stringToNullString(l.CompanyName),
		stringToNullString(l.Email),
		stringToNullString(l.Phone),
		string(l.Source),
		l.EstimatedValue,
		uintPtrToNullInt64(l.OwnerID),
		stringToNullString(l.Notes),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update lead")
	}
	if tag.RowsAffected() == 0 {
		return nil, lead.ErrNotFound
	}
	return g.GetByID(ctx, l.ID)
}

func (g *PgLeadRepository) UpdateStatus(ctx context.Context, id uint, status lead.Status) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, leadUpdateStatusQuery, id, tenantID.String(), string(status))
	if err != nil {
		return errors.Wrap(err, "failed to update lead status")
	}
	if tag.RowsAffected() == 0 {
		return lead.ErrNotFound
	}
	return nil
}

func (g *PgLeadRepository) Delete(ctx context.Context, id uint) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, leadDeleteQuery, id, tenantID.String())
	if err != nil {
		return errors.Wrap(err, "failed to delete lead")
	}
	if tag.RowsAffected() == 0 {
		return lead.ErrNotFound
	}
	return nil
}
