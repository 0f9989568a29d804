package persistence

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stafflink/backoffice/modules/assets/domain/entities/asset"
	"github.com/stafflink/backoffice/pkg/composables"
	"github.com/stafflink/backoffice/pkg/repo"
)

const (
	assetFindQuery = `
		SELECT a.id, a.tenant_id, a.name, a.category, a.serial_number,
			a.purchase_cost, a.purchased_at, a.assigned_to, a.condition,
			a.is_active, a.created_at, a.updated_at
		FROM assets a`

	assetCountQuery = `SELECT COUNT(*) FROM assets a`

	assetInsertQuery = `
		INSERT INTO assets (tenant_id, name, category, serial_number, purchase_cost, purchased_at, condition, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	assetUpdateQuery = `
		UPDATE assets
		SET name = $3, category = $4, serial_number = $5, purchase_cost = $6,
			purchased_at = $7, condition = $8, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2`

	assetSetAssignedQuery = `UPDATE assets SET assigned_to = $3, updated_at = NOW() WHERE id = $1 AND tenant_id = $2`

	assetDeleteQuery = `UPDATE assets SET is_active = false, updated_at = NOW() WHERE id = $1 AND tenant_id = $2`

	assignmentInsertQuery = `
		INSERT INTO asset_assignments (asset_id, user_id, assigned_by)
		VALUES ($1, $2, $3)`

	assignmentFindQuery = `
		SELECT s.id, s.asset_id, s.user_id, s.assigned_by, s.assigned_at
		FROM asset_assignments s
		WHERE s.asset_id = $1
		ORDER BY s.assigned_at DESC`
)

type PgAssetRepository struct{}

func NewAssetRepository() asset.Repository {
	return &PgAssetRepository{}
}

func (g *PgAssetRepository) queryAssets(ctx context.Context, query string, args ...interface{}) ([]asset.Asset, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query assets")
	}
	defer rows.Close()

	assets := make([]asset.Asset, 0)
	for rows.Next() {
		var a asset.Asset
		var purchasedAt sql.NullTime
		var assignedTo sql.NullInt64
		if err := rows.Scan(
			&a.ID,
			&a.TenantID,
			&a.Name,
			&a.Category,
			&a.SerialNumber,
			&a.PurchaseCost,
			&purchasedAt,
			&assignedTo,
			&a.Condition,
			&a.IsActive,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan asset")
		}
		if purchasedAt.Valid {
			t := purchasedAt.Time
			a.PurchasedAt = &t
		}
		if assignedTo.Valid {
			id := uint(assignedTo.Int64)
			a.AssignedTo = &id
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func (g *PgAssetRepository) buildFilters(ctx context.Context, params *asset.FindParams) (string, []interface{}, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return "", nil, err
	}
	where := []string{"a.tenant_id = $1"}
	args := []interface{}{tenantID.String()}
	if !params.IncludeInactive {
		where = append(where, "a.is_active")
	}
	if params.Category != "" {
		args = append(args, params.Category)
		where = append(where, "a.category = $"+strconv.Itoa(len(args)))
	}
	if params.Condition != "" {
		args = append(args, string(params.Condition))
		where = append(where, "a.condition = $"+strconv.Itoa(len(args)))
	}
	if params.AssignedTo != nil {
		args = append(args, *params.AssignedTo)
		where = append(where, "a.assigned_to = $"+strconv.Itoa(len(args)))
	}
	if params.UnassignedOnly {
		where = append(where, "a.assigned_to IS NULL")
	}
	if params.Search != "" {
		where = append(where, repo.ILike(len(args)+1, "a.name", "a.serial_number", "a.category"))
		args = append(args, "%"+params.Search+"%")
	}
	return repo.JoinWhere(where...), args, nil
}

func (g *PgAssetRepository) GetPaginated(ctx context.Context, params *asset.FindParams) ([]asset.Asset, int64, error) {
	whereClause, args, err := g.buildFilters(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := tx.QueryRow(ctx, repo.Join(assetCountQuery, whereClause), args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count assets")
	}
	query := repo.Join(
		assetFindQuery,
		whereClause,
		"ORDER BY a.name",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	assets, err := g.queryAssets(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return assets, total, nil
}

func (g *PgAssetRepository) GetByID(ctx context.Context, id uint) (*asset.Asset, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	assets, err := g.queryAssets(ctx, assetFindQuery+" WHERE a.id = $1 AND a.tenant_id = $2", id, tenantID.String())
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return nil, asset.ErrNotFound
	}
	return &assets[0], nil
}

func (g *PgAssetRepository) Create(ctx context.Context, a *asset.Asset) (*asset.Asset, error) {
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
		assetInsertQuery,
		tenantID.String(),
		a.Name,
		a.Category,
		a.SerialNumber,
		a.PurchaseCost,
		timePtrToNullTime(a.PurchasedAt),
		string(a.Condition),
		a.IsActive,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, asset.ErrSerialTaken
		}
		return nil, errors.Wrap(err, "failed to create asset")
	}
	return g.GetByID(ctx, id)
}

func (g *PgAssetRepository) Update(ctx context.Context, a *asset.Asset) (*asset.Asset, error) {
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
		assetUpdateQuery,
		a.ID,
		tenantID.String(),
		a.Name,
		a.Category,
		a.SerialNumber,
		a.PurchaseCost,
		timePtrToNullTime(a.PurchasedAt),
		string(a.Condition),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, asset.ErrSerialTaken
		}
		return nil, errors.Wrap(err, "failed to update asset")
	}
	if tag.RowsAffected() == 0 {
		return nil, asset.ErrNotFound
	}
	return g.GetByID(ctx, a.ID)
}

func (g *PgAssetRepository) SetAssignedTo(ctx context.Context, id uint, userID *uint) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, assetSetAssignedQuery, id, tenantID.String(), uintPtrToNullInt64(userID))
	if err != nil {
		return errors.Wrap(err, "failed to set asset holder")
	}
	if tag.RowsAffected() == 0 {
		return asset.ErrNotFound
	}
	return nil
}

func (g *PgAssetRepository) AddAssignment(ctx context.Context, entry *asset.Assignment) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, assignmentInsertQuery, entry.AssetID, uintPtrToNullInt64(entry.UserID), entry.AssignedBy)
	if err != nil {
		return errors.Wrap(err, "failed to record asset assignment")
	}
	return nil
}

func (g *PgAssetRepository) GetAssignments(ctx context.Context, assetID uint) ([]asset.Assignment, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, assignmentFindQuery, assetID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query asset assignments")
	}
	defer rows.Close()

	entries := make([]asset.Assignment, 0)
	for rows.Next() {
		var e asset.Assignment
		var userID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.AssetID, &userID, &e.AssignedBy, &e.AssignedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan asset assignment")
		}
		if userID.Valid {
			id := uint(userID.Int64)
			e.UserID = &id
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (g *PgAssetRepository) Delete(ctx context.Context, id uint) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, assetDeleteQuery, id, tenantID.String())
	if err != nil {
		return errors.Wrap(err, "failed to delete asset")
	}
	if tag.RowsAffected() == 0 {
		return asset.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func uintPtrToNullInt64(v *uint) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func timePtrToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
