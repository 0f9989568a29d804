package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/stafflink/backoffice/modules/core/domain/entities/menuitem"
	"github.com/stafflink/backoffice/pkg/composables"
)

const (
	menuItemFindQuery = `
		SELECT id, label, path, icon, sort_order, is_active, created_at
		FROM menu_items`

	menuItemsForRoleQuery = `
		SELECT mi.id, mi.label, mi.path, mi.icon, mi.sort_order, mi.is_active, mi.created_at
		FROM menu_items mi
		JOIN menu_access ma ON ma.menu_item_id = mi.id
		WHERE ma.tenant_id = $1 AND ma.role = $2 AND mi.is_active
		ORDER BY mi.sort_order`

	menuGrantIDsQuery    = `SELECT menu_item_id FROM menu_access WHERE tenant_id = $1 AND role = $2 ORDER BY menu_item_id`
	menuGrantDeleteQuery = `DELETE FROM menu_access WHERE tenant_id = $1 AND role = $2`
	menuGrantInsertQuery = `INSERT INTO menu_access (tenant_id, role, menu_item_id) VALUES`
)

type PgMenuRepository struct{}

func NewMenuRepository() menuitem.Repository {
	return &PgMenuRepository{}
}

func (g *PgMenuRepository) GetAll(ctx context.Context) ([]menuitem.MenuItem, error) {
	return g.queryItems(ctx, menuItemFindQuery+" ORDER BY sort_order")
}

func (g *PgMenuRepository) GetForRole(ctx context.Context, role string) ([]menuitem.MenuItem, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	return g.queryItems(ctx, menuItemsForRoleQuery, tenantID.String(), role)
}

func (g *PgMenuRepository) GrantIDs(ctx context.Context, role string) ([]uint, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, menuGrantIDsQuery, tenantID.String(), role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uint, 0)
	for rows.Next() {
		var id uint
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (g *PgMenuRepository) SetGrants(ctx context.Context, role string, itemIDs []uint) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, menuGrantDeleteQuery, tenantID.String(), role); err != nil {
		return err
	}
	if len(itemIDs) == 0 {
		return nil
	}

	values := make([]string, 0, len(itemIDs))
	args := []any{tenantID.String(), role}
	for _, id := range itemIDs {
		args = append(args, id)
		values = append(values, fmt.Sprintf("($1, $2, $%d)", len(args)))
	}
	_, err = tx.Exec(ctx, menuGrantInsertQuery+" "+strings.Join(values, ", "), args...)
	return err
}

func (g *PgMenuRepository) queryItems(ctx context.Context, query string, args ...any) ([]menuitem.MenuItem, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]menuitem.MenuItem, 0)
	for rows.Next() {
		var (
			item menuitem.MenuItem
			icon sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.Label, &item.Path, &icon, &item.SortOrder, &item.IsActive, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.Icon = icon.String
		items = append(items, item)
	}
	return items, rows.Err()
}
