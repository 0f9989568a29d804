package persistence

import (
	"database/sql"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/stafflink/backoffice/modules/core/domain/aggregates/user"
	"github.com/stafflink/backoffice/modules/core/domain/entities/menuitem"
	"github.com/stafflink/backoffice/modules/core/domain/entities/tenant"
	"github.com/stafflink/backoffice/modules/core/infrastructure/persistence/models"
)

func ToDomainTenant(dbTenant *models.Tenant) (*tenant.Tenant, error) {
	id, err := uuid.Parse(dbTenant.ID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid tenant id")
	}
	return tenant.New(
		dbTenant.Name,
		dbTenant.Code,
		tenant.WithID(id),
		tenant.WithDomain(dbTenant.Domain.String),
		tenant.WithAddress(dbTenant.Address.String),
		tenant.WithPhone(dbTenant.Phone.String),
		tenant.WithIsActive(dbTenant.IsActive),
		tenant.WithCreatedAt(dbTenant.CreatedAt),
		tenant.WithUpdatedAt(dbTenant.UpdatedAt),
	), nil
}

func ToDomainUser(dbUser *models.User) (user.User, error) {
	tenantID := uuid.Nil
	if dbUser.TenantID.Valid {
		var err error
		tenantID, err = uuid.Parse(dbUser.TenantID.String)
		if err != nil {
			return nil, errors.Wrap(err, "invalid user tenant id")
		}
	}

	opts := []user.Option{
		user.WithID(dbUser.ID),
		user.WithTenantID(tenantID),
		user.WithPhone(dbUser.Phone.String),
		user.WithPasswordHash(dbUser.Password.String),
		user.WithDepartmentID(nullInt64ToUintPtr(dbUser.DepartmentID)),
		user.WithJobRoleID(nullInt64ToUintPtr(dbUser.JobRoleID)),
		user.WithIsActive(dbUser.IsActive),
		user.WithCreatedAt(dbUser.CreatedAt),
		user.WithUpdatedAt(dbUser.UpdatedAt),
	}
	if dbUser.LastLogin.Valid {
		lastLogin := dbUser.LastLogin.Time
		opts = append(opts, user.WithLastLogin(&lastLogin))
	}

	return user.New(
		dbUser.FirstName,
		dbUser.LastName,
		dbUser.Email,
		user.Role(dbUser.Role),
		opts...,
	), nil
}

func ToDomainMenuItem(dbItem *models.MenuItem) menuitem.MenuItem {
	return menuitem.MenuItem{
		ID:        dbItem.ID,
		Label:     dbItem.Label,
		Path:      dbItem.Path,
		Icon:      dbItem.Icon.String,
		SortOrder: dbItem.SortOrder,
		IsActive:  dbItem.IsActive,
		CreatedAt: dbItem.CreatedAt,
	}
}

func nullInt64ToUintPtr(v sql.NullInt64) *uint {
	if !v.Valid {
		return nil
	}
	u := uint(v.Int64)
	return &u
}

func uintPtrToNullInt64(v *uint) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func stringToNullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}
