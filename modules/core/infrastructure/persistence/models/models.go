package models

import (
	"database/sql"
	"time"
)

type Tenant struct {
	ID        string
	Name      string
	Code      string
	Domain    sql.NullString
	Address   sql.NullString
	Phone     sql.NullString
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type User struct {
	ID           uint
	TenantID     sql.NullString
	FirstName    string
	LastName     string
	Email        string
	Phone        sql.NullString
	Password     sql.NullString
	Role         string
	DepartmentID sql.NullInt64
	JobRoleID    sql.NullInt64
	IsActive     bool
	LastLogin    sql.NullTime
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type MenuItem struct {
	ID        uint
	Label     string
	Path      string
	Icon      sql.NullString
	SortOrder int
	IsActive  bool
	CreatedAt time.Time
}
