package user

import (
	"context"

	"github.com/go-faster/errors"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
)

type FindParams struct {
	Search          string
	Role            Role
	DepartmentID    *uint
	IncludeInactive bool
	Limit           int
	Offset          int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]User, int64, error)
	GetByID(ctx context.Context, id uint) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, u User) (User, error)
	Update(ctx context.Context, u User) (User, error)
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id uint) error
	Deactivate(ctx context.Context, id uint) error
	CountActiveByDepartment(ctx context.Context, departmentID uint) (int64, error)
	CountActiveByJobRole(ctx context.Context, jobRoleID uint) (int64, error)
}
