package jobrole

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/stafflink/backoffice/pkg/constants"
	"github.com/stafflink/backoffice/pkg/serrors"
)

var (
	ErrNotFound   = errors.New("job role not found")
	ErrTitleTaken = errors.New("job role title already in use within the department")
)

type JobRole struct {
	ID           uint      `json:"id"`
	TenantID     uuid.UUID `json:"-"`
	DepartmentID uint      `json:"department_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type FindParams struct {
	Search          string
	DepartmentID    *uint
	IncludeInactive bool
	Limit           int
	Offset          int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]JobRole, int64, error)
	GetByID(ctx context.Context, id uint) (*JobRole, error)
	Create(ctx context.Context, j *JobRole) (*JobRole, error)
	Update(ctx context.Context, j *JobRole) (*JobRole, error)
	Delete(ctx context.Context, id uint) error
}

type CreateDTO struct {
	DepartmentID uint   `json:"department_id" validate:"required"`
	Title        string `json:"title" validate:"required,max=255"`
	Description  string `json:"description" validate:"omitempty,max=1000"`
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Title = strings.TrimSpace(d.Title)
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}

func (d *CreateDTO) ToEntity() *JobRole {
	return &JobRole{
		DepartmentID: d.DepartmentID,
		Title:        d.Title,
		Description:  d.Description,
		IsActive:     true,
	}
}

type UpdateDTO struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

func (d *UpdateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Title = strings.TrimSpace(d.Title)
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}

func (d *UpdateDTO) Apply(existing *JobRole) {
	existing.Title = d.Title
	existing.Description = d.Description
	existing.UpdatedAt = time.Now()
}
