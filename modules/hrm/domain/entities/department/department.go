package department

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
	ErrNotFound  = errors.New("department not found")
	ErrNameTaken = errors.New("department name already in use")
)

type Department struct {
	ID          uint       `json:"id"`
	TenantID    uuid.UUID  `json:"-"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	HeadUserID  *uint      `json:"head_user_id,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type FindParams struct {
	Search          string
	IncludeInactive bool
	Limit           int
	Offset          int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Department, int64, error)
	GetByID(ctx context.Context, id uint) (*Department, error)
	Create(ctx context.Context, d *Department) (*Department, error)
	Update(ctx context.Context, d *Department) (*Department, error)
	Delete(ctx context.Context, id uint) error
}

type CreateDTO struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	HeadUserID  *uint  `json:"head_user_id"`
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Name = strings.TrimSpace(d.Name)
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}

func (d *CreateDTO) ToEntity() *Department {
	return &Department{
		Name:        d.Name,
		Description: d.Description,
		HeadUserID:  d.HeadUserID,
		IsActive:    true,
	}
}

type UpdateDTO struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	HeadUserID  *uint  `json:"head_user_id"`
}

func (d *UpdateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Name = strings.TrimSpace(d.Name)
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}

func (d *UpdateDTO) Apply(existing *Department) {
	existing.Name = d.Name
	existing.Description = d.Description
	existing.HeadUserID = d.HeadUserID
	existing.UpdatedAt = time.Now()
}
