package lead

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stafflink/backoffice/pkg/constants"
	"github.com/stafflink/backoffice/pkg/serrors"
)

var ErrNotFound = errors.New("lead not found")

type Source string

const (
	SourceWebsite  Source = "website"
	SourceReferral Source = "referral"
	SourceCall     Source = "call"
	SourceCampaign Source = "campaign"
	SourceOther    Source = "other"
)

type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusWon       Status = "won"
	StatusLost      Status = "lost"
)

// Terminal reports whether the pipeline is closed for this lead.
func (s Status) Terminal() bool {
	return s == StatusWon || s == StatusLost
}

type Lead struct {
	ID             uint            `json:"id"`
	TenantID       uuid.UUID       `json:"-"`
	Name           string          `json:"name"`
	CompanyName    string          `json:"company_name,omitempty"`
	Email          string          `json:"email,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	Source         Source          `json:"source"`
	Status         Status          `json:"status"`
	EstimatedValue decimal.Decimal `json:"estimated_value"`
	OwnerID        *uint           `json:"owner_id,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type FindParams struct {
	Search          string
	Status          Status
	Source          Source
	OwnerID         *uint
	IncludeInactive bool
	Limit           int
	Offset          int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Lead, int64, error)
	GetByID(ctx context.Context, id uint) (*Lead, error)
	Create(ctx context.Context, l *Lead) (*Lead, error)
	Update(ctx context.Context, l *Lead) (*Lead, error)
	UpdateStatus(ctx context.Context, id uint, status Status) error
	Delete(ctx context.Context, id uint) error
}

type CreateDTO struct {
	Name           string `json:"name" validate:"required,max=255"`
	CompanyName    string `json:"company_name" validate:"omitempty,max=255"`
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone" validate:"omitempty,max=32"`
	Source         string `json:"source" validate:"omitempty,oneof=website referral call campaign other"`
	EstimatedValue string `json:"estimated_value" validate:"omitempty"`
	OwnerID        *uint  `json:"owner_id"`
	Notes          string `json:"notes" validate:"omitempty,max=5000"`
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	if d.EstimatedValue != "" {
		if v, err := decimal.NewFromString(d.EstimatedValue); err != nil || v.IsNegative() {
			return serrors.ValidationErrors{"EstimatedValue": "must be a non-negative decimal"}, false
		}
	}
	return serrors.ValidationErrors{}, true
}

func (d *CreateDTO) ToEntity() *Lead {
	source := Source(d.Source)
	if source == "" {
		source = SourceOther
	}
	value := decimal.Zero
	if d.EstimatedValue != "" {
		value, _ = decimal.NewFromString(d.EstimatedValue)
	}
	return &Lead{
		Name:           d.Name,
		CompanyName:    d.CompanyName,
		Email:          d.Email,
		Phone:          d.Phone,
		Source:         source,
		Status:         StatusNew,
		EstimatedValue: value,
		OwnerID:        d.OwnerID,
		Notes:          d.Notes,
		IsActive:       true,
	}
}

type UpdateDTO struct {
	Name           string `json:"name" validate:"required,max=255"`
	CompanyName    string `json:"company_name" validate:"omitempty,max=255"`
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone" validate:"omitempty,max=32"`
	Source         string `json:"source" validate:"required,oneof=website referral call campaign other"`
	EstimatedValue string `json:"estimated_value" validate:"omitempty"`
	OwnerID        *uint  `json:"owner_id"`
	Notes          string `json:"notes" validate:"omitempty,max=5000"`
}

func (d *UpdateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	if d.EstimatedValue != "" {
		if v, err := decimal.NewFromString(d.EstimatedValue); err != nil || v.IsNegative() {
			return serrors.ValidationErrors{"EstimatedValue": "must be a non-negative decimal"}, false
		}
	}
	return serrors.ValidationErrors{}, true
}

func (d *UpdateDTO) Apply(existing *Lead) {
	existing.Name = d.Name
	existing.CompanyName = d.CompanyName
	existing.Email = d.Email
	existing.Phone = d.Phone
	existing.Source = Source(d.Source)
	if d.EstimatedValue != "" {
		existing.EstimatedValue, _ = decimal.NewFromString(d.EstimatedValue)
	}
	existing.OwnerID = d.OwnerID
	existing.Notes = d.Notes
	existing.UpdatedAt = time.Now()
}

type StatusDTO struct {
	Status string `json:"status" validate:"required,oneof=new contacted qualified won lost"`
}

func (d *StatusDTO) Ok() (serrors.ValidationErrors, bool) {
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}
