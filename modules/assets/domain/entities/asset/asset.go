package asset

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

var (
	ErrNotFound    = errors.New("asset not found")
	ErrSerialTaken = errors.New("serial number already registered")
)

type Condition string

const (
	ConditionNew    Condition = "new"
	ConditionGood   Condition = "good"
	ConditionFair   Condition = "fair"
	ConditionBroken Condition = "broken"
)

type Asset struct {
	ID           uint            `json:"id"`
	TenantID     uuid.UUID       `json:"-"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	SerialNumber string          `json:"serial_number"`
	PurchaseCost decimal.Decimal `json:"purchase_cost"`
	PurchasedAt  *time.Time      `json:"purchased_at,omitempty"`
	AssignedTo   *uint           `json:"assigned_to,omitempty"`
	Condition    Condition       `json:"condition"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Assigned reports whether the asset is currently held by a user.
func (a *Asset) Assigned() bool {
	return a.AssignedTo != nil
}

// Assignment is one entry in an asset's custody history. A nil UserID
// records a return to storage.
type Assignment struct {
	ID         uint      `json:"id"`
	AssetID    uint      `json:"asset_id"`
	UserID     *uint     `json:"user_id,omitempty"`
	AssignedBy uint      `json:"assigned_by"`
	AssignedAt time.Time `json:"assigned_at"`
}

type FindParams struct {
	Search          string
	Category        string
	Condition       Condition
	AssignedTo      *uint
	UnassignedOnly  bool
	IncludeInactive bool
	Limit           int
	Offset          int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Asset, int64, error)
	GetByID(ctx context.Context, id uint) (*Asset, error)
	Create(ctx context.Context, a *Asset) (*Asset, error)
	Update(ctx context.Context, a *Asset) (*Asset, error)
	SetAssignedTo(ctx context.Context, id uint, userID *uint) error
	AddAssignment(ctx context.Context, entry *Assignment) error
	GetAssignments(ctx context.Context, assetID uint) ([]Assignment, error)
	Delete(ctx context.Context, id uint) error
}

type CreateDTO struct {
	Name         string     `json:"name" validate:"required,max=255"`
	Category     string     `json:"category" validate:"required,max=100"`
	SerialNumber string     `json:"serial_number" validate:"required,max=100"`
	PurchaseCost string     `json:"purchase_cost" validate:"omitempty"`
	PurchasedAt  *time.Time `json:"purchased_at"`
	Condition    string     `json:"condition" validate:"omitempty,oneof=new good fair broken"`
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Name = strings.TrimSpace(d.Name)
	d.SerialNumber = strings.TrimSpace(d.SerialNumber)
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	if d.PurchaseCost != "" {
		if v, err := decimal.NewFromString(d.PurchaseCost); err != nil || v.IsNegative() {
			return serrors.ValidationErrors{"PurchaseCost": "must be a non-negative decimal"}, false
		}
	}
	return serrors.ValidationErrors{}, true
}

func (d *CreateDTO) ToEntity() *Asset {
	condition := Condition(d.Condition)
	if condition == "" {
		condition = ConditionGood
	}
	cost := decimal.Zero
	if d.PurchaseCost != "" {
		cost, _ = decimal.NewFromString(d.PurchaseCost)
	}
	return &Asset{
		Name:         d.Name,
		Category:     d.Category,
		SerialNumber: d.SerialNumber,
		PurchaseCost: cost,
		PurchasedAt:  d.PurchasedAt,
		Condition:    condition,
		IsActive:     true,
	}
}

type UpdateDTO struct {
	Name         string     `json:"name" validate:"required,max=255"`
	Category     string     `json:"category" validate:"required,max=100"`
	SerialNumber string     `json:"serial_number" validate:"required,max=100"`
	PurchaseCost string     `json:"purchase_cost" validate:"omitempty"`
	PurchasedAt  *time.Time `json:"purchased_at"`
	Condition    string     `json:"condition" validate:"required,oneof=new good fair broken"`
}

func (d *UpdateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Name = strings.TrimSpace(d.Name)
	d.SerialNumber = strings.TrimSpace(d.SerialNumber)
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	if d.PurchaseCost != "" {
		if v, err := decimal.NewFromString(d.PurchaseCost); err != nil || v.IsNegative() {
			return serrors.ValidationErrors{"PurchaseCost": "must be a non-negative decimal"}, false
		}
	}
	return serrors.ValidationErrors{}, true
}

func (d *UpdateDTO) Apply(existing *Asset) {
	existing.Name = d.Name
	existing.Category = d.Category
	existing.SerialNumber = d.SerialNumber
	if d.PurchaseCost != "" {
		existing.PurchaseCost, _ = decimal.NewFromString(d.PurchaseCost)
	}
	existing.PurchasedAt = d.PurchasedAt
	existing.Condition = Condition(d.Condition)
	existing.UpdatedAt = time.Now()
}
