package tenant

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/stafflink/backoffice/pkg/constants"
	"github.com/stafflink/backoffice/pkg/serrors"
)

type CreateDTO struct {
	Name    string `json:"name" validate:"required,max=255"`
	Code    string `json:"code" validate:"required,alphanum,max=32"`
	Domain  string `json:"domain" validate:"omitempty,fqdn"`
	Address string `json:"address" validate:"omitempty,max=500"`
	Phone   string `json:"phone" validate:"omitempty,max=32"`
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Name = strings.TrimSpace(d.Name)
	d.Code = strings.ToLower(strings.TrimSpace(d.Code))
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}

func (d *CreateDTO) ToEntity() *Tenant {
	return New(d.Name, d.Code,
		WithID(uuid.New()),
		WithDomain(d.Domain),
		WithAddress(d.Address),
		WithPhone(d.Phone),
	)
}

type UpdateDTO struct {
	Name    string `json:"name" validate:"required,max=255"`
	Domain  string `json:"domain" validate:"omitempty,fqdn"`
	Address string `json:"address" validate:"omitempty,max=500"`
	Phone   string `json:"phone" validate:"omitempty,max=32"`
}

func (d *UpdateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Name = strings.TrimSpace(d.Name)
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}

// Apply mutates the existing tenant in place; code is immutable after
// creation because tokens and URLs embed it.
func (d *UpdateDTO) Apply(t *Tenant) {
	t.SetName(d.Name)
	t.SetDomain(d.Domain)
	t.SetAddress(d.Address)
	t.SetPhone(d.Phone)
}
