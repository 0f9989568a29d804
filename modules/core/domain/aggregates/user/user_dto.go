package user

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/stafflink/backoffice/pkg/constants"
	"github.com/stafflink/backoffice/pkg/serrors"
)

type CreateDTO struct {
	FirstName    string `json:"first_name" validate:"required,max=100"`
	LastName     string `json:"last_name" validate:"required,max=100"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"omitempty,max=32"`
	Password     string `json:"password" validate:"required,min=8"`
	Role         string `json:"role" validate:"required,oneof=admin manager employee"`
	DepartmentID *uint  `json:"department_id"`
	JobRoleID    *uint  `json:"job_role_id"`
}

func (d *CreateDTO) Normalize() {
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Phone = strings.TrimSpace(d.Phone)
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}

func (d *CreateDTO) ToEntity(passwordHash string) User {
	return New(
		d.FirstName,
		d.LastName,
		d.Email,
		Role(d.Role),
		WithPhone(d.Phone),
		WithPasswordHash(passwordHash),
		WithDepartmentID(d.DepartmentID),
		WithJobRoleID(d.JobRoleID),
	)
}

type UpdateDTO struct {
	FirstName    string `json:"first_name" validate:"required,max=100"`
	LastName     string `json:"last_name" validate:"required,max=100"`
	Phone        string `json:"phone" validate:"omitempty,max=32"`
	Role         string `json:"role" validate:"required,oneof=admin manager employee"`
	DepartmentID *uint  `json:"department_id"`
	JobRoleID    *uint  `json:"job_role_id"`
	IsActive     *bool  `json:"is_active"`
}

func (d *UpdateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Phone = strings.TrimSpace(d.Phone)
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}

// Apply builds the updated aggregate from the existing one; email and
// password never change through this DTO.
func (d *UpdateDTO) Apply(existing User) User {
	isActive := existing.IsActive()
	if d.IsActive != nil {
		isActive = *d.IsActive
	}
	return New(
		d.FirstName,
		d.LastName,
		existing.Email(),
		Role(d.Role),
		WithID(existing.ID()),
		WithTenantID(existing.TenantID()),
		WithPhone(d.Phone),
		WithPasswordHash(existing.PasswordHash()),
		WithDepartmentID(d.DepartmentID),
		WithJobRoleID(d.JobRoleID),
		WithIsActive(isActive),
		WithLastLogin(existing.LastLogin()),
		WithCreatedAt(existing.CreatedAt()),
	)
}

type ChangePasswordDTO struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

func (d *ChangePasswordDTO) Ok() (serrors.ValidationErrors, bool) {
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}
