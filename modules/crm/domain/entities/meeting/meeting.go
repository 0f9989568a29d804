package meeting

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

var ErrNotFound = errors.New("meeting not found")

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type Meeting struct {
	ID          uint      `json:"id"`
	TenantID    uuid.UUID `json:"-"`
	Title       string    `json:"title"`
	ClientName  string    `json:"client_name,omitempty"`
	LeadID      *uint     `json:"lead_id,omitempty"`
	Location    string    `json:"location,omitempty"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	OrganizerID uint      `json:"organizer_id"`
	Status      Status    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	AttendeeIDs []uint    `json:"attendee_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type FindParams struct {
	Search      string
	Status      Status
	OrganizerID *uint
	AttendeeID  *uint
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Meeting, int64, error)
	GetByID(ctx context.Context, id uint) (*Meeting, error)
	Create(ctx context.Context, m *Meeting) (*Meeting, error)
	Update(ctx context.Context, m *Meeting) (*Meeting, error)
	UpdateStatus(ctx context.Context, id uint, status Status) error
	// HasOverlap reports whether the organizer already has a scheduled
	// meeting intersecting [startsAt, endsAt). excludeID skips the meeting
	// being rescheduled; pass 0 on create.
	HasOverlap(ctx context.Context, organizerID uint, startsAt, endsAt time.Time, excludeID uint) (bool, error)
	Delete(ctx context.Context, id uint) error
}

type CreateDTO struct {
	Title       string    `json:"title" validate:"required,max=255"`
	ClientName  string    `json:"client_name" validate:"omitempty,max=255"`
	LeadID      *uint     `json:"lead_id"`
	Location    string    `json:"location" validate:"omitempty,max=255"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required"`
	Notes       string    `json:"notes" validate:"omitempty,max=5000"`
	AttendeeIDs []uint    `json:"attendee_ids"`
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Title = strings.TrimSpace(d.Title)
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	if !d.EndsAt.After(d.StartsAt) {
		return serrors.ValidationErrors{"EndsAt": "must be after starts_at"}, false
	}
	return serrors.ValidationErrors{}, true
}

func (d *CreateDTO) ToEntity(organizerID uint) *Meeting {
	return &Meeting{
		Title:       d.Title,
		ClientName:  d.ClientName,
		LeadID:      d.LeadID,
		Location:    d.Location,
		StartsAt:    d.StartsAt,
		EndsAt:      d.EndsAt,
		OrganizerID: organizerID,
		Status:      StatusScheduled,
		Notes:       d.Notes,
		AttendeeIDs: d.AttendeeIDs,
	}
}

type UpdateDTO struct {
	Title       string    `json:"title" validate:"required,max=255"`
	ClientName  string    `json:"client_name" validate:"omitempty,max=255"`
	LeadID      *uint     `json:"lead_id"`
	Location    string    `json:"location" validate:"omitempty,max=255"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required"`
	Notes       string    `json:"notes" validate:"omitempty,max=5000"`
	AttendeeIDs []uint    `json:"attendee_ids"`
}

func (d *UpdateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Title = strings.TrimSpace(d.Title)
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	if !d.EndsAt.After(d.StartsAt) {
		return serrors.ValidationErrors{"EndsAt": "must be after starts_at"}, false
	}
	return serrors.ValidationErrors{}, true
}

func (d *UpdateDTO) Apply(existing *Meeting) {
	existing.Title = d.Title
	existing.ClientName = d.ClientName
	existing.LeadID = d.LeadID
	existing.Location = d.Location
	existing.StartsAt = d.StartsAt
	existing.EndsAt = d.EndsAt
	existing.Notes = d.Notes
	existing.AttendeeIDs = d.AttendeeIDs
	existing.UpdatedAt = time.Now()
}
