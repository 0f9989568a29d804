package followup

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

var ErrNotFound = errors.New("follow-up not found")

type FollowUp struct {
	ID         uint       `json:"id"`
	TenantID   uuid.UUID  `json:"-"`
	LeadID     uint       `json:"lead_id"`
	AssigneeID uint       `json:"assignee_id"`
	Note       string     `json:"note,omitempty"`
	DueAt      time.Time  `json:"due_at"`
	DoneAt     *time.Time `json:"done_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Done reports whether the follow-up has been completed.
func (f *FollowUp) Done() bool {
	return f.DoneAt != nil
}

type FindParams struct {
	LeadID      *uint
	AssigneeID  *uint
	PendingOnly bool
	DueFrom     *time.Time
	DueTo       *time.Time
	Limit       int
	Offset      int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]FollowUp, int64, error)
	GetByID(ctx context.Context, id uint) (*FollowUp, error)
	Create(ctx context.Context, f *FollowUp) (*FollowUp, error)
	Update(ctx context.Context, f *FollowUp) (*FollowUp, error)
	MarkDone(ctx context.Context, id uint, doneAt time.Time) error
	Delete(ctx context.Context, id uint) error
}

type CreateDTO struct {
	LeadID     uint      `json:"lead_id" validate:"required"`
	AssigneeID uint      `json:"assignee_id" validate:"required"`
	Note       string    `json:"note" validate:"omitempty,max=2000"`
	DueAt      time.Time `json:"due_at" validate:"required"`
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Note = strings.TrimSpace(d.Note)
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}

func (d *CreateDTO) ToEntity() *FollowUp {
	return &FollowUp{
		LeadID:     d.LeadID,
		AssigneeID: d.AssigneeID,
		Note:       d.Note,
		DueAt:      d.DueAt,
	}
}

type UpdateDTO struct {
	AssigneeID uint      `json:"assignee_id" validate:"required"`
	Note       string    `json:"note" validate:"omitempty,max=2000"`
	DueAt      time.Time `json:"due_at" validate:"required"`
}

func (d *UpdateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Note = strings.TrimSpace(d.Note)
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}

func (d *UpdateDTO) Apply(existing *FollowUp) {
	existing.AssigneeID = d.AssigneeID
	existing.Note = d.Note
	existing.DueAt = d.DueAt
	existing.UpdatedAt = time.Now()
}
