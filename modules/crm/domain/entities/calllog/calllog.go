package calllog

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

var ErrNotFound = errors.New("call log not found")

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

type Outcome string

const (
	OutcomeConnected   Outcome = "connected"
	OutcomeNoAnswer    Outcome = "no_answer"
	OutcomeBusy        Outcome = "busy"
	OutcomeVoicemail   Outcome = "voicemail"
	OutcomeWrongNumber Outcome = "wrong_number"
)

type CallLog struct {
	ID              uint      `json:"id"`
	TenantID        uuid.UUID `json:"-"`
	LeadID          *uint     `json:"lead_id,omitempty"`
	UserID          uint      `json:"user_id"`
	Direction       Direction `json:"direction"`
	Outcome         Outcome   `json:"outcome"`
	DurationSeconds int       `json:"duration_seconds"`
	Notes           string    `json:"notes,omitempty"`
	CalledAt        time.Time `json:"called_at"`
	CreatedAt       time.Time `json:"created_at"`
}

type FindParams struct {
	LeadID    *uint
	UserID    *uint
	Direction Direction
	Outcome   Outcome
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]CallLog, int64, error)
	GetByID(ctx context.Context, id uint) (*CallLog, error)
	Create(ctx context.Context, c *CallLog) (*CallLog, error)
	Delete(ctx context.Context, id uint) error
}

type CreateDTO struct {
	LeadID          *uint     `json:"lead_id"`
	Direction       string    `json:"direction" validate:"required,oneof=inbound outbound"`
	Outcome         string    `json:"outcome" validate:"required,oneof=connected no_answer busy voicemail wrong_number"`
	DurationSeconds int       `json:"duration_seconds" validate:"gte=0,lte=86400"`
	Notes           string    `json:"notes" validate:"omitempty,max=5000"`
	CalledAt        time.Time `json:"called_at"`
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Notes = strings.TrimSpace(d.Notes)
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}

func (d *CreateDTO) ToEntity(userID uint) *CallLog {
	calledAt := d.CalledAt
	if calledAt.IsZero() {
		calledAt = time.Now()
	}
	return &CallLog{
		LeadID:          d.LeadID,
		UserID:          userID,
		Direction:       Direction(d.Direction),
		Outcome:         Outcome(d.Outcome),
		DurationSeconds: d.DurationSeconds,
		Notes:           d.Notes,
		CalledAt:        calledAt,
	}
}
