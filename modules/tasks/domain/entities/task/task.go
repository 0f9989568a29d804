package task

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

var ErrNotFound = errors.New("task not found")

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

type AssigneeStatus string

const (
	AssigneePending   AssigneeStatus = "pending"
	AssigneeAccepted  AssigneeStatus = "accepted"
	AssigneeRejected  AssigneeStatus = "rejected"
	AssigneeCompleted AssigneeStatus = "completed"
)

func (s AssigneeStatus) Valid() bool {
	switch s {
	case AssigneePending, AssigneeAccepted, AssigneeRejected, AssigneeCompleted:
		return true
	}
	return false
}

// CanTransition encodes the per-assignee lifecycle: a pending assignment is
// accepted or rejected, and only accepted work can be completed.
func (s AssigneeStatus) CanTransition(to AssigneeStatus) bool {
	switch s {
	case AssigneePending:
		return to == AssigneeAccepted || to == AssigneeRejected
	case AssigneeAccepted:
		return to == AssigneeCompleted
	}
	return false
}

type Assignee struct {
	TaskID    uint           `json:"task_id"`
	UserID    uint           `json:"user_id"`
	Status    AssigneeStatus `json:"status"`
	Note      string         `json:"note,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type Task struct {
	ID          uint       `json:"id"`
	TenantID    uuid.UUID  `json:"-"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedBy   uint       `json:"created_by"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Assignees   []Assignee `json:"assignees,omitempty"`
}

// DeriveStatus folds the per-assignee statuses into the task status. A task
// with every assignment rejected goes back to open so it can be re-assigned.
func DeriveStatus(assignees []Assignee) Status {
	if len(assignees) == 0 {
		return StatusOpen
	}
	completed, rejected, started := 0, 0, 0
	for _, a := range assignees {
		switch a.Status {
		case AssigneeCompleted:
			completed++
			started++
		case AssigneeRejected:
			rejected++
		case AssigneeAccepted:
			started++
		}
	}
	switch {
	case completed == len(assignees):
		return StatusCompleted
	case rejected == len(assignees):
		return StatusOpen
	case completed+rejected == len(assignees) && completed > 0:
		// Everyone who did not reject has finished.
		return StatusCompleted
	case started > 0:
		return StatusInProgress
	default:
		return StatusOpen
	}
}

// AllRejected reports whether every assignment was turned down.
func AllRejected(assignees []Assignee) bool {
	if len(assignees) == 0 {
		return false
	}
	for _, a := range assignees {
		if a.Status != AssigneeRejected {
			return false
		}
	}
	return true
}

type FindParams struct {
	Search          string
	Status          Status
	Priority        Priority
	AssigneeID      *uint
	CreatedBy       *uint
	DueFrom         *time.Time
	DueTo           *time.Time
	Overdue         bool
	IncludeInactive bool
	Limit           int
	Offset          int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Task, int64, error)
	GetByID(ctx context.Context, id uint) (*Task, error)
	Create(ctx context.Context, t *Task, assigneeIDs []uint) (*Task, error)
	Update(ctx context.Context, t *Task) (*Task, error)
	UpdateStatus(ctx context.Context, id uint, status Status, completedAt *time.Time) error
	SetAssigneeStatus(ctx context.Context, taskID, userID uint, status AssigneeStatus, note string) error
	ResetAssignees(ctx context.Context, taskID uint, assigneeIDs []uint) error
	Delete(ctx context.Context, id uint) error
	// ListOverdue crosses tenant boundaries; it serves the background sweep.
	ListOverdue(ctx context.Context, asOf time.Time) ([]Task, error)
}

type CreateDTO struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Description string     `json:"description" validate:"omitempty,max=5000"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	DueDate     *time.Time `json:"due_date"`
	AssigneeIDs []uint     `json:"assignee_ids" validate:"required,min=1,dive,required"`
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Title = strings.TrimSpace(d.Title)
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}

func (d *CreateDTO) ToEntity(createdBy uint) *Task {
	priority := Priority(d.Priority)
	if priority == "" {
		priority = PriorityMedium
	}
	return &Task{
		Title:       d.Title,
		Description: d.Description,
		Priority:    priority,
		Status:      StatusOpen,
		DueDate:     d.DueDate,
		CreatedBy:   createdBy,
		IsActive:    true,
	}
}

type UpdateDTO struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Description string     `json:"description" validate:"omitempty,max=5000"`
	Priority    string     `json:"priority" validate:"required,oneof=low medium high urgent"`
	DueDate     *time.Time `json:"due_date"`
}

func (d *UpdateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Title = strings.TrimSpace(d.Title)
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}

func (d *UpdateDTO) Apply(existing *Task) {
	existing.Title = d.Title
	existing.Description = d.Description
	existing.Priority = Priority(d.Priority)
	existing.DueDate = d.DueDate
	existing.UpdatedAt = time.Now()
}

type StatusDTO struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected completed"`
	Note   string `json:"note" validate:"omitempty,max=1000"`
}

func (d *StatusDTO) Ok() (serrors.ValidationErrors, bool) {
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return serrors.ValidationErrors{}, true
}
