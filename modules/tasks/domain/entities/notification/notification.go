package notification

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("notification not found")

const (
	KindTaskAssigned  = "task.assigned"
	KindTaskCompleted = "task.completed"
	KindTaskReopened  = "task.reopened"
	KindTaskOverdue   = "task.overdue"
)

type Notification struct {
	ID        uint      `json:"id"`
	TenantID  uuid.UUID `json:"-"`
	UserID    uint      `json:"user_id"`
	Kind      string    `json:"kind"`
	TaskID    *uint     `json:"task_id,omitempty"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type FindParams struct {
	UserID     uint
	UnreadOnly bool
	Limit      int
	Offset     int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Notification, int64, error)
	Create(ctx context.Context, n *Notification) error
	// CreateDedup inserts unless an equal notification already exists for the
	// same day; the overdue sweep relies on it to notify once per task per day.
	CreateDedup(ctx context.Context, n *Notification) error
	MarkRead(ctx context.Context, id, userID uint) error
	MarkAllRead(ctx context.Context, userID uint) error
	CountUnread(ctx context.Context, userID uint) (int64, error)
}
