package summary

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TaskStats counts tasks created inside the reporting window by status.
// Overdue counts open or in-progress tasks whose due date has passed.
type TaskStats struct {
	Total      int64 `json:"total"`
	Open       int64 `json:"open"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Cancelled  int64 `json:"cancelled"`
	Overdue    int64 `json:"overdue"`
}

// LeadStats breaks the pipeline down by status. ConversionRate is won over
// total for the window, zero when no leads were created.
type LeadStats struct {
	Total          int64           `json:"total"`
	New            int64           `json:"new"`
	Contacted      int64           `json:"contacted"`
	Qualified      int64           `json:"qualified"`
	Won            int64           `json:"won"`
	Lost           int64           `json:"lost"`
	PipelineValue  decimal.Decimal `json:"pipeline_value"`
	WonValue       decimal.Decimal `json:"won_value"`
	ConversionRate float64         `json:"conversion_rate"`
}

type MeetingStats struct {
	Total     int64 `json:"total"`
	Scheduled int64 `json:"scheduled"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
}

type CallStats struct {
	Total                int64 `json:"total"`
	Inbound              int64 `json:"inbound"`
	Outbound             int64 `json:"outbound"`
	Connected            int64 `json:"connected"`
	NoAnswer             int64 `json:"no_answer"`
	Busy                 int64 `json:"busy"`
	Voicemail            int64 `json:"voicemail"`
	WrongNumber          int64 `json:"wrong_number"`
	TotalDurationSeconds int64 `json:"total_duration_seconds"`
}

// FollowUpStats covers follow-ups due inside the window. Overdue counts
// pending ones whose due date has already passed.
type FollowUpStats struct {
	Total   int64 `json:"total"`
	Pending int64 `json:"pending"`
	Done    int64 `json:"done"`
	Overdue int64 `json:"overdue"`
}

// DepartmentHeadcount is the active user count per department.
type DepartmentHeadcount struct {
	DepartmentID uint   `json:"department_id"`
	Name         string `json:"name"`
	Count        int64  `json:"count"`
}

type Summary struct {
	From      time.Time             `json:"from"`
	To        time.Time             `json:"to"`
	Tasks     TaskStats             `json:"tasks"`
	Leads     LeadStats             `json:"leads"`
	Meetings  MeetingStats          `json:"meetings"`
	Calls     CallStats             `json:"calls"`
	FollowUps FollowUpStats         `json:"follow_ups"`
	Headcount []DepartmentHeadcount `json:"headcount"`
}

type Repository interface {
	Summarize(ctx context.Context, from, to time.Time) (*Summary, error)
}
