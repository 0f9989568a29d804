package persistence

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/stafflink/backoffice/modules/dashboard/domain/summary"
	"github.com/stafflink/backoffice/pkg/composables"
)

const (
	taskStatsQuery = `
		SELECT t.status, COUNT(*) FROM tasks t
		WHERE t.tenant_id = $1 AND t.is_active AND t.created_at BETWEEN $2 AND $3
		GROUP BY t.status`

	taskOverdueCountQuery = `
		SELECT COUNT(*) FROM tasks t
		WHERE t.tenant_id = $1 AND t.is_active
			AND t.status IN ('open', 'in_progress')
			AND t.due_date IS NOT NULL AND t.due_date < NOW()
			AND t.created_at BETWEEN $2 AND $3`

	leadStatsQuery = `
		SELECT l.status, COUNT(*), COALESCE(SUM(l.estimated_value), 0) FROM leads l
		WHERE l.tenant_id = $1 AND l.is_active AND l.created_at BETWEEN $2 AND $3
		GROUP BY l.status`

	meetingStatsQuery = `
		SELECT m.status, COUNT(*) FROM client_meetings m
		WHERE m.tenant_id = $1 AND m.starts_at BETWEEN $2 AND $3
		GROUP BY m.status`

	callStatsQuery = `
		SELECT c.direction, COUNT(*), COALESCE(SUM(c.duration_seconds), 0) FROM call_logs c
		WHERE c.tenant_id = $1 AND c.called_at BETWEEN $2 AND $3
		GROUP BY c.direction`

	callOutcomeQuery = `
		SELECT c.outcome, COUNT(*) FROM call_logs c
		WHERE c.tenant_id = $1 AND c.called_at BETWEEN $2 AND $3
		GROUP BY c.outcome`

	followUpStatsQuery = `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE f.done_at IS NULL),
			COUNT(*) FILTER (WHERE f.done_at IS NOT NULL),
			COUNT(*) FILTER (WHERE f.done_at IS NULL AND f.due_at < NOW())
		FROM follow_ups f
		WHERE f.tenant_id = $1 AND f.due_at BETWEEN $2 AND $3`

	headcountQuery = `
		SELECT d.id, d.name, COUNT(u.id) FROM departments d
		LEFT JOIN users u ON u.department_id = d.id AND u.is_active
		WHERE d.tenant_id = $1 AND d.is_active
		GROUP BY d.id, d.name
		ORDER BY d.name`
)

type PgSummaryRepository struct{}

func NewSummaryRepository() summary.Repository {
	return &PgSummaryRepository{}
}

func (g *PgSummaryRepository) Summarize(ctx context.Context, from, to time.Time) (*summary.Summary, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	s := &summary.Summary{
		From: from,
		To:   to,
		Leads: summary.LeadStats{
			PipelineValue: decimal.Zero,
			WonValue:      decimal.Zero,
		},
	}
	tenant := tenantID.String()

	rows, err := tx.Query(ctx, taskStatsQuery, tenant, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate tasks")
	}
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "failed to scan task stats")
		}
		s.Tasks.Total += count
		switch status {
		case "open":
			s.Tasks.Open = count
		case "in_progress":
			s.Tasks.InProgress = count
		case "completed":
			s.Tasks.Completed = count
		case "cancelled":
			s.Tasks.Cancelled = count
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.QueryRow(ctx, taskOverdueCountQuery, tenant, from, to).Scan(&s.Tasks.Overdue); err != nil {
		return nil, errors.Wrap(err, "failed to count overdue tasks")
	}

	rows, err = tx.Query(ctx, leadStatsQuery, tenant, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate leads")
	}
	for rows.Next() {
		var status string
		var count int64
		var value decimal.Decimal
		if err := rows.Scan(&status, &count, &value); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "failed to scan lead stats")
		}
		s.Leads.Total += count
		switch status {
		case "new":
			s.Leads.New = count
		case "contacted":
			s.Leads.Contacted = count
		case "qualified":
			s.Leads.Qualified = count
		case "won":
			s.Leads.Won = count
			s.Leads.WonValue = value
		case "lost":
			s.Leads.Lost = count
		}
		// Pipeline value excludes lost deals.
		if status != "lost" {
			s.Leads.PipelineValue = s.Leads.PipelineValue.Add(value)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = tx.Query(ctx, meetingStatsQuery, tenant, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate meetings")
	}
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "failed to scan meeting stats")
		}
		s.Meetings.Total += count
		switch status {
		case "scheduled":
			s.Meetings.Scheduled = count
		case "completed":
			s.Meetings.Completed = count
		case "cancelled":
			s.Meetings.Cancelled = count
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = tx.Query(ctx, callStatsQuery, tenant, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate calls")
	}
	for rows.Next() {
		var direction string
		var count, duration int64
		if err := rows.Scan(&direction, &count, &duration); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "failed to scan call stats")
		}
		s.Calls.Total += count
		s.Calls.TotalDurationSeconds += duration
		switch direction {
		case "inbound":
			s.Calls.Inbound = count
		case "outbound":
			s.Calls.Outbound = count
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = tx.Query(ctx, callOutcomeQuery, tenant, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate call outcomes")
	}
	for rows.Next() {
		var outcome string
		var count int64
		if err := rows.Scan(&outcome, &count); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "failed to scan call outcomes")
		}
		switch outcome {
		case "connected":
			s.Calls.Connected = count
		case "no_answer":
			s.Calls.NoAnswer = count
		case "busy":
			s.Calls.Busy = count
		case "voicemail":
			s.Calls.Voicemail = count
		case "wrong_number":
			s.Calls.WrongNumber = count
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.QueryRow(ctx, followUpStatsQuery, tenant, from, to).Scan(
		&s.FollowUps.Total,
		&s.FollowUps.Pending,
		&s.FollowUps.Done,
		&s.FollowUps.Overdue,
	); err != nil {
		return nil, errors.Wrap(err, "failed to aggregate follow-ups")
	}

	rows, err = tx.Query(ctx, headcountQuery, tenant)
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate headcount")
	}
	for rows.Next() {
		var entry summary.DepartmentHeadcount
		if err := rows.Scan(&entry.DepartmentID, &entry.Name, &entry.Count); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "failed to scan headcount")
		}
		s.Headcount = append(s.Headcount, entry)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if s.Leads.Total > 0 {
		s.Leads.ConversionRate = float64(s.Leads.Won) / float64(s.Leads.Total)
	}

	return s, nil
}
