package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"

	"github.com/stafflink/backoffice/modules/dashboard/domain/summary"
	"github.com/stafflink/backoffice/pkg/authz"
)

// Swapped out in tests.
var authorizeDashboard = func(ctx context.Context, object, action string) error {
	return authz.Authorize(ctx, object, action)
}

type DashboardService struct {
	repo summary.Repository
}

func NewDashboardService(repo summary.Repository) *DashboardService {
	return &DashboardService{repo: repo}
}

func (s *DashboardService) Summary(ctx context.Context, from, to time.Time) (*summary.Summary, error) {
	if err := authorizeDashboard(ctx, "dashboard.summary", "read"); err != nil {
		return nil, err
	}
	return s.repo.Summarize(ctx, from, to)
}

// ExportXLSX writes the summary for the window as a spreadsheet, one sheet
// per section.
func (s *DashboardService) ExportXLSX(ctx context.Context, from, to time.Time, w io.Writer) error {
	if err := authorizeDashboard(ctx, "dashboard.export", "read"); err != nil {
		return err
	}
	sum, err := s.repo.Summarize(ctx, from, to)
	if err != nil {
		return err
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := writeSheet(f, "Tasks", [][]interface{}{
		{"Metric", "Count"},
		{"Total", sum.Tasks.Total},
		{"Open", sum.Tasks.Open},
		{"In progress", sum.Tasks.InProgress},
		{"Completed", sum.Tasks.Completed},
		{"Cancelled", sum.Tasks.Cancelled},
		{"Overdue", sum.Tasks.Overdue},
	}); err != nil {
		return err
	}
	if err := writeSheet(f, "Leads", [][]interface{}{
		{"Metric", "Value"},
		{"Total", sum.Leads.Total},
		{"New", sum.Leads.New},
		{"Contacted", sum.Leads.Contacted},
		{"Qualified", sum.Leads.Qualified},
		{"Won", sum.Leads.Won},
		{"Lost", sum.Leads.Lost},
		{"Pipeline value", sum.Leads.PipelineValue.String()},
		{"Won value", sum.Leads.WonValue.String()},
		{"Conversion rate", sum.Leads.ConversionRate},
	}); err != nil {
		return err
	}
	if err := writeSheet(f, "Meetings", [][]interface{}{
		{"Metric", "Count"},
		{"Total", sum.Meetings.Total},
		{"Scheduled", sum.Meetings.Scheduled},
		{"Completed", sum.Meetings.Completed},
		{"Cancelled", sum.Meetings.Cancelled},
	}); err != nil {
		return err
	}
	if err := writeSheet(f, "Calls", [][]interface{}{
		{"Metric", "Value"},
		{"Total", sum.Calls.Total},
		{"Inbound", sum.Calls.Inbound},
		{"Outbound", sum.Calls.Outbound},
		{"Connected", sum.Calls.Connected},
		{"No answer", sum.Calls.NoAnswer},
		{"Busy", sum.Calls.Busy},
		{"Voicemail", sum.Calls.Voicemail},
		{"Wrong number", sum.Calls.WrongNumber},
		{"Total duration (s)", sum.Calls.TotalDurationSeconds},
	}); err != nil {
		return err
	}
	if err := writeSheet(f, "Follow-ups", [][]interface{}{
		{"Metric", "Count"},
		{"Total", sum.FollowUps.Total},
		{"Pending", sum.FollowUps.Pending},
		{"Done", sum.FollowUps.Done},
		{"Overdue", sum.FollowUps.Overdue},
	}); err != nil {
		return err
	}
	headcountRows := [][]interface{}{{"Department", "Active users"}}
	for _, entry := range sum.Headcount {
		headcountRows = append(headcountRows, []interface{}{entry.Name, entry.Count})
	}
	if err := writeSheet(f, "Headcount", headcountRows); err != nil {
		return err
	}

	// The default sheet excelize creates is replaced by Tasks.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return errors.Wrap(err, "failed to drop default sheet")
	}
	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "failed to write workbook")
	}
	return nil
}

func writeSheet(f *excelize.File, name string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return errors.Wrap(err, "failed to add sheet")
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return errors.Wrapf(err, "failed to write %s row %d", name, i+1)
		}
	}
	return nil
}

// ExportFilename names the attachment after the reporting window.
func ExportFilename(from, to time.Time) string {
	return fmt.Sprintf("dashboard_%s_%s.xlsx", from.Format("2006-01-02"), to.Format("2006-01-02"))
}
