package task

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from    AssigneeStatus
		to      AssigneeStatus
		allowed bool
	}{
		{AssigneePending, AssigneeAccepted, true},
		{AssigneePending, AssigneeRejected, true},
		{AssigneePending, AssigneeCompleted, false},
		{AssigneeAccepted, AssigneeCompleted, true},
		{AssigneeAccepted, AssigneeRejected, false},
		{AssigneeAccepted, AssigneePending, false},
		{AssigneeRejected, AssigneeAccepted, false},
		{AssigneeRejected, AssigneeCompleted, false},
		{AssigneeCompleted, AssigneePending, false},
		{AssigneeCompleted, AssigneeRejected, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.allowed, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func assignees(statuses ...AssigneeStatus) []Assignee {
	out := make([]Assignee, len(statuses))
	for i, s := range statuses {
		out[i] = Assignee{UserID: uint(i + 1), Status: s}
	}
	return out
}

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name     string
		statuses []AssigneeStatus
		want     Status
	}{
		{"no assignees", nil, StatusOpen},
		{"all pending", []AssigneeStatus{AssigneePending, AssigneePending}, StatusOpen},
		{"one accepted", []AssigneeStatus{AssigneePending, AssigneeAccepted}, StatusInProgress},
		{"one completed others pending", []AssigneeStatus{AssigneeCompleted, AssigneePending}, StatusInProgress},
		{"all completed", []AssigneeStatus{AssigneeCompleted, AssigneeCompleted}, StatusCompleted},
		{"all rejected", []AssigneeStatus{AssigneeRejected, AssigneeRejected}, StatusOpen},
		{"completed and rejected", []AssigneeStatus{AssigneeCompleted, AssigneeRejected}, StatusCompleted},
		{"rejected and pending", []AssigneeStatus{AssigneeRejected, AssigneePending}, StatusOpen},
		{"rejected and accepted", []AssigneeStatus{AssigneeRejected, AssigneeAccepted}, StatusInProgress},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, DeriveStatus(assignees(tc.statuses...)))
		})
	}
}

func TestAllRejected(t *testing.T) {
	require.False(t, AllRejected(nil))
	require.False(t, AllRejected(assignees(AssigneeRejected, AssigneePending)))
	require.False(t, AllRejected(assignees(AssigneeRejected, AssigneeCompleted)))
	require.True(t, AllRejected(assignees(AssigneeRejected, AssigneeRejected)))
}

func TestCreateDTO_Ok(t *testing.T) {
	dto := &CreateDTO{Title: "  Quarterly report  ", AssigneeIDs: []uint{1}}
	fields, ok := dto.Ok()
	require.True(t, ok, "unexpected validation errors: %v", fields)
	require.Equal(t, "Quarterly report", dto.Title)

	entity := dto.ToEntity(42)
	require.Equal(t, PriorityMedium, entity.Priority, "priority defaults to medium")
	require.Equal(t, StatusOpen, entity.Status)
	require.EqualValues(t, 42, entity.CreatedBy)

	dto = &CreateDTO{Priority: "asap"}
	fields, ok = dto.Ok()
	require.False(t, ok)
	require.Contains(t, fields, "Title")
	require.Contains(t, fields, "AssigneeIDs")
	require.Contains(t, fields, "Priority")
}

func TestStatusDTO_Ok(t *testing.T) {
	for _, valid := range []string{"accepted", "rejected", "completed"} {
		_, ok := (&StatusDTO{Status: valid}).Ok()
		require.True(t, ok, valid)
	}
	_, ok := (&StatusDTO{Status: "pending"}).Ok()
	require.False(t, ok, "assignees cannot move back to pending")
}
