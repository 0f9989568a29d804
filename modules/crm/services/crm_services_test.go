package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/stafflink/backoffice/modules/core/domain/aggregates/user"
	"github.com/stafflink/backoffice/modules/crm/domain/entities/followup"
	"github.com/stafflink/backoffice/modules/crm/domain/entities/lead"
	"github.com/stafflink/backoffice/modules/crm/domain/entities/meeting"
	"github.com/stafflink/backoffice/pkg/eventbus"
	"github.com/stafflink/backoffice/pkg/itf"
)

type memLeadRepo struct {
	nextID uint
	items  map[uint]*lead.Lead
}

func newMemLeadRepo() *memLeadRepo {
	return &memLeadRepo{nextID: 1, items: make(map[uint]*lead.Lead)}
}

func (m *memLeadRepo) GetPaginated(ctx context.Context, params *lead.FindParams) ([]lead.Lead, int64, error) {
	out := make([]lead.Lead, 0)
	for _, l := range m.items {
		if !l.IsActive && !params.IncludeInactive {
			continue
		}
		out = append(out, *l)
	}
	return out, int64(len(out)), nil
}

func (m *memLeadRepo) GetByID(ctx context.Context, id uint) (*lead.Lead, error) {
	l, ok := m.items[id]
	if !ok || !l.IsActive {
		return nil, lead.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memLeadRepo) Create(ctx context.Context, l *lead.Lead) (*lead.Lead, error) {
	cp := *l
	cp.ID = m.nextID
	m.nextID++
	m.items[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memLeadRepo) Update(ctx context.Context, l *lead.Lead) (*lead.Lead, error) {
	if _, ok := m.items[l.ID]; !ok {
		return nil, lead.ErrNotFound
	}
	cp := *l
	m.items[l.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memLeadRepo) UpdateStatus(ctx context.Context, id uint, status lead.Status) error {
	l, ok := m.items[id]
	if !ok {
		return lead.ErrNotFound
	}
	l.Status = status
	return nil
}

func (m *memLeadRepo) Delete(ctx context.Context, id uint) error {
	l, ok := m.items[id]
	if !ok {
		return lead.ErrNotFound
	}
	l.IsActive = false
	return nil
}

type memFollowUpRepo struct {
	nextID uint
	items  map[uint]*followup.FollowUp
}

func newMemFollowUpRepo() *memFollowUpRepo {
	return &memFollowUpRepo{nextID: 1, items: make(map[uint]*followup.FollowUp)}
}

func (m *memFollowUpRepo) GetPaginated(ctx context.Context, params *followup.FindParams) ([]followup.FollowUp, int64, error) {
	out := make([]followup.FollowUp, 0)
	for _, f := range m.items {
		out = append(out, *f)
	}
	return out, int64(len(out)), nil
}

func (m *memFollowUpRepo) GetByID(ctx context.Context, id uint) (*followup.FollowUp, error) {
	f, ok := m.items[id]
	if !ok {
		return nil, followup.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *memFollowUpRepo) Create(ctx context.Context, f *followup.FollowUp) (*followup.FollowUp, error) {
	cp := *f
	cp.ID = m.nextID
	m.nextID++
	m.items[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memFollowUpRepo) Update(ctx context.Context, f *followup.FollowUp) (*followup.FollowUp, error) {
	if _, ok := m.items[f.ID]; !ok {
		return nil, followup.ErrNotFound
	}
	cp := *f
	m.items[f.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memFollowUpRepo) MarkDone(ctx context.Context, id uint, doneAt time.Time) error {
	f, ok := m.items[id]
	if !ok {
		return followup.ErrNotFound
	}
	if f.DoneAt == nil {
		f.DoneAt = &doneAt
	}
	return nil
}

func (m *memFollowUpRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.items[id]; !ok {
		return followup.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type memMeetingRepo struct {
	nextID uint
	items  map[uint]*meeting.Meeting
}

func newMemMeetingRepo() *memMeetingRepo {
	return &memMeetingRepo{nextID: 1, items: make(map[uint]*meeting.Meeting)}
}

func (m *memMeetingRepo) GetPaginated(ctx context.Context, params *meeting.FindParams) ([]meeting.Meeting, int64, error) {
	out := make([]meeting.Meeting, 0)
	for _, mt := range m.items {
		out = append(out, *mt)
	}
	return out, int64(len(out)), nil
}

func (m *memMeetingRepo) GetByID(ctx context.Context, id uint) (*meeting.Meeting, error) {
	mt, ok := m.items[id]
	if !ok {
		return nil, meeting.ErrNotFound
	}
	cp := *mt
	return &cp, nil
}

func (m *memMeetingRepo) Create(ctx context.Context, mt *meeting.Meeting) (*meeting.Meeting, error) {
	cp := *mt
	cp.ID = m.nextID
	m.nextID++
	m.items[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memMeetingRepo) Update(ctx context.Context, mt *meeting.Meeting) (*meeting.Meeting, error) {
	if _, ok := m.items[mt.ID]; !ok {
		return nil, meeting.ErrNotFound
	}
	cp := *mt
	m.items[mt.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memMeetingRepo) UpdateStatus(ctx context.Context, id uint, status meeting.Status) error {
	mt, ok := m.items[id]
	if !ok {
		return meeting.ErrNotFound
	}
	mt.Status = status
	return nil
}

func (m *memMeetingRepo) HasOverlap(ctx context.Context, organizerID uint, startsAt, endsAt time.Time, excludeID uint) (bool, error) {
	for _, mt := range m.items {
		if mt.ID == excludeID || mt.OrganizerID != organizerID || mt.Status != meeting.StatusScheduled {
			continue
		}
		if mt.StartsAt.Before(endsAt) && mt.EndsAt.After(startsAt) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memMeetingRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.items[id]; !ok {
		return meeting.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func crmContext(t *testing.T) context.Context {
	t.Helper()
	prev := authorizeCRM
	authorizeCRM = func(ctx context.Context, object, action string) error { return nil }
	t.Cleanup(func() { authorizeCRM = prev })

	tc := itf.NewTestContext()
	return tc.WithUser(itf.TestUser(5, user.RoleManager, tc.TenantID())).Build(t)
}

func crmBus() eventbus.EventBus {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return eventbus.NewEventPublisher(logger)
}

func TestLeadService_Lifecycle(t *testing.T) {
	repo := newMemLeadRepo()
	svc := NewLeadService(repo, crmBus())
	ctx := crmContext(t)

	created, err := svc.Create(ctx, &lead.CreateDTO{
		Name:           "Acme Corp",
		Email:          "Buyer@Acme.COM",
		EstimatedValue: "1250.50",
	})
	require.NoError(t, err)
	require.Equal(t, lead.StatusNew, created.Status)
	require.Equal(t, lead.SourceOther, created.Source)
	require.Equal(t, "buyer@acme.com", created.Email)
	require.Equal(t, "1250.5", created.EstimatedValue.String())

	updated, err := svc.SetStatus(ctx, created.ID, &lead.StatusDTO{Status: "qualified"})
	require.NoError(t, err)
	require.Equal(t, lead.StatusQualified, updated.Status)
}

func TestLeadService_ClosedLeadIsFrozen(t *testing.T) {
	repo := newMemLeadRepo()
	svc := NewLeadService(repo, crmBus())
	ctx := crmContext(t)

	created, err := svc.Create(ctx, &lead.CreateDTO{Name: "Acme Corp"})
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, created.ID, &lead.StatusDTO{Status: "won"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, &lead.UpdateDTO{Name: "Acme Corporation"})
	require.ErrorIs(t, err, ErrLeadClosed)

	_, err = svc.SetStatus(ctx, created.ID, &lead.StatusDTO{Status: "contacted"})
	require.ErrorIs(t, err, ErrLeadClosed)
}

func TestLeadService_NegativeValueRejected(t *testing.T) {
	svc := NewLeadService(newMemLeadRepo(), crmBus())

	_, err := svc.Create(crmContext(t), &lead.CreateDTO{Name: "Acme", EstimatedValue: "-5"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "validation failed")
}

func TestFollowUpService_CreateRequiresLead(t *testing.T) {
	leads := newMemLeadRepo()
	svc := NewFollowUpService(newMemFollowUpRepo(), leads, crmBus())
	ctx := crmContext(t)

	due := time.Now().Add(48 * time.Hour)
	_, err := svc.Create(ctx, &followup.CreateDTO{LeadID: 9, AssigneeID: 2, DueAt: due})
	require.ErrorIs(t, err, lead.ErrNotFound)

	l, err := leads.Create(ctx, &lead.Lead{Name: "Acme", Status: lead.StatusNew, IsActive: true})
	require.NoError(t, err)

	created, err := svc.Create(ctx, &followup.CreateDTO{LeadID: l.ID, AssigneeID: 2, DueAt: due})
	require.NoError(t, err)
	require.False(t, created.Done())
}

func TestFollowUpService_CompleteOnce(t *testing.T) {
	leads := newMemLeadRepo()
	l, err := leads.Create(context.Background(), &lead.Lead{Name: "Acme", IsActive: true})
	require.NoError(t, err)

	svc := NewFollowUpService(newMemFollowUpRepo(), leads, crmBus())
	ctx := crmContext(t)

	created, err := svc.Create(ctx, &followup.CreateDTO{LeadID: l.ID, AssigneeID: 2, DueAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	done, err := svc.Complete(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, done.Done())

	_, err = svc.Complete(ctx, created.ID)
	require.ErrorIs(t, err, ErrFollowUpDone)

	_, err = svc.Update(ctx, created.ID, &followup.UpdateDTO{AssigneeID: 3, DueAt: time.Now().Add(time.Hour)})
	require.ErrorIs(t, err, ErrFollowUpDone)
}

func TestMeetingService_OverlapRejected(t *testing.T) {
	repo := newMemMeetingRepo()
	svc := NewMeetingService(repo, crmBus())
	ctx := crmContext(t)

	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	first, err := svc.Create(ctx, &meeting.CreateDTO{
		Title:    "Kickoff",
		StartsAt: start,
		EndsAt:   start.Add(time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, meeting.StatusScheduled, first.Status)

	_, err = svc.Create(ctx, &meeting.CreateDTO{
		Title:    "Clash",
		StartsAt: start.Add(30 * time.Minute),
		EndsAt:   start.Add(90 * time.Minute),
	})
	require.ErrorIs(t, err, ErrMeetingConflict)

	// Back to back is fine, the window is half open.
	_, err = svc.Create(ctx, &meeting.CreateDTO{
		Title:    "Next",
		StartsAt: start.Add(time.Hour),
		EndsAt:   start.Add(2 * time.Hour),
	})
	require.NoError(t, err)
}

func TestMeetingService_RescheduleSkipsSelf(t *testing.T) {
	repo := newMemMeetingRepo()
	svc := NewMeetingService(repo, crmBus())
	ctx := crmContext(t)

	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	created, err := svc.Create(ctx, &meeting.CreateDTO{Title: "Kickoff", StartsAt: start, EndsAt: start.Add(time.Hour)})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, &meeting.UpdateDTO{
		Title:    "Kickoff",
		StartsAt: start.Add(15 * time.Minute),
		EndsAt:   start.Add(75 * time.Minute),
	})
	require.NoError(t, err)
	require.Equal(t, start.Add(15*time.Minute), updated.StartsAt)
}

func TestMeetingService_StatusGuards(t *testing.T) {
	repo := newMemMeetingRepo()
	svc := NewMeetingService(repo, crmBus())
	ctx := crmContext(t)

	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	created, err := svc.Create(ctx, &meeting.CreateDTO{Title: "Kickoff", StartsAt: start, EndsAt: start.Add(time.Hour)})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, meeting.StatusCancelled, cancelled.Status)

	_, err = svc.Complete(ctx, created.ID)
	require.ErrorIs(t, err, ErrMeetingNotScheduled)

	_, err = svc.Update(ctx, created.ID, &meeting.UpdateDTO{
		Title:    "Kickoff",
		StartsAt: start,
		EndsAt:   start.Add(time.Hour),
	})
	require.ErrorIs(t, err, ErrMeetingNotScheduled)
}

func TestMeetingService_EndBeforeStartRejected(t *testing.T) {
	svc := NewMeetingService(newMemMeetingRepo(), crmBus())

	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	_, err := svc.Create(crmContext(t), &meeting.CreateDTO{
		Title:    "Backwards",
		StartsAt: start,
		EndsAt:   start.Add(-time.Hour),
	})
	require.Error(t, err)
}
