package services

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/stafflink/backoffice/modules/core/domain/aggregates/user"
	"github.com/stafflink/backoffice/modules/hrm/domain/entities/department"
	"github.com/stafflink/backoffice/modules/hrm/domain/entities/jobrole"
	"github.com/stafflink/backoffice/pkg/eventbus"
	"github.com/stafflink/backoffice/pkg/itf"
)

type memDepartmentRepo struct {
	nextID uint
	items  map[uint]*department.Department
}

func newMemDepartmentRepo() *memDepartmentRepo {
	return &memDepartmentRepo{nextID: 1, items: make(map[uint]*department.Department)}
}

func (m *memDepartmentRepo) GetPaginated(ctx context.Context, params *department.FindParams) ([]department.Department, int64, error) {
	out := make([]department.Department, 0)
	for _, d := range m.items {
		if !d.IsActive && !params.IncludeInactive {
			continue
		}
		out = append(out, *d)
	}
	return out, int64(len(out)), nil
}

func (m *memDepartmentRepo) GetByID(ctx context.Context, id uint) (*department.Department, error) {
	d, ok := m.items[id]
	if !ok || !d.IsActive {
		return nil, department.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memDepartmentRepo) Create(ctx context.Context, d *department.Department) (*department.Department, error) {
	cp := *d
	cp.ID = m.nextID
	cp.IsActive = true
	m.nextID++
	m.items[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memDepartmentRepo) Update(ctx context.Context, d *department.Department) (*department.Department, error) {
	if _, ok := m.items[d.ID]; !ok {
		return nil, department.ErrNotFound
	}
	cp := *d
	m.items[d.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memDepartmentRepo) Delete(ctx context.Context, id uint) error {
	d, ok := m.items[id]
	if !ok {
		return department.ErrNotFound
	}
	d.IsActive = false
	return nil
}

type memJobRoleRepo struct {
	nextID uint
	items  map[uint]*jobrole.JobRole
}

func newMemJobRoleRepo() *memJobRoleRepo {
	return &memJobRoleRepo{nextID: 1, items: make(map[uint]*jobrole.JobRole)}
}

func (m *memJobRoleRepo) GetPaginated(ctx context.Context, params *jobrole.FindParams) ([]jobrole.JobRole, int64, error) {
	out := make([]jobrole.JobRole, 0)
	for _, j := range m.items {
		if params.DepartmentID != nil && j.DepartmentID != *params.DepartmentID {
			continue
		}
		out = append(out, *j)
	}
	return out, int64(len(out)), nil
}

func (m *memJobRoleRepo) GetByID(ctx context.Context, id uint) (*jobrole.JobRole, error) {
	j, ok := m.items[id]
	if !ok || !j.IsActive {
		return nil, jobrole.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *memJobRoleRepo) Create(ctx context.Context, j *jobrole.JobRole) (*jobrole.JobRole, error) {
	cp := *j
	cp.ID = m.nextID
	cp.IsActive = true
	m.nextID++
	m.items[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memJobRoleRepo) Update(ctx context.Context, j *jobrole.JobRole) (*jobrole.JobRole, error) {
	if _, ok := m.items[j.ID]; !ok {
		return nil, jobrole.ErrNotFound
	}
	cp := *j
	m.items[j.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memJobRoleRepo) Delete(ctx context.Context, id uint) error {
	j, ok := m.items[id]
	if !ok {
		return jobrole.ErrNotFound
	}
	j.IsActive = false
	return nil
}

// countingUserRepo only answers the membership counts the delete guards ask
// for; everything else is unused by these services.
type countingUserRepo struct {
	user.Repository
	byDepartment map[uint]int64
	byJobRole    map[uint]int64
}

func (c *countingUserRepo) CountActiveByDepartment(ctx context.Context, departmentID uint) (int64, error) {
	return c.byDepartment[departmentID], nil
}

func (c *countingUserRepo) CountActiveByJobRole(ctx context.Context, jobRoleID uint) (int64, error) {
	return c.byJobRole[jobRoleID], nil
}

func hrmContext(t *testing.T) context.Context {
	t.Helper()
	prev := authorizeHRM
	authorizeHRM = func(ctx context.Context, object, action string) error { return nil }
	t.Cleanup(func() { authorizeHRM = prev })

	tc := itf.NewTestContext()
	return tc.WithUser(itf.TestUser(1, user.RoleAdmin, tc.TenantID())).Build(t)
}

func hrmBus() eventbus.EventBus {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return eventbus.NewEventPublisher(logger)
}

func TestDepartmentService_DeleteBlockedWhileStaffed(t *testing.T) {
	repo := newMemDepartmentRepo()
	users := &countingUserRepo{byDepartment: map[uint]int64{}}
	svc := NewDepartmentService(repo, users, hrmBus())
	ctx := hrmContext(t)

	created, err := svc.Create(ctx, &department.CreateDTO{Name: "Engineering"})
	require.NoError(t, err)

	users.byDepartment[created.ID] = 3
	err = svc.Delete(ctx, created.ID)
	require.ErrorIs(t, err, ErrDepartmentInUse)
	require.True(t, repo.items[created.ID].IsActive)

	users.byDepartment[created.ID] = 0
	require.NoError(t, svc.Delete(ctx, created.ID))
	require.False(t, repo.items[created.ID].IsActive)
}

func TestDepartmentService_UpdateRenames(t *testing.T) {
	repo := newMemDepartmentRepo()
	svc := NewDepartmentService(repo, &countingUserRepo{}, hrmBus())
	ctx := hrmContext(t)

	created, err := svc.Create(ctx, &department.CreateDTO{Name: "Saless", Description: "typo"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, &department.UpdateDTO{Name: "Sales"})
	require.NoError(t, err)
	require.Equal(t, "Sales", updated.Name)
	require.Empty(t, updated.Description)
}

func TestJobRoleService_CreateRequiresDepartment(t *testing.T) {
	departments := newMemDepartmentRepo()
	svc := NewJobRoleService(newMemJobRoleRepo(), departments, &countingUserRepo{}, hrmBus())
	ctx := hrmContext(t)

	_, err := svc.Create(ctx, &jobrole.CreateDTO{DepartmentID: 42, Title: "Backend Engineer"})
	require.ErrorIs(t, err, department.ErrNotFound)

	dep, err := departments.Create(ctx, &department.Department{Name: "Engineering"})
	require.NoError(t, err)

	created, err := svc.Create(ctx, &jobrole.CreateDTO{DepartmentID: dep.ID, Title: "Backend Engineer"})
	require.NoError(t, err)
	require.Equal(t, dep.ID, created.DepartmentID)
}

func TestJobRoleService_DeleteBlockedWhileHeld(t *testing.T) {
	departments := newMemDepartmentRepo()
	dep, err := departments.Create(context.Background(), &department.Department{Name: "Engineering"})
	require.NoError(t, err)

	roles := newMemJobRoleRepo()
	users := &countingUserRepo{byJobRole: map[uint]int64{}}
	svc := NewJobRoleService(roles, departments, users, hrmBus())
	ctx := hrmContext(t)

	created, err := svc.Create(ctx, &jobrole.CreateDTO{DepartmentID: dep.ID, Title: "Backend Engineer"})
	require.NoError(t, err)

	users.byJobRole[created.ID] = 1
	err = svc.Delete(ctx, created.ID)
	require.ErrorIs(t, err, ErrJobRoleInUse)

	users.byJobRole[created.ID] = 0
	require.NoError(t, svc.Delete(ctx, created.ID))
	require.False(t, roles.items[created.ID].IsActive)
}
