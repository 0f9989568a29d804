package services

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/stafflink/backoffice/modules/assets/domain/entities/asset"
	"github.com/stafflink/backoffice/modules/core/domain/aggregates/user"
	"github.com/stafflink/backoffice/pkg/eventbus"
	"github.com/stafflink/backoffice/pkg/itf"
)

type memAssetRepo struct {
	nextID      uint
	items       map[uint]*asset.Asset
	assignments []asset.Assignment
}

func newMemAssetRepo() *memAssetRepo {
	return &memAssetRepo{nextID: 1, items: make(map[uint]*asset.Asset)}
}

func (m *memAssetRepo) GetPaginated(ctx context.Context, params *asset.FindParams) ([]asset.Asset, int64, error) {
	out := make([]asset.Asset, 0)
	for _, a := range m.items {
		if !a.IsActive && !params.IncludeInactive {
			continue
		}
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func (m *memAssetRepo) GetByID(ctx context.Context, id uint) (*asset.Asset, error) {
	a, ok := m.items[id]
	if !ok || !a.IsActive {
		return nil, asset.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAssetRepo) Create(ctx context.Context, a *asset.Asset) (*asset.Asset, error) {
	for _, existing := range m.items {
		if existing.SerialNumber == a.SerialNumber {
			return nil, asset.ErrSerialTaken
		}
	}
	cp := *a
	cp.ID = m.nextID
	m.nextID++
	m.items[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memAssetRepo) Update(ctx context.Context, a *asset.Asset) (*asset.Asset, error) {
	if _, ok := m.items[a.ID]; !ok {
		return nil, asset.ErrNotFound
	}
	for _, existing := range m.items {
		if existing.ID != a.ID && existing.SerialNumber == a.SerialNumber {
			return nil, asset.ErrSerialTaken
		}
	}
	cp := *a
	m.items[a.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memAssetRepo) SetAssignedTo(ctx context.Context, id uint, userID *uint) error {
	a, ok := m.items[id]
	if !ok {
		return asset.ErrNotFound
	}
	a.AssignedTo = userID
	return nil
}

func (m *memAssetRepo) AddAssignment(ctx context.Context, entry *asset.Assignment) error {
	cp := *entry
	cp.ID = uint(len(m.assignments) + 1)
	m.assignments = append(m.assignments, cp)
	return nil
}

func (m *memAssetRepo) GetAssignments(ctx context.Context, assetID uint) ([]asset.Assignment, error) {
	out := make([]asset.Assignment, 0)
	for _, entry := range m.assignments {
		if entry.AssetID == assetID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (m *memAssetRepo) Delete(ctx context.Context, id uint) error {
	a, ok := m.items[id]
	if !ok {
		return asset.ErrNotFound
	}
	a.IsActive = false
	return nil
}

func assetContext(t *testing.T) context.Context {
	t.Helper()
	prev := authorizeAssets
	authorizeAssets = func(ctx context.Context, object, action string) error { return nil }
	t.Cleanup(func() { authorizeAssets = prev })

	tc := itf.NewTestContext()
	return tc.WithUser(itf.TestUser(10, user.RoleAdmin, tc.TenantID())).Build(t)
}

func assetBus() eventbus.EventBus {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return eventbus.NewEventPublisher(logger)
}

func newLaptop(t *testing.T, svc *AssetService, ctx context.Context, serial string) *asset.Asset {
	t.Helper()
	created, err := svc.Create(ctx, &asset.CreateDTO{
		Name:         "ThinkPad X1",
		Category:     "laptop",
		SerialNumber: serial,
		PurchaseCost: "1899.00",
	})
	require.NoError(t, err)
	return created
}

func TestAssetService_DuplicateSerialRejected(t *testing.T) {
	svc := NewAssetService(newMemAssetRepo(), assetBus())
	ctx := assetContext(t)

	newLaptop(t, svc, ctx, "SN-001")
	_, err := svc.Create(ctx, &asset.CreateDTO{Name: "ThinkPad X1", Category: "laptop", SerialNumber: "SN-001"})
	require.ErrorIs(t, err, asset.ErrSerialTaken)
}

func TestAssetService_AssignTracksCustody(t *testing.T) {
	repo := newMemAssetRepo()
	svc := NewAssetService(repo, assetBus())
	ctx := assetContext(t)

	created := newLaptop(t, svc, ctx, "SN-001")
	require.False(t, created.Assigned())

	assigned, err := svc.Assign(ctx, created.ID, 7)
	require.NoError(t, err)
	require.True(t, assigned.Assigned())
	require.EqualValues(t, 7, *assigned.AssignedTo)

	_, err = svc.Assign(ctx, created.ID, 8)
	require.ErrorIs(t, err, ErrAssetAssigned)

	released, err := svc.Unassign(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, released.Assigned())

	trail, err := svc.GetAssignments(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	require.EqualValues(t, 7, *trail[0].UserID)
	require.EqualValues(t, 10, trail[0].AssignedBy)
	require.Nil(t, trail[1].UserID, "return to storage has no holder")
}

func TestAssetService_UnassignIdleIsNoOp(t *testing.T) {
	repo := newMemAssetRepo()
	svc := NewAssetService(repo, assetBus())
	ctx := assetContext(t)

	created := newLaptop(t, svc, ctx, "SN-001")
	released, err := svc.Unassign(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, released.Assigned())
	require.Empty(t, repo.assignments)
}

func TestAssetService_DeleteBlockedWhileAssigned(t *testing.T) {
	repo := newMemAssetRepo()
	svc := NewAssetService(repo, assetBus())
	ctx := assetContext(t)

	created := newLaptop(t, svc, ctx, "SN-001")
	_, err := svc.Assign(ctx, created.ID, 7)
	require.NoError(t, err)

	err = svc.Delete(ctx, created.ID)
	require.ErrorIs(t, err, ErrAssetAssigned)

	_, err = svc.Unassign(ctx, created.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID))
	require.False(t, repo.items[created.ID].IsActive)
}
