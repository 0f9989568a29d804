package services

import (
	"context"

	"github.com/stafflink/backoffice/modules/assets/domain/entities/asset"
	"github.com/stafflink/backoffice/pkg/authz"
	"github.com/stafflink/backoffice/pkg/composables"
	"github.com/stafflink/backoffice/pkg/eventbus"
	"github.com/stafflink/backoffice/pkg/serrors"
)

// ErrAssetAssigned blocks retiring an asset still held by someone.
var ErrAssetAssigned = serrors.NewError("ASSET_ASSIGNED", "asset is currently assigned")

// Swapped out in tests.
var authorizeAssets = func(ctx context.Context, object, action string) error {
	return authz.Authorize(ctx, object, action)
}

type AssetService struct {
	repo      asset.Repository
	publisher eventbus.EventBus
}

func NewAssetService(repo asset.Repository, publisher eventbus.EventBus) *AssetService {
	return &AssetService{repo: repo, publisher: publisher}
}

func (s *AssetService) GetPaginated(ctx context.Context, params *asset.FindParams) ([]asset.Asset, int64, error) {
	if err := authorizeAssets(ctx, "assets.assets", "list"); err != nil {
		return nil, 0, err
	}
	return s.repo.GetPaginated(ctx, params)
}

func (s *AssetService) GetByID(ctx context.Context, id uint) (*asset.Asset, error) {
	if err := authorizeAssets(ctx, "assets.assets", "read"); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *AssetService) GetAssignments(ctx context.Context, assetID uint) ([]asset.Assignment, error) {
	if err := authorizeAssets(ctx, "assets.assets", "read"); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, assetID); err != nil {
		return nil, err
	}
	return s.repo.GetAssignments(ctx, assetID)
}

func (s *AssetService) Create(ctx context.Context, data *asset.CreateDTO) (*asset.Asset, error) {
	if err := authorizeAssets(ctx, "assets.assets", "create"); err != nil {
		return nil, err
	}
	if fields, ok := data.Ok(); !ok {
		return nil, fields
	}
	var created *asset.Asset
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.repo.Create(txCtx, data.ToEntity())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("asset.created", created)
	return created, nil
}

func (s *AssetService) Update(ctx context.Context, id uint, data *asset.UpdateDTO) (*asset.Asset, error) {
	if err := authorizeAssets(ctx, "assets.assets", "update"); err != nil {
		return nil, err
	}
	if fields, ok := data.Ok(); !ok {
		return nil, fields
	}
	var updated *asset.Asset
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		data.Apply(existing)
		updated, err = s.repo.Update(txCtx, existing)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("asset.updated", updated)
	return updated, nil
}

// Assign hands the asset to a user and appends to the custody trail. An
// asset already held must be returned first.
func (s *AssetService) Assign(ctx context.Context, id uint, userID uint) (*asset.Asset, error) {
	if err := authorizeAssets(ctx, "assets.assets", "assign"); err != nil {
		return nil, err
	}
	u, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	var result *asset.Asset
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if existing.Assigned() {
			return ErrAssetAssigned
		}
		if err := s.repo.SetAssignedTo(txCtx, id, &userID); err != nil {
			return err
		}
		if err := s.repo.AddAssignment(txCtx, &asset.Assignment{
			AssetID:    id,
			UserID:     &userID,
			AssignedBy: u.ID(),
		}); err != nil {
			return err
		}
		result, err = s.repo.GetByID(txCtx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("asset.assigned", result)
	return result, nil
}

// Unassign returns the asset to storage. Unassigning an idle asset is a
// no-op that does not pollute the custody trail.
func (s *AssetService) Unassign(ctx context.Context, id uint) (*asset.Asset, error) {
	if err := authorizeAssets(ctx, "assets.assets", "assign"); err != nil {
		return nil, err
	}
	u, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}
	var result *asset.Asset
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if !existing.Assigned() {
			result = existing
			return nil
		}
		if err := s.repo.SetAssignedTo(txCtx, id, nil); err != nil {
			return err
		}
		if err := s.repo.AddAssignment(txCtx, &asset.Assignment{
			AssetID:    id,
			AssignedBy: u.ID(),
		}); err != nil {
			return err
		}
		result, err = s.repo.GetByID(txCtx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("asset.unassigned", result)
	return result, nil
}

func (s *AssetService) Delete(ctx context.Context, id uint) error {
	if err := authorizeAssets(ctx, "assets.assets", "delete"); err != nil {
		return err
	}
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if existing.Assigned() {
			return ErrAssetAssigned
		}
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}
	s.publisher.Publish("asset.deleted", id)
	return nil
}
