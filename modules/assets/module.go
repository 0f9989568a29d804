package assets

import (
	"github.com/stafflink/backoffice/modules/assets/infrastructure/persistence"
	"github.com/stafflink/backoffice/modules/assets/presentation/controllers"
	"github.com/stafflink/backoffice/modules/assets/services"
	"github.com/stafflink/backoffice/pkg/application"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Name() string {
	return "assets"
}

func (m *Module) Register(app application.Application) error {
	assetRepo := persistence.NewAssetRepository()

	app.RegisterServices(
		services.NewAssetService(assetRepo, app.EventPublisher()),
	)

	app.RegisterControllers(
		controllers.NewAssetsController(app),
	)
	return nil
}
