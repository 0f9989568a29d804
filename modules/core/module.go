package core

import (
	"github.com/stafflink/backoffice/migrations"
	"github.com/stafflink/backoffice/modules/core/infrastructure/persistence"
	"github.com/stafflink/backoffice/modules/core/presentation/controllers"
	"github.com/stafflink/backoffice/modules/core/services"
	"github.com/stafflink/backoffice/pkg/application"
	"github.com/stafflink/backoffice/pkg/configuration"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Name() string {
	return "core"
}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()
	app.Migrations().RegisterSchema(migrations.FS, ".")

	userRepo := persistence.NewUserRepository()
	tenantRepo := persistence.NewTenantRepository()
	menuRepo := persistence.NewMenuRepository()

	app.RegisterServices(
		services.NewAuthService(userRepo, app.EventPublisher(), conf),
		services.NewUserService(userRepo, app.EventPublisher()),
		services.NewTenantService(tenantRepo, app.EventPublisher()),
		services.NewMenuService(menuRepo, app.EventPublisher()),
	)

	app.RegisterControllers(
		controllers.NewAuthController(app),
		controllers.NewUsersController(app),
		controllers.NewTenantsController(app),
		controllers.NewMenuController(app),
	)
	return nil
}
