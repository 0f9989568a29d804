package dashboard

import (
	"github.com/stafflink/backoffice/modules/dashboard/infrastructure/persistence"
	"github.com/stafflink/backoffice/modules/dashboard/presentation/controllers"
	"github.com/stafflink/backoffice/modules/dashboard/services"
	"github.com/stafflink/backoffice/pkg/application"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Name() string {
	return "dashboard"
}

func (m *Module) Register(app application.Application) error {
	app.RegisterServices(
		services.NewDashboardService(persistence.NewSummaryRepository()),
	)

	app.RegisterControllers(
		controllers.NewDashboardController(app),
	)
	return nil
}
