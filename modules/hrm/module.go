package hrm

import (
	corePersistence "github.com/stafflink/backoffice/modules/core/infrastructure/persistence"
	"github.com/stafflink/backoffice/modules/hrm/infrastructure/persistence"
	"github.com/stafflink/backoffice/modules/hrm/presentation/controllers"
	"github.com/stafflink/backoffice/modules/hrm/services"
	"github.com/stafflink/backoffice/pkg/application"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Name() string {
	return "hrm"
}

func (m *Module) Register(app application.Application) error {
	departmentRepo := persistence.NewDepartmentRepository()
	jobRoleRepo := persistence.NewJobRoleRepository()
	userRepo := corePersistence.NewUserRepository()

	app.RegisterServices(
		services.NewDepartmentService(departmentRepo, userRepo, app.EventPublisher()),
		services.NewJobRoleService(jobRoleRepo, departmentRepo, userRepo, app.EventPublisher()),
	)

	app.RegisterControllers(
		controllers.NewDepartmentsController(app),
		controllers.NewJobRolesController(app),
	)
	return nil
}
