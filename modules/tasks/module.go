package tasks

import (
	"github.com/stafflink/backoffice/modules/tasks/infrastructure/persistence"
	"github.com/stafflink/backoffice/modules/tasks/presentation/controllers"
	"github.com/stafflink/backoffice/modules/tasks/services"
	"github.com/stafflink/backoffice/pkg/application"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Name() string {
	return "tasks"
}

func (m *Module) Register(app application.Application) error {
	taskRepo := persistence.NewTaskRepository()
	notificationRepo := persistence.NewNotificationRepository()

	app.RegisterServices(
		services.NewTaskService(taskRepo, notificationRepo, app.EventPublisher()),
		services.NewNotificationService(notificationRepo),
		services.NewOverdueService(taskRepo, notificationRepo, app.EventPublisher(), app.Logger()),
	)

	app.RegisterControllers(
		controllers.NewTasksController(app),
		controllers.NewNotificationsController(app),
	)
	return nil
}
