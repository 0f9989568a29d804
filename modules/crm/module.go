package crm

import (
	"github.com/stafflink/backoffice/modules/crm/infrastructure/persistence"
	"github.com/stafflink/backoffice/modules/crm/presentation/controllers"
	"github.com/stafflink/backoffice/modules/crm/services"
	"github.com/stafflink/backoffice/pkg/application"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Name() string {
	return "crm"
}

func (m *Module) Register(app application.Application) error {
	leadRepo := persistence.NewLeadRepository()
	followUpRepo := persistence.NewFollowUpRepository()
	callLogRepo := persistence.NewCallLogRepository()
	meetingRepo := persistence.NewMeetingRepository()

	app.RegisterServices(
		services.NewLeadService(leadRepo, app.EventPublisher()),
		services.NewFollowUpService(followUpRepo, leadRepo, app.EventPublisher()),
		services.NewCallLogService(callLogRepo, leadRepo, app.EventPublisher()),
		services.NewMeetingService(meetingRepo, app.EventPublisher()),
	)

	app.RegisterControllers(
		controllers.NewLeadsController(app),
		controllers.NewFollowUpsController(app),
		controllers.NewCallLogsController(app),
		controllers.NewMeetingsController(app),
	)
	return nil
}
