package modules

import (
	"github.com/stafflink/backoffice/modules/assets"
	"github.com/stafflink/backoffice/modules/core"
	"github.com/stafflink/backoffice/modules/crm"
	"github.com/stafflink/backoffice/modules/dashboard"
	"github.com/stafflink/backoffice/modules/hrm"
	"github.com/stafflink/backoffice/modules/tasks"
	"github.com/stafflink/backoffice/pkg/application"
)

// BuiltInModules is the default module set, loaded in dependency order.
// Core registers the schema and must come first.
var BuiltInModules = []application.Module{
	core.NewModule(),
	hrm.NewModule(),
	tasks.NewModule(),
	crm.NewModule(),
	assets.NewModule(),
	dashboard.NewModule(),
}

// Load registers every module with the application.
func Load(app application.Application, mods ...application.Module) error {
	if len(mods) == 0 {
		mods = BuiltInModules
	}
	for _, m := range mods {
		if err := m.Register(app); err != nil {
			return err
		}
	}
	return nil
}
