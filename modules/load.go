package modules

import (
	"github.com/atlashealth/atlas/modules/crm"
	"github.com/atlashealth/atlas/modules/registry"
	"github.com/atlashealth/atlas/pkg/application"
)

var BuiltInModules = []application.Module{
	registry.NewModule(),
	crm.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range append(BuiltInModules, externalModules...) {
		if err := module.Register(app); err != nil {
			return err
		}
		app.Logger().WithField("module", module.Name()).Info("registered module")
	}
	return nil
}
