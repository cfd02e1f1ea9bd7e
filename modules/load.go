package modules

import (
	"github.com/irrigodev/irrigationdesign/modules/core"
	"github.com/irrigodev/irrigationdesign/modules/plans"
	"github.com/irrigodev/irrigationdesign/pkg/application"
)

// BuiltInModules lists every module in registration order. Order matters:
// plans resolves core services at registration time.
var BuiltInModules = []application.Module{
	core.NewModule(),
	plans.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range append(BuiltInModules, externalModules...) {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
