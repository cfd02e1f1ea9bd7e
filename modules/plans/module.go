package plans

import (
	corepersistence "github.com/irrigodev/irrigationdesign/modules/core/infrastructure/persistence"
	coreservices "github.com/irrigodev/irrigationdesign/modules/core/services"

	"github.com/irrigodev/irrigationdesign/modules/core/presentation/middlewares"
	"github.com/irrigodev/irrigationdesign/modules/plans/infrastructure/persistence"
	"github.com/irrigodev/irrigationdesign/modules/plans/presentation/controllers"
	"github.com/irrigodev/irrigationdesign/modules/plans/services"
	"github.com/irrigodev/irrigationdesign/pkg/application"
	"github.com/irrigodev/irrigationdesign/pkg/configuration"
)

// Module depends on core for identity: it must be registered after the core
// module.
type Module struct{}

func NewModule() application.Module {
	return &Module{}
}

func (m *Module) Name() string {
	return "plans"
}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()

	planRepo := persistence.NewPlanRepository()
	elementRepo := persistence.NewElementRepository()
	userRepo := corepersistence.NewUserRepository()

	guard := services.NewAssignmentGuard(userRepo)
	planService := services.NewPlanService(planRepo, elementRepo, userRepo, guard, app.EventPublisher())
	syncService := services.NewSyncService(planRepo, elementRepo, userRepo, app.EventPublisher(), app.Logger())

	authService := app.Service(coreservices.AuthService{}).(*coreservices.AuthService)
	authMW := middlewares.Authorize(authService)

	app.RegisterServices(planService, syncService)
	app.RegisterControllers(
		controllers.NewPlansController(planService, syncService, authMW, conf.PageSize, conf.MaxPageSize),
		controllers.NewElevationController(conf, authMW, app.Logger()),
	)
	return nil
}
