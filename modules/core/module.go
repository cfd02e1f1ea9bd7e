package core

import (
	"github.com/irrigodev/irrigationdesign/modules/core/infrastructure/persistence"
	"github.com/irrigodev/irrigationdesign/modules/core/presentation/controllers"
	"github.com/irrigodev/irrigationdesign/modules/core/presentation/middlewares"
	"github.com/irrigodev/irrigationdesign/modules/core/services"
	"github.com/irrigodev/irrigationdesign/modules/core/validators"
	"github.com/irrigodev/irrigationdesign/pkg/application"
	"github.com/irrigodev/irrigationdesign/pkg/configuration"
	"github.com/irrigodev/irrigationdesign/pkg/mailer"
)

type Module struct{}

func NewModule() application.Module {
	return &Module{}
}

func (m *Module) Name() string {
	return "core"
}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()

	userRepo := persistence.NewUserRepository()
	edgeGuard := validators.NewUserEdgeGuard(userRepo)
	userService := services.NewUserService(userRepo, edgeGuard, app.EventPublisher())
	authService := services.NewAuthService(userRepo, conf.JWT.Secret, conf.JWT.AccessTTL)

	credentialsMailer := services.NewCredentialsMailer(
		mailer.NewSMTPMailer(conf, app.Logger()),
		app.Logger(),
		conf.FrontendURL,
	)
	app.EventPublisher().Subscribe(credentialsMailer.OnUserCreated)

	app.RegisterServices(userService, authService)
	app.RegisterControllers(
		controllers.NewAuthController(authService),
		controllers.NewUsersController(
			userService,
			middlewares.Authorize(authService),
			conf.PageSize,
			conf.MaxPageSize,
		),
	)
	return nil
}
