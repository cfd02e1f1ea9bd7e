package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/irrigodev/irrigationdesign/migrations"
	"github.com/irrigodev/irrigationdesign/modules"
	"github.com/irrigodev/irrigationdesign/pkg/application"
	"github.com/irrigodev/irrigationdesign/pkg/configuration"
	"github.com/irrigodev/irrigationdesign/pkg/eventbus"
	"github.com/irrigodev/irrigationdesign/pkg/metrics"
	"github.com/irrigodev/irrigationdesign/pkg/middleware"
	"github.com/irrigodev/irrigationdesign/pkg/server"
)

func main() {
	conf := configuration.Use()
	defer conf.Unload()
	logger := conf.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := migrations.Run(conf.Database.Opts); err != nil {
		logger.WithError(err).Fatal("failed to migrate database")
	}

	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("database is unreachable")
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	app.RegisterMiddleware(
		middleware.WithLogger(logger),
		middleware.ProvidePool(pool),
		middleware.Cors(conf.AllowedOrigins),
	)

	if err := modules.Load(app); err != nil {
		logger.WithError(err).Fatal("failed to register modules")
	}
	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
	}

	srv := server.NewHTTPServer(app)
	logger.WithField("address", conf.SocketAddress).Info("server listening")
	if err := srv.Start(conf.SocketAddress); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
