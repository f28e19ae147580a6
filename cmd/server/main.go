package main

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlashealth/atlas/migrations"
	"github.com/atlashealth/atlas/modules"
	"github.com/atlashealth/atlas/pkg/application"
	"github.com/atlashealth/atlas/pkg/composables"
	"github.com/atlashealth/atlas/pkg/configuration"
	"github.com/atlashealth/atlas/pkg/eventbus"
	"github.com/atlashealth/atlas/pkg/logging"
	"github.com/atlashealth/atlas/pkg/metrics"
	"github.com/atlashealth/atlas/pkg/server"

	"github.com/gorilla/mux"
)

func main() {
	conf := configuration.Use()
	defer conf.Unload()
	logger := conf.Logger()

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		logger.WithError(err).Fatal("failed to create database pool")
	}
	defer pool.Close()

	if err := migrations.Run(ctx, pool); err != nil {
		logger.WithError(err).Fatal("failed to run migrations")
	}

	if conf.OpenTelemetry.Enabled {
		shutdown := logging.SetupTracing(ctx, conf.OpenTelemetry.ServiceName, conf.OpenTelemetry.TempoURL)
		defer shutdown()
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	app.RegisterMiddleware(poolMiddleware(pool))

	if err := modules.Load(app); err != nil {
		logger.WithError(err).Fatal("failed to load modules")
	}
	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
	}

	logger.WithField("address", conf.SocketAddress).Info("starting server")
	if err := server.NewHTTPServer(app).Start(conf.SocketAddress); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

func poolMiddleware(pool *pgxpool.Pool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(composables.WithPool(r.Context(), pool)))
		})
	}
}
