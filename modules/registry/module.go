package registry

import (
	"github.com/atlashealth/atlas/modules/registry/infrastructure/persistence"
	"github.com/atlashealth/atlas/modules/registry/ingest"
	"github.com/atlashealth/atlas/modules/registry/presentation/controllers"
	"github.com/atlashealth/atlas/modules/registry/seed"
	"github.com/atlashealth/atlas/modules/registry/services"
	"github.com/atlashealth/atlas/pkg/application"
	"github.com/atlashealth/atlas/pkg/configuration"
)

type Module struct{}

func NewModule() application.Module {
	return &Module{}
}

func (m *Module) Name() string {
	return "registry"
}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()

	providerRepo := persistence.NewProviderRepository()
	referenceRepo := persistence.NewReferenceRepository()

	pipeline := ingest.New(providerRepo, referenceRepo, ingest.Options{
		Logger:          app.Logger(),
		LogEvery:        conf.Nppes.LogEvery,
		KeepAllOutcomes: conf.Nppes.KeepAllOutcomes,
	})

	app.RegisterServices(
		services.NewProviderService(providerRepo, app.EventPublisher()),
		services.NewIngestService(pipeline, app.EventPublisher()),
	)
	app.RegisterControllers(
		controllers.NewProviderController(app),
	)
	app.Seeder().Register(
		seed.SeedStates,
		seed.SeedTaxonomies,
	)
	return nil
}
