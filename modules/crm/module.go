package crm

import (
	"github.com/atlashealth/atlas/modules/crm/infrastructure/persistence"
	"github.com/atlashealth/atlas/modules/crm/presentation/controllers"
	"github.com/atlashealth/atlas/modules/crm/services"
	"github.com/atlashealth/atlas/pkg/application"
)

type Module struct{}

func NewModule() application.Module {
	return &Module{}
}

func (m *Module) Name() string {
	return "crm"
}

func (m *Module) Register(app application.Application) error {
	clientRepo := persistence.NewClientRepository()
	policyRepo := persistence.NewPolicyRepository()
	claimRepo := persistence.NewClaimRepository()
	commissionRepo := persistence.NewCommissionRepository()

	app.RegisterServices(
		services.NewClientService(clientRepo, app.EventPublisher()),
		services.NewPolicyService(policyRepo, app.EventPublisher()),
		services.NewClaimService(claimRepo, policyRepo, app.EventPublisher()),
		services.NewCommissionService(commissionRepo, policyRepo, app.EventPublisher()),
	)
	app.RegisterControllers(
		controllers.NewClientController(app),
		controllers.NewPolicyController(app),
	)
	return nil
}
