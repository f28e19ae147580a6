package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlashealth/atlas/modules/crm/domain/entities/commission"
	"github.com/atlashealth/atlas/modules/crm/domain/entities/policy"
	"github.com/atlashealth/atlas/pkg/composables"
	"github.com/atlashealth/atlas/pkg/eventbus"
)

type CommissionService struct {
	repo      commission.Repository
	policies  policy.Repository
	publisher eventbus.EventBus
}

func NewCommissionService(repo commission.Repository, policies policy.Repository, publisher eventbus.EventBus) *CommissionService {
	return &CommissionService{
		repo:      repo,
		policies:  policies,
		publisher: publisher,
	}
}

func (s *CommissionService) GetByPolicy(ctx context.Context, policyID uint) ([]*commission.Commission, error) {
	return s.repo.GetByPolicy(ctx, policyID)
}

// Accrue records an agent commission on a policy as rate times the policy
// premium, rounded to cents.
func (s *CommissionService) Accrue(ctx context.Context, policyID uint, agentName string, rate decimal.Decimal) (*commission.Commission, error) {
	var out *commission.Commission
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		p, err := s.policies.GetByID(txCtx, policyID)
		if err != nil {
			return err
		}
		c := &commission.Commission{
			PolicyID:  policyID,
			AgentName: agentName,
			Amount:    p.Premium.Mul(rate).Round(2),
			Rate:      &rate,
		}
		id, err := s.repo.Create(txCtx, c)
		if err != nil {
			return err
		}
		c.ID = id
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("commission.accrued", out)
	return out, nil
}

func (s *CommissionService) MarkPaid(ctx context.Context, id uint) error {
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.MarkPaid(txCtx, id, time.Now())
	})
	if err != nil {
		return err
	}
	s.publisher.Publish("commission.paid", id)
	return nil
}
