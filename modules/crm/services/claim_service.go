package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlashealth/atlas/modules/crm/domain/entities/claim"
	"github.com/atlashealth/atlas/modules/crm/domain/entities/policy"
	"github.com/atlashealth/atlas/pkg/composables"
	"github.com/atlashealth/atlas/pkg/eventbus"
)

type ClaimService struct {
	repo      claim.Repository
	policies  policy.Repository
	publisher eventbus.EventBus
}

func NewClaimService(repo claim.Repository, policies policy.Repository, publisher eventbus.EventBus) *ClaimService {
	return &ClaimService{
		repo:      repo,
		policies:  policies,
		publisher: publisher,
	}
}

func (s *ClaimService) GetByPolicy(ctx context.Context, policyID uint) ([]*claim.Claim, error) {
	return s.repo.GetByPolicy(ctx, policyID)
}

func (s *ClaimService) GetByID(ctx context.Context, id uint) (*claim.Claim, error) {
	return s.repo.GetByID(ctx, id)
}

// File registers a new claim against an existing policy.
func (s *ClaimService) File(ctx context.Context, data *claim.Claim) error {
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		if _, err := s.policies.GetByID(txCtx, data.PolicyID); err != nil {
			return err
		}
		data.Status = claim.StatusSubmitted
		if data.FiledOn == nil {
			now := time.Now()
			data.FiledOn = &now
		}
		id, err := s.repo.Create(txCtx, data)
		if err != nil {
			return err
		}
		data.ID = id
		return nil
	})
	if err != nil {
		return err
	}
	s.publisher.Publish("claim.filed", data)
	return nil
}

func (s *ClaimService) Approve(ctx context.Context, id uint, amount decimal.Decimal) (*claim.Claim, error) {
	return s.resolve(ctx, id, claim.StatusApproved, &amount)
}

func (s *ClaimService) Deny(ctx context.Context, id uint) (*claim.Claim, error) {
	return s.resolve(ctx, id, claim.StatusDenied, nil)
}

func (s *ClaimService) resolve(ctx context.Context, id uint, status claim.Status, amount *decimal.Decimal) (*claim.Claim, error) {
	var out *claim.Claim
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if current.Resolved() {
			return claim.ErrAlreadyResolved
		}
		now := time.Now()
		current.Status = status
		current.AmountApproved = amount
		current.ResolvedOn = &now
		if err := s.repo.Update(txCtx, current); err != nil {
			return err
		}
		out = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("claim.resolved", out)
	return out, nil
}
