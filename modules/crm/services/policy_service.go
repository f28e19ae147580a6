package services

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/atlashealth/atlas/modules/crm/domain/entities/policy"
	"github.com/atlashealth/atlas/pkg/composables"
	"github.com/atlashealth/atlas/pkg/eventbus"
)

type PolicyService struct {
	repo      policy.Repository
	publisher eventbus.EventBus
}

func NewPolicyService(repo policy.Repository, publisher eventbus.EventBus) *PolicyService {
	return &PolicyService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *PolicyService) GetByClient(ctx context.Context, clientID uint) ([]*policy.Policy, error) {
	return s.repo.GetByClient(ctx, clientID)
}

func (s *PolicyService) GetByID(ctx context.Context, id uint) (*policy.Policy, error) {
	return s.repo.GetByID(ctx, id)
}

// Create inserts a new policy. New policies always start in draft regardless
// of the status the caller supplied.
func (s *PolicyService) Create(ctx context.Context, data *policy.Policy) error {
	data.Status = policy.StatusDraft
	err := composables.InTx(ctx, func(txCtx context.Context) error {
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
	s.publisher.Publish("policy.created", data)
	return nil
}

func (s *PolicyService) Update(ctx context.Context, data *policy.Policy) error {
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetByID(txCtx, data.ID)
		if err != nil {
			return err
		}
		// Status changes go through Transition, not Update.
		data.Status = current.Status
		return s.repo.Update(txCtx, data)
	})
	if err != nil {
		return err
	}
	s.publisher.Publish("policy.updated", data)
	return nil
}

func (s *PolicyService) Transition(ctx context.Context, id uint, next policy.Status) (*policy.Policy, error) {
	var out *policy.Policy
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if !current.Status.CanTransitionTo(next) {
			return errors.Wrapf(policy.ErrInvalidTransition, "%s -> %s", current.Status, next)
		}
		current.Status = next
		if err := s.repo.Update(txCtx, current); err != nil {
			return err
		}
		out = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("policy.transitioned", out)
	return out, nil
}

func (s *PolicyService) Delete(ctx context.Context, id uint) error {
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}
	s.publisher.Publish("policy.deleted", id)
	return nil
}
