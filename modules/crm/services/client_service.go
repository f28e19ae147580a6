package services

import (
	"context"

	"github.com/atlashealth/atlas/modules/crm/domain/entities/client"
	"github.com/atlashealth/atlas/pkg/composables"
	"github.com/atlashealth/atlas/pkg/eventbus"
)

type ClientService struct {
	repo      client.Repository
	publisher eventbus.EventBus
}

func NewClientService(repo client.Repository, publisher eventbus.EventBus) *ClientService {
	return &ClientService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *ClientService) Count(ctx context.Context, params *client.FindParams) (int64, error) {
	return s.repo.Count(ctx, params)
}

func (s *ClientService) GetPaginated(ctx context.Context, params *client.FindParams) ([]*client.Client, error) {
	return s.repo.GetPaginated(ctx, params)
}

func (s *ClientService) GetByID(ctx context.Context, id uint) (*client.Client, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ClientService) Create(ctx context.Context, data *client.Client) error {
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
	s.publisher.Publish("client.created", data)
	return nil
}

func (s *ClientService) Update(ctx context.Context, data *client.Client) error {
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Update(txCtx, data)
	})
	if err != nil {
		return err
	}
	s.publisher.Publish("client.updated", data)
	return nil
}

func (s *ClientService) Delete(ctx context.Context, id uint) error {
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}
	s.publisher.Publish("client.deleted", id)
	return nil
}
