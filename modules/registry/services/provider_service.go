package services

import (
	"context"

	"github.com/atlashealth/atlas/modules/registry/domain/aggregates/provider"
	"github.com/atlashealth/atlas/pkg/eventbus"
)

type ProviderService struct {
	repo      provider.Repository
	publisher eventbus.EventBus
}

func NewProviderService(repo provider.Repository, publisher eventbus.EventBus) *ProviderService {
	return &ProviderService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *ProviderService) Count(ctx context.Context, params *provider.FindParams) (int64, error) {
	return s.repo.Count(ctx, params)
}

func (s *ProviderService) GetPaginated(
	ctx context.Context, params *provider.FindParams,
) ([]*provider.Provider, error) {
	return s.repo.GetPaginated(ctx, params)
}

func (s *ProviderService) GetByNPI(ctx context.Context, npi string) (*provider.Provider, error) {
	return s.repo.GetByNPI(ctx, npi)
}

func (s *ProviderService) Search(ctx context.Context, query string, limit int) ([]*provider.Provider, error) {
	return s.repo.Search(ctx, query, limit)
}
