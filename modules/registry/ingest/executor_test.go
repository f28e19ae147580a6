package ingest

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/atlashealth/atlas/modules/registry/domain/aggregates/provider"
)

// recordingProviderRepository embeds the in-memory store and keeps the call
// order so apply-ordering can be asserted.
type recordingProviderRepository struct {
	*memoryProviderStore
	calls []string
}

func (r *recordingProviderRepository) Create(ctx context.Context, p *provider.Provider) (uint, error) {
	r.calls = append(r.calls, "create")
	return r.memoryProviderStore.Create(ctx, p)
}

func (r *recordingProviderRepository) InsertTaxonomy(ctx context.Context, providerID uint, t *provider.Taxonomy) error {
	r.calls = append(r.calls, "insert-taxonomy")
	return r.memoryProviderStore.InsertTaxonomy(ctx, providerID, t)
}

func (r *recordingProviderRepository) UpdateTaxonomy(ctx context.Context, t *provider.Taxonomy) error {
	r.calls = append(r.calls, "update-taxonomy")
	return r.memoryProviderStore.UpdateTaxonomy(ctx, t)
}

func (r *recordingProviderRepository) DeleteTaxonomy(ctx context.Context, id uint) error {
	r.calls = append(r.calls, "delete-taxonomy")
	return r.memoryProviderStore.DeleteTaxonomy(ctx, id)
}

func (r *recordingProviderRepository) UpsertAddress(ctx context.Context, providerID uint, a *provider.Address) error {
	r.calls = append(r.calls, "upsert-address")
	return r.memoryProviderStore.UpsertAddress(ctx, providerID, a)
}

func TestExecutor_AppliesInOrder(t *testing.T) {
	store := newMemoryProviderStore()
	repo := &recordingProviderRepository{memoryProviderStore: store}

	seeded := baseProvider()
	id, err := store.Create(context.Background(), seeded)
	require.NoError(t, err)
	require.NoError(t, store.InsertTaxonomy(context.Background(), id, &provider.Taxonomy{TaxonomyID: 200, Code: "208000000X"}))
	stale := store.byNPI[seeded.NPI].Taxonomies[0].ID

	plan := &Plan{
		Provider:        store.byNPI[seeded.NPI],
		TaxonomyDeletes: []uint{stale},
		TaxonomyUpdates: []*provider.Taxonomy{},
		TaxonomyInserts: []*provider.Taxonomy{{TaxonomyID: 100, Code: "207Q00000X", IsPrimary: true}},
		Addresses:       []*provider.Address{{Purpose: provider.PurposeMailing, Address1: "123 MAIN ST"}},
	}

	require.NoError(t, NewExecutor(repo).Apply(context.Background(), plan))
	require.Equal(t, []string{"delete-taxonomy", "insert-taxonomy", "upsert-address"}, repo.calls)

	stored := store.byNPI[seeded.NPI]
	require.Len(t, stored.Taxonomies, 1)
	require.Equal(t, "207Q00000X", stored.Taxonomies[0].Code)
	require.Len(t, stored.Addresses, 1)
}

func TestExecutor_CreateSetsProviderIDForChildren(t *testing.T) {
	store := newMemoryProviderStore()

	plan := &Plan{
		Create:          true,
		Provider:        baseProvider(),
		TaxonomyInserts: []*provider.Taxonomy{{TaxonomyID: 100, Code: "207Q00000X", IsPrimary: true}},
	}
	plan.Provider.ID = 0

	require.NoError(t, NewExecutor(store).Apply(context.Background(), plan))
	require.NotZero(t, plan.Provider.ID)
	require.Len(t, store.byID[plan.Provider.ID].Taxonomies, 1)
}

func TestExecutor_ConstraintViolation(t *testing.T) {
	store := newMemoryProviderStore()
	store.failCreate["1234567893"] = &pgconn.PgError{
		Code:   "23505",
		Detail: "Key (npi)=(1234567893) already exists.",
	}

	plan := &Plan{Create: true, Provider: baseProvider()}

	err := NewExecutor(store).Apply(context.Background(), plan)
	var violation *ConstraintViolationError
	require.ErrorAs(t, err, &violation)
	require.Contains(t, violation.Detail, "1234567893")
}
