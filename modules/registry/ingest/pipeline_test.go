package ingest

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/atlashealth/atlas/modules/registry/domain/aggregates/provider"
	"github.com/atlashealth/atlas/pkg/composables"
)

// stubTx satisfies the transaction interface for pipelines running against
// in-memory stores; the store fakes never touch the database handle.
type stubTx struct{}

func (stubTx) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (stubTx) Query(context.Context, string, ...interface{}) (pgx.Rows, error) { return nil, nil }
func (stubTx) QueryRow(context.Context, string, ...interface{}) pgx.Row        { return nil }

type memoryProviderStore struct {
	byNPI  map[string]*provider.Provider
	byID   map[uint]*provider.Provider
	nextID uint

	failCreate map[string]error
}

func newMemoryProviderStore() *memoryProviderStore {
	return &memoryProviderStore{
		byNPI:      map[string]*provider.Provider{},
		byID:       map[uint]*provider.Provider{},
		nextID:     1,
		failCreate: map[string]error{},
	}
}

func (s *memoryProviderStore) id() uint {
	id := s.nextID
	s.nextID++
	return id
}

func (s *memoryProviderStore) GetPaginated(context.Context, *provider.FindParams) ([]*provider.Provider, error) {
	return nil, nil
}

func (s *memoryProviderStore) Count(context.Context, *provider.FindParams) (int64, error) {
	return int64(len(s.byNPI)), nil
}

func (s *memoryProviderStore) Search(context.Context, string, int) ([]*provider.Provider, error) {
	return nil, nil
}

func (s *memoryProviderStore) GetByNPI(_ context.Context, npi string) (*provider.Provider, error) {
	p, ok := s.byNPI[npi]
	if !ok {
		return nil, provider.ErrNotFound
	}
	return p, nil
}

func (s *memoryProviderStore) Create(_ context.Context, p *provider.Provider) (uint, error) {
	if err := s.failCreate[p.NPI]; err != nil {
		return 0, err
	}
	stored := *p
	stored.ID = s.id()
	stored.Addresses = nil
	stored.Taxonomies = nil
	stored.Identifiers = nil
	stored.OtherNames = nil
	stored.Endpoints = nil
	stored.AuthorizedOfficial = nil
	s.byNPI[stored.NPI] = &stored
	s.byID[stored.ID] = &stored
	return stored.ID, nil
}

func (s *memoryProviderStore) Update(_ context.Context, p *provider.Provider) error {
	stored, ok := s.byID[p.ID]
	if !ok {
		return provider.ErrNotFound
	}
	children := struct {
		addresses  []*provider.Address
		taxonomies []*provider.Taxonomy
		ids        []*provider.Identifier
		names      []*provider.OtherName
		endpoints  []*provider.Endpoint
		official   *provider.AuthorizedOfficial
	}{stored.Addresses, stored.Taxonomies, stored.Identifiers, stored.OtherNames, stored.Endpoints, stored.AuthorizedOfficial}
	*stored = *p
	stored.Addresses = children.addresses
	stored.Taxonomies = children.taxonomies
	stored.Identifiers = children.ids
	stored.OtherNames = children.names
	stored.Endpoints = children.endpoints
	stored.AuthorizedOfficial = children.official
	return nil
}

func (s *memoryProviderStore) UpsertAddress(_ context.Context, providerID uint, a *provider.Address) error {
	p := s.byID[providerID]
	for i, existing := range p.Addresses {
		if existing.Purpose == a.Purpose {
			stored := *a
			stored.ID = existing.ID
			p.Addresses[i] = &stored
			return nil
		}
	}
	stored := *a
	stored.ID = s.id()
	p.Addresses = append(p.Addresses, &stored)
	return nil
}

func (s *memoryProviderStore) UpsertAuthorizedOfficial(_ context.Context, providerID uint, o *provider.AuthorizedOfficial) error {
	p := s.byID[providerID]
	stored := *o
	if p.AuthorizedOfficial != nil {
		stored.ID = p.AuthorizedOfficial.ID
	} else {
		stored.ID = s.id()
	}
	p.AuthorizedOfficial = &stored
	return nil
}

func (s *memoryProviderStore) InsertTaxonomy(_ context.Context, providerID uint, t *provider.Taxonomy) error {
	p := s.byID[providerID]
	stored := *t
	stored.ID = s.id()
	p.Taxonomies = append(p.Taxonomies, &stored)
	return nil
}

func (s *memoryProviderStore) UpdateTaxonomy(_ context.Context, t *provider.Taxonomy) error {
	for _, p := range s.byID {
		for i, existing := range p.Taxonomies {
			if existing.ID == t.ID {
				stored := *t
				p.Taxonomies[i] = &stored
				return nil
			}
		}
	}
	return provider.ErrNotFound
}

func (s *memoryProviderStore) DeleteTaxonomy(_ context.Context, id uint) error {
	for _, p := range s.byID {
		for i, existing := range p.Taxonomies {
			if existing.ID == id {
				p.Taxonomies = append(p.Taxonomies[:i], p.Taxonomies[i+1:]...)
				return nil
			}
		}
	}
	return provider.ErrNotFound
}

func (s *memoryProviderStore) InsertIdentifier(_ context.Context, providerID uint, i *provider.Identifier) error {
	p := s.byID[providerID]
	stored := *i
	stored.ID = s.id()
	p.Identifiers = append(p.Identifiers, &stored)
	return nil
}

func (s *memoryProviderStore) UpdateIdentifier(_ context.Context, ident *provider.Identifier) error {
	for _, p := range s.byID {
		for i, existing := range p.Identifiers {
			if existing.ID == ident.ID {
				stored := *ident
				p.Identifiers[i] = &stored
				return nil
			}
		}
	}
	return provider.ErrNotFound
}

func (s *memoryProviderStore) DeleteIdentifier(_ context.Context, id uint) error {
	for _, p := range s.byID {
		for i, existing := range p.Identifiers {
			if existing.ID == id {
				p.Identifiers = append(p.Identifiers[:i], p.Identifiers[i+1:]...)
				return nil
			}
		}
	}
	return provider.ErrNotFound
}

func (s *memoryProviderStore) InsertOtherName(_ context.Context, providerID uint, n *provider.OtherName) error {
	p := s.byID[providerID]
	stored := *n
	stored.ID = s.id()
	p.OtherNames = append(p.OtherNames, &stored)
	return nil
}

func (s *memoryProviderStore) UpdateOtherName(_ context.Context, n *provider.OtherName) error {
	for _, p := range s.byID {
		for i, existing := range p.OtherNames {
			if existing.ID == n.ID {
				stored := *n
				p.OtherNames[i] = &stored
				return nil
			}
		}
	}
	return provider.ErrNotFound
}

func (s *memoryProviderStore) DeleteOtherName(_ context.Context, id uint) error {
	for _, p := range s.byID {
		for i, existing := range p.OtherNames {
			if existing.ID == id {
				p.OtherNames = append(p.OtherNames[:i], p.OtherNames[i+1:]...)
				return nil
			}
		}
	}
	return provider.ErrNotFound
}

func (s *memoryProviderStore) InsertEndpoint(_ context.Context, providerID uint, e *provider.Endpoint) error {
	p := s.byID[providerID]
	stored := *e
	stored.ID = s.id()
	p.Endpoints = append(p.Endpoints, &stored)
	return nil
}

func (s *memoryProviderStore) UpdateEndpoint(_ context.Context, e *provider.Endpoint) error {
	for _, p := range s.byID {
		for i, existing := range p.Endpoints {
			if existing.ID == e.ID {
				stored := *e
				p.Endpoints[i] = &stored
				return nil
			}
		}
	}
	return provider.ErrNotFound
}

func (s *memoryProviderStore) DeleteEndpoint(_ context.Context, id uint) error {
	for _, p := range s.byID {
		for i, existing := range p.Endpoints {
			if existing.ID == id {
				p.Endpoints = append(p.Endpoints[:i], p.Endpoints[i+1:]...)
				return nil
			}
		}
	}
	return provider.ErrNotFound
}

func testPipeline(store *memoryProviderStore, refs *fakeReferenceRepository) *Pipeline {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(store, refs, Options{Logger: logger, KeepAllOutcomes: true})
}

func fileOf(rows ...[]string) string {
	lines := []string{strings.Join(testHeader(), ",")}
	for _, row := range rows {
		lines = append(lines, strings.Join(row, ","))
	}
	return strings.Join(lines, "\n") + "\n"
}

func testCtx() context.Context {
	return composables.WithTx(context.Background(), stubTx{})
}

func TestPipeline_CreatesProviders(t *testing.T) {
	store := newMemoryProviderStore()
	p := testPipeline(store, newFakeReferenceRepository())

	file := fileOf(
		testRow(nil),
		testRow(map[string]string{"NPI": "1111111112", "Provider Last Name (Legal Name)": "JONES"}),
	)

	report, err := p.Apply(testCtx(), "weekly.csv", strings.NewReader(file))
	require.NoError(t, err)
	require.Equal(t, 2, report.TotalRows)
	require.Equal(t, 2, report.Created)
	require.Zero(t, report.Failed)

	stored := store.byNPI["1234567893"]
	require.NotNil(t, stored)
	require.Equal(t, "SMITH", stored.LastName)
	require.Len(t, stored.Taxonomies, 1)
	require.True(t, stored.Taxonomies[0].IsPrimary)
	require.NotNil(t, stored.AddressByPurpose(provider.PurposeMailing))
}

func TestPipeline_ReRunConverges(t *testing.T) {
	store := newMemoryProviderStore()
	p := testPipeline(store, newFakeReferenceRepository())
	file := fileOf(testRow(nil))

	report, err := p.Apply(testCtx(), "weekly.csv", strings.NewReader(file))
	require.NoError(t, err)
	require.Equal(t, 1, report.Created)

	report, err = p.Apply(testCtx(), "weekly.csv", strings.NewReader(file))
	require.NoError(t, err)
	require.Zero(t, report.Created)
	require.Zero(t, report.Updated)
	require.Equal(t, 1, report.Skipped)
}

func TestPipeline_RowIsolation(t *testing.T) {
	store := newMemoryProviderStore()
	p := testPipeline(store, newFakeReferenceRepository())

	file := fileOf(
		testRow(nil),
		testRow(map[string]string{"NPI": "bad"}),
		testRow(map[string]string{
			"NPI": "2222222221",
			"Provider Business Mailing Address State Name": "ZZ",
		}),
		testRow(map[string]string{"NPI": "1111111112"}),
	)

	report, err := p.Apply(testCtx(), "weekly.csv", strings.NewReader(file))
	require.NoError(t, err)
	require.Equal(t, 4, report.TotalRows)
	require.Equal(t, 2, report.Created)
	require.Equal(t, 2, report.Failed)
	require.Len(t, report.Failures, 2)

	require.Contains(t, store.byNPI, "1234567893")
	require.Contains(t, store.byNPI, "1111111112")
	require.NotContains(t, store.byNPI, "2222222221")
}

func TestPipeline_FailedApplyRollsBackRowOnly(t *testing.T) {
	store := newMemoryProviderStore()
	store.failCreate["1111111112"] = errors.New("boom")
	p := testPipeline(store, newFakeReferenceRepository())

	file := fileOf(
		testRow(nil),
		testRow(map[string]string{"NPI": "1111111112"}),
	)

	report, err := p.Apply(testCtx(), "weekly.csv", strings.NewReader(file))
	require.NoError(t, err)
	require.Equal(t, 1, report.Created)
	require.Equal(t, 1, report.Failed)
	require.Equal(t, "1111111112", report.Failures[0].NPI)
}

func TestPipeline_UpdateAndCorrectedOutcomes(t *testing.T) {
	store := newMemoryProviderStore()
	p := testPipeline(store, newFakeReferenceRepository())

	_, err := p.Apply(testCtx(), "weekly.csv", strings.NewReader(fileOf(testRow(nil))))
	require.NoError(t, err)

	// Same NPI again with a changed credential: plain update.
	updated := fileOf(testRow(map[string]string{"Provider Credential Text": "D.O."}))
	report, err := p.Apply(testCtx(), "weekly.csv", strings.NewReader(updated))
	require.NoError(t, err)
	require.Equal(t, 1, report.Updated)
	require.Equal(t, "D.O.", store.byNPI["1234567893"].Credential)

	// Two primary switches in one row: the reconciler keeps the first,
	// demotes the second, and flags the row as corrected.
	corrected := fileOf(testRow(map[string]string{
		"Healthcare Provider Taxonomy Code_2":           "363L00000X",
		"Healthcare Provider Primary Taxonomy Switch_2": "Y",
	}))
	report, err = p.Apply(testCtx(), "weekly.csv", strings.NewReader(corrected))
	require.NoError(t, err)
	require.Equal(t, 1, report.Corrected)
	require.Len(t, report.Corrections, 1)

	stored := store.byNPI["1234567893"]
	require.Len(t, stored.Taxonomies, 2)
	for _, tax := range stored.Taxonomies {
		if tax.Code == "207Q00000X" {
			require.True(t, tax.IsPrimary)
		} else {
			require.False(t, tax.IsPrimary)
		}
	}
}

func TestPipeline_BrokenLineFailsThatRowOnly(t *testing.T) {
	store := newMemoryProviderStore()
	p := testPipeline(store, newFakeReferenceRepository())

	lines := []string{
		strings.Join(testHeader(), ","),
		strings.Join(testRow(nil), ","),
		"1111111113,1", // wrong field count
		strings.Join(testRow(map[string]string{"NPI": "1111111112"}), ","),
	}
	file := strings.Join(lines, "\n") + "\n"

	report, err := p.Apply(testCtx(), "weekly.csv", strings.NewReader(file))
	require.NoError(t, err)
	require.Equal(t, 2, report.Created)
	require.Equal(t, 1, report.Failed)
}

func TestPipeline_Cancellation(t *testing.T) {
	store := newMemoryProviderStore()
	p := testPipeline(store, newFakeReferenceRepository())

	ctx, cancel := context.WithCancel(testCtx())
	cancel()

	_, err := p.Apply(ctx, "weekly.csv", strings.NewReader(fileOf(testRow(nil))))
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}
