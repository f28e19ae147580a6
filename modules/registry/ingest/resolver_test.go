package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlashealth/atlas/modules/registry/domain/entities/reference"
)

type fakeReferenceRepository struct {
	states     map[string]*reference.State
	taxonomies map[string]*reference.Taxonomy
	cities     []*reference.City
	nextCityID uint

	stateLookups    int
	taxonomyLookups int
	// raceOnCreate simulates a concurrent writer winning the city insert.
	raceOnCreate bool
}

func newFakeReferenceRepository() *fakeReferenceRepository {
	return &fakeReferenceRepository{
		states: map[string]*reference.State{
			"IL": {ID: 14, Code: "IL", Name: "Illinois"},
			"CA": {ID: 5, Code: "CA", Name: "California"},
		},
		taxonomies: map[string]*reference.Taxonomy{
			"207Q00000X": {ID: 100, Code: "207Q00000X", Classification: "Family Medicine"},
			"363L00000X": {ID: 300, Code: "363L00000X", Classification: "Nurse Practitioner"},
		},
		nextCityID: 1,
	}
}

func (f *fakeReferenceRepository) StateByCode(_ context.Context, code string) (*reference.State, error) {
	f.stateLookups++
	if s, ok := f.states[code]; ok {
		return s, nil
	}
	return nil, reference.ErrStateNotFound
}

func (f *fakeReferenceRepository) CityByNameAndState(_ context.Context, name string, stateID uint) (*reference.City, error) {
	for _, c := range f.cities {
		if c.Name == name && c.StateID == stateID {
			return c, nil
		}
	}
	return nil, reference.ErrCityNotFound
}

func (f *fakeReferenceRepository) CreateCity(_ context.Context, city *reference.City) (*reference.City, error) {
	if f.raceOnCreate {
		f.raceOnCreate = false
		f.cities = append(f.cities, &reference.City{ID: f.nextCityID, Name: city.Name, StateID: city.StateID})
		f.nextCityID++
		return nil, reference.ErrCityExists
	}
	created := &reference.City{ID: f.nextCityID, Name: city.Name, StateID: city.StateID}
	f.nextCityID++
	f.cities = append(f.cities, created)
	return created, nil
}

func (f *fakeReferenceRepository) TaxonomyByCode(_ context.Context, code string) (*reference.Taxonomy, error) {
	f.taxonomyLookups++
	if tx, ok := f.taxonomies[code]; ok {
		return tx, nil
	}
	return nil, reference.ErrTaxonomyNotFound
}

func (f *fakeReferenceRepository) CreateState(_ context.Context, s *reference.State) (*reference.State, error) {
	f.states[s.Code] = s
	return s, nil
}

func (f *fakeReferenceRepository) CreateTaxonomy(_ context.Context, tx *reference.Taxonomy) (*reference.Taxonomy, error) {
	f.taxonomies[tx.Code] = tx
	return tx, nil
}

func TestResolver_ResolvesAddressAndTaxonomy(t *testing.T) {
	refs := newFakeReferenceRepository()
	r := NewResolver(refs)

	rec := baseRecord()
	rec.MailingAddress = &AddressRecord{
		Type: "DOM", Address1: "123 MAIN ST", CityName: "SPRINGFIELD",
		StateCode: "IL", PostalCode: "62701", CountryCode: "US",
	}
	rec.Taxonomies = []TaxonomyRecord{
		{Code: "207Q00000X", LicenseNumber: "036-112233", LicenseState: "IL", Primary: true},
	}

	resolved, err := r.Resolve(context.Background(), rec)
	require.NoError(t, err)

	require.NotNil(t, resolved.MailingAddress)
	require.Equal(t, uint(14), resolved.MailingAddress.StateID)
	require.NotZero(t, resolved.MailingAddress.CityID)

	require.Len(t, resolved.Taxonomies, 1)
	require.Equal(t, uint(100), resolved.Taxonomies[0].TaxonomyID)
	require.Equal(t, uint(14), resolved.Taxonomies[0].LicenseStateID)
	require.True(t, resolved.Taxonomies[0].IsPrimary)
}

func TestResolver_UnknownState(t *testing.T) {
	r := NewResolver(newFakeReferenceRepository())

	rec := baseRecord()
	rec.MailingAddress = &AddressRecord{Type: "DOM", Address1: "1 RD", CityName: "X", StateCode: "ZZ"}

	_, err := r.Resolve(context.Background(), rec)
	var unknown *UnknownStateError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, "ZZ", unknown.Code)
}

func TestResolver_UnknownTaxonomy(t *testing.T) {
	r := NewResolver(newFakeReferenceRepository())

	rec := baseRecord()
	rec.Taxonomies = []TaxonomyRecord{{Code: "999X99999X"}}

	_, err := r.Resolve(context.Background(), rec)
	var unknown *UnknownTaxonomyError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, "999X99999X", unknown.Code)
}

func TestResolver_CityCreateRace(t *testing.T) {
	refs := newFakeReferenceRepository()
	refs.raceOnCreate = true
	r := NewResolver(refs)

	rec := baseRecord()
	rec.MailingAddress = &AddressRecord{Type: "DOM", Address1: "1 RD", CityName: "PEORIA", StateCode: "IL"}

	resolved, err := r.Resolve(context.Background(), rec)
	require.NoError(t, err)
	require.NotZero(t, resolved.MailingAddress.CityID)
	require.Len(t, refs.cities, 1)
}

func TestResolver_CachesReferenceLookups(t *testing.T) {
	refs := newFakeReferenceRepository()
	r := NewResolver(refs)

	rec := baseRecord()
	rec.Taxonomies = []TaxonomyRecord{
		{Code: "207Q00000X", LicenseState: "IL"},
		{Code: "207Q00000X", LicenseState: "IL"},
	}

	_, err := r.Resolve(context.Background(), rec)
	require.NoError(t, err)

	rec2 := baseRecord()
	rec2.Taxonomies = []TaxonomyRecord{{Code: "207Q00000X", LicenseState: "IL"}}
	_, err = r.Resolve(context.Background(), rec2)
	require.NoError(t, err)

	require.Equal(t, 1, refs.stateLookups)
	require.Equal(t, 1, refs.taxonomyLookups)
}

func TestResolver_ForeignAddressSkipsStateLookup(t *testing.T) {
	refs := newFakeReferenceRepository()
	r := NewResolver(refs)

	rec := baseRecord()
	rec.MailingAddress = &AddressRecord{Type: "FGN", Address1: "1 KING ST", CityName: "TORONTO", StateCode: "ONTARIO", CountryCode: "CA"}

	resolved, err := r.Resolve(context.Background(), rec)
	require.NoError(t, err)
	require.Zero(t, resolved.MailingAddress.StateID)
	require.Zero(t, refs.stateLookups)
}
