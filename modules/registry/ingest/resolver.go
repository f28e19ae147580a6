package ingest

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/atlashealth/atlas/modules/registry/domain/aggregates/provider"
	"github.com/atlashealth/atlas/modules/registry/domain/entities/reference"
)

// ResolvedRecord is a ProviderRecord with every reference translated to a
// persisted id: the desired state of the provider's children as the database
// should hold them.
type ResolvedRecord struct {
	Record *ProviderRecord

	MailingAddress     *provider.Address
	LocationAddress    *provider.Address
	Taxonomies         []*provider.Taxonomy
	Identifiers        []*provider.Identifier
	OtherNames         []*provider.OtherName
	Endpoints          []*provider.Endpoint
	AuthorizedOfficial *provider.AuthorizedOfficial
}

// Resolver maps the codes a record carries onto reference rows. States and
// taxonomies are closed sets; an unknown code fails the row. Cities are
// created on demand, racing writers reconciled through the unique constraint.
//
// Resolution runs outside the row transaction: a city created for a row that
// later fails is still a valid reference row and is kept.
type Resolver struct {
	refs   reference.Repository
	states map[string]*reference.State
	taxa   map[string]*reference.Taxonomy
	cities map[string]*reference.City
}

func NewResolver(refs reference.Repository) *Resolver {
	return &Resolver{
		refs:   refs,
		states: make(map[string]*reference.State),
		taxa:   make(map[string]*reference.Taxonomy),
		cities: make(map[string]*reference.City),
	}
}

func (r *Resolver) Resolve(ctx context.Context, rec *ProviderRecord) (*ResolvedRecord, error) {
	out := &ResolvedRecord{Record: rec}

	var err error
	if out.MailingAddress, err = r.resolveAddress(ctx, rec.MailingAddress, provider.PurposeMailing); err != nil {
		return nil, err
	}
	if out.LocationAddress, err = r.resolveAddress(ctx, rec.LocationAddress, provider.PurposeLocation); err != nil {
		return nil, err
	}

	for _, t := range rec.Taxonomies {
		resolved, err := r.resolveTaxonomy(ctx, t)
		if err != nil {
			return nil, err
		}
		out.Taxonomies = append(out.Taxonomies, resolved)
	}

	for _, id := range rec.Identifiers {
		resolved, err := r.resolveIdentifier(ctx, id)
		if err != nil {
			return nil, err
		}
		out.Identifiers = append(out.Identifiers, resolved)
	}

	for _, n := range rec.OtherNames {
		out.OtherNames = append(out.OtherNames, &provider.OtherName{
			NameType:         n.NameType,
			FirstName:        n.FirstName,
			LastName:         n.LastName,
			MiddleName:       n.MiddleName,
			NamePrefix:       n.NamePrefix,
			NameSuffix:       n.NameSuffix,
			Credential:       n.Credential,
			OrganizationName: n.OrganizationName,
		})
	}

	for _, e := range rec.Endpoints {
		out.Endpoints = append(out.Endpoints, &provider.Endpoint{
			URL:         e.URL,
			Type:        e.Type,
			Description: e.Description,
			ContentType: e.ContentType,
			UseType:     e.UseType,
			Affiliation: e.Affiliation,
		})
	}

	if o := rec.AuthorizedOfficial; o != nil {
		out.AuthorizedOfficial = &provider.AuthorizedOfficial{
			FirstName:       o.FirstName,
			LastName:        o.LastName,
			MiddleName:      o.MiddleName,
			NamePrefix:      o.NamePrefix,
			NameSuffix:      o.NameSuffix,
			Credential:      o.Credential,
			TitleOrPosition: o.TitleOrPosition,
			Telephone:       o.Telephone,
		}
	}

	return out, nil
}

func (r *Resolver) resolveAddress(ctx context.Context, a *AddressRecord, purpose provider.AddressPurpose) (*provider.Address, error) {
	if a == nil {
		return nil, nil
	}
	addr := &provider.Address{
		Purpose:     purpose,
		Type:        provider.AddressType(a.Type),
		Address1:    a.Address1,
		Address2:    a.Address2,
		CityName:    a.CityName,
		PostalCode:  a.PostalCode,
		CountryCode: a.CountryCode,
		Telephone:   a.Telephone,
		Fax:         a.Fax,
	}
	// Foreign addresses carry a free-form region in the state column; only
	// domestic ones resolve against the states table.
	if addr.Type != provider.AddressDomestic {
		return addr, nil
	}
	if a.StateCode != "" {
		state, err := r.state(ctx, a.StateCode)
		if err != nil {
			return nil, err
		}
		addr.StateID = state.ID
		if a.CityName != "" {
			city, err := r.city(ctx, a.CityName, state.ID)
			if err != nil {
				return nil, err
			}
			addr.CityID = city.ID
		}
	}
	return addr, nil
}

func (r *Resolver) resolveTaxonomy(ctx context.Context, t TaxonomyRecord) (*provider.Taxonomy, error) {
	taxonomy, err := r.taxonomy(ctx, t.Code)
	if err != nil {
		return nil, err
	}
	out := &provider.Taxonomy{
		TaxonomyID:    taxonomy.ID,
		Code:          taxonomy.Code,
		LicenseNumber: t.LicenseNumber,
		IsPrimary:     t.Primary,
	}
	if t.LicenseState != "" {
		state, err := r.state(ctx, t.LicenseState)
		if err != nil {
			return nil, err
		}
		out.LicenseStateID = state.ID
	}
	return out, nil
}

func (r *Resolver) resolveIdentifier(ctx context.Context, id IdentifierRecord) (*provider.Identifier, error) {
	out := &provider.Identifier{
		Type:   id.Type,
		Value:  id.Value,
		Issuer: id.Issuer,
	}
	if id.State != "" {
		state, err := r.state(ctx, id.State)
		if err != nil {
			return nil, err
		}
		out.StateID = state.ID
	}
	return out, nil
}

func (r *Resolver) state(ctx context.Context, code string) (*reference.State, error) {
	if s, ok := r.states[code]; ok {
		return s, nil
	}
	s, err := r.refs.StateByCode(ctx, code)
	if errors.Is(err, reference.ErrStateNotFound) {
		return nil, &UnknownStateError{Code: code}
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up state")
	}
	r.states[code] = s
	return s, nil
}

func (r *Resolver) taxonomy(ctx context.Context, code string) (*reference.Taxonomy, error) {
	if t, ok := r.taxa[code]; ok {
		return t, nil
	}
	t, err := r.refs.TaxonomyByCode(ctx, code)
	if errors.Is(err, reference.ErrTaxonomyNotFound) {
		return nil, &UnknownTaxonomyError{Code: code}
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up taxonomy")
	}
	r.taxa[code] = t
	return t, nil
}

// city looks up or creates a city. Two workers may race on the same new city;
// the loser of the insert re-reads the winner's row.
func (r *Resolver) city(ctx context.Context, name string, stateID uint) (*reference.City, error) {
	key := fmt.Sprintf("%s\x00%d", name, stateID)
	if c, ok := r.cities[key]; ok {
		return c, nil
	}
	c, err := r.refs.CityByNameAndState(ctx, name, stateID)
	if errors.Is(err, reference.ErrCityNotFound) {
		c, err = r.refs.CreateCity(ctx, &reference.City{Name: name, StateID: stateID})
		if errors.Is(err, reference.ErrCityExists) {
			c, err = r.refs.CityByNameAndState(ctx, name, stateID)
		}
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve city")
	}
	r.cities[key] = c
	return c, nil
}
