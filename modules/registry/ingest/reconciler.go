package ingest

import (
	"fmt"
	"sort"
	"time"

	"github.com/atlashealth/atlas/modules/registry/domain/aggregates/provider"
)

// Plan is the minimal set of writes that moves a provider from its current
// persisted state to the state a record describes. An empty plan means the
// record is already fully reflected and the row can be skipped.
type Plan struct {
	Create bool
	// Provider carries the merged scalar state, used for both the insert on
	// Create and the update when ProviderChanged.
	Provider        *provider.Provider
	ProviderChanged bool

	// Corrections documents repairs the reconciler made to the incoming data
	// itself, such as demoting a duplicate primary taxonomy.
	Corrections []string

	Addresses []*provider.Address
	Official  *provider.AuthorizedOfficial

	TaxonomyInserts []*provider.Taxonomy
	TaxonomyUpdates []*provider.Taxonomy
	TaxonomyDeletes []uint

	IdentifierInserts []*provider.Identifier
	IdentifierUpdates []*provider.Identifier
	IdentifierDeletes []uint

	OtherNameInserts []*provider.OtherName
	OtherNameUpdates []*provider.OtherName
	OtherNameDeletes []uint

	EndpointInserts []*provider.Endpoint
	EndpointUpdates []*provider.Endpoint
	EndpointDeletes []uint
}

func (p *Plan) Empty() bool {
	return !p.Create && !p.ProviderChanged &&
		len(p.Addresses) == 0 && p.Official == nil &&
		len(p.TaxonomyInserts) == 0 && len(p.TaxonomyUpdates) == 0 && len(p.TaxonomyDeletes) == 0 &&
		len(p.IdentifierInserts) == 0 && len(p.IdentifierUpdates) == 0 && len(p.IdentifierDeletes) == 0 &&
		len(p.OtherNameInserts) == 0 && len(p.OtherNameUpdates) == 0 && len(p.OtherNameDeletes) == 0 &&
		len(p.EndpointInserts) == 0 && len(p.EndpointUpdates) == 0 && len(p.EndpointDeletes) == 0
}

// Reconcile compares a resolved record against the provider's current state
// and computes the plan. current is nil when the NPI is new.
//
// Collections are synced to the record: rows absent from the record are
// deleted. Addresses and the authorized official are singletons and are only
// ever upserted; their absence from a record leaves the stored row alone.
func Reconcile(current *provider.Provider, resolved *ResolvedRecord) *Plan {
	rec := resolved.Record
	plan := &Plan{}

	if current == nil {
		plan.Create = true
		plan.Provider = mergeScalars(&provider.Provider{NPI: rec.NPI}, rec)
	} else {
		base := *current
		plan.Provider = mergeScalars(&base, rec)
		plan.ProviderChanged = !scalarsEqual(current, plan.Provider)
	}

	desiredTaxonomies := repairPrimaries(resolved.Taxonomies, rec.RowNumber, &plan.Corrections)
	reconcileTaxonomies(plan, currentTaxonomies(current), desiredTaxonomies)
	reconcileIdentifiers(plan, current, resolved.Identifiers)
	reconcileOtherNames(plan, current, resolved.OtherNames)
	reconcileEndpoints(plan, current, resolved.Endpoints)
	reconcileAddresses(plan, current, resolved)
	reconcileOfficial(plan, current, resolved.AuthorizedOfficial)

	return plan
}

func mergeScalars(dst *provider.Provider, rec *ProviderRecord) *provider.Provider {
	if rec.EntityType != nil {
		dst.EntityType = provider.EntityType(*rec.EntityType)
	}
	setString(&dst.ReplacementNPI, rec.ReplacementNPI)
	setString(&dst.FirstName, rec.FirstName)
	setString(&dst.LastName, rec.LastName)
	setString(&dst.MiddleName, rec.MiddleName)
	setString(&dst.NamePrefix, rec.NamePrefix)
	setString(&dst.NameSuffix, rec.NameSuffix)
	setString(&dst.Credential, rec.Credential)
	setString(&dst.Gender, rec.Gender)
	setString(&dst.OrganizationName, rec.OrganizationName)
	setString(&dst.EIN, rec.EIN)
	setString(&dst.DeactivationReason, rec.DeactivationReason)
	if rec.OrganizationSubpart != nil {
		dst.OrganizationSubpart = *rec.OrganizationSubpart
	}
	if rec.SoleProprietor != nil {
		dst.SoleProprietor = *rec.SoleProprietor
	}
	setDate(&dst.EnumerationDate, rec.EnumerationDate)
	setDate(&dst.LastUpdateDate, rec.LastUpdateDate)
	setDate(&dst.DeactivationDate, rec.DeactivationDate)
	setDate(&dst.ReactivationDate, rec.ReactivationDate)
	return dst
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDate(dst **time.Time, v OptionalDate) {
	if v.Set {
		*dst = v.Value
	}
}

func scalarsEqual(a, b *provider.Provider) bool {
	return a.EntityType == b.EntityType &&
		a.ReplacementNPI == b.ReplacementNPI &&
		a.FirstName == b.FirstName &&
		a.LastName == b.LastName &&
		a.MiddleName == b.MiddleName &&
		a.NamePrefix == b.NamePrefix &&
		a.NameSuffix == b.NameSuffix &&
		a.Credential == b.Credential &&
		a.Gender == b.Gender &&
		a.OrganizationName == b.OrganizationName &&
		a.OrganizationSubpart == b.OrganizationSubpart &&
		a.EIN == b.EIN &&
		a.SoleProprietor == b.SoleProprietor &&
		a.DeactivationReason == b.DeactivationReason &&
		datesEqual(a.EnumerationDate, b.EnumerationDate) &&
		datesEqual(a.LastUpdateDate, b.LastUpdateDate) &&
		datesEqual(a.DeactivationDate, b.DeactivationDate) &&
		datesEqual(a.ReactivationDate, b.ReactivationDate)
}

func datesEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// repairPrimaries enforces the single-primary invariant within the record
// itself. When several taxonomies claim primary, the first in file order
// keeps it and the rest are demoted, each demotion recorded as a correction.
func repairPrimaries(desired []*provider.Taxonomy, row int, corrections *[]string) []*provider.Taxonomy {
	seen := false
	for _, t := range desired {
		if !t.IsPrimary {
			continue
		}
		if !seen {
			seen = true
			continue
		}
		t.IsPrimary = false
		*corrections = append(*corrections,
			fmt.Sprintf("row %d: demoted duplicate primary taxonomy %s", row, t.Code))
	}
	return desired
}

func currentTaxonomies(current *provider.Provider) []*provider.Taxonomy {
	if current == nil {
		return nil
	}
	return current.Taxonomies
}

func reconcileTaxonomies(plan *Plan, current, desired []*provider.Taxonomy) {
	byCode := make(map[string]*provider.Taxonomy, len(current))
	for _, t := range current {
		byCode[t.Code] = t
	}
	for _, want := range desired {
		have, ok := byCode[want.Code]
		if !ok {
			plan.TaxonomyInserts = append(plan.TaxonomyInserts, want)
			continue
		}
		delete(byCode, want.Code)
		if have.LicenseNumber != want.LicenseNumber ||
			have.LicenseStateID != want.LicenseStateID ||
			have.IsPrimary != want.IsPrimary {
			want.ID = have.ID
			plan.TaxonomyUpdates = append(plan.TaxonomyUpdates, want)
		}
	}
	for _, gone := range byCode {
		plan.TaxonomyDeletes = append(plan.TaxonomyDeletes, gone.ID)
	}
	sort.Slice(plan.TaxonomyDeletes, func(i, j int) bool {
		return plan.TaxonomyDeletes[i] < plan.TaxonomyDeletes[j]
	})
	// Demotions run before promotions so the one-primary index never sees two
	// primary rows mid-transaction.
	sort.SliceStable(plan.TaxonomyUpdates, func(i, j int) bool {
		return !plan.TaxonomyUpdates[i].IsPrimary && plan.TaxonomyUpdates[j].IsPrimary
	})
}

func reconcileIdentifiers(plan *Plan, current *provider.Provider, desired []*provider.Identifier) {
	byKey := make(map[string]*provider.Identifier)
	if current != nil {
		for _, i := range current.Identifiers {
			byKey[i.Key()] = i
		}
	}
	for _, want := range desired {
		have, ok := byKey[want.Key()]
		if !ok {
			plan.IdentifierInserts = append(plan.IdentifierInserts, want)
			continue
		}
		delete(byKey, want.Key())
		if have.StateID != want.StateID || have.Issuer != want.Issuer {
			want.ID = have.ID
			plan.IdentifierUpdates = append(plan.IdentifierUpdates, want)
		}
	}
	for _, gone := range byKey {
		plan.IdentifierDeletes = append(plan.IdentifierDeletes, gone.ID)
	}
	sort.Slice(plan.IdentifierDeletes, func(i, j int) bool {
		return plan.IdentifierDeletes[i] < plan.IdentifierDeletes[j]
	})
}

func reconcileOtherNames(plan *Plan, current *provider.Provider, desired []*provider.OtherName) {
	byKey := make(map[string]*provider.OtherName)
	if current != nil {
		for _, n := range current.OtherNames {
			byKey[n.Key()] = n
		}
	}
	for _, want := range desired {
		have, ok := byKey[want.Key()]
		if !ok {
			plan.OtherNameInserts = append(plan.OtherNameInserts, want)
			continue
		}
		delete(byKey, want.Key())
		if *have != withID(*want, have.ID) {
			want.ID = have.ID
			plan.OtherNameUpdates = append(plan.OtherNameUpdates, want)
		}
	}
	for _, gone := range byKey {
		plan.OtherNameDeletes = append(plan.OtherNameDeletes, gone.ID)
	}
	sort.Slice(plan.OtherNameDeletes, func(i, j int) bool {
		return plan.OtherNameDeletes[i] < plan.OtherNameDeletes[j]
	})
}

func withID(n provider.OtherName, id uint) provider.OtherName {
	n.ID = id
	return n
}

func reconcileEndpoints(plan *Plan, current *provider.Provider, desired []*provider.Endpoint) {
	byKey := make(map[string]*provider.Endpoint)
	if current != nil {
		for _, e := range current.Endpoints {
			byKey[e.Key()] = e
		}
	}
	for _, want := range desired {
		have, ok := byKey[want.Key()]
		if !ok {
			plan.EndpointInserts = append(plan.EndpointInserts, want)
			continue
		}
		delete(byKey, want.Key())
		if have.Description != want.Description ||
			have.ContentType != want.ContentType ||
			have.UseType != want.UseType ||
			have.Affiliation != want.Affiliation {
			want.ID = have.ID
			plan.EndpointUpdates = append(plan.EndpointUpdates, want)
		}
	}
	for _, gone := range byKey {
		plan.EndpointDeletes = append(plan.EndpointDeletes, gone.ID)
	}
	sort.Slice(plan.EndpointDeletes, func(i, j int) bool {
		return plan.EndpointDeletes[i] < plan.EndpointDeletes[j]
	})
}

func reconcileAddresses(plan *Plan, current *provider.Provider, resolved *ResolvedRecord) {
	for _, want := range []*provider.Address{resolved.MailingAddress, resolved.LocationAddress} {
		if want == nil {
			continue
		}
		var have *provider.Address
		if current != nil {
			have = current.AddressByPurpose(want.Purpose)
		}
		if have == nil || !addressesEqual(have, want) {
			plan.Addresses = append(plan.Addresses, want)
		}
	}
}

func addressesEqual(a, b *provider.Address) bool {
	return a.Type == b.Type &&
		a.Address1 == b.Address1 &&
		a.Address2 == b.Address2 &&
		a.CityID == b.CityID &&
		a.CityName == b.CityName &&
		a.StateID == b.StateID &&
		a.PostalCode == b.PostalCode &&
		a.CountryCode == b.CountryCode &&
		a.Telephone == b.Telephone &&
		a.Fax == b.Fax
}

func reconcileOfficial(plan *Plan, current *provider.Provider, want *provider.AuthorizedOfficial) {
	if want == nil {
		return
	}
	if current != nil && current.AuthorizedOfficial != nil {
		have := *current.AuthorizedOfficial
		have.ID = 0
		if have == *want {
			return
		}
	}
	plan.Official = want
}
