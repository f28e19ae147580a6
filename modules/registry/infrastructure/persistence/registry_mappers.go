package persistence

import (
	"github.com/atlashealth/atlas/modules/registry/domain/aggregates/provider"
	"github.com/atlashealth/atlas/modules/registry/domain/entities/reference"
	"github.com/atlashealth/atlas/modules/registry/infrastructure/persistence/models"
)

// Nullable columns round-trip through pointers: empty domain strings and zero
// reference ids persist as NULL, and NULL loads back as the zero value.

func strOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func nullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func uintOrZero(v *int64) uint {
	if v == nil {
		return 0
	}
	return uint(*v)
}

func nullID(v uint) *int64 {
	if v == 0 {
		return nil
	}
	id := int64(v)
	return &id
}

func boolOrFalse(v *bool) bool {
	return v != nil && *v
}

func ToDomainProvider(m *models.Provider) *provider.Provider {
	return &provider.Provider{
		ID:                  uint(m.ID),
		NPI:                 m.NPI,
		EntityType:          provider.EntityType(m.EntityType),
		ReplacementNPI:      strOrEmpty(m.ReplacementNPI),
		FirstName:           strOrEmpty(m.FirstName),
		LastName:            strOrEmpty(m.LastName),
		MiddleName:          strOrEmpty(m.MiddleName),
		NamePrefix:          strOrEmpty(m.NamePrefix),
		NameSuffix:          strOrEmpty(m.NameSuffix),
		Credential:          strOrEmpty(m.Credential),
		Gender:              strOrEmpty(m.Gender),
		OrganizationName:    strOrEmpty(m.OrganizationName),
		OrganizationSubpart: boolOrFalse(m.OrganizationSubpart),
		EIN:                 strOrEmpty(m.EIN),
		SoleProprietor:      boolOrFalse(m.SoleProprietor),
		EnumerationDate:     m.EnumerationDate,
		LastUpdateDate:      m.LastUpdateDate,
		DeactivationDate:    m.DeactivationDate,
		DeactivationReason:  strOrEmpty(m.DeactivationReason),
		ReactivationDate:    m.ReactivationDate,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func ToDBProvider(p *provider.Provider) *models.Provider {
	return &models.Provider{
		ID:                  int64(p.ID),
		NPI:                 p.NPI,
		EntityType:          int16(p.EntityType),
		ReplacementNPI:      nullStr(p.ReplacementNPI),
		FirstName:           nullStr(p.FirstName),
		LastName:            nullStr(p.LastName),
		MiddleName:          nullStr(p.MiddleName),
		NamePrefix:          nullStr(p.NamePrefix),
		NameSuffix:          nullStr(p.NameSuffix),
		Credential:          nullStr(p.Credential),
		Gender:              nullStr(p.Gender),
		OrganizationName:    nullStr(p.OrganizationName),
		OrganizationSubpart: &p.OrganizationSubpart,
		EIN:                 nullStr(p.EIN),
		SoleProprietor:      &p.SoleProprietor,
		EnumerationDate:     p.EnumerationDate,
		LastUpdateDate:      p.LastUpdateDate,
		DeactivationDate:    p.DeactivationDate,
		DeactivationReason:  nullStr(p.DeactivationReason),
		ReactivationDate:    p.ReactivationDate,
	}
}

func ToDomainAddress(m *models.Address) *provider.Address {
	return &provider.Address{
		ID:          uint(m.ID),
		Purpose:     provider.AddressPurpose(m.AddressPurpose),
		Type:        provider.AddressType(strOrEmpty(m.AddressType)),
		Address1:    strOrEmpty(m.Address1),
		Address2:    strOrEmpty(m.Address2),
		CityID:      uintOrZero(m.CityID),
		CityName:    strOrEmpty(m.CityName),
		StateID:     uintOrZero(m.StateID),
		PostalCode:  strOrEmpty(m.PostalCode),
		CountryCode: strOrEmpty(m.CountryCode),
		Telephone:   strOrEmpty(m.Telephone),
		Fax:         strOrEmpty(m.Fax),
	}
}

func ToDomainTaxonomy(m *models.ProviderTaxonomy) *provider.Taxonomy {
	return &provider.Taxonomy{
		ID:             uint(m.ID),
		TaxonomyID:     uint(m.TaxonomyID),
		Code:           m.Code,
		LicenseNumber:  strOrEmpty(m.LicenseNumber),
		LicenseStateID: uintOrZero(m.LicenseStateID),
		IsPrimary:      boolOrFalse(m.IsPrimary),
	}
}

func ToDomainIdentifier(m *models.Identifier) *provider.Identifier {
	return &provider.Identifier{
		ID:      uint(m.ID),
		Type:    m.IdentifierType,
		Value:   m.IdentifierValue,
		StateID: uintOrZero(m.StateID),
		Issuer:  strOrEmpty(m.Issuer),
	}
}

func ToDomainOtherName(m *models.OtherName) *provider.OtherName {
	return &provider.OtherName{
		ID:               uint(m.ID),
		NameType:         strOrEmpty(m.NameType),
		FirstName:        strOrEmpty(m.FirstName),
		LastName:         strOrEmpty(m.LastName),
		MiddleName:       strOrEmpty(m.MiddleName),
		NamePrefix:       strOrEmpty(m.NamePrefix),
		NameSuffix:       strOrEmpty(m.NameSuffix),
		Credential:       strOrEmpty(m.Credential),
		OrganizationName: strOrEmpty(m.OrganizationName),
	}
}

func ToDomainEndpoint(m *models.Endpoint) *provider.Endpoint {
	return &provider.Endpoint{
		ID:          uint(m.ID),
		URL:         m.EndpointURL,
		Type:        strOrEmpty(m.EndpointType),
		Description: strOrEmpty(m.EndpointDescription),
		ContentType: strOrEmpty(m.ContentType),
		UseType:     strOrEmpty(m.UseType),
		Affiliation: boolOrFalse(m.Affiliation),
	}
}

func ToDomainAuthorizedOfficial(m *models.AuthorizedOfficial) *provider.AuthorizedOfficial {
	return &provider.AuthorizedOfficial{
		ID:              uint(m.ID),
		FirstName:       m.FirstName,
		LastName:        m.LastName,
		MiddleName:      strOrEmpty(m.MiddleName),
		NamePrefix:      strOrEmpty(m.NamePrefix),
		NameSuffix:      strOrEmpty(m.NameSuffix),
		Credential:      strOrEmpty(m.Credential),
		TitleOrPosition: strOrEmpty(m.TitleOrPosition),
		Telephone:       strOrEmpty(m.Telephone),
	}
}

func ToDomainState(m *models.State) *reference.State {
	return &reference.State{
		ID:   uint(m.ID),
		Code: m.Code,
		Name: m.Name,
	}
}

func ToDomainCity(m *models.City) *reference.City {
	return &reference.City{
		ID:      uint(m.ID),
		Name:    m.Name,
		StateID: uint(m.StateID),
	}
}

func ToDomainRefTaxonomy(m *models.Taxonomy) *reference.Taxonomy {
	return &reference.Taxonomy{
		ID:             uint(m.ID),
		Code:           m.Code,
		Classification: strOrEmpty(m.Classification),
		Specialization: strOrEmpty(m.Specialization),
		Description:    strOrEmpty(m.Description),
	}
}
