package models

import "time"

type State struct {
	ID        int64
	Code      string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type City struct {
	ID        int64
	Name      string
	StateID   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Taxonomy struct {
	ID             int64
	Code           string
	Classification *string
	Specialization *string
	Description    *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Provider struct {
	ID                  int64
	NPI                 string
	EntityType          int16
	ReplacementNPI      *string
	FirstName           *string
	LastName            *string
	MiddleName          *string
	NamePrefix          *string
	NameSuffix          *string
	Credential          *string
	Gender              *string
	OrganizationName    *string
	OrganizationSubpart *bool
	EIN                 *string
	SoleProprietor      *bool
	EnumerationDate     *time.Time
	LastUpdateDate      *time.Time
	DeactivationDate    *time.Time
	DeactivationReason  *string
	ReactivationDate    *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type Address struct {
	ID             int64
	ProviderID     int64
	AddressPurpose string
	AddressType    *string
	Address1       *string
	Address2       *string
	CityID         *int64
	CityName       *string
	StateID        *int64
	PostalCode     *string
	CountryCode    *string
	Telephone      *string
	Fax            *string
}

type ProviderTaxonomy struct {
	ID             int64
	ProviderID     int64
	TaxonomyID     int64
	Code           string
	LicenseNumber  *string
	LicenseStateID *int64
	IsPrimary      *bool
}

type Identifier struct {
	ID              int64
	ProviderID      int64
	IdentifierType  string
	IdentifierValue string
	StateID         *int64
	Issuer          *string
}

type OtherName struct {
	ID               int64
	ProviderID       int64
	NameType         *string
	FirstName        *string
	LastName         *string
	MiddleName       *string
	NamePrefix       *string
	NameSuffix       *string
	Credential       *string
	OrganizationName *string
}

type Endpoint struct {
	ID                  int64
	ProviderID          int64
	EndpointURL         string
	EndpointType        *string
	EndpointDescription *string
	ContentType         *string
	UseType             *string
	Affiliation         *bool
}

type AuthorizedOfficial struct {
	ID              int64
	ProviderID      int64
	FirstName       string
	LastName        string
	MiddleName      *string
	NamePrefix      *string
	NameSuffix      *string
	Credential      *string
	TitleOrPosition *string
	Telephone       *string
}
