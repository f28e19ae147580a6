package provider

import (
	"time"
)

type EntityType int16

const (
	Individual   EntityType = 1
	Organization EntityType = 2
)

type AddressPurpose string

const (
	PurposeLocation AddressPurpose = "LOCATION"
	PurposeMailing  AddressPurpose = "MAILING"
)

type AddressType string

const (
	AddressDomestic AddressType = "DOM"
	AddressForeign  AddressType = "FGN"
)

// Provider is the registry root entity, identified by its NPI. The pipeline
// never deletes a provider; deactivation is a dated attribute.
type Provider struct {
	ID                  uint
	NPI                 string
	EntityType          EntityType
	ReplacementNPI      string
	FirstName           string
	LastName            string
	MiddleName          string
	NamePrefix          string
	NameSuffix          string
	Credential          string
	Gender              string
	OrganizationName    string
	OrganizationSubpart bool
	EIN                 string
	SoleProprietor      bool
	EnumerationDate     *time.Time
	LastUpdateDate      *time.Time
	DeactivationDate    *time.Time
	DeactivationReason  string
	ReactivationDate    *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time

	Addresses          []*Address
	Taxonomies         []*Taxonomy
	Identifiers        []*Identifier
	OtherNames         []*OtherName
	Endpoints          []*Endpoint
	AuthorizedOfficial *AuthorizedOfficial
}

func (p *Provider) IsActive() bool {
	if p.DeactivationDate == nil {
		return true
	}
	return p.ReactivationDate != nil && p.ReactivationDate.After(*p.DeactivationDate)
}

func (p *Provider) AddressByPurpose(purpose AddressPurpose) *Address {
	for _, a := range p.Addresses {
		if a.Purpose == purpose {
			return a
		}
	}
	return nil
}

type Address struct {
	ID          uint
	Purpose     AddressPurpose
	Type        AddressType
	Address1    string
	Address2    string
	CityID      uint
	CityName    string
	StateID     uint
	PostalCode  string
	CountryCode string
	Telephone   string
	Fax         string
}

// Taxonomy is the provider-to-taxonomy join row. Code duplicates the reference
// taxonomy's code so set reconciliation can key on it without extra lookups.
type Taxonomy struct {
	ID             uint
	TaxonomyID     uint
	Code           string
	LicenseNumber  string
	LicenseStateID uint
	IsPrimary      bool
}

type Identifier struct {
	ID      uint
	Type    string
	Value   string
	StateID uint
	Issuer  string
}

func (i *Identifier) Key() string {
	return i.Type + "\x00" + i.Value
}

type OtherName struct {
	ID               uint
	NameType         string
	FirstName        string
	LastName         string
	MiddleName       string
	NamePrefix       string
	NameSuffix       string
	Credential       string
	OrganizationName string
}

// Key is the natural identity of an other-name row: its type plus the
// rendered name. The table carries no unique constraint, so the reconciler
// relies on this for deterministic set diffs.
func (n *OtherName) Key() string {
	if n.OrganizationName != "" {
		return n.NameType + "\x00" + n.OrganizationName
	}
	return n.NameType + "\x00" + n.LastName + "," + n.FirstName
}

type Endpoint struct {
	ID          uint
	URL         string
	Type        string
	Description string
	ContentType string
	UseType     string
	Affiliation bool
}

func (e *Endpoint) Key() string {
	return e.Type + "\x00" + e.URL
}

type AuthorizedOfficial struct {
	ID              uint
	FirstName       string
	LastName        string
	MiddleName      string
	NamePrefix      string
	NameSuffix      string
	Credential      string
	TitleOrPosition string
	Telephone       string
}
