package ingest

import "time"

// ProviderRecord is one parsed row of an NPPES update file.
//
// Scalar fields are pointers so a column that is missing from the file layout
// (nil) stays distinguishable from a column that is present but empty (""):
// a nil field leaves the persisted value untouched, an empty one overwrites it.
type ProviderRecord struct {
	RowNumber int

	NPI            string
	EntityType     *int16
	ReplacementNPI *string
	EIN            *string

	FirstName  *string
	LastName   *string
	MiddleName *string
	NamePrefix *string
	NameSuffix *string
	Credential *string
	Gender     *string

	OrganizationName    *string
	OrganizationSubpart *bool
	SoleProprietor      *bool

	EnumerationDate    OptionalDate
	LastUpdateDate     OptionalDate
	DeactivationDate   OptionalDate
	DeactivationReason *string
	ReactivationDate   OptionalDate

	MailingAddress  *AddressRecord
	LocationAddress *AddressRecord

	Taxonomies  []TaxonomyRecord
	Identifiers []IdentifierRecord
	OtherNames  []OtherNameRecord
	Endpoints   []EndpointRecord

	AuthorizedOfficial *OfficialRecord
}

// OptionalDate distinguishes an absent column (Set=false), an explicit clear
// (Set=true, Value=nil) and a concrete date.
type OptionalDate struct {
	Set   bool
	Value *time.Time
}

type AddressRecord struct {
	Type        string
	Address1    string
	Address2    string
	CityName    string
	StateCode   string
	PostalCode  string
	CountryCode string
	Telephone   string
	Fax         string
}

type TaxonomyRecord struct {
	Code          string
	LicenseNumber string
	LicenseState  string
	Primary       bool
}

type IdentifierRecord struct {
	Type   string
	Value  string
	State  string
	Issuer string
}

type OtherNameRecord struct {
	NameType         string
	FirstName        string
	LastName         string
	MiddleName       string
	NamePrefix       string
	NameSuffix       string
	Credential       string
	OrganizationName string
}

type EndpointRecord struct {
	URL         string
	Type        string
	Description string
	ContentType string
	UseType     string
	Affiliation bool
}

type OfficialRecord struct {
	FirstName       string
	LastName        string
	MiddleName      string
	NamePrefix      string
	NameSuffix      string
	Credential      string
	TitleOrPosition string
	Telephone       string
}
