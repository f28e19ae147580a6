package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// The column names below are the documented NPPES dissemination layout. The
// layout is a versioned external contract: columns are resolved by header
// name once per file, never re-derived per row, and a column missing from the
// header simply yields absent fields.
const (
	colNPI            = "NPI"
	colEntityType     = "Entity Type Code"
	colReplacementNPI = "Replacement NPI"
	colEIN            = "Employer Identification Number (EIN)"

	colOrgName    = "Provider Organization Name (Legal Business Name)"
	colLastName   = "Provider Last Name (Legal Name)"
	colFirstName  = "Provider First Name"
	colMiddleName = "Provider Middle Name"
	colNamePrefix = "Provider Name Prefix Text"
	colNameSuffix = "Provider Name Suffix Text"
	colCredential = "Provider Credential Text"
	colGender     = "Provider Gender Code"

	colSoleProprietor = "Is Sole Proprietor"
	colOrgSubpart     = "Is Organization Subpart"

	colEnumerationDate    = "Provider Enumeration Date"
	colLastUpdateDate     = "Last Update Date"
	colDeactivationDate   = "NPI Deactivation Date"
	colDeactivationReason = "NPI Deactivation Reason Code"
	colReactivationDate   = "NPI Reactivation Date"

	colMailPrefix = "Provider Business Mailing Address"
	colLocPrefix  = "Provider First Line Business Practice Location Address"

	colOtherOrgName     = "Provider Other Organization Name"
	colOtherOrgNameType = "Provider Other Organization Name Type Code"
	colOtherLastName    = "Provider Other Last Name"
	colOtherFirstName   = "Provider Other First Name"
	colOtherMiddleName  = "Provider Other Middle Name"
	colOtherNamePrefix  = "Provider Other Name Prefix Text"
	colOtherNameSuffix  = "Provider Other Name Suffix Text"
	colOtherCredential  = "Provider Other Credential Text"
	colOtherNameType    = "Provider Other Last Name Type Code"

	colOfficialLastName   = "Authorized Official Last Name"
	colOfficialFirstName  = "Authorized Official First Name"
	colOfficialMiddleName = "Authorized Official Middle Name"
	colOfficialPrefix     = "Authorized Official Name Prefix Text"
	colOfficialSuffix     = "Authorized Official Name Suffix Text"
	colOfficialCredential = "Authorized Official Credential Text"
	colOfficialTitle      = "Authorized Official Title or Position"
	colOfficialTelephone  = "Authorized Official Telephone Number"

	colEndpointURL         = "Endpoint"
	colEndpointType        = "Endpoint Type Code"
	colEndpointDescription = "Endpoint Description"
	colEndpointContentType = "Endpoint Content Type"
	colEndpointUseType     = "Endpoint Use Code"
	colEndpointAffiliation = "Endpoint Affiliation"

	maxTaxonomySlots   = 15
	maxIdentifierSlots = 50

	dateLayout = "01/02/2006"
)

// Parser turns raw CSV rows into ProviderRecords using a header-resolved
// column index. It is a pure function of the row and keeps no mutable state.
type Parser struct {
	index map[string]int
}

func NewParser(header []string) (*Parser, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	if _, ok := index[colNPI]; !ok {
		return nil, errors.New("file header does not contain an NPI column")
	}
	return &Parser{index: index}, nil
}

// field returns nil when the column is absent from the layout, otherwise a
// pointer to the (possibly empty) trimmed value.
func (p *Parser) field(row []string, col string) *string {
	i, ok := p.index[col]
	if !ok || i >= len(row) {
		return nil
	}
	v := strings.TrimSpace(row[i])
	return &v
}

func (p *Parser) value(row []string, col string) string {
	if v := p.field(row, col); v != nil {
		return *v
	}
	return ""
}

func (p *Parser) ParseRecord(rowNumber int, row []string) (*ProviderRecord, error) {
	npi := p.value(row, colNPI)
	if err := validateNPI(npi); err != nil {
		return nil, &MalformedRowError{Row: rowNumber, Field: colNPI, Err: err}
	}

	rec := &ProviderRecord{
		RowNumber:          rowNumber,
		NPI:                npi,
		ReplacementNPI:     p.field(row, colReplacementNPI),
		EIN:                p.field(row, colEIN),
		FirstName:          p.field(row, colFirstName),
		LastName:           p.field(row, colLastName),
		MiddleName:         p.field(row, colMiddleName),
		NamePrefix:         p.field(row, colNamePrefix),
		NameSuffix:         p.field(row, colNameSuffix),
		Credential:         p.field(row, colCredential),
		Gender:             p.field(row, colGender),
		OrganizationName:   p.field(row, colOrgName),
		DeactivationReason: p.field(row, colDeactivationReason),
	}

	entityType, err := p.parseEntityType(row)
	if err != nil {
		return nil, &MalformedRowError{Row: rowNumber, Field: colEntityType, Err: err}
	}
	rec.EntityType = entityType

	rec.SoleProprietor = p.parseFlag(row, colSoleProprietor)
	rec.OrganizationSubpart = p.parseFlag(row, colOrgSubpart)

	for _, d := range []struct {
		col  string
		dest *OptionalDate
	}{
		{colEnumerationDate, &rec.EnumerationDate},
		{colLastUpdateDate, &rec.LastUpdateDate},
		{colDeactivationDate, &rec.DeactivationDate},
		{colReactivationDate, &rec.ReactivationDate},
	} {
		od, err := p.parseDate(row, d.col)
		if err != nil {
			return nil, &MalformedRowError{Row: rowNumber, Field: d.col, Err: err}
		}
		*d.dest = od
	}

	rec.MailingAddress = p.parseMailingAddress(row)
	rec.LocationAddress = p.parseLocationAddress(row)
	rec.Taxonomies = p.parseTaxonomies(row)
	rec.Identifiers = p.parseIdentifiers(row)
	rec.OtherNames = p.parseOtherNames(row)
	rec.Endpoints = p.parseEndpoints(row)
	rec.AuthorizedOfficial = p.parseOfficial(row)

	return rec, nil
}

func validateNPI(npi string) error {
	if npi == "" {
		return errors.New("missing NPI")
	}
	if len(npi) != 10 {
		return errors.Errorf("NPI must be 10 characters, got %d", len(npi))
	}
	if _, err := strconv.Atoi(npi); err != nil {
		return errors.New("NPI must be numeric")
	}
	return nil
}

func (p *Parser) parseEntityType(row []string) (*int16, error) {
	v := p.field(row, colEntityType)
	if v == nil || *v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(*v)
	if err != nil || (n != 1 && n != 2) {
		return nil, errors.Errorf("invalid entity type code %q", *v)
	}
	et := int16(n)
	return &et, nil
}

func (p *Parser) parseFlag(row []string, col string) *bool {
	v := p.field(row, col)
	if v == nil || *v == "" || *v == "X" {
		return nil
	}
	b := strings.EqualFold(*v, "Y")
	return &b
}

func (p *Parser) parseDate(row []string, col string) (OptionalDate, error) {
	v := p.field(row, col)
	if v == nil {
		return OptionalDate{}, nil
	}
	if *v == "" {
		return OptionalDate{Set: true}, nil
	}
	t, err := time.Parse(dateLayout, *v)
	if err != nil {
		return OptionalDate{}, errors.Errorf("invalid date %q", *v)
	}
	return OptionalDate{Set: true, Value: &t}, nil
}

func (p *Parser) parseMailingAddress(row []string) *AddressRecord {
	return p.parseAddress(row,
		"Provider First Line Business Mailing Address",
		"Provider Second Line Business Mailing Address",
		colMailPrefix)
}

func (p *Parser) parseLocationAddress(row []string) *AddressRecord {
	return p.parseAddress(row,
		colLocPrefix,
		"Provider Second Line Business Practice Location Address",
		"Provider Business Practice Location Address")
}

func (p *Parser) parseAddress(row []string, line1, line2, prefix string) *AddressRecord {
	addr := &AddressRecord{
		Address1:    p.value(row, line1),
		Address2:    p.value(row, line2),
		CityName:    p.value(row, prefix+" City Name"),
		StateCode:   p.value(row, prefix+" State Name"),
		PostalCode:  p.value(row, prefix+" Postal Code"),
		CountryCode: p.value(row, prefix+" Country Code (If outside U.S.)"),
		Telephone:   p.value(row, prefix+" Telephone Number"),
		Fax:         p.value(row, prefix+" Fax Number"),
	}
	return normalizeAddress(addr)
}

func normalizeAddress(addr *AddressRecord) *AddressRecord {
	if addr.Address1 == "" && addr.CityName == "" && addr.PostalCode == "" {
		return nil
	}
	if addr.CountryCode == "" || addr.CountryCode == "US" {
		addr.CountryCode = "US"
		addr.Type = "DOM"
	} else {
		addr.Type = "FGN"
	}
	return addr
}

func (p *Parser) parseTaxonomies(row []string) []TaxonomyRecord {
	var out []TaxonomyRecord
	for i := 1; i <= maxTaxonomySlots; i++ {
		code := p.value(row, fmt.Sprintf("Healthcare Provider Taxonomy Code_%d", i))
		if code == "" {
			continue
		}
		out = append(out, TaxonomyRecord{
			Code:          code,
			LicenseNumber: p.value(row, fmt.Sprintf("Provider License Number_%d", i)),
			LicenseState:  p.value(row, fmt.Sprintf("Provider License Number State Code_%d", i)),
			Primary:       strings.EqualFold(p.value(row, fmt.Sprintf("Healthcare Provider Primary Taxonomy Switch_%d", i)), "Y"),
		})
	}
	return out
}

func (p *Parser) parseIdentifiers(row []string) []IdentifierRecord {
	var out []IdentifierRecord
	for i := 1; i <= maxIdentifierSlots; i++ {
		value := p.value(row, fmt.Sprintf("Other Provider Identifier_%d", i))
		idType := p.value(row, fmt.Sprintf("Other Provider Identifier Type Code_%d", i))
		if value == "" || idType == "" {
			continue
		}
		out = append(out, IdentifierRecord{
			Type:   idType,
			Value:  value,
			State:  p.value(row, fmt.Sprintf("Other Provider Identifier State_%d", i)),
			Issuer: p.value(row, fmt.Sprintf("Other Provider Identifier Issuer_%d", i)),
		})
	}
	return out
}

func (p *Parser) parseOtherNames(row []string) []OtherNameRecord {
	var out []OtherNameRecord
	if org := p.value(row, colOtherOrgName); org != "" {
		out = append(out, OtherNameRecord{
			NameType:         p.value(row, colOtherOrgNameType),
			OrganizationName: org,
		})
	}
	if last := p.value(row, colOtherLastName); last != "" {
		out = append(out, OtherNameRecord{
			NameType:   p.value(row, colOtherNameType),
			FirstName:  p.value(row, colOtherFirstName),
			LastName:   last,
			MiddleName: p.value(row, colOtherMiddleName),
			NamePrefix: p.value(row, colOtherNamePrefix),
			NameSuffix: p.value(row, colOtherNameSuffix),
			Credential: p.value(row, colOtherCredential),
		})
	}
	return out
}

func (p *Parser) parseEndpoints(row []string) []EndpointRecord {
	url := p.value(row, colEndpointURL)
	if url == "" {
		return nil
	}
	return []EndpointRecord{{
		URL:         url,
		Type:        p.value(row, colEndpointType),
		Description: p.value(row, colEndpointDescription),
		ContentType: p.value(row, colEndpointContentType),
		UseType:     p.value(row, colEndpointUseType),
		Affiliation: strings.EqualFold(p.value(row, colEndpointAffiliation), "Y"),
	}}
}

func (p *Parser) parseOfficial(row []string) *OfficialRecord {
	last := p.value(row, colOfficialLastName)
	first := p.value(row, colOfficialFirstName)
	if last == "" && first == "" {
		return nil
	}
	return &OfficialRecord{
		FirstName:       first,
		LastName:        last,
		MiddleName:      p.value(row, colOfficialMiddleName),
		NamePrefix:      p.value(row, colOfficialPrefix),
		NameSuffix:      p.value(row, colOfficialSuffix),
		Credential:      p.value(row, colOfficialCredential),
		TitleOrPosition: p.value(row, colOfficialTitle),
		Telephone:       p.value(row, colOfficialTelephone),
	}
}
