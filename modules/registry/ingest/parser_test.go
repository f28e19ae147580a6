package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testHeader() []string {
	return []string{
		"NPI",
		"Entity Type Code",
		"Provider Organization Name (Legal Business Name)",
		"Provider Last Name (Legal Name)",
		"Provider First Name",
		"Provider Credential Text",
		"Provider Gender Code",
		"Provider Enumeration Date",
		"Last Update Date",
		"NPI Deactivation Date",
		"NPI Reactivation Date",
		"Provider First Line Business Mailing Address",
		"Provider Business Mailing Address City Name",
		"Provider Business Mailing Address State Name",
		"Provider Business Mailing Address Postal Code",
		"Provider Business Mailing Address Country Code (If outside U.S.)",
		"Healthcare Provider Taxonomy Code_1",
		"Provider License Number_1",
		"Provider License Number State Code_1",
		"Healthcare Provider Primary Taxonomy Switch_1",
		"Healthcare Provider Taxonomy Code_2",
		"Provider License Number_2",
		"Provider License Number State Code_2",
		"Healthcare Provider Primary Taxonomy Switch_2",
		"Other Provider Identifier_1",
		"Other Provider Identifier Type Code_1",
		"Other Provider Identifier State_1",
		"Other Provider Identifier Issuer_1",
		"Authorized Official Last Name",
		"Authorized Official First Name",
		"Authorized Official Telephone Number",
	}
}

func testRow(overrides map[string]string) []string {
	header := testHeader()
	values := map[string]string{
		"NPI":              "1234567893",
		"Entity Type Code": "1",
		"Provider Last Name (Legal Name)": "SMITH",
		"Provider First Name":             "JANE",
		"Provider Credential Text":        "M.D.",
		"Provider Gender Code":            "F",
		"Provider Enumeration Date":       "05/23/2005",
		"Last Update Date":                "01/15/2024",
		"Provider First Line Business Mailing Address":                     "123 MAIN ST",
		"Provider Business Mailing Address City Name":                      "SPRINGFIELD",
		"Provider Business Mailing Address State Name":                     "IL",
		"Provider Business Mailing Address Postal Code":                    "627011234",
		"Healthcare Provider Taxonomy Code_1":                              "207Q00000X",
		"Provider License Number_1":                                        "036-112233",
		"Provider License Number State Code_1":                             "IL",
		"Healthcare Provider Primary Taxonomy Switch_1":                    "Y",
	}
	for k, v := range overrides {
		values[k] = v
	}
	row := make([]string, len(header))
	for i, col := range header {
		row[i] = values[col]
	}
	return row
}

func TestParser_RequiresNPIColumn(t *testing.T) {
	_, err := NewParser([]string{"Entity Type Code", "Provider First Name"})
	require.Error(t, err)
}

func TestParseRecord_Basic(t *testing.T) {
	p, err := NewParser(testHeader())
	require.NoError(t, err)

	rec, err := p.ParseRecord(2, testRow(nil))
	require.NoError(t, err)

	require.Equal(t, "1234567893", rec.NPI)
	require.NotNil(t, rec.EntityType)
	require.Equal(t, int16(1), *rec.EntityType)
	require.Equal(t, "SMITH", *rec.LastName)
	require.Equal(t, "JANE", *rec.FirstName)
	require.Equal(t, "F", *rec.Gender)

	require.True(t, rec.EnumerationDate.Set)
	require.Equal(t, time.Date(2005, 5, 23, 0, 0, 0, 0, time.UTC), *rec.EnumerationDate.Value)

	require.NotNil(t, rec.MailingAddress)
	require.Equal(t, "123 MAIN ST", rec.MailingAddress.Address1)
	require.Equal(t, "SPRINGFIELD", rec.MailingAddress.CityName)
	require.Equal(t, "IL", rec.MailingAddress.StateCode)
	require.Equal(t, "DOM", rec.MailingAddress.Type)
	require.Nil(t, rec.LocationAddress)

	require.Len(t, rec.Taxonomies, 1)
	require.Equal(t, "207Q00000X", rec.Taxonomies[0].Code)
	require.True(t, rec.Taxonomies[0].Primary)
	require.Equal(t, "036-112233", rec.Taxonomies[0].LicenseNumber)
}

func TestParseRecord_AbsentVersusEmpty(t *testing.T) {
	p, err := NewParser(testHeader())
	require.NoError(t, err)

	rec, err := p.ParseRecord(2, testRow(map[string]string{
		"Provider Credential Text": "",
	}))
	require.NoError(t, err)

	// Column present but empty overwrites; column absent from the layout
	// leaves the stored value alone.
	require.NotNil(t, rec.Credential)
	require.Equal(t, "", *rec.Credential)
	require.Nil(t, rec.MiddleName)
	require.Nil(t, rec.SoleProprietor)

	// Deactivation date column present and empty means an explicit clear.
	require.True(t, rec.DeactivationDate.Set)
	require.Nil(t, rec.DeactivationDate.Value)
}

func TestParseRecord_InvalidNPI(t *testing.T) {
	p, err := NewParser(testHeader())
	require.NoError(t, err)

	for _, npi := range []string{"", "12345", "12345678XX"} {
		_, err := p.ParseRecord(7, testRow(map[string]string{"NPI": npi}))
		var malformed *MalformedRowError
		require.ErrorAs(t, err, &malformed)
		require.Equal(t, 7, malformed.Row)
		require.Equal(t, "NPI", malformed.Field)
	}
}

func TestParseRecord_InvalidEntityType(t *testing.T) {
	p, err := NewParser(testHeader())
	require.NoError(t, err)

	_, err = p.ParseRecord(3, testRow(map[string]string{"Entity Type Code": "9"}))
	var malformed *MalformedRowError
	require.ErrorAs(t, err, &malformed)
	require.Equal(t, "Entity Type Code", malformed.Field)
}

func TestParseRecord_InvalidDate(t *testing.T) {
	p, err := NewParser(testHeader())
	require.NoError(t, err)

	_, err = p.ParseRecord(4, testRow(map[string]string{"Last Update Date": "2024-01-15"}))
	var malformed *MalformedRowError
	require.ErrorAs(t, err, &malformed)
	require.Equal(t, "Last Update Date", malformed.Field)
}

func TestParseRecord_MultipleTaxonomySlots(t *testing.T) {
	p, err := NewParser(testHeader())
	require.NoError(t, err)

	rec, err := p.ParseRecord(2, testRow(map[string]string{
		"Healthcare Provider Taxonomy Code_2":           "363L00000X",
		"Healthcare Provider Primary Taxonomy Switch_2": "N",
	}))
	require.NoError(t, err)
	require.Len(t, rec.Taxonomies, 2)
	require.Equal(t, "363L00000X", rec.Taxonomies[1].Code)
	require.False(t, rec.Taxonomies[1].Primary)
}

func TestParseRecord_Identifiers(t *testing.T) {
	p, err := NewParser(testHeader())
	require.NoError(t, err)

	rec, err := p.ParseRecord(2, testRow(map[string]string{
		"Other Provider Identifier_1":           "A12345",
		"Other Provider Identifier Type Code_1": "01",
		"Other Provider Identifier State_1":     "IL",
		"Other Provider Identifier Issuer_1":    "BCBS",
	}))
	require.NoError(t, err)
	require.Len(t, rec.Identifiers, 1)
	require.Equal(t, "01", rec.Identifiers[0].Type)
	require.Equal(t, "A12345", rec.Identifiers[0].Value)
	require.Equal(t, "BCBS", rec.Identifiers[0].Issuer)

	// A value with no type code is unusable and dropped.
	rec, err = p.ParseRecord(2, testRow(map[string]string{
		"Other Provider Identifier_1": "A12345",
	}))
	require.NoError(t, err)
	require.Empty(t, rec.Identifiers)
}

func TestParseRecord_ForeignAddress(t *testing.T) {
	p, err := NewParser(testHeader())
	require.NoError(t, err)

	rec, err := p.ParseRecord(2, testRow(map[string]string{
		"Provider Business Mailing Address Country Code (If outside U.S.)": "CA",
		"Provider Business Mailing Address State Name":                     "ONTARIO",
	}))
	require.NoError(t, err)
	require.NotNil(t, rec.MailingAddress)
	require.Equal(t, "FGN", rec.MailingAddress.Type)
	require.Equal(t, "CA", rec.MailingAddress.CountryCode)
}

func TestParseRecord_AuthorizedOfficial(t *testing.T) {
	p, err := NewParser(testHeader())
	require.NoError(t, err)

	rec, err := p.ParseRecord(2, testRow(map[string]string{
		"Authorized Official Last Name":        "DOE",
		"Authorized Official First Name":       "JOHN",
		"Authorized Official Telephone Number": "2175551234",
	}))
	require.NoError(t, err)
	require.NotNil(t, rec.AuthorizedOfficial)
	require.Equal(t, "DOE", rec.AuthorizedOfficial.LastName)
	require.Equal(t, "2175551234", rec.AuthorizedOfficial.Telephone)

	rec, err = p.ParseRecord(2, testRow(nil))
	require.NoError(t, err)
	require.Nil(t, rec.AuthorizedOfficial)
}
