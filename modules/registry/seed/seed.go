package seed

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/atlashealth/atlas/modules/registry/domain/entities/reference"
	"github.com/atlashealth/atlas/modules/registry/infrastructure/persistence"
	"github.com/atlashealth/atlas/pkg/application"
	"github.com/atlashealth/atlas/pkg/composables"
)

var states = []reference.State{
	{Code: "AL", Name: "Alabama"},
	{Code: "AK", Name: "Alaska"},
	{Code: "AZ", Name: "Arizona"},
	{Code: "AR", Name: "Arkansas"},
	{Code: "CA", Name: "California"},
	{Code: "CO", Name: "Colorado"},
	{Code: "CT", Name: "Connecticut"},
	{Code: "DE", Name: "Delaware"},
	{Code: "FL", Name: "Florida"},
	{Code: "GA", Name: "Georgia"},
	{Code: "HI", Name: "Hawaii"},
	{Code: "ID", Name: "Idaho"},
	{Code: "IL", Name: "Illinois"},
	{Code: "IN", Name: "Indiana"},
	{Code: "IA", Name: "Iowa"},
	{Code: "KS", Name: "Kansas"},
	{Code: "KY", Name: "Kentucky"},
	{Code: "LA", Name: "Louisiana"},
	{Code: "ME", Name: "Maine"},
	{Code: "MD", Name: "Maryland"},
	{Code: "MA", Name: "Massachusetts"},
	{Code: "MI", Name: "Michigan"},
	{Code: "MN", Name: "Minnesota"},
	{Code: "MS", Name: "Mississippi"},
	{Code: "MO", Name: "Missouri"},
	{Code: "MT", Name: "Montana"},
	{Code: "NE", Name: "Nebraska"},
	{Code: "NV", Name: "Nevada"},
	{Code: "NH", Name: "New Hampshire"},
	{Code: "NJ", Name: "New Jersey"},
	{Code: "NM", Name: "New Mexico"},
	{Code: "NY", Name: "New York"},
	{Code: "NC", Name: "North Carolina"},
	{Code: "ND", Name: "North Dakota"},
	{Code: "OH", Name: "Ohio"},
	{Code: "OK", Name: "Oklahoma"},
	{Code: "OR", Name: "Oregon"},
	{Code: "PA", Name: "Pennsylvania"},
	{Code: "RI", Name: "Rhode Island"},
	{Code: "SC", Name: "South Carolina"},
	{Code: "SD", Name: "South Dakota"},
	{Code: "TN", Name: "Tennessee"},
	{Code: "TX", Name: "Texas"},
	{Code: "UT", Name: "Utah"},
	{Code: "VT", Name: "Vermont"},
	{Code: "VA", Name: "Virginia"},
	{Code: "WA", Name: "Washington"},
	{Code: "WV", Name: "West Virginia"},
	{Code: "WI", Name: "Wisconsin"},
	{Code: "WY", Name: "Wyoming"},
	{Code: "DC", Name: "District of Columbia"},
	{Code: "PR", Name: "Puerto Rico"},
	{Code: "VI", Name: "Virgin Islands"},
	{Code: "GU", Name: "Guam"},
	{Code: "AS", Name: "American Samoa"},
	{Code: "MP", Name: "Northern Mariana Islands"},
	{Code: "AE", Name: "Armed Forces Europe"},
	{Code: "AA", Name: "Armed Forces Americas"},
	{Code: "AP", Name: "Armed Forces Pacific"},
}

// A starter subset of the NUCC taxonomy code set. Production deployments load
// the full set from the NUCC distribution; these cover local development.
var taxonomies = []reference.Taxonomy{
	{Code: "207Q00000X", Classification: "Family Medicine"},
	{Code: "207R00000X", Classification: "Internal Medicine"},
	{Code: "207RC0000X", Classification: "Internal Medicine", Specialization: "Cardiovascular Disease"},
	{Code: "207RE0101X", Classification: "Internal Medicine", Specialization: "Endocrinology, Diabetes & Metabolism"},
	{Code: "207P00000X", Classification: "Emergency Medicine"},
	{Code: "208000000X", Classification: "Pediatrics"},
	{Code: "208600000X", Classification: "Surgery"},
	{Code: "207X00000X", Classification: "Orthopaedic Surgery"},
	{Code: "2084P0800X", Classification: "Psychiatry & Neurology", Specialization: "Psychiatry"},
	{Code: "2084N0400X", Classification: "Psychiatry & Neurology", Specialization: "Neurology"},
	{Code: "363L00000X", Classification: "Nurse Practitioner"},
	{Code: "363LF0000X", Classification: "Nurse Practitioner", Specialization: "Family"},
	{Code: "363A00000X", Classification: "Physician Assistant"},
	{Code: "163W00000X", Classification: "Registered Nurse"},
	{Code: "1223G0001X", Classification: "Dentist", Specialization: "General Practice"},
	{Code: "152W00000X", Classification: "Optometrist"},
	{Code: "183500000X", Classification: "Pharmacist"},
	{Code: "225100000X", Classification: "Physical Therapist"},
	{Code: "261QP2300X", Classification: "Clinic/Center", Specialization: "Primary Care"},
	{Code: "282N00000X", Classification: "General Acute Care Hospital"},
	{Code: "333600000X", Classification: "Pharmacy"},
	{Code: "251E00000X", Classification: "Home Health"},
}

func SeedStates(ctx context.Context, app application.Application) error {
	repo := persistence.NewReferenceRepository()
	return composables.InTx(ctx, func(txCtx context.Context) error {
		for i := range states {
			if _, err := repo.CreateState(txCtx, &states[i]); err != nil {
				return errors.Wrapf(err, "failed to seed state %s", states[i].Code)
			}
		}
		return nil
	})
}

func SeedTaxonomies(ctx context.Context, app application.Application) error {
	repo := persistence.NewReferenceRepository()
	return composables.InTx(ctx, func(txCtx context.Context) error {
		for i := range taxonomies {
			if _, err := repo.CreateTaxonomy(txCtx, &taxonomies[i]); err != nil {
				return errors.Wrapf(err, "failed to seed taxonomy %s", taxonomies[i].Code)
			}
		}
		return nil
	})
}
