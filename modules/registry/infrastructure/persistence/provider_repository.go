package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/atlashealth/atlas/modules/registry/domain/aggregates/provider"
	"github.com/atlashealth/atlas/modules/registry/infrastructure/persistence/models"
	"github.com/atlashealth/atlas/pkg/composables"
	"github.com/atlashealth/atlas/pkg/repo"
)

const (
	providerFindQuery = `
        SELECT
            p.id,
            p.npi,
            p.entity_type,
            p.replacement_npi,
            p.first_name,
            p.last_name,
            p.middle_name,
            p.name_prefix,
            p.name_suffix,
            p.credential,
            p.gender,
            p.organization_name,
            p.organization_subpart,
            p.ein,
            p.sole_proprietor,
            p.enumeration_date,
            p.last_update_date,
            p.deactivation_date,
            p.deactivation_reason,
            p.reactivation_date,
            p.created_at,
            p.updated_at
        FROM providers p`

	providerCountQuery = `SELECT COUNT(p.id) FROM providers p`

	providerSearchOrder = `
        ORDER BY ts_rank(p.search_vector, plainto_tsquery('english', $1)) DESC, p.id`

	addressesQuery = `
        SELECT id, provider_id, address_purpose, address_type, address_1, address_2,
               city_id, city_name, state_id, postal_code, country_code, telephone, fax
        FROM addresses WHERE provider_id = $1 ORDER BY address_purpose`

	taxonomiesQuery = `
        SELECT pt.id, pt.provider_id, pt.taxonomy_id, t.code, pt.license_number,
               pt.license_state_id, pt.is_primary
        FROM provider_taxonomies pt
        JOIN taxonomies t ON t.id = pt.taxonomy_id
        WHERE pt.provider_id = $1 ORDER BY pt.id`

	identifiersQuery = `
        SELECT id, provider_id, identifier_type, identifier_value, state_id, issuer
        FROM identifiers WHERE provider_id = $1 ORDER BY id`

	otherNamesQuery = `
        SELECT id, provider_id, name_type, first_name, last_name, middle_name,
               name_prefix, name_suffix, credential, organization_name
        FROM other_names WHERE provider_id = $1 ORDER BY id`

	endpointsQuery = `
        SELECT id, provider_id, endpoint_url, endpoint_type, endpoint_description,
               content_type, use_type, affiliation
        FROM endpoints WHERE provider_id = $1 ORDER BY id`

	officialQuery = `
        SELECT id, provider_id, first_name, last_name, middle_name, name_prefix,
               name_suffix, credential, title_or_position, telephone
        FROM authorized_officials WHERE provider_id = $1`

	addressUpsertQuery = `
        INSERT INTO addresses (
            provider_id, address_purpose, address_type, address_1, address_2,
            city_id, city_name, state_id, postal_code, country_code, telephone, fax
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        ON CONFLICT (provider_id, address_purpose) DO UPDATE SET
            address_type = EXCLUDED.address_type,
            address_1 = EXCLUDED.address_1,
            address_2 = EXCLUDED.address_2,
            city_id = EXCLUDED.city_id,
            city_name = EXCLUDED.city_name,
            state_id = EXCLUDED.state_id,
            postal_code = EXCLUDED.postal_code,
            country_code = EXCLUDED.country_code,
            telephone = EXCLUDED.telephone,
            fax = EXCLUDED.fax,
            updated_at = now()`

	officialUpsertQuery = `
        INSERT INTO authorized_officials (
            provider_id, first_name, last_name, middle_name, name_prefix,
            name_suffix, credential, title_or_position, telephone
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (provider_id) DO UPDATE SET
            first_name = EXCLUDED.first_name,
            last_name = EXCLUDED.last_name,
            middle_name = EXCLUDED.middle_name,
            name_prefix = EXCLUDED.name_prefix,
            name_suffix = EXCLUDED.name_suffix,
            credential = EXCLUDED.credential,
            title_or_position = EXCLUDED.title_or_position,
            telephone = EXCLUDED.telephone,
            updated_at = now()`

	taxonomyInsertQuery = `
        INSERT INTO provider_taxonomies (provider_id, taxonomy_id, license_number, license_state_id, is_primary)
        VALUES ($1, $2, $3, $4, $5)`

	taxonomyUpdateQuery = `
        UPDATE provider_taxonomies
        SET license_number = $1, license_state_id = $2, is_primary = $3, updated_at = now()
        WHERE id = $4`

	taxonomyDeleteQuery = `DELETE FROM provider_taxonomies WHERE id = $1`

	identifierInsertQuery = `
        INSERT INTO identifiers (provider_id, identifier_type, identifier_value, state_id, issuer)
        VALUES ($1, $2, $3, $4, $5)`

	identifierUpdateQuery = `
        UPDATE identifiers SET state_id = $1, issuer = $2, updated_at = now() WHERE id = $3`

	identifierDeleteQuery = `DELETE FROM identifiers WHERE id = $1`

	otherNameInsertQuery = `
        INSERT INTO other_names (
            provider_id, name_type, first_name, last_name, middle_name,
            name_prefix, name_suffix, credential, organization_name
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	otherNameUpdateQuery = `
        UPDATE other_names
        SET name_type = $1, first_name = $2, last_name = $3, middle_name = $4,
            name_prefix = $5, name_suffix = $6, credential = $7,
            organization_name = $8, updated_at = now()
        WHERE id = $9`

	otherNameDeleteQuery = `DELETE FROM other_names WHERE id = $1`

	endpointInsertQuery = `
        INSERT INTO endpoints (
            provider_id, endpoint_url, endpoint_type, endpoint_description,
            content_type, use_type, affiliation
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	endpointUpdateQuery = `
        UPDATE endpoints
        SET endpoint_description = $1, content_type = $2, use_type = $3,
            affiliation = $4, updated_at = now()
        WHERE id = $5`

	endpointDeleteQuery = `DELETE FROM endpoints WHERE id = $1`
)

var providerInsertFields = []string{
	"npi", "entity_type", "replacement_npi", "first_name", "last_name",
	"middle_name", "name_prefix", "name_suffix", "credential", "gender",
	"organization_name", "organization_subpart", "ein", "sole_proprietor",
	"enumeration_date", "last_update_date", "deactivation_date",
	"deactivation_reason", "reactivation_date",
}

type PgProviderRepository struct{}

func NewProviderRepository() provider.Repository {
	return &PgProviderRepository{}
}

func (g *PgProviderRepository) buildFilters(params *provider.FindParams) ([]string, []interface{}) {
	var where []string
	var args []interface{}

	if params.Search != "" {
		idx := len(args) + 1
		where = append(where, fmt.Sprintf(
			"(p.first_name ILIKE $%d OR p.last_name ILIKE $%d OR p.organization_name ILIKE $%d OR p.npi = $%d)",
			idx, idx, idx, idx+1,
		))
		args = append(args, "%"+params.Search+"%", params.Search)
	}
	if params.EntityType != nil {
		where = append(where, fmt.Sprintf("p.entity_type = $%d", len(args)+1))
		args = append(args, int16(*params.EntityType))
	}
	if params.ActiveOnly {
		where = append(where, "(p.deactivation_date IS NULL OR p.reactivation_date > p.deactivation_date)")
	}
	return where, args
}

func (g *PgProviderRepository) GetPaginated(ctx context.Context, params *provider.FindParams) ([]*provider.Provider, error) {
	where, args := g.buildFilters(params)
	query := repo.Join(
		providerFindQuery,
		repo.JoinWhere(where...),
		"ORDER BY p.id",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	out, err := g.queryProviders(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get paginated providers")
	}
	return out, nil
}

func (g *PgProviderRepository) Count(ctx context.Context, params *provider.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args := g.buildFilters(params)
	query := repo.Join(providerCountQuery, repo.JoinWhere(where...))

	var count int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count providers")
	}
	return count, nil
}

func (g *PgProviderRepository) Search(ctx context.Context, query string, limit int) ([]*provider.Provider, error) {
	q := repo.Join(
		providerFindQuery,
		"WHERE p.search_vector @@ plainto_tsquery('english', $1)",
		providerSearchOrder,
		repo.FormatLimitOffset(limit, 0),
	)
	out, err := g.queryProviders(ctx, q, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search providers")
	}
	return out, nil
}

func (g *PgProviderRepository) GetByNPI(ctx context.Context, npi string) (*provider.Provider, error) {
	found, err := g.queryProviders(ctx, providerFindQuery+" WHERE p.npi = $1", npi)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get provider by NPI")
	}
	if len(found) == 0 {
		return nil, provider.ErrNotFound
	}
	p := found[0]
	if err := g.loadChildren(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (g *PgProviderRepository) Create(ctx context.Context, p *provider.Provider) (uint, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	m := ToDBProvider(p)
	var id int64
	err = tx.QueryRow(
		ctx,
		repo.Insert("providers", providerInsertFields, "id"),
		m.NPI, m.EntityType, m.ReplacementNPI, m.FirstName, m.LastName,
		m.MiddleName, m.NamePrefix, m.NameSuffix, m.Credential, m.Gender,
		m.OrganizationName, m.OrganizationSubpart, m.EIN, m.SoleProprietor,
		m.EnumerationDate, m.LastUpdateDate, m.DeactivationDate,
		m.DeactivationReason, m.ReactivationDate,
	).Scan(&id)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create provider")
	}
	return uint(id), nil
}

func (g *PgProviderRepository) Update(ctx context.Context, p *provider.Provider) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	m := ToDBProvider(p)
	fields := append(append([]string{}, providerInsertFields[1:]...), "updated_at")
	query := repo.Update("providers", fields, fmt.Sprintf("id = $%d", len(fields)+1))
	_, err = tx.Exec(
		ctx, query,
		m.EntityType, m.ReplacementNPI, m.FirstName, m.LastName,
		m.MiddleName, m.NamePrefix, m.NameSuffix, m.Credential, m.Gender,
		m.OrganizationName, m.OrganizationSubpart, m.EIN, m.SoleProprietor,
		m.EnumerationDate, m.LastUpdateDate, m.DeactivationDate,
		m.DeactivationReason, m.ReactivationDate, time.Now(),
		m.ID,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update provider")
	}
	return nil
}

func (g *PgProviderRepository) UpsertAddress(ctx context.Context, providerID uint, a *provider.Address) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		ctx, addressUpsertQuery,
		int64(providerID), string(a.Purpose), nullStr(string(a.Type)),
		nullStr(a.Address1), nullStr(a.Address2), nullID(a.CityID),
		nullStr(a.CityName), nullID(a.StateID), nullStr(a.PostalCode),
		nullStr(a.CountryCode), nullStr(a.Telephone), nullStr(a.Fax),
	)
	if err != nil {
		return errors.Wrap(err, "failed to upsert address")
	}
	return nil
}

func (g *PgProviderRepository) UpsertAuthorizedOfficial(ctx context.Context, providerID uint, o *provider.AuthorizedOfficial) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		ctx, officialUpsertQuery,
		int64(providerID), o.FirstName, o.LastName, nullStr(o.MiddleName),
		nullStr(o.NamePrefix), nullStr(o.NameSuffix), nullStr(o.Credential),
		nullStr(o.TitleOrPosition), nullStr(o.Telephone),
	)
	if err != nil {
		return errors.Wrap(err, "failed to upsert authorized official")
	}
	return nil
}

func (g *PgProviderRepository) InsertTaxonomy(ctx context.Context, providerID uint, t *provider.Taxonomy) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		ctx, taxonomyInsertQuery,
		int64(providerID), int64(t.TaxonomyID), nullStr(t.LicenseNumber),
		nullID(t.LicenseStateID), t.IsPrimary,
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert provider taxonomy")
	}
	return nil
}

func (g *PgProviderRepository) UpdateTaxonomy(ctx context.Context, t *provider.Taxonomy) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		ctx, taxonomyUpdateQuery,
		nullStr(t.LicenseNumber), nullID(t.LicenseStateID), t.IsPrimary, int64(t.ID),
	)
	if err != nil {
		return errors.Wrap(err, "failed to update provider taxonomy")
	}
	return nil
}

func (g *PgProviderRepository) DeleteTaxonomy(ctx context.Context, id uint) error {
	return g.deleteByID(ctx, taxonomyDeleteQuery, id, "failed to delete provider taxonomy")
}

func (g *PgProviderRepository) InsertIdentifier(ctx context.Context, providerID uint, i *provider.Identifier) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		ctx, identifierInsertQuery,
		int64(providerID), i.Type, i.Value, nullID(i.StateID), nullStr(i.Issuer),
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert identifier")
	}
	return nil
}

func (g *PgProviderRepository) UpdateIdentifier(ctx context.Context, i *provider.Identifier) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, identifierUpdateQuery, nullID(i.StateID), nullStr(i.Issuer), int64(i.ID))
	if err != nil {
		return errors.Wrap(err, "failed to update identifier")
	}
	return nil
}

func (g *PgProviderRepository) DeleteIdentifier(ctx context.Context, id uint) error {
	return g.deleteByID(ctx, identifierDeleteQuery, id, "failed to delete identifier")
}

func (g *PgProviderRepository) InsertOtherName(ctx context.Context, providerID uint, n *provider.OtherName) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		ctx, otherNameInsertQuery,
		int64(providerID), nullStr(n.NameType), nullStr(n.FirstName),
		nullStr(n.LastName), nullStr(n.MiddleName), nullStr(n.NamePrefix),
		nullStr(n.NameSuffix), nullStr(n.Credential), nullStr(n.OrganizationName),
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert other name")
	}
	return nil
}

func (g *PgProviderRepository) UpdateOtherName(ctx context.Context, n *provider.OtherName) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		ctx, otherNameUpdateQuery,
		nullStr(n.NameType), nullStr(n.FirstName), nullStr(n.LastName),
		nullStr(n.MiddleName), nullStr(n.NamePrefix), nullStr(n.NameSuffix),
		nullStr(n.Credential), nullStr(n.OrganizationName), int64(n.ID),
	)
	if err != nil {
		return errors.Wrap(err, "failed to update other name")
	}
	return nil
}

func (g *PgProviderRepository) DeleteOtherName(ctx context.Context, id uint) error {
	return g.deleteByID(ctx, otherNameDeleteQuery, id, "failed to delete other name")
}

func (g *PgProviderRepository) InsertEndpoint(ctx context.Context, providerID uint, e *provider.Endpoint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		ctx, endpointInsertQuery,
		int64(providerID), e.URL, nullStr(e.Type), nullStr(e.Description),
		nullStr(e.ContentType), nullStr(e.UseType), e.Affiliation,
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert endpoint")
	}
	return nil
}

func (g *PgProviderRepository) UpdateEndpoint(ctx context.Context, e *provider.Endpoint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		ctx, endpointUpdateQuery,
		nullStr(e.Description), nullStr(e.ContentType), nullStr(e.UseType),
		e.Affiliation, int64(e.ID),
	)
	if err != nil {
		return errors.Wrap(err, "failed to update endpoint")
	}
	return nil
}

func (g *PgProviderRepository) DeleteEndpoint(ctx context.Context, id uint) error {
	return g.deleteByID(ctx, endpointDeleteQuery, id, "failed to delete endpoint")
}

func (g *PgProviderRepository) deleteByID(ctx context.Context, query string, id uint, msg string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, query, int64(id)); err != nil {
		return errors.Wrap(err, msg)
	}
	return nil
}

func (g *PgProviderRepository) queryProviders(ctx context.Context, query string, args ...interface{}) ([]*provider.Provider, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*provider.Provider
	for rows.Next() {
		var m models.Provider
		if err := rows.Scan(
			&m.ID, &m.NPI, &m.EntityType, &m.ReplacementNPI, &m.FirstName,
			&m.LastName, &m.MiddleName, &m.NamePrefix, &m.NameSuffix,
			&m.Credential, &m.Gender, &m.OrganizationName, &m.OrganizationSubpart,
			&m.EIN, &m.SoleProprietor, &m.EnumerationDate, &m.LastUpdateDate,
			&m.DeactivationDate, &m.DeactivationReason, &m.ReactivationDate,
			&m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, ToDomainProvider(&m))
	}
	return out, rows.Err()
}

func (g *PgProviderRepository) loadChildren(ctx context.Context, p *provider.Provider) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	rows, err := tx.Query(ctx, addressesQuery, int64(p.ID))
	if err != nil {
		return errors.Wrap(err, "failed to load addresses")
	}
	for rows.Next() {
		var m models.Address
		if err := rows.Scan(
			&m.ID, &m.ProviderID, &m.AddressPurpose, &m.AddressType, &m.Address1,
			&m.Address2, &m.CityID, &m.CityName, &m.StateID, &m.PostalCode,
			&m.CountryCode, &m.Telephone, &m.Fax,
		); err != nil {
			rows.Close()
			return err
		}
		p.Addresses = append(p.Addresses, ToDomainAddress(&m))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = tx.Query(ctx, taxonomiesQuery, int64(p.ID))
	if err != nil {
		return errors.Wrap(err, "failed to load taxonomies")
	}
	for rows.Next() {
		var m models.ProviderTaxonomy
		if err := rows.Scan(
			&m.ID, &m.ProviderID, &m.TaxonomyID, &m.Code, &m.LicenseNumber,
			&m.LicenseStateID, &m.IsPrimary,
		); err != nil {
			rows.Close()
			return err
		}
		p.Taxonomies = append(p.Taxonomies, ToDomainTaxonomy(&m))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = tx.Query(ctx, identifiersQuery, int64(p.ID))
	if err != nil {
		return errors.Wrap(err, "failed to load identifiers")
	}
	for rows.Next() {
		var m models.Identifier
		if err := rows.Scan(
			&m.ID, &m.ProviderID, &m.IdentifierType, &m.IdentifierValue,
			&m.StateID, &m.Issuer,
		); err != nil {
			rows.Close()
			return err
		}
		p.Identifiers = append(p.Identifiers, ToDomainIdentifier(&m))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = tx.Query(ctx, otherNamesQuery, int64(p.ID))
	if err != nil {
		return errors.Wrap(err, "failed to load other names")
	}
	for rows.Next() {
		var m models.OtherName
		if err := rows.Scan(
			&m.ID, &m.ProviderID, &m.NameType, &m.FirstName, &m.LastName,
			&m.MiddleName, &m.NamePrefix, &m.NameSuffix, &m.Credential,
			&m.OrganizationName,
		); err != nil {
			rows.Close()
			return err
		}
		p.OtherNames = append(p.OtherNames, ToDomainOtherName(&m))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = tx.Query(ctx, endpointsQuery, int64(p.ID))
	if err != nil {
		return errors.Wrap(err, "failed to load endpoints")
	}
	for rows.Next() {
		var m models.Endpoint
		if err := rows.Scan(
			&m.ID, &m.ProviderID, &m.EndpointURL, &m.EndpointType,
			&m.EndpointDescription, &m.ContentType, &m.UseType, &m.Affiliation,
		); err != nil {
			rows.Close()
			return err
		}
		p.Endpoints = append(p.Endpoints, ToDomainEndpoint(&m))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	var o models.AuthorizedOfficial
	err = tx.QueryRow(ctx, officialQuery, int64(p.ID)).Scan(
		&o.ID, &o.ProviderID, &o.FirstName, &o.LastName, &o.MiddleName,
		&o.NamePrefix, &o.NameSuffix, &o.Credential, &o.TitleOrPosition,
		&o.Telephone,
	)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return errors.Wrap(err, "failed to load authorized official")
	default:
		p.AuthorizedOfficial = ToDomainAuthorizedOfficial(&o)
	}

	return nil
}
