package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/atlashealth/atlas/modules/registry/domain/entities/reference"
	"github.com/atlashealth/atlas/modules/registry/infrastructure/persistence/models"
	"github.com/atlashealth/atlas/pkg/composables"
	"github.com/atlashealth/atlas/pkg/repo"
)

const (
	stateByCodeQuery = `
        SELECT id, code, name, created_at, updated_at FROM states WHERE code = $1`

	cityByNameAndStateQuery = `
        SELECT id, name, state_id, created_at, updated_at
        FROM cities WHERE name = $1 AND state_id = $2`

	taxonomyByCodeQuery = `
        SELECT id, code, classification, specialization, description, created_at, updated_at
        FROM taxonomies WHERE code = $1`
)

type PgReferenceRepository struct{}

func NewReferenceRepository() reference.Repository {
	return &PgReferenceRepository{}
}

func (g *PgReferenceRepository) StateByCode(ctx context.Context, code string) (*reference.State, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var m models.State
	err = tx.QueryRow(ctx, stateByCodeQuery, code).Scan(
		&m.ID, &m.Code, &m.Name, &m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, reference.ErrStateNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get state by code")
	}
	return ToDomainState(&m), nil
}

func (g *PgReferenceRepository) CityByNameAndState(ctx context.Context, name string, stateID uint) (*reference.City, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var m models.City
	err = tx.QueryRow(ctx, cityByNameAndStateQuery, name, int64(stateID)).Scan(
		&m.ID, &m.Name, &m.StateID, &m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, reference.ErrCityNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get city")
	}
	return ToDomainCity(&m), nil
}

func (g *PgReferenceRepository) CreateCity(ctx context.Context, city *reference.City) (*reference.City, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var id int64
	err = tx.QueryRow(
		ctx,
		repo.Insert("cities", []string{"name", "state_id"}, "id"),
		city.Name, int64(city.StateID),
	).Scan(&id)
	if isUniqueViolation(err) {
		return nil, reference.ErrCityExists
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create city")
	}
	return &reference.City{ID: uint(id), Name: city.Name, StateID: city.StateID}, nil
}

func (g *PgReferenceRepository) TaxonomyByCode(ctx context.Context, code string) (*reference.Taxonomy, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var m models.Taxonomy
	err = tx.QueryRow(ctx, taxonomyByCodeQuery, code).Scan(
		&m.ID, &m.Code, &m.Classification, &m.Specialization, &m.Description,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, reference.ErrTaxonomyNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get taxonomy by code")
	}
	return ToDomainRefTaxonomy(&m), nil
}

func (g *PgReferenceRepository) CreateState(ctx context.Context, state *reference.State) (*reference.State, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var id int64
	err = tx.QueryRow(
		ctx,
		repo.Insert("states", []string{"code", "name"}, "id")+
			" ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, updated_at = now()",
		state.Code, state.Name,
	).Scan(&id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create state")
	}
	return &reference.State{ID: uint(id), Code: state.Code, Name: state.Name}, nil
}

func (g *PgReferenceRepository) CreateTaxonomy(ctx context.Context, taxonomy *reference.Taxonomy) (*reference.Taxonomy, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var id int64
	err = tx.QueryRow(
		ctx,
		repo.Insert("taxonomies", []string{"code", "classification", "specialization", "description"}, "id")+
			" ON CONFLICT (code) DO UPDATE SET"+
			" classification = EXCLUDED.classification,"+
			" specialization = EXCLUDED.specialization,"+
			" description = EXCLUDED.description,"+
			" updated_at = now()",
		taxonomy.Code, nullStr(taxonomy.Classification),
		nullStr(taxonomy.Specialization), nullStr(taxonomy.Description),
	).Scan(&id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create taxonomy")
	}
	out := *taxonomy
	out.ID = uint(id)
	return &out, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
