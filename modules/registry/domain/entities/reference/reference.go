package reference

import (
	"context"

	"github.com/go-faster/errors"
)

var (
	ErrStateNotFound    = errors.New("state not found")
	ErrCityNotFound     = errors.New("city not found")
	ErrTaxonomyNotFound = errors.New("taxonomy not found")
	// ErrCityExists signals a uniqueness collision on (name, state): another
	// writer created the same city concurrently. Callers retry the lookup.
	ErrCityExists = errors.New("city already exists")
)

// State and Taxonomy are closed reference sets seeded outside the ingest
// pipeline. Cities are created lazily, scoped to a state.
type State struct {
	ID   uint
	Code string
	Name string
}

type City struct {
	ID      uint
	Name    string
	StateID uint
}

type Taxonomy struct {
	ID             uint
	Code           string
	Classification string
	Specialization string
	Description    string
}

type Repository interface {
	StateByCode(ctx context.Context, code string) (*State, error)
	CityByNameAndState(ctx context.Context, name string, stateID uint) (*City, error)
	CreateCity(ctx context.Context, city *City) (*City, error)
	TaxonomyByCode(ctx context.Context, code string) (*Taxonomy, error)

	CreateState(ctx context.Context, state *State) (*State, error)
	CreateTaxonomy(ctx context.Context, taxonomy *Taxonomy) (*Taxonomy, error)
}
