package provider

import (
	"context"

	"github.com/go-faster/errors"
)

var ErrNotFound = errors.New("provider not found")

type FindParams struct {
	Search     string
	EntityType *EntityType
	ActiveOnly bool
	Limit      int
	Offset     int
}

// Repository persists providers and their child collections. Child rows are
// manipulated individually so the ingest executor can apply a reconciliation
// plan as a minimal set of statements inside one transaction.
type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]*Provider, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	// GetByNPI loads the provider and all child collections.
	GetByNPI(ctx context.Context, npi string) (*Provider, error)
	// Search runs a full-text query against the provider search vector.
	Search(ctx context.Context, query string, limit int) ([]*Provider, error)

	// Create inserts the provider row only and returns its id.
	Create(ctx context.Context, p *Provider) (uint, error)
	// Update overwrites the provider's scalar columns.
	Update(ctx context.Context, p *Provider) error

	UpsertAddress(ctx context.Context, providerID uint, a *Address) error
	UpsertAuthorizedOfficial(ctx context.Context, providerID uint, o *AuthorizedOfficial) error

	InsertTaxonomy(ctx context.Context, providerID uint, t *Taxonomy) error
	UpdateTaxonomy(ctx context.Context, t *Taxonomy) error
	DeleteTaxonomy(ctx context.Context, id uint) error

	InsertIdentifier(ctx context.Context, providerID uint, i *Identifier) error
	UpdateIdentifier(ctx context.Context, i *Identifier) error
	DeleteIdentifier(ctx context.Context, id uint) error

	InsertOtherName(ctx context.Context, providerID uint, n *OtherName) error
	UpdateOtherName(ctx context.Context, n *OtherName) error
	DeleteOtherName(ctx context.Context, id uint) error

	InsertEndpoint(ctx context.Context, providerID uint, e *Endpoint) error
	UpdateEndpoint(ctx context.Context, e *Endpoint) error
	DeleteEndpoint(ctx context.Context, id uint) error
}
