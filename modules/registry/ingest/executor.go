package ingest

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/atlashealth/atlas/modules/registry/domain/aggregates/provider"
)

// Executor applies a plan through the provider repository. The caller is
// responsible for wrapping the call in a transaction; every statement here
// runs on whatever transaction the context carries, so a failed row rolls
// back as a unit.
type Executor struct {
	providers provider.Repository
}

func NewExecutor(providers provider.Repository) *Executor {
	return &Executor{providers: providers}
}

func (e *Executor) Apply(ctx context.Context, plan *Plan) error {
	if err := e.apply(ctx, plan); err != nil {
		return asConstraintViolation(err)
	}
	return nil
}

func (e *Executor) apply(ctx context.Context, plan *Plan) error {
	if plan.Create {
		id, err := e.providers.Create(ctx, plan.Provider)
		if err != nil {
			return errors.Wrap(err, "failed to create provider")
		}
		plan.Provider.ID = id
	} else if plan.ProviderChanged {
		if err := e.providers.Update(ctx, plan.Provider); err != nil {
			return errors.Wrap(err, "failed to update provider")
		}
	}
	providerID := plan.Provider.ID

	// Deletes run before inserts within each collection so a row that moved
	// between natural keys never collides with its old self.
	for _, id := range plan.TaxonomyDeletes {
		if err := e.providers.DeleteTaxonomy(ctx, id); err != nil {
			return errors.Wrap(err, "failed to delete taxonomy")
		}
	}
	for _, t := range plan.TaxonomyUpdates {
		if err := e.providers.UpdateTaxonomy(ctx, t); err != nil {
			return errors.Wrap(err, "failed to update taxonomy")
		}
	}
	for _, t := range plan.TaxonomyInserts {
		if err := e.providers.InsertTaxonomy(ctx, providerID, t); err != nil {
			return errors.Wrap(err, "failed to insert taxonomy")
		}
	}

	for _, id := range plan.IdentifierDeletes {
		if err := e.providers.DeleteIdentifier(ctx, id); err != nil {
			return errors.Wrap(err, "failed to delete identifier")
		}
	}
	for _, i := range plan.IdentifierUpdates {
		if err := e.providers.UpdateIdentifier(ctx, i); err != nil {
			return errors.Wrap(err, "failed to update identifier")
		}
	}
	for _, i := range plan.IdentifierInserts {
		if err := e.providers.InsertIdentifier(ctx, providerID, i); err != nil {
			return errors.Wrap(err, "failed to insert identifier")
		}
	}

	for _, id := range plan.OtherNameDeletes {
		if err := e.providers.DeleteOtherName(ctx, id); err != nil {
			return errors.Wrap(err, "failed to delete other name")
		}
	}
	for _, n := range plan.OtherNameUpdates {
		if err := e.providers.UpdateOtherName(ctx, n); err != nil {
			return errors.Wrap(err, "failed to update other name")
		}
	}
	for _, n := range plan.OtherNameInserts {
		if err := e.providers.InsertOtherName(ctx, providerID, n); err != nil {
			return errors.Wrap(err, "failed to insert other name")
		}
	}

	for _, id := range plan.EndpointDeletes {
		if err := e.providers.DeleteEndpoint(ctx, id); err != nil {
			return errors.Wrap(err, "failed to delete endpoint")
		}
	}
	for _, ep := range plan.EndpointUpdates {
		if err := e.providers.UpdateEndpoint(ctx, ep); err != nil {
			return errors.Wrap(err, "failed to update endpoint")
		}
	}
	for _, ep := range plan.EndpointInserts {
		if err := e.providers.InsertEndpoint(ctx, providerID, ep); err != nil {
			return errors.Wrap(err, "failed to insert endpoint")
		}
	}

	for _, a := range plan.Addresses {
		if err := e.providers.UpsertAddress(ctx, providerID, a); err != nil {
			return errors.Wrap(err, "failed to upsert address")
		}
	}
	if plan.Official != nil {
		if err := e.providers.UpsertAuthorizedOfficial(ctx, providerID, plan.Official); err != nil {
			return errors.Wrap(err, "failed to upsert authorized official")
		}
	}

	return nil
}

// asConstraintViolation translates integrity violations (class 23) into the
// pipeline's typed error so the run report can classify the failure.
func asConstraintViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23") {
		detail := pgErr.Detail
		if detail == "" {
			detail = pgErr.Message
		}
		return &ConstraintViolationError{Detail: detail, Err: err}
	}
	return err
}
