package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"

	"github.com/atlashealth/atlas/modules/crm/domain/entities/claim"
	"github.com/atlashealth/atlas/modules/crm/infrastructure/persistence/models"
	"github.com/atlashealth/atlas/pkg/composables"
	"github.com/atlashealth/atlas/pkg/repo"
)

const claimFindQuery = `
        SELECT
            c.id,
            c.insurance_policy_id,
            c.claim_number,
            c.status,
            c.amount_claimed,
            c.amount_approved,
            c.filed_on,
            c.resolved_on,
            c.description,
            c.created_at,
            c.updated_at
        FROM claims c`

var claimInsertFields = []string{
	"insurance_policy_id", "claim_number", "status", "amount_claimed",
	"amount_approved", "filed_on", "resolved_on", "description",
}

type PgClaimRepository struct{}

func NewClaimRepository() claim.Repository {
	return &PgClaimRepository{}
}

func (g *PgClaimRepository) GetByPolicy(ctx context.Context, policyID uint) ([]*claim.Claim, error) {
	out, err := g.queryClaims(ctx, claimFindQuery+" WHERE c.insurance_policy_id = $1 ORDER BY c.id", int64(policyID))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get claims by policy")
	}
	return out, nil
}

func (g *PgClaimRepository) GetByID(ctx context.Context, id uint) (*claim.Claim, error) {
	found, err := g.queryClaims(ctx, claimFindQuery+" WHERE c.id = $1", int64(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get claim by id")
	}
	if len(found) == 0 {
		return nil, claim.ErrNotFound
	}
	return found[0], nil
}

func (g *PgClaimRepository) Create(ctx context.Context, c *claim.Claim) (uint, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var id int64
	err = tx.QueryRow(
		ctx,
		repo.Insert("claims", claimInsertFields, "id"),
		int64(c.PolicyID), c.ClaimNumber, string(c.Status), c.AmountClaimed,
		nullDecimal(c.AmountApproved), c.FiledOn, c.ResolvedOn, nullStr(c.Description),
	).Scan(&id)
	if isUniqueViolation(err) {
		return 0, claim.ErrNumberExists
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed to create claim")
	}
	return uint(id), nil
}

func (g *PgClaimRepository) Update(ctx context.Context, c *claim.Claim) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	fields := []string{
		"status", "amount_claimed", "amount_approved", "filed_on",
		"resolved_on", "description", "updated_at",
	}
	_, err = tx.Exec(
		ctx,
		repo.Update("claims", fields, fmt.Sprintf("id = $%d", len(fields)+1)),
		string(c.Status), c.AmountClaimed, nullDecimal(c.AmountApproved),
		c.FiledOn, c.ResolvedOn, nullStr(c.Description), time.Now(),
		int64(c.ID),
	)
	if err != nil {
		return errors.Wrap(err, "failed to update claim")
	}
	return nil
}

func (g *PgClaimRepository) queryClaims(ctx context.Context, query string, args ...interface{}) ([]*claim.Claim, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*claim.Claim
	for rows.Next() {
		var m models.Claim
		if err := rows.Scan(
			&m.ID, &m.InsurancePolicyID, &m.ClaimNumber, &m.Status,
			&m.AmountClaimed, &m.AmountApproved, &m.FiledOn, &m.ResolvedOn,
			&m.Description, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, ToDomainClaim(&m))
	}
	return out, rows.Err()
}
