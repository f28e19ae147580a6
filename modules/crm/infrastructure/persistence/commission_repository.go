package persistence

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/atlashealth/atlas/modules/crm/domain/entities/commission"
	"github.com/atlashealth/atlas/modules/crm/infrastructure/persistence/models"
	"github.com/atlashealth/atlas/pkg/composables"
	"github.com/atlashealth/atlas/pkg/repo"
)

const (
	commissionFindQuery = `
        SELECT
            c.id,
            c.insurance_policy_id,
            c.agent_name,
            c.amount,
            c.rate,
            c.paid_on,
            c.created_at,
            c.updated_at
        FROM commissions c`

	commissionMarkPaidQuery = `
        UPDATE commissions SET paid_on = $1, updated_at = now() WHERE id = $2`
)

var commissionInsertFields = []string{
	"insurance_policy_id", "agent_name", "amount", "rate", "paid_on",
}

type PgCommissionRepository struct{}

func NewCommissionRepository() commission.Repository {
	return &PgCommissionRepository{}
}

func (g *PgCommissionRepository) GetByPolicy(ctx context.Context, policyID uint) ([]*commission.Commission, error) {
	out, err := g.queryCommissions(ctx, commissionFindQuery+" WHERE c.insurance_policy_id = $1 ORDER BY c.id", int64(policyID))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get commissions by policy")
	}
	return out, nil
}

func (g *PgCommissionRepository) GetByID(ctx context.Context, id uint) (*commission.Commission, error) {
	found, err := g.queryCommissions(ctx, commissionFindQuery+" WHERE c.id = $1", int64(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get commission by id")
	}
	if len(found) == 0 {
		return nil, commission.ErrNotFound
	}
	return found[0], nil
}

func (g *PgCommissionRepository) Create(ctx context.Context, c *commission.Commission) (uint, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var id int64
	err = tx.QueryRow(
		ctx,
		repo.Insert("commissions", commissionInsertFields, "id"),
		int64(c.PolicyID), c.AgentName, c.Amount, nullDecimal(c.Rate), c.PaidOn,
	).Scan(&id)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create commission")
	}
	return uint(id), nil
}

func (g *PgCommissionRepository) MarkPaid(ctx context.Context, id uint, paidOn time.Time) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, commissionMarkPaidQuery, paidOn, int64(id))
	if err != nil {
		return errors.Wrap(err, "failed to mark commission paid")
	}
	if tag.RowsAffected() == 0 {
		return commission.ErrNotFound
	}
	return nil
}

func (g *PgCommissionRepository) queryCommissions(ctx context.Context, query string, args ...interface{}) ([]*commission.Commission, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*commission.Commission
	for rows.Next() {
		var m models.Commission
		if err := rows.Scan(
			&m.ID, &m.InsurancePolicyID, &m.AgentName, &m.Amount, &m.Rate,
			&m.PaidOn, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, ToDomainCommission(&m))
	}
	return out, rows.Err()
}
