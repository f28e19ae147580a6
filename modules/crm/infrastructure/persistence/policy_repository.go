package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"

	"github.com/atlashealth/atlas/modules/crm/domain/entities/policy"
	"github.com/atlashealth/atlas/modules/crm/infrastructure/persistence/models"
	"github.com/atlashealth/atlas/pkg/composables"
	"github.com/atlashealth/atlas/pkg/repo"
)

const (
	policyFindQuery = `
        SELECT
            p.id,
            p.client_id,
            p.policy_number,
            p.policy_type,
            p.status,
            p.carrier,
            p.premium,
            p.effective_date,
            p.expiration_date,
            p.created_at,
            p.updated_at
        FROM insurance_policies p`

	policyDeleteQuery = `DELETE FROM insurance_policies WHERE id = $1`
)

var policyInsertFields = []string{
	"client_id", "policy_number", "policy_type", "status", "carrier",
	"premium", "effective_date", "expiration_date",
}

type PgPolicyRepository struct{}

func NewPolicyRepository() policy.Repository {
	return &PgPolicyRepository{}
}

func (g *PgPolicyRepository) GetByClient(ctx context.Context, clientID uint) ([]*policy.Policy, error) {
	out, err := g.queryPolicies(ctx, policyFindQuery+" WHERE p.client_id = $1 ORDER BY p.id", int64(clientID))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get policies by client")
	}
	return out, nil
}

func (g *PgPolicyRepository) GetByID(ctx context.Context, id uint) (*policy.Policy, error) {
	found, err := g.queryPolicies(ctx, policyFindQuery+" WHERE p.id = $1", int64(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get policy by id")
	}
	if len(found) == 0 {
		return nil, policy.ErrNotFound
	}
	return found[0], nil
}

func (g *PgPolicyRepository) Create(ctx context.Context, p *policy.Policy) (uint, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var id int64
	err = tx.QueryRow(
		ctx,
		repo.Insert("insurance_policies", policyInsertFields, "id"),
		int64(p.ClientID), p.PolicyNumber, p.PolicyType, string(p.Status),
		nullStr(p.Carrier), p.Premium, p.EffectiveDate, p.ExpirationDate,
	).Scan(&id)
	if isUniqueViolation(err) {
		return 0, policy.ErrNumberExists
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed to create policy")
	}
	return uint(id), nil
}

func (g *PgPolicyRepository) Update(ctx context.Context, p *policy.Policy) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	fields := []string{
		"policy_type", "status", "carrier", "premium",
		"effective_date", "expiration_date", "updated_at",
	}
	_, err = tx.Exec(
		ctx,
		repo.Update("insurance_policies", fields, fmt.Sprintf("id = $%d", len(fields)+1)),
		p.PolicyType, string(p.Status), nullStr(p.Carrier), p.Premium,
		p.EffectiveDate, p.ExpirationDate, time.Now(),
		int64(p.ID),
	)
	if err != nil {
		return errors.Wrap(err, "failed to update policy")
	}
	return nil
}

func (g *PgPolicyRepository) Delete(ctx context.Context, id uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, policyDeleteQuery, int64(id)); err != nil {
		return errors.Wrap(err, "failed to delete policy")
	}
	return nil
}

func (g *PgPolicyRepository) queryPolicies(ctx context.Context, query string, args ...interface{}) ([]*policy.Policy, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*policy.Policy
	for rows.Next() {
		var m models.InsurancePolicy
		if err := rows.Scan(
			&m.ID, &m.ClientID, &m.PolicyNumber, &m.PolicyType, &m.Status,
			&m.Carrier, &m.Premium, &m.EffectiveDate, &m.ExpirationDate,
			&m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, ToDomainPolicy(&m))
	}
	return out, rows.Err()
}
