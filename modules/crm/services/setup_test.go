package services

import (
	"context"
	"io"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/atlashealth/atlas/modules/crm/domain/entities/claim"
	"github.com/atlashealth/atlas/modules/crm/domain/entities/commission"
	"github.com/atlashealth/atlas/modules/crm/domain/entities/policy"
	"github.com/atlashealth/atlas/pkg/composables"
	"github.com/atlashealth/atlas/pkg/eventbus"
)

type stubTx struct{}

func (stubTx) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (stubTx) Query(context.Context, string, ...interface{}) (pgx.Rows, error) { return nil, nil }
func (stubTx) QueryRow(context.Context, string, ...interface{}) pgx.Row        { return nil }

func testCtx() context.Context {
	return composables.WithTx(context.Background(), stubTx{})
}

func testPublisher() eventbus.EventBus {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return eventbus.NewEventPublisher(logger)
}

type fakePolicyRepository struct {
	byID   map[uint]*policy.Policy
	nextID uint
}

func newFakePolicyRepository() *fakePolicyRepository {
	return &fakePolicyRepository{byID: map[uint]*policy.Policy{}, nextID: 1}
}

func (f *fakePolicyRepository) GetByClient(_ context.Context, clientID uint) ([]*policy.Policy, error) {
	var out []*policy.Policy
	for _, p := range f.byID {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePolicyRepository) GetByID(_ context.Context, id uint) (*policy.Policy, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, policy.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakePolicyRepository) Create(_ context.Context, p *policy.Policy) (uint, error) {
	for _, existing := range f.byID {
		if existing.PolicyNumber == p.PolicyNumber {
			return 0, policy.ErrNumberExists
		}
	}
	stored := *p
	stored.ID = f.nextID
	f.nextID++
	f.byID[stored.ID] = &stored
	return stored.ID, nil
}

func (f *fakePolicyRepository) Update(_ context.Context, p *policy.Policy) error {
	if _, ok := f.byID[p.ID]; !ok {
		return policy.ErrNotFound
	}
	stored := *p
	f.byID[p.ID] = &stored
	return nil
}

func (f *fakePolicyRepository) Delete(_ context.Context, id uint) error {
	if _, ok := f.byID[id]; !ok {
		return policy.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeClaimRepository struct {
	byID   map[uint]*claim.Claim
	nextID uint
}

func newFakeClaimRepository() *fakeClaimRepository {
	return &fakeClaimRepository{byID: map[uint]*claim.Claim{}, nextID: 1}
}

func (f *fakeClaimRepository) GetByPolicy(_ context.Context, policyID uint) ([]*claim.Claim, error) {
	var out []*claim.Claim
	for _, c := range f.byID {
		if c.PolicyID == policyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeClaimRepository) GetByID(_ context.Context, id uint) (*claim.Claim, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, claim.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeClaimRepository) Create(_ context.Context, c *claim.Claim) (uint, error) {
	for _, existing := range f.byID {
		if existing.ClaimNumber == c.ClaimNumber {
			return 0, claim.ErrNumberExists
		}
	}
	stored := *c
	stored.ID = f.nextID
	f.nextID++
	f.byID[stored.ID] = &stored
	return stored.ID, nil
}

func (f *fakeClaimRepository) Update(_ context.Context, c *claim.Claim) error {
	if _, ok := f.byID[c.ID]; !ok {
		return claim.ErrNotFound
	}
	stored := *c
	f.byID[c.ID] = &stored
	return nil
}

type fakeCommissionRepository struct {
	byID   map[uint]*commission.Commission
	nextID uint
}

func newFakeCommissionRepository() *fakeCommissionRepository {
	return &fakeCommissionRepository{byID: map[uint]*commission.Commission{}, nextID: 1}
}

func (f *fakeCommissionRepository) GetByPolicy(_ context.Context, policyID uint) ([]*commission.Commission, error) {
	var out []*commission.Commission
	for _, c := range f.byID {
		if c.PolicyID == policyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCommissionRepository) GetByID(_ context.Context, id uint) (*commission.Commission, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, commission.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCommissionRepository) Create(_ context.Context, c *commission.Commission) (uint, error) {
	stored := *c
	stored.ID = f.nextID
	f.nextID++
	f.byID[stored.ID] = &stored
	return stored.ID, nil
}

func (f *fakeCommissionRepository) MarkPaid(_ context.Context, id uint, paidOn time.Time) error {
	c, ok := f.byID[id]
	if !ok {
		return commission.ErrNotFound
	}
	c.PaidOn = &paidOn
	return nil
}
