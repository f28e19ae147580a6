package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/atlashealth/atlas/modules/crm/domain/entities/policy"
)

func seedPolicy(t *testing.T, repo *fakePolicyRepository, status policy.Status) *policy.Policy {
	t.Helper()
	p := &policy.Policy{
		ClientID:     1,
		PolicyNumber: "POL-1001",
		PolicyType:   "auto",
		Status:       status,
		Carrier:      "ACME MUTUAL",
		Premium:      decimal.RequireFromString("1200.00"),
	}
	id, err := repo.Create(testCtx(), p)
	require.NoError(t, err)
	p.ID = id
	repo.byID[id].Status = status
	return p
}

func TestPolicyService_CreateForcesDraft(t *testing.T) {
	repo := newFakePolicyRepository()
	svc := NewPolicyService(repo, testPublisher())

	data := &policy.Policy{
		ClientID:     1,
		PolicyNumber: "POL-2001",
		Status:       policy.StatusActive,
		Premium:      decimal.RequireFromString("900.50"),
	}
	require.NoError(t, svc.Create(testCtx(), data))
	require.NotZero(t, data.ID)
	require.Equal(t, policy.StatusDraft, repo.byID[data.ID].Status)
}

func TestPolicyService_CreateDuplicateNumber(t *testing.T) {
	repo := newFakePolicyRepository()
	svc := NewPolicyService(repo, testPublisher())
	seedPolicy(t, repo, policy.StatusDraft)

	err := svc.Create(testCtx(), &policy.Policy{ClientID: 2, PolicyNumber: "POL-1001"})
	require.ErrorIs(t, err, policy.ErrNumberExists)
}

func TestPolicyService_UpdatePreservesStatus(t *testing.T) {
	repo := newFakePolicyRepository()
	svc := NewPolicyService(repo, testPublisher())
	p := seedPolicy(t, repo, policy.StatusActive)

	p.Carrier = "NEW CARRIER"
	p.Status = policy.StatusCancelled // must be ignored
	require.NoError(t, svc.Update(testCtx(), p))

	stored := repo.byID[p.ID]
	require.Equal(t, "NEW CARRIER", stored.Carrier)
	require.Equal(t, policy.StatusActive, stored.Status)
}

func TestPolicyService_Transition(t *testing.T) {
	repo := newFakePolicyRepository()
	svc := NewPolicyService(repo, testPublisher())
	p := seedPolicy(t, repo, policy.StatusDraft)

	out, err := svc.Transition(testCtx(), p.ID, policy.StatusActive)
	require.NoError(t, err)
	require.Equal(t, policy.StatusActive, out.Status)
	require.Equal(t, policy.StatusActive, repo.byID[p.ID].Status)
}

func TestPolicyService_TransitionInvalid(t *testing.T) {
	repo := newFakePolicyRepository()
	svc := NewPolicyService(repo, testPublisher())
	p := seedPolicy(t, repo, policy.StatusExpired)

	_, err := svc.Transition(testCtx(), p.ID, policy.StatusActive)
	require.ErrorIs(t, err, policy.ErrInvalidTransition)
	require.Equal(t, policy.StatusExpired, repo.byID[p.ID].Status)
}

func TestPolicyService_TransitionUnknownPolicy(t *testing.T) {
	svc := NewPolicyService(newFakePolicyRepository(), testPublisher())
	_, err := svc.Transition(testCtx(), 99, policy.StatusActive)
	require.ErrorIs(t, err, policy.ErrNotFound)
}
