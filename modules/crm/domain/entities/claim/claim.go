package claim

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("claim not found")
	ErrNumberExists    = errors.New("claim number already taken")
	ErrAlreadyResolved = errors.New("claim already resolved")
)

type Status string

const (
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusDenied      Status = "denied"
	StatusPaid        Status = "paid"
)

type Claim struct {
	ID             uint
	PolicyID       uint
	ClaimNumber    string
	Status         Status
	AmountClaimed  decimal.Decimal
	AmountApproved *decimal.Decimal
	FiledOn        *time.Time
	ResolvedOn     *time.Time
	Description    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (c *Claim) Resolved() bool {
	return c.Status == StatusApproved || c.Status == StatusDenied || c.Status == StatusPaid
}

type Repository interface {
	GetByPolicy(ctx context.Context, policyID uint) ([]*Claim, error)
	GetByID(ctx context.Context, id uint) (*Claim, error)
	Create(ctx context.Context, c *Claim) (uint, error)
	Update(ctx context.Context, c *Claim) error
}
