package commission

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("commission not found")

type Commission struct {
	ID        uint
	PolicyID  uint
	AgentName string
	Amount    decimal.Decimal
	Rate      *decimal.Decimal
	PaidOn    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Repository interface {
	GetByPolicy(ctx context.Context, policyID uint) ([]*Commission, error)
	GetByID(ctx context.Context, id uint) (*Commission, error)
	Create(ctx context.Context, c *Commission) (uint, error)
	MarkPaid(ctx context.Context, id uint, paidOn time.Time) error
}
