package policy

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("policy not found")
	ErrNumberExists      = errors.New("policy number already taken")
	ErrInvalidTransition = errors.New("invalid policy status transition")
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusLapsed    Status = "lapsed"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// transitions holds the allowed status graph. A policy leaves draft exactly
// once and never returns.
var transitions = map[Status][]Status{
	StatusDraft:  {StatusActive, StatusCancelled},
	StatusActive: {StatusLapsed, StatusCancelled, StatusExpired},
	StatusLapsed: {StatusActive, StatusCancelled},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Policy struct {
	ID             uint
	ClientID       uint
	PolicyNumber   string
	PolicyType     string
	Status         Status
	Carrier        string
	Premium        decimal.Decimal
	EffectiveDate  *time.Time
	ExpirationDate *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Repository interface {
	GetByClient(ctx context.Context, clientID uint) ([]*Policy, error)
	GetByID(ctx context.Context, id uint) (*Policy, error)
	Create(ctx context.Context, p *Policy) (uint, error)
	Update(ctx context.Context, p *Policy) error
	Delete(ctx context.Context, id uint) error
}
