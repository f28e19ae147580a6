package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Client struct {
	ID          int64
	FirstName   string
	LastName    string
	Email       *string
	Phone       *string
	DateOfBirth *time.Time
	AddressLine *string
	City        *string
	StateCode   *string
	PostalCode  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type InsurancePolicy struct {
	ID             int64
	ClientID       int64
	PolicyNumber   string
	PolicyType     string
	Status         string
	Carrier        *string
	Premium        decimal.Decimal
	EffectiveDate  *time.Time
	ExpirationDate *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Claim struct {
	ID                int64
	InsurancePolicyID int64
	ClaimNumber       string
	Status            string
	AmountClaimed     decimal.Decimal
	AmountApproved    decimal.NullDecimal
	FiledOn           *time.Time
	ResolvedOn        *time.Time
	Description       *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Commission struct {
	ID                int64
	InsurancePolicyID int64
	AgentName         string
	Amount            decimal.Decimal
	Rate              decimal.NullDecimal
	PaidOn            *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
