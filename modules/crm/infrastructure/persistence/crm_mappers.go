package persistence

import (
	"github.com/shopspring/decimal"

	"github.com/atlashealth/atlas/modules/crm/domain/entities/claim"
	"github.com/atlashealth/atlas/modules/crm/domain/entities/client"
	"github.com/atlashealth/atlas/modules/crm/domain/entities/commission"
	"github.com/atlashealth/atlas/modules/crm/domain/entities/policy"
	"github.com/atlashealth/atlas/modules/crm/infrastructure/persistence/models"
)

func strOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func nullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func decimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	return &d.Decimal
}

func ToDomainClient(m *models.Client) *client.Client {
	return &client.Client{
		ID:          uint(m.ID),
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		Email:       strOrEmpty(m.Email),
		Phone:       strOrEmpty(m.Phone),
		DateOfBirth: m.DateOfBirth,
		AddressLine: strOrEmpty(m.AddressLine),
		City:        strOrEmpty(m.City),
		StateCode:   strOrEmpty(m.StateCode),
		PostalCode:  strOrEmpty(m.PostalCode),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func ToDomainPolicy(m *models.InsurancePolicy) *policy.Policy {
	return &policy.Policy{
		ID:             uint(m.ID),
		ClientID:       uint(m.ClientID),
		PolicyNumber:   m.PolicyNumber,
		PolicyType:     m.PolicyType,
		Status:         policy.Status(m.Status),
		Carrier:        strOrEmpty(m.Carrier),
		Premium:        m.Premium,
		EffectiveDate:  m.EffectiveDate,
		ExpirationDate: m.ExpirationDate,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func ToDomainClaim(m *models.Claim) *claim.Claim {
	return &claim.Claim{
		ID:             uint(m.ID),
		PolicyID:       uint(m.InsurancePolicyID),
		ClaimNumber:    m.ClaimNumber,
		Status:         claim.Status(m.Status),
		AmountClaimed:  m.AmountClaimed,
		AmountApproved: decimalPtr(m.AmountApproved),
		FiledOn:        m.FiledOn,
		ResolvedOn:     m.ResolvedOn,
		Description:    strOrEmpty(m.Description),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func ToDomainCommission(m *models.Commission) *commission.Commission {
	return &commission.Commission{
		ID:        uint(m.ID),
		PolicyID:  uint(m.InsurancePolicyID),
		AgentName: m.AgentName,
		Amount:    m.Amount,
		Rate:      decimalPtr(m.Rate),
		PaidOn:    m.PaidOn,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
