package controllers

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/atlashealth/atlas/modules/crm/domain/entities/claim"
	"github.com/atlashealth/atlas/modules/crm/domain/entities/policy"
	"github.com/atlashealth/atlas/modules/crm/services"
	"github.com/atlashealth/atlas/pkg/application"
)

type PolicyController struct {
	app         application.Application
	policies    *services.PolicyService
	claims      *services.ClaimService
	commissions *services.CommissionService
	basePath    string
}

func NewPolicyController(app application.Application) application.Controller {
	return &PolicyController{
		app:         app,
		policies:    app.Service(&services.PolicyService{}).(*services.PolicyService),
		claims:      app.Service(&services.ClaimService{}).(*services.ClaimService),
		commissions: app.Service(&services.CommissionService{}).(*services.CommissionService),
		basePath:    "/crm/policies",
	}
}

func (c *PolicyController) Key() string {
	return c.basePath
}

func (c *PolicyController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}", c.GetByID).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}", c.Update).Methods(http.MethodPut)
	router.HandleFunc("/{id:[0-9]+}/transition", c.Transition).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}/claims", c.ListClaims).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}/claims", c.FileClaim).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}/commissions", c.ListCommissions).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}/commissions", c.AccrueCommission).Methods(http.MethodPost)
}

type policyBody struct {
	ID             uint            `json:"id,omitempty"`
	ClientID       uint            `json:"clientId"`
	PolicyNumber   string          `json:"policyNumber"`
	PolicyType     string          `json:"policyType"`
	Status         string          `json:"status,omitempty"`
	Carrier        string          `json:"carrier,omitempty"`
	Premium        decimal.Decimal `json:"premium"`
	EffectiveDate  *string         `json:"effectiveDate,omitempty"`
	ExpirationDate *string         `json:"expirationDate,omitempty"`
}

type claimBody struct {
	ID             uint             `json:"id,omitempty"`
	ClaimNumber    string           `json:"claimNumber"`
	Status         string           `json:"status,omitempty"`
	AmountClaimed  decimal.Decimal  `json:"amountClaimed"`
	AmountApproved *decimal.Decimal `json:"amountApproved,omitempty"`
	FiledOn        *string          `json:"filedOn,omitempty"`
	ResolvedOn     *string          `json:"resolvedOn,omitempty"`
	Description    string           `json:"description,omitempty"`
}

type commissionBody struct {
	ID        uint             `json:"id,omitempty"`
	AgentName string           `json:"agentName"`
	Amount    decimal.Decimal  `json:"amount"`
	Rate      *decimal.Decimal `json:"rate,omitempty"`
	PaidOn    *string          `json:"paidOn,omitempty"`
}

type transitionBody struct {
	Status string `json:"status"`
}

func (b *policyBody) toDomain() (*policy.Policy, error) {
	if b.ClientID == 0 || b.PolicyNumber == "" || b.PolicyType == "" {
		return nil, errors.New("clientId, policyNumber and policyType are required")
	}
	effective, err := parseDate(deref(b.EffectiveDate))
	if err != nil {
		return nil, err
	}
	expiration, err := parseDate(deref(b.ExpirationDate))
	if err != nil {
		return nil, err
	}
	return &policy.Policy{
		ID:             b.ID,
		ClientID:       b.ClientID,
		PolicyNumber:   b.PolicyNumber,
		PolicyType:     b.PolicyType,
		Carrier:        b.Carrier,
		Premium:        b.Premium,
		EffectiveDate:  effective,
		ExpirationDate: expiration,
	}, nil
}

func toPolicyBody(p *policy.Policy) *policyBody {
	return &policyBody{
		ID:             p.ID,
		ClientID:       p.ClientID,
		PolicyNumber:   p.PolicyNumber,
		PolicyType:     p.PolicyType,
		Status:         string(p.Status),
		Carrier:        p.Carrier,
		Premium:        p.Premium,
		EffectiveDate:  formatDate(p.EffectiveDate),
		ExpirationDate: formatDate(p.ExpirationDate),
	}
}

func toClaimBody(c *claim.Claim) *claimBody {
	return &claimBody{
		ID:             c.ID,
		ClaimNumber:    c.ClaimNumber,
		Status:         string(c.Status),
		AmountClaimed:  c.AmountClaimed,
		AmountApproved: c.AmountApproved,
		FiledOn:        formatDate(c.FiledOn),
		ResolvedOn:     formatDate(c.ResolvedOn),
		Description:    c.Description,
	}
}

func (c *PolicyController) Create(w http.ResponseWriter, r *http.Request) {
	var body policyBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	data, err := body.toDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	err = c.policies.Create(r.Context(), data)
	if errors.Is(err, policy.ErrNumberExists) {
		writeError(w, http.StatusConflict, "policy number already taken")
		return
	}
	if err != nil {
		c.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPolicyBody(data))
}

func (c *PolicyController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := c.policies.GetByID(r.Context(), id)
	if errors.Is(err, policy.ErrNotFound) {
		writeError(w, http.StatusNotFound, "policy not found")
		return
	}
	if err != nil {
		c.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPolicyBody(p))
}

func (c *PolicyController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body policyBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	data, err := body.toDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	data.ID = id
	err = c.policies.Update(r.Context(), data)
	if errors.Is(err, policy.ErrNotFound) {
		writeError(w, http.StatusNotFound, "policy not found")
		return
	}
	if err != nil {
		c.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPolicyBody(data))
}

func (c *PolicyController) Transition(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body transitionBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := c.policies.Transition(r.Context(), id, policy.Status(body.Status))
	switch {
	case errors.Is(err, policy.ErrNotFound):
		writeError(w, http.StatusNotFound, "policy not found")
	case errors.Is(err, policy.ErrInvalidTransition):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case err != nil:
		c.internalError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, toPolicyBody(p))
	}
}

func (c *PolicyController) ListClaims(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	found, err := c.claims.GetByPolicy(r.Context(), id)
	if err != nil {
		c.internalError(w, r, err)
		return
	}
	items := make([]*claimBody, 0, len(found))
	for _, cl := range found {
		items = append(items, toClaimBody(cl))
	}
	writeJSON(w, http.StatusOK, items)
}

func (c *PolicyController) FileClaim(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body claimBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.ClaimNumber == "" {
		writeError(w, http.StatusBadRequest, "claimNumber is required")
		return
	}
	filedOn, err := parseDate(deref(body.FiledOn))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	data := &claim.Claim{
		PolicyID:      id,
		ClaimNumber:   body.ClaimNumber,
		AmountClaimed: body.AmountClaimed,
		FiledOn:       filedOn,
		Description:   body.Description,
	}
	err = c.claims.File(r.Context(), data)
	switch {
	case errors.Is(err, policy.ErrNotFound):
		writeError(w, http.StatusNotFound, "policy not found")
	case errors.Is(err, claim.ErrNumberExists):
		writeError(w, http.StatusConflict, "claim number already taken")
	case err != nil:
		c.internalError(w, r, err)
	default:
		writeJSON(w, http.StatusCreated, toClaimBody(data))
	}
}

func (c *PolicyController) ListCommissions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	found, err := c.commissions.GetByPolicy(r.Context(), id)
	if err != nil {
		c.internalError(w, r, err)
		return
	}
	items := make([]*commissionBody, 0, len(found))
	for _, cm := range found {
		items = append(items, &commissionBody{
			ID:        cm.ID,
			AgentName: cm.AgentName,
			Amount:    cm.Amount,
			Rate:      cm.Rate,
			PaidOn:    formatDate(cm.PaidOn),
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (c *PolicyController) AccrueCommission(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body commissionBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.AgentName == "" || body.Rate == nil {
		writeError(w, http.StatusBadRequest, "agentName and rate are required")
		return
	}
	cm, err := c.commissions.Accrue(r.Context(), id, body.AgentName, *body.Rate)
	if errors.Is(err, policy.ErrNotFound) {
		writeError(w, http.StatusNotFound, "policy not found")
		return
	}
	if err != nil {
		c.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, &commissionBody{
		ID:        cm.ID,
		AgentName: cm.AgentName,
		Amount:    cm.Amount,
		Rate:      cm.Rate,
		PaidOn:    formatDate(cm.PaidOn),
	})
}

func (c *PolicyController) internalError(w http.ResponseWriter, r *http.Request, err error) {
	c.app.Logger().WithError(err).WithField("path", r.URL.Path).Error("request failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}
