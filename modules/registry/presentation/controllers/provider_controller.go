package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/atlashealth/atlas/modules/registry/domain/aggregates/provider"
	"github.com/atlashealth/atlas/modules/registry/services"
	"github.com/atlashealth/atlas/pkg/application"
	"github.com/atlashealth/atlas/pkg/configuration"
)

type ProviderController struct {
	app      application.Application
	service  *services.ProviderService
	basePath string
}

func NewProviderController(app application.Application) application.Controller {
	return &ProviderController{
		app:      app,
		service:  app.Service(&services.ProviderService{}).(*services.ProviderService),
		basePath: "/registry/providers",
	}
}

func (c *ProviderController) Key() string {
	return c.basePath
}

func (c *ProviderController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("/search", c.Search).Methods(http.MethodGet)
	router.HandleFunc("/{npi:[0-9]{10}}", c.GetByNPI).Methods(http.MethodGet)
}

type providerListResponse struct {
	Total int64           `json:"total"`
	Items []*providerBody `json:"items"`
}

type providerBody struct {
	NPI                string           `json:"npi"`
	EntityType         int16            `json:"entityType"`
	FirstName          string           `json:"firstName,omitempty"`
	LastName           string           `json:"lastName,omitempty"`
	Credential         string           `json:"credential,omitempty"`
	Gender             string           `json:"gender,omitempty"`
	OrganizationName   string           `json:"organizationName,omitempty"`
	Active             bool             `json:"active"`
	EnumerationDate    *string          `json:"enumerationDate,omitempty"`
	DeactivationDate   *string          `json:"deactivationDate,omitempty"`
	Addresses          []*addressBody   `json:"addresses,omitempty"`
	Taxonomies         []*taxonomyBody  `json:"taxonomies,omitempty"`
	Identifiers        []*identityBody  `json:"identifiers,omitempty"`
	Endpoints          []*endpointBody  `json:"endpoints,omitempty"`
	AuthorizedOfficial *officialBody    `json:"authorizedOfficial,omitempty"`
}

type addressBody struct {
	Purpose    string `json:"purpose"`
	Address1   string `json:"address1,omitempty"`
	Address2   string `json:"address2,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
	Telephone  string `json:"telephone,omitempty"`
}

type taxonomyBody struct {
	Code          string `json:"code"`
	LicenseNumber string `json:"licenseNumber,omitempty"`
	Primary       bool   `json:"primary"`
}

type identityBody struct {
	Type   string `json:"type"`
	Value  string `json:"value"`
	Issuer string `json:"issuer,omitempty"`
}

type endpointBody struct {
	Type string `json:"type,omitempty"`
	URL  string `json:"url"`
}

type officialBody struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Title     string `json:"title,omitempty"`
	Telephone string `json:"telephone,omitempty"`
}

func (c *ProviderController) List(w http.ResponseWriter, r *http.Request) {
	params := &provider.FindParams{
		Search: r.URL.Query().Get("q"),
		Limit:  configuration.Use().PageSize,
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			params.Limit = limit
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil && offset > 0 {
			params.Offset = offset
		}
	}
	if v := r.URL.Query().Get("entityType"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || (n != 1 && n != 2) {
			writeError(w, http.StatusBadRequest, "entityType must be 1 or 2")
			return
		}
		et := provider.EntityType(n)
		params.EntityType = &et
	}
	params.ActiveOnly = r.URL.Query().Get("active") == "true"

	found, err := c.service.GetPaginated(r.Context(), params)
	if err != nil {
		c.internalError(w, r, err)
		return
	}
	total, err := c.service.Count(r.Context(), params)
	if err != nil {
		c.internalError(w, r, err)
		return
	}

	items := make([]*providerBody, 0, len(found))
	for _, p := range found {
		items = append(items, toProviderBody(p))
	}
	writeJSON(w, http.StatusOK, &providerListResponse{Total: total, Items: items})
}

func (c *ProviderController) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit := configuration.Use().PageSize
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	found, err := c.service.Search(r.Context(), query, limit)
	if err != nil {
		c.internalError(w, r, err)
		return
	}
	items := make([]*providerBody, 0, len(found))
	for _, p := range found {
		items = append(items, toProviderBody(p))
	}
	writeJSON(w, http.StatusOK, &providerListResponse{Total: int64(len(items)), Items: items})
}

func (c *ProviderController) GetByNPI(w http.ResponseWriter, r *http.Request) {
	npi := mux.Vars(r)["npi"]
	p, err := c.service.GetByNPI(r.Context(), npi)
	if errors.Is(err, provider.ErrNotFound) {
		writeError(w, http.StatusNotFound, "provider not found")
		return
	}
	if err != nil {
		c.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProviderBody(p))
}

func (c *ProviderController) internalError(w http.ResponseWriter, r *http.Request, err error) {
	c.app.Logger().WithError(err).WithField("path", r.URL.Path).Error("request failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}

func toProviderBody(p *provider.Provider) *providerBody {
	body := &providerBody{
		NPI:              p.NPI,
		EntityType:       int16(p.EntityType),
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		Credential:       p.Credential,
		Gender:           p.Gender,
		OrganizationName: p.OrganizationName,
		Active:           p.IsActive(),
		EnumerationDate:  formatDate(p.EnumerationDate),
		DeactivationDate: formatDate(p.DeactivationDate),
	}
	for _, a := range p.Addresses {
		body.Addresses = append(body.Addresses, &addressBody{
			Purpose:    string(a.Purpose),
			Address1:   a.Address1,
			Address2:   a.Address2,
			City:       a.CityName,
			PostalCode: a.PostalCode,
			Country:    a.CountryCode,
			Telephone:  a.Telephone,
		})
	}
	for _, t := range p.Taxonomies {
		body.Taxonomies = append(body.Taxonomies, &taxonomyBody{
			Code:          t.Code,
			LicenseNumber: t.LicenseNumber,
			Primary:       t.IsPrimary,
		})
	}
	for _, i := range p.Identifiers {
		body.Identifiers = append(body.Identifiers, &identityBody{
			Type:   i.Type,
			Value:  i.Value,
			Issuer: i.Issuer,
		})
	}
	for _, e := range p.Endpoints {
		body.Endpoints = append(body.Endpoints, &endpointBody{Type: e.Type, URL: e.URL})
	}
	if o := p.AuthorizedOfficial; o != nil {
		body.AuthorizedOfficial = &officialBody{
			FirstName: o.FirstName,
			LastName:  o.LastName,
			Title:     o.TitleOrPosition,
			Telephone: o.Telephone,
		}
	}
	return body
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
