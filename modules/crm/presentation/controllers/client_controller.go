package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/atlashealth/atlas/modules/crm/domain/entities/client"
	"github.com/atlashealth/atlas/modules/crm/services"
	"github.com/atlashealth/atlas/pkg/application"
	"github.com/atlashealth/atlas/pkg/configuration"
)

type ClientController struct {
	app      application.Application
	clients  *services.ClientService
	policies *services.PolicyService
	basePath string
}

func NewClientController(app application.Application) application.Controller {
	return &ClientController{
		app:      app,
		clients:  app.Service(&services.ClientService{}).(*services.ClientService),
		policies: app.Service(&services.PolicyService{}).(*services.PolicyService),
		basePath: "/crm/clients",
	}
}

func (c *ClientController) Key() string {
	return c.basePath
}

func (c *ClientController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}", c.GetByID).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}", c.Update).Methods(http.MethodPut)
	router.HandleFunc("/{id:[0-9]+}", c.Delete).Methods(http.MethodDelete)
	router.HandleFunc("/{id:[0-9]+}/policies", c.ListPolicies).Methods(http.MethodGet)
}

type clientBody struct {
	ID          uint    `json:"id,omitempty"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Email       string  `json:"email,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
	AddressLine string  `json:"addressLine,omitempty"`
	City        string  `json:"city,omitempty"`
	StateCode   string  `json:"stateCode,omitempty"`
	PostalCode  string  `json:"postalCode,omitempty"`
}

type clientListResponse struct {
	Total int64         `json:"total"`
	Items []*clientBody `json:"items"`
}

func (b *clientBody) toDomain() (*client.Client, error) {
	if b.FirstName == "" || b.LastName == "" {
		return nil, errors.New("firstName and lastName are required")
	}
	dob, err := parseDate(deref(b.DateOfBirth))
	if err != nil {
		return nil, err
	}
	return &client.Client{
		ID:          b.ID,
		FirstName:   b.FirstName,
		LastName:    b.LastName,
		Email:       b.Email,
		Phone:       b.Phone,
		DateOfBirth: dob,
		AddressLine: b.AddressLine,
		City:        b.City,
		StateCode:   b.StateCode,
		PostalCode:  b.PostalCode,
	}, nil
}

func toClientBody(c *client.Client) *clientBody {
	return &clientBody{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		Phone:       c.Phone,
		DateOfBirth: formatDate(c.DateOfBirth),
		AddressLine: c.AddressLine,
		City:        c.City,
		StateCode:   c.StateCode,
		PostalCode:  c.PostalCode,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (c *ClientController) List(w http.ResponseWriter, r *http.Request) {
	params := &client.FindParams{
		Search: r.URL.Query().Get("q"),
		Limit:  configuration.Use().PageSize,
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			params.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			params.Offset = n
		}
	}

	found, err := c.clients.GetPaginated(r.Context(), params)
	if err != nil {
		c.internalError(w, r, err)
		return
	}
	total, err := c.clients.Count(r.Context(), params)
	if err != nil {
		c.internalError(w, r, err)
		return
	}
	items := make([]*clientBody, 0, len(found))
	for _, cl := range found {
		items = append(items, toClientBody(cl))
	}
	writeJSON(w, http.StatusOK, &clientListResponse{Total: total, Items: items})
}

func (c *ClientController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	found, err := c.clients.GetByID(r.Context(), id)
	if errors.Is(err, client.ErrNotFound) {
		writeError(w, http.StatusNotFound, "client not found")
		return
	}
	if err != nil {
		c.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientBody(found))
}

func (c *ClientController) Create(w http.ResponseWriter, r *http.Request) {
	var body clientBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	data, err := body.toDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	err = c.clients.Create(r.Context(), data)
	if errors.Is(err, client.ErrEmailExists) {
		writeError(w, http.StatusConflict, "email already taken")
		return
	}
	if err != nil {
		c.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toClientBody(data))
}

func (c *ClientController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body clientBody
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
	err = c.clients.Update(r.Context(), data)
	switch {
	case errors.Is(err, client.ErrNotFound):
		writeError(w, http.StatusNotFound, "client not found")
	case errors.Is(err, client.ErrEmailExists):
		writeError(w, http.StatusConflict, "email already taken")
	case err != nil:
		c.internalError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, toClientBody(data))
	}
}

func (c *ClientController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := c.clients.Delete(r.Context(), id); err != nil {
		c.internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *ClientController) ListPolicies(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	found, err := c.policies.GetByClient(r.Context(), id)
	if err != nil {
		c.internalError(w, r, err)
		return
	}
	items := make([]*policyBody, 0, len(found))
	for _, p := range found {
		items = append(items, toPolicyBody(p))
	}
	writeJSON(w, http.StatusOK, items)
}

func (c *ClientController) internalError(w http.ResponseWriter, r *http.Request, err error) {
	c.app.Logger().WithError(err).WithField("path", r.URL.Path).Error("request failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}
