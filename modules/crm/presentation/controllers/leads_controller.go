package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/stafflink/backoffice/modules/crm/domain/entities/lead"
	"github.com/stafflink/backoffice/modules/crm/services"
	"github.com/stafflink/backoffice/pkg/application"
	"github.com/stafflink/backoffice/pkg/configuration"
	"github.com/stafflink/backoffice/pkg/httpapi"
	"github.com/stafflink/backoffice/pkg/middleware"
	"github.com/stafflink/backoffice/pkg/shared"
)

func writeLeadNotFound(w http.ResponseWriter) {
	_ = httpapi.WriteError(w, http.StatusNotFound, "LEAD_NOT_FOUND", "lead not found", nil)
}

type LeadsController struct {
	app      application.Application
	basePath string
}

func NewLeadsController(app application.Application) application.Controller {
	return &LeadsController{
		app:      app,
		basePath: "/api/leads",
	}
}

func (c *LeadsController) Key() string {
	return c.basePath
}

func (c *LeadsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireAuthorization(), middleware.WithTransaction())

	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}", c.update).Methods(http.MethodPut)
	router.HandleFunc("/{id:[0-9]+}", c.delete).Methods(http.MethodDelete)
	router.HandleFunc("/{id:[0-9]+}/status", c.setStatus).Methods(http.MethodPut)
}

func (c *LeadsController) service() *services.LeadService {
	return c.app.Service(services.LeadService{}).(*services.LeadService)
}

func (c *LeadsController) list(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	page := shared.ParsePage(r, conf.PageSize, conf.MaxPageSize)
	q := r.URL.Query()

	params := &lead.FindParams{
		Search:          q.Get("search"),
		Status:          lead.Status(q.Get("status")),
		Source:          lead.Source(q.Get("source")),
		IncludeInactive: q.Get("include_inactive") == "true",
		Limit:           page.Limit,
		Offset:          page.Offset,
	}
	if raw := q.Get("owner_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid owner_id", nil)
			return
		}
		ownerID := uint(id)
		params.OwnerID = &ownerID
	}

	leads, total, err := c.service().GetPaginated(r.Context(), params)
	if err != nil {
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteList(w, leads, total)
}

func (c *LeadsController) get(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		writeBadID(w)
		return
	}
	l, err := c.service().GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, lead.ErrNotFound) {
			writeLeadNotFound(w)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, l)
}

func (c *LeadsController) create(w http.ResponseWriter, r *http.Request) {
	var dto lead.CreateDTO
	if !decodeJSON(w, r, &dto) {
		return
	}
	created, err := c.service().Create(r.Context(), &dto)
	if err != nil {
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, created)
}

func (c *LeadsController) update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		writeBadID(w)
		return
	}
	var dto lead.UpdateDTO
	if !decodeJSON(w, r, &dto) {
		return
	}
	updated, err := c.service().Update(r.Context(), id, &dto)
	if err != nil {
		if errors.Is(err, lead.ErrNotFound) {
			writeLeadNotFound(w)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, updated)
}

func (c *LeadsController) setStatus(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		writeBadID(w)
		return
	}
	var dto lead.StatusDTO
	if !decodeJSON(w, r, &dto) {
		return
	}
	l, err := c.service().SetStatus(r.Context(), id, &dto)
	if err != nil {
		if errors.Is(err, lead.ErrNotFound) {
			writeLeadNotFound(w)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, l)
}

func (c *LeadsController) delete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		writeBadID(w)
		return
	}
	if err := c.service().Delete(r.Context(), id); err != nil {
		if errors.Is(err, lead.ErrNotFound) {
			writeLeadNotFound(w)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
