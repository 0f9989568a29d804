package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/stafflink/backoffice/modules/crm/domain/entities/followup"
	"github.com/stafflink/backoffice/modules/crm/domain/entities/lead"
	"github.com/stafflink/backoffice/modules/crm/services"
	"github.com/stafflink/backoffice/pkg/application"
	"github.com/stafflink/backoffice/pkg/configuration"
	"github.com/stafflink/backoffice/pkg/httpapi"
	"github.com/stafflink/backoffice/pkg/middleware"
	"github.com/stafflink/backoffice/pkg/shared"
)

func writeFollowUpNotFound(w http.ResponseWriter) {
	_ = httpapi.WriteError(w, http.StatusNotFound, "FOLLOW_UP_NOT_FOUND", "follow-up not found", nil)
}

type FollowUpsController struct {
	app      application.Application
	basePath string
}

func NewFollowUpsController(app application.Application) application.Controller {
	return &FollowUpsController{
		app:      app,
		basePath: "/api/follow-ups",
	}
}

func (c *FollowUpsController) Key() string {
	return c.basePath
}

func (c *FollowUpsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireAuthorization(), middleware.WithTransaction())

	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}", c.update).Methods(http.MethodPut)
	router.HandleFunc("/{id:[0-9]+}", c.delete).Methods(http.MethodDelete)
	router.HandleFunc("/{id:[0-9]+}/complete", c.complete).Methods(http.MethodPost)
}

func (c *FollowUpsController) service() *services.FollowUpService {
	return c.app.Service(services.FollowUpService{}).(*services.FollowUpService)
}

func (c *FollowUpsController) list(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	page := shared.ParsePage(r, conf.PageSize, conf.MaxPageSize)
	q := r.URL.Query()

	params := &followup.FindParams{
		PendingOnly: q.Get("pending") == "true",
		Limit:       page.Limit,
		Offset:      page.Offset,
	}
	if raw := q.Get("lead_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid lead_id", nil)
			return
		}
		leadID := uint(id)
		params.LeadID = &leadID
	}
	if raw := q.Get("assignee_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid assignee_id", nil)
			return
		}
		assigneeID := uint(id)
		params.AssigneeID = &assigneeID
	}
	if q.Get("from") != "" || q.Get("to") != "" {
		dr, err := shared.ParseDateRange(r, 0)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid date range", nil)
			return
		}
		if q.Get("from") != "" {
			params.DueFrom = &dr.From
		}
		if q.Get("to") != "" {
			params.DueTo = &dr.To
		}
	}

	followUps, total, err := c.service().GetPaginated(r.Context(), params)
	if err != nil {
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteList(w, followUps, total)
}

func (c *FollowUpsController) get(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		writeBadID(w)
		return
	}
	f, err := c.service().GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, followup.ErrNotFound) {
			writeFollowUpNotFound(w)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, f)
}

func (c *FollowUpsController) create(w http.ResponseWriter, r *http.Request) {
	var dto followup.CreateDTO
	if !decodeJSON(w, r, &dto) {
		return
	}
	created, err := c.service().Create(r.Context(), &dto)
	if err != nil {
		if errors.Is(err, lead.ErrNotFound) {
			writeLeadNotFound(w)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, created)
}

func (c *FollowUpsController) update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		writeBadID(w)
		return
	}
	var dto followup.UpdateDTO
	if !decodeJSON(w, r, &dto) {
		return
	}
	updated, err := c.service().Update(r.Context(), id, &dto)
	if err != nil {
		if errors.Is(err, followup.ErrNotFound) {
			writeFollowUpNotFound(w)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, updated)
}

func (c *FollowUpsController) complete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		writeBadID(w)
		return
	}
	f, err := c.service().Complete(r.Context(), id)
	if err != nil {
		if errors.Is(err, followup.ErrNotFound) {
			writeFollowUpNotFound(w)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, f)
}

func (c *FollowUpsController) delete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		writeBadID(w)
		return
	}
	if err := c.service().Delete(r.Context(), id); err != nil {
		if errors.Is(err, followup.ErrNotFound) {
			writeFollowUpNotFound(w)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
