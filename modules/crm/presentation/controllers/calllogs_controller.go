package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/stafflink/backoffice/modules/crm/domain/entities/calllog"
	"github.com/stafflink/backoffice/modules/crm/domain/entities/lead"
	"github.com/stafflink/backoffice/modules/crm/services"
	"github.com/stafflink/backoffice/pkg/application"
	"github.com/stafflink/backoffice/pkg/configuration"
	"github.com/stafflink/backoffice/pkg/httpapi"
	"github.com/stafflink/backoffice/pkg/middleware"
	"github.com/stafflink/backoffice/pkg/shared"
)

func writeCallLogNotFound(w http.ResponseWriter) {
	_ = httpapi.WriteError(w, http.StatusNotFound, "CALL_LOG_NOT_FOUND", "call log not found", nil)
}

type CallLogsController struct {
	app      application.Application
	basePath string
}

func NewCallLogsController(app application.Application) application.Controller {
	return &CallLogsController{
		app:      app,
		basePath: "/api/call-logs",
	}
}

func (c *CallLogsController) Key() string {
	return c.basePath
}

func (c *CallLogsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireAuthorization(), middleware.WithTransaction())

	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}", c.delete).Methods(http.MethodDelete)
}

func (c *CallLogsController) service() *services.CallLogService {
	return c.app.Service(services.CallLogService{}).(*services.CallLogService)
}

func (c *CallLogsController) list(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	page := shared.ParsePage(r, conf.PageSize, conf.MaxPageSize)
	q := r.URL.Query()

	params := &calllog.FindParams{
		Direction: calllog.Direction(q.Get("direction")),
		Outcome:   calllog.Outcome(q.Get("outcome")),
		Limit:     page.Limit,
		Offset:    page.Offset,
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
	if raw := q.Get("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid user_id", nil)
			return
		}
		userID := uint(id)
		params.UserID = &userID
	}
	if q.Get("from") != "" || q.Get("to") != "" {
		dr, err := shared.ParseDateRange(r, 0)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid date range", nil)
			return
		}
		if q.Get("from") != "" {
			params.From = &dr.From
		}
		if q.Get("to") != "" {
			params.To = &dr.To
		}
	}

	callLogs, total, err := c.service().GetPaginated(r.Context(), params)
	if err != nil {
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteList(w, callLogs, total)
}

func (c *CallLogsController) get(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		writeBadID(w)
		return
	}
	log, err := c.service().GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, calllog.ErrNotFound) {
			writeCallLogNotFound(w)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, log)
}

func (c *CallLogsController) create(w http.ResponseWriter, r *http.Request) {
	var dto calllog.CreateDTO
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

func (c *CallLogsController) delete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		writeBadID(w)
		return
	}
	if err := c.service().Delete(r.Context(), id); err != nil {
		if errors.Is(err, calllog.ErrNotFound) {
			writeCallLogNotFound(w)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
