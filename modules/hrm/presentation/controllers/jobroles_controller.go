package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/stafflink/backoffice/modules/hrm/domain/entities/department"
	"github.com/stafflink/backoffice/modules/hrm/domain/entities/jobrole"
	"github.com/stafflink/backoffice/modules/hrm/services"
	"github.com/stafflink/backoffice/pkg/application"
	"github.com/stafflink/backoffice/pkg/configuration"
	"github.com/stafflink/backoffice/pkg/httpapi"
	"github.com/stafflink/backoffice/pkg/middleware"
	"github.com/stafflink/backoffice/pkg/shared"
)

type JobRolesController struct {
	app      application.Application
	basePath string
}

func NewJobRolesController(app application.Application) application.Controller {
	return &JobRolesController{
		app:      app,
		basePath: "/api/job-roles",
	}
}

func (c *JobRolesController) Key() string {
	return c.basePath
}

func (c *JobRolesController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireAuthorization(), middleware.WithTransaction())

	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}", c.update).Methods(http.MethodPut)
	router.HandleFunc("/{id:[0-9]+}", c.delete).Methods(http.MethodDelete)
}

func (c *JobRolesController) service() *services.JobRoleService {
	return c.app.Service(services.JobRoleService{}).(*services.JobRoleService)
}

func (c *JobRolesController) list(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	page := shared.ParsePage(r, conf.PageSize, conf.MaxPageSize)
	params := &jobrole.FindParams{
		Search:          r.URL.Query().Get("search"),
		IncludeInactive: r.URL.Query().Get("include_inactive") == "true",
		Limit:           page.Limit,
		Offset:          page.Offset,
	}
	if raw := r.URL.Query().Get("department_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid department_id", nil)
			return
		}
		depID := uint(id)
		params.DepartmentID = &depID
	}
	roles, total, err := c.service().GetPaginated(r.Context(), params)
	if err != nil {
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteList(w, roles, total)
}

func (c *JobRolesController) get(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	j, err := c.service().GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, jobrole.ErrNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, "JOB_ROLE_NOT_FOUND", "job role not found", nil)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, j)
}

func (c *JobRolesController) create(w http.ResponseWriter, r *http.Request) {
	var dto jobrole.CreateDTO
	if !decodeJSON(w, r, &dto) {
		return
	}
	created, err := c.service().Create(r.Context(), &dto)
	if err != nil {
		switch {
		case errors.Is(err, department.ErrNotFound):
			_ = httpapi.WriteError(w, http.StatusNotFound, "DEPARTMENT_NOT_FOUND", "department not found", nil)
		case errors.Is(err, jobrole.ErrTitleTaken):
			_ = httpapi.WriteError(w, http.StatusConflict, "TITLE_TAKEN", "job role title already in use within the department", nil)
		default:
			_ = httpapi.RespondError(w, err)
		}
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, created)
}

func (c *JobRolesController) update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	var dto jobrole.UpdateDTO
	if !decodeJSON(w, r, &dto) {
		return
	}
	updated, err := c.service().Update(r.Context(), id, &dto)
	if err != nil {
		if errors.Is(err, jobrole.ErrNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, "JOB_ROLE_NOT_FOUND", "job role not found", nil)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, updated)
}

func (c *JobRolesController) delete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	if err := c.service().Delete(r.Context(), id); err != nil {
		if errors.Is(err, jobrole.ErrNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, "JOB_ROLE_NOT_FOUND", "job role not found", nil)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
