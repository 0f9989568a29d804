package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/stafflink/backoffice/modules/hrm/domain/entities/department"
	"github.com/stafflink/backoffice/modules/hrm/services"
	"github.com/stafflink/backoffice/pkg/application"
	"github.com/stafflink/backoffice/pkg/configuration"
	"github.com/stafflink/backoffice/pkg/httpapi"
	"github.com/stafflink/backoffice/pkg/middleware"
	"github.com/stafflink/backoffice/pkg/shared"
)

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed JSON body", nil)
		return false
	}
	return true
}

type DepartmentsController struct {
	app      application.Application
	basePath string
}

func NewDepartmentsController(app application.Application) application.Controller {
	return &DepartmentsController{
		app:      app,
		basePath: "/api/departments",
	}
}

func (c *DepartmentsController) Key() string {
	return c.basePath
}

func (c *DepartmentsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireAuthorization(), middleware.WithTransaction())

	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}", c.update).Methods(http.MethodPut)
	router.HandleFunc("/{id:[0-9]+}", c.delete).Methods(http.MethodDelete)
}

func (c *DepartmentsController) service() *services.DepartmentService {
	return c.app.Service(services.DepartmentService{}).(*services.DepartmentService)
}

func (c *DepartmentsController) list(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	page := shared.ParsePage(r, conf.PageSize, conf.MaxPageSize)
	params := &department.FindParams{
		Search:          r.URL.Query().Get("search"),
		IncludeInactive: r.URL.Query().Get("include_inactive") == "true",
		Limit:           page.Limit,
		Offset:          page.Offset,
	}
	departments, total, err := c.service().GetPaginated(r.Context(), params)
	if err != nil {
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteList(w, departments, total)
}

func (c *DepartmentsController) get(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	d, err := c.service().GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, department.ErrNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, "DEPARTMENT_NOT_FOUND", "department not found", nil)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, d)
}

func (c *DepartmentsController) create(w http.ResponseWriter, r *http.Request) {
	var dto department.CreateDTO
	if !decodeJSON(w, r, &dto) {
		return
	}
	created, err := c.service().Create(r.Context(), &dto)
	if err != nil {
		if errors.Is(err, department.ErrNameTaken) {
			_ = httpapi.WriteError(w, http.StatusConflict, "NAME_TAKEN", "department name already in use", nil)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, created)
}

func (c *DepartmentsController) update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	var dto department.UpdateDTO
	if !decodeJSON(w, r, &dto) {
		return
	}
	updated, err := c.service().Update(r.Context(), id, &dto)
	if err != nil {
		if errors.Is(err, department.ErrNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, "DEPARTMENT_NOT_FOUND", "department not found", nil)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, updated)
}

func (c *DepartmentsController) delete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	if err := c.service().Delete(r.Context(), id); err != nil {
		if errors.Is(err, department.ErrNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, "DEPARTMENT_NOT_FOUND", "department not found", nil)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
