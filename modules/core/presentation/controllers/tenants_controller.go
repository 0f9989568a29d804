package controllers

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/stafflink/backoffice/modules/core/domain/entities/tenant"
	"github.com/stafflink/backoffice/modules/core/services"
	"github.com/stafflink/backoffice/pkg/application"
	"github.com/stafflink/backoffice/pkg/httpapi"
	"github.com/stafflink/backoffice/pkg/middleware"
)

// TenantsController is the superadmin surface for company administration.
type TenantsController struct {
	app      application.Application
	basePath string
}

func NewTenantsController(app application.Application) application.Controller {
	return &TenantsController{
		app:      app,
		basePath: "/api/tenants",
	}
}

func (c *TenantsController) Key() string {
	return c.basePath
}

func (c *TenantsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireAuthorization(), middleware.WithTransaction())

	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.update).Methods(http.MethodPut)
	router.HandleFunc("/{id}", c.deactivate).Methods(http.MethodDelete)
}

func (c *TenantsController) service() *services.TenantService {
	return c.app.Service(services.TenantService{}).(*services.TenantService)
}

func tenantID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid tenant id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (c *TenantsController) list(w http.ResponseWriter, r *http.Request) {
	tenants, err := c.service().GetAll(r.Context())
	if err != nil {
		_ = httpapi.RespondError(w, err)
		return
	}
	out := make([]TenantResponse, 0, len(tenants))
	for _, t := range tenants {
		out = append(out, toTenantResponse(t))
	}
	_ = httpapi.WriteList(w, out, int64(len(out)))
}

func (c *TenantsController) get(w http.ResponseWriter, r *http.Request) {
	id, ok := tenantID(w, r)
	if !ok {
		return
	}
	t, err := c.service().GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, "TENANT_NOT_FOUND", "tenant not found", nil)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toTenantResponse(t))
}

func (c *TenantsController) create(w http.ResponseWriter, r *http.Request) {
	var dto tenant.CreateDTO
	if !decodeJSON(w, r, &dto) {
		return
	}
	created, err := c.service().Create(r.Context(), &dto)
	if err != nil {
		if errors.Is(err, tenant.ErrCodeTaken) {
			_ = httpapi.WriteError(w, http.StatusConflict, "CODE_TAKEN", "company code already in use", nil)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toTenantResponse(created))
}

func (c *TenantsController) update(w http.ResponseWriter, r *http.Request) {
	id, ok := tenantID(w, r)
	if !ok {
		return
	}
	var dto tenant.UpdateDTO
	if !decodeJSON(w, r, &dto) {
		return
	}
	updated, err := c.service().Update(r.Context(), id, &dto)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, "TENANT_NOT_FOUND", "tenant not found", nil)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toTenantResponse(updated))
}

func (c *TenantsController) deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := tenantID(w, r)
	if !ok {
		return
	}
	if err := c.service().Deactivate(r.Context(), id); err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, "TENANT_NOT_FOUND", "tenant not found", nil)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
