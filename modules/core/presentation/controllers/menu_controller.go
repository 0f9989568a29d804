package controllers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/stafflink/backoffice/modules/core/services"
	"github.com/stafflink/backoffice/pkg/application"
	"github.com/stafflink/backoffice/pkg/constants"
	"github.com/stafflink/backoffice/pkg/httpapi"
	"github.com/stafflink/backoffice/pkg/middleware"
	"github.com/stafflink/backoffice/pkg/serrors"
)

type grantsRequest struct {
	Role    string `json:"role" validate:"required,oneof=admin manager employee"`
	ItemIDs []uint `json:"item_ids" validate:"required"`
}

type MenuController struct {
	app      application.Application
	basePath string
}

func NewMenuController(app application.Application) application.Controller {
	return &MenuController{
		app:      app,
		basePath: "/api/menu",
	}
}

func (c *MenuController) Key() string {
	return c.basePath
}

func (c *MenuController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireAuthorization(), middleware.WithTransaction())

	router.HandleFunc("/sidebar", c.sidebar).Methods(http.MethodGet)
	router.HandleFunc("/items", c.items).Methods(http.MethodGet)
	router.HandleFunc("/grants/{role}", c.grants).Methods(http.MethodGet)
	router.HandleFunc("/grants", c.setGrants).Methods(http.MethodPut)
}

func (c *MenuController) service() *services.MenuService {
	return c.app.Service(services.MenuService{}).(*services.MenuService)
}

func (c *MenuController) sidebar(w http.ResponseWriter, r *http.Request) {
	items, err := c.service().Sidebar(r.Context())
	if err != nil {
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, items)
}

func (c *MenuController) items(w http.ResponseWriter, r *http.Request) {
	items, err := c.service().GetAll(r.Context())
	if err != nil {
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, items)
}

func (c *MenuController) grants(w http.ResponseWriter, r *http.Request) {
	ids, err := c.service().GrantIDs(r.Context(), mux.Vars(r)["role"])
	if err != nil {
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string][]uint{"item_ids": ids})
}

func (c *MenuController) setGrants(w http.ResponseWriter, r *http.Request) {
	var req grantsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := constants.Validate.Struct(&req); err != nil {
		_ = httpapi.WriteValidationError(w, serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)))
		return
	}
	if err := c.service().SetGrants(r.Context(), req.Role, req.ItemIDs); err != nil {
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
