package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/stafflink/backoffice/modules/core/domain/aggregates/user"
	"github.com/stafflink/backoffice/modules/core/services"
	"github.com/stafflink/backoffice/pkg/application"
	"github.com/stafflink/backoffice/pkg/configuration"
	"github.com/stafflink/backoffice/pkg/httpapi"
	"github.com/stafflink/backoffice/pkg/middleware"
	"github.com/stafflink/backoffice/pkg/shared"
)

type UsersController struct {
	app      application.Application
	basePath string
}

func NewUsersController(app application.Application) application.Controller {
	return &UsersController{
		app:      app,
		basePath: "/api/users",
	}
}

func (c *UsersController) Key() string {
	return c.basePath
}

func (c *UsersController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireAuthorization(), middleware.WithTransaction())

	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}", c.update).Methods(http.MethodPut)
	router.HandleFunc("/{id:[0-9]+}", c.deactivate).Methods(http.MethodDelete)
}

func (c *UsersController) service() *services.UserService {
	return c.app.Service(services.UserService{}).(*services.UserService)
}

func (c *UsersController) list(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	page := shared.ParsePage(r, conf.PageSize, conf.MaxPageSize)

	params := &user.FindParams{
		Search: r.URL.Query().Get("search"),
		Role:   user.Role(r.URL.Query().Get("role")),
		Limit:  page.Limit,
		Offset: page.Offset,
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
	params.IncludeInactive = r.URL.Query().Get("include_inactive") == "true"

	users, total, err := c.service().GetPaginated(r.Context(), params)
	if err != nil {
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteList(w, toUserResponses(users), total)
}

func (c *UsersController) get(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	u, err := c.service().GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, "USER_NOT_FOUND", "user not found", nil)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

func (c *UsersController) create(w http.ResponseWriter, r *http.Request) {
	var dto user.CreateDTO
	if !decodeJSON(w, r, &dto) {
		return
	}
	created, err := c.service().Create(r.Context(), &dto)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			_ = httpapi.WriteError(w, http.StatusConflict, "EMAIL_TAKEN", "email already in use", nil)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toUserResponse(created))
}

func (c *UsersController) update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	var dto user.UpdateDTO
	if !decodeJSON(w, r, &dto) {
		return
	}
	updated, err := c.service().Update(r.Context(), id, &dto)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, "USER_NOT_FOUND", "user not found", nil)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toUserResponse(updated))
}

func (c *UsersController) deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	if err := c.service().Deactivate(r.Context(), id); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, "USER_NOT_FOUND", "user not found", nil)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
