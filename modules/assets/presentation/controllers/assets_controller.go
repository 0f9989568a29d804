package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/stafflink/backoffice/modules/assets/domain/entities/asset"
	"github.com/stafflink/backoffice/modules/assets/services"
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

func writeAssetNotFound(w http.ResponseWriter) {
	_ = httpapi.WriteError(w, http.StatusNotFound, "ASSET_NOT_FOUND", "asset not found", nil)
}

type assignRequest struct {
	UserID uint `json:"user_id"`
}

type AssetsController struct {
	app      application.Application
	basePath string
}

func NewAssetsController(app application.Application) application.Controller {
	return &AssetsController{
		app:      app,
		basePath: "/api/assets",
	}
}

func (c *AssetsController) Key() string {
	return c.basePath
}

func (c *AssetsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireAuthorization(), middleware.WithTransaction())

	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}", c.update).Methods(http.MethodPut)
	router.HandleFunc("/{id:[0-9]+}", c.delete).Methods(http.MethodDelete)
	router.HandleFunc("/{id:[0-9]+}/assign", c.assign).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}/unassign", c.unassign).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}/assignments", c.assignments).Methods(http.MethodGet)
}

func (c *AssetsController) service() *services.AssetService {
	return c.app.Service(services.AssetService{}).(*services.AssetService)
}

func (c *AssetsController) list(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	page := shared.ParsePage(r, conf.PageSize, conf.MaxPageSize)
	q := r.URL.Query()

	params := &asset.FindParams{
		Search:          q.Get("search"),
		Category:        q.Get("category"),
		Condition:       asset.Condition(q.Get("condition")),
		UnassignedOnly:  q.Get("unassigned") == "true",
		IncludeInactive: q.Get("include_inactive") == "true",
		Limit:           page.Limit,
		Offset:          page.Offset,
	}
	if raw := q.Get("assigned_to"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid assigned_to", nil)
			return
		}
		userID := uint(id)
		params.AssignedTo = &userID
	}

	assets, total, err := c.service().GetPaginated(r.Context(), params)
	if err != nil {
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteList(w, assets, total)
}

func (c *AssetsController) get(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	a, err := c.service().GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, asset.ErrNotFound) {
			writeAssetNotFound(w)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, a)
}

func (c *AssetsController) create(w http.ResponseWriter, r *http.Request) {
	var dto asset.CreateDTO
	if !decodeJSON(w, r, &dto) {
		return
	}
	created, err := c.service().Create(r.Context(), &dto)
	if err != nil {
		if errors.Is(err, asset.ErrSerialTaken) {
			_ = httpapi.WriteError(w, http.StatusConflict, "SERIAL_TAKEN", "serial number already registered", nil)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, created)
}

func (c *AssetsController) update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	var dto asset.UpdateDTO
	if !decodeJSON(w, r, &dto) {
		return
	}
	updated, err := c.service().Update(r.Context(), id, &dto)
	if err != nil {
		switch {
		case errors.Is(err, asset.ErrNotFound):
			writeAssetNotFound(w)
		case errors.Is(err, asset.ErrSerialTaken):
			_ = httpapi.WriteError(w, http.StatusConflict, "SERIAL_TAKEN", "serial number already registered", nil)
		default:
			_ = httpapi.RespondError(w, err)
		}
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, updated)
}

func (c *AssetsController) assign(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	var req assignRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == 0 {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "user_id is required", nil)
		return
	}
	a, err := c.service().Assign(r.Context(), id, req.UserID)
	if err != nil {
		if errors.Is(err, asset.ErrNotFound) {
			writeAssetNotFound(w)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, a)
}

func (c *AssetsController) unassign(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	a, err := c.service().Unassign(r.Context(), id)
	if err != nil {
		if errors.Is(err, asset.ErrNotFound) {
			writeAssetNotFound(w)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, a)
}

func (c *AssetsController) assignments(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	entries, err := c.service().GetAssignments(r.Context(), id)
	if err != nil {
		if errors.Is(err, asset.ErrNotFound) {
			writeAssetNotFound(w)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, entries)
}

func (c *AssetsController) delete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	if err := c.service().Delete(r.Context(), id); err != nil {
		if errors.Is(err, asset.ErrNotFound) {
			writeAssetNotFound(w)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
