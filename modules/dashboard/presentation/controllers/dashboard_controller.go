package controllers

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/stafflink/backoffice/modules/dashboard/services"
	"github.com/stafflink/backoffice/pkg/application"
	"github.com/stafflink/backoffice/pkg/httpapi"
	"github.com/stafflink/backoffice/pkg/middleware"
	"github.com/stafflink/backoffice/pkg/shared"
)

// defaultWindow is the reporting range when the client sends no bounds.
const defaultWindow = 30 * 24 * time.Hour

type DashboardController struct {
	app      application.Application
	basePath string
}

func NewDashboardController(app application.Application) application.Controller {
	return &DashboardController{
		app:      app,
		basePath: "/api/dashboard",
	}
}

func (c *DashboardController) Key() string {
	return c.basePath
}

func (c *DashboardController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireAuthorization(), middleware.WithTransaction())

	router.HandleFunc("/summary", c.summary).Methods(http.MethodGet)
	router.HandleFunc("/export", c.export).Methods(http.MethodGet)
}

func (c *DashboardController) service() *services.DashboardService {
	return c.app.Service(services.DashboardService{}).(*services.DashboardService)
}

func (c *DashboardController) summary(w http.ResponseWriter, r *http.Request) {
	dr, err := shared.ParseDateRange(r, defaultWindow)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid date range", nil)
		return
	}
	sum, err := c.service().Summary(r.Context(), dr.From, dr.To)
	if err != nil {
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, sum)
}

func (c *DashboardController) export(w http.ResponseWriter, r *http.Request) {
	dr, err := shared.ParseDateRange(r, defaultWindow)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid date range", nil)
		return
	}
	// Build the workbook first so failures still produce a JSON error
	// instead of a truncated attachment.
	var buf bytes.Buffer
	if err := c.service().ExportXLSX(r.Context(), dr.From, dr.To, &buf); err != nil {
		_ = httpapi.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+services.ExportFilename(dr.From, dr.To)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}
