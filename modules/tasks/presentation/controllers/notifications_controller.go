package controllers

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/stafflink/backoffice/modules/tasks/domain/entities/notification"
	"github.com/stafflink/backoffice/modules/tasks/services"
	"github.com/stafflink/backoffice/pkg/application"
	"github.com/stafflink/backoffice/pkg/configuration"
	"github.com/stafflink/backoffice/pkg/httpapi"
	"github.com/stafflink/backoffice/pkg/middleware"
	"github.com/stafflink/backoffice/pkg/shared"
)

type NotificationsController struct {
	app      application.Application
	basePath string
}

func NewNotificationsController(app application.Application) application.Controller {
	return &NotificationsController{
		app:      app,
		basePath: "/api/notifications",
	}
}

func (c *NotificationsController) Key() string {
	return c.basePath
}

func (c *NotificationsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireAuthorization(), middleware.WithTransaction())

	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("/unread-count", c.unreadCount).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}/read", c.markRead).Methods(http.MethodPost)
	router.HandleFunc("/read-all", c.markAllRead).Methods(http.MethodPost)
}

func (c *NotificationsController) service() *services.NotificationService {
	return c.app.Service(services.NotificationService{}).(*services.NotificationService)
}

func (c *NotificationsController) list(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	page := shared.ParsePage(r, conf.PageSize, conf.MaxPageSize)
	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, total, err := c.service().GetMine(r.Context(), unreadOnly, page.Limit, page.Offset)
	if err != nil {
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteList(w, notifications, total)
}

func (c *NotificationsController) unreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := c.service().UnreadCount(r.Context())
	if err != nil {
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (c *NotificationsController) markRead(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	if err := c.service().MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, "NOTIFICATION_NOT_FOUND", "notification not found", nil)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}

func (c *NotificationsController) markAllRead(w http.ResponseWriter, r *http.Request) {
	if err := c.service().MarkAllRead(r.Context()); err != nil {
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
