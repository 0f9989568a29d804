package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/stafflink/backoffice/modules/crm/domain/entities/meeting"
	"github.com/stafflink/backoffice/modules/crm/services"
	"github.com/stafflink/backoffice/pkg/application"
	"github.com/stafflink/backoffice/pkg/configuration"
	"github.com/stafflink/backoffice/pkg/httpapi"
	"github.com/stafflink/backoffice/pkg/middleware"
	"github.com/stafflink/backoffice/pkg/shared"
)

func writeMeetingNotFound(w http.ResponseWriter) {
	_ = httpapi.WriteError(w, http.StatusNotFound, "MEETING_NOT_FOUND", "meeting not found", nil)
}

type MeetingsController struct {
	app      application.Application
	basePath string
}

func NewMeetingsController(app application.Application) application.Controller {
	return &MeetingsController{
		app:      app,
		basePath: "/api/meetings",
	}
}

func (c *MeetingsController) Key() string {
	return c.basePath
}

func (c *MeetingsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireAuthorization(), middleware.WithTransaction())

	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}", c.update).Methods(http.MethodPut)
	router.HandleFunc("/{id:[0-9]+}", c.delete).Methods(http.MethodDelete)
	router.HandleFunc("/{id:[0-9]+}/complete", c.complete).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}/cancel", c.cancel).Methods(http.MethodPost)
}

func (c *MeetingsController) service() *services.MeetingService {
	return c.app.Service(services.MeetingService{}).(*services.MeetingService)
}

func (c *MeetingsController) list(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	page := shared.ParsePage(r, conf.PageSize, conf.MaxPageSize)
	q := r.URL.Query()

	params := &meeting.FindParams{
		Search: q.Get("search"),
		Status: meeting.Status(q.Get("status")),
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	if raw := q.Get("organizer_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid organizer_id", nil)
			return
		}
		organizerID := uint(id)
		params.OrganizerID = &organizerID
	}
	if raw := q.Get("attendee_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid attendee_id", nil)
			return
		}
		attendeeID := uint(id)
		params.AttendeeID = &attendeeID
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

	meetings, total, err := c.service().GetPaginated(r.Context(), params)
	if err != nil {
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteList(w, meetings, total)
}

func (c *MeetingsController) get(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		writeBadID(w)
		return
	}
	m, err := c.service().GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, meeting.ErrNotFound) {
			writeMeetingNotFound(w)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, m)
}

func (c *MeetingsController) create(w http.ResponseWriter, r *http.Request) {
	var dto meeting.CreateDTO
	if !decodeJSON(w, r, &dto) {
		return
	}
	created, err := c.service().Create(r.Context(), &dto)
	if err != nil {
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, created)
}

func (c *MeetingsController) update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		writeBadID(w)
		return
	}
	var dto meeting.UpdateDTO
	if !decodeJSON(w, r, &dto) {
		return
	}
	updated, err := c.service().Update(r.Context(), id, &dto)
	if err != nil {
		if errors.Is(err, meeting.ErrNotFound) {
			writeMeetingNotFound(w)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, updated)
}

func (c *MeetingsController) complete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		writeBadID(w)
		return
	}
	m, err := c.service().Complete(r.Context(), id)
	if err != nil {
		if errors.Is(err, meeting.ErrNotFound) {
			writeMeetingNotFound(w)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, m)
}

func (c *MeetingsController) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		writeBadID(w)
		return
	}
	m, err := c.service().Cancel(r.Context(), id)
	if err != nil {
		if errors.Is(err, meeting.ErrNotFound) {
			writeMeetingNotFound(w)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, m)
}

func (c *MeetingsController) delete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		writeBadID(w)
		return
	}
	if err := c.service().Delete(r.Context(), id); err != nil {
		if errors.Is(err, meeting.ErrNotFound) {
			writeMeetingNotFound(w)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
