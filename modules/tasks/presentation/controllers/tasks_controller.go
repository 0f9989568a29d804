package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/stafflink/backoffice/modules/tasks/domain/entities/task"
	"github.com/stafflink/backoffice/modules/tasks/services"
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

func writeTaskNotFound(w http.ResponseWriter) {
	_ = httpapi.WriteError(w, http.StatusNotFound, "TASK_NOT_FOUND", "task not found", nil)
}

type reassignRequest struct {
	AssigneeIDs []uint `json:"assignee_ids"`
}

type TasksController struct {
	app      application.Application
	basePath string
}

func NewTasksController(app application.Application) application.Controller {
	return &TasksController{
		app:      app,
		basePath: "/api/tasks",
	}
}

func (c *TasksController) Key() string {
	return c.basePath
}

func (c *TasksController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireAuthorization(), middleware.WithTransaction())

	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}", c.update).Methods(http.MethodPut)
	router.HandleFunc("/{id:[0-9]+}", c.delete).Methods(http.MethodDelete)
	router.HandleFunc("/{id:[0-9]+}/status", c.setStatus).Methods(http.MethodPut)
	router.HandleFunc("/{id:[0-9]+}/assignees", c.reassign).Methods(http.MethodPut)
	router.HandleFunc("/{id:[0-9]+}/cancel", c.cancel).Methods(http.MethodPost)
}

func (c *TasksController) service() *services.TaskService {
	return c.app.Service(services.TaskService{}).(*services.TaskService)
}

func (c *TasksController) list(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	page := shared.ParsePage(r, conf.PageSize, conf.MaxPageSize)
	q := r.URL.Query()

	params := &task.FindParams{
		Search:          q.Get("search"),
		Status:          task.Status(q.Get("status")),
		Priority:        task.Priority(q.Get("priority")),
		Overdue:         q.Get("overdue") == "true",
		IncludeInactive: q.Get("include_inactive") == "true",
		Limit:           page.Limit,
		Offset:          page.Offset,
	}
	if raw := q.Get("assignee_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid assignee_id", nil)
			return
		}
		assigneeID := uint(id)
		params.AssigneeID = &assigneeID
	}
	if raw := q.Get("created_by"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid created_by", nil)
			return
		}
		createdBy := uint(id)
		params.CreatedBy = &createdBy
	}
	if q.Get("from") != "" || q.Get("to") != "" {
		dr, err := shared.ParseDateRange(r, 0)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid date range", nil)
			return
		}
		if q.Get("from") != "" {
			params.DueFrom = &dr.From
		}
		if q.Get("to") != "" {
			params.DueTo = &dr.To
		}
	}

	tasks, total, err := c.service().GetPaginated(r.Context(), params)
	if err != nil {
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteList(w, tasks, total)
}

func (c *TasksController) get(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	t, err := c.service().GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			writeTaskNotFound(w)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, t)
}

func (c *TasksController) create(w http.ResponseWriter, r *http.Request) {
	var dto task.CreateDTO
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

func (c *TasksController) update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	var dto task.UpdateDTO
	if !decodeJSON(w, r, &dto) {
		return
	}
	updated, err := c.service().Update(r.Context(), id, &dto)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			writeTaskNotFound(w)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, updated)
}

func (c *TasksController) setStatus(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	var dto task.StatusDTO
	if !decodeJSON(w, r, &dto) {
		return
	}
	t, err := c.service().SetMyStatus(r.Context(), id, &dto)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			writeTaskNotFound(w)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, t)
}

func (c *TasksController) reassign(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	var req reassignRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := c.service().Reassign(r.Context(), id, req.AssigneeIDs)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			writeTaskNotFound(w)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, t)
}

func (c *TasksController) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	t, err := c.service().Cancel(r.Context(), id)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			writeTaskNotFound(w)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, t)
}

func (c *TasksController) delete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseID(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return
	}
	if err := c.service().Delete(r.Context(), id); err != nil {
		if errors.Is(err, task.ErrNotFound) {
			writeTaskNotFound(w)
			return
		}
		_ = httpapi.RespondError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
