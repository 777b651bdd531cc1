package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"task-manager/middlewares"
	"task-manager/models"
	"task-manager/services"
	"task-manager/utils"
)

type TaskHandler struct {
	Tasks  *services.TaskStore
	Logger *slog.Logger
}

type createTaskRequest struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

type updateTaskRequest struct {
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// taskQuery reads ?completed=&limit=&skip=&sortBy=&order= . Values that do
// not parse are ignored.
func taskQuery(r *http.Request) models.TaskQuery {
	v := r.URL.Query()
	var q models.TaskQuery
	if c := v.Get("completed"); c != "" {
		completed := c == "true"
		q.Completed = &completed
	}
	q.Limit, _ = strconv.Atoi(v.Get("limit"))
	q.Skip, _ = strconv.Atoi(v.Get("skip"))
	q.SortBy = v.Get("sortBy")
	q.Desc = v.Get("order") == "desc"
	return q
}

// GetTasks godoc
// @Summary      List own tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        completed  query  bool    false  "Filter by completion"
// @Param        limit      query  int     false  "Page size"
// @Param        skip       query  int     false  "Offset"
// @Param        sortBy     query  string  false  "createdAt, updatedAt, description or completed"
// @Param        order      query  string  false  "asc or desc"
// @Success      200  {array}   models.Task
// @Failure      401  {object}  map[string]string
// @Router       /tasks [get]
func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r)
	tasks, err := h.Tasks.List(r.Context(), user.ID, taskQuery(r))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, tasks)
}

// CreateTask godoc
// @Summary      Create a task owned by the caller
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        task  body  createTaskRequest  true  "Task to create"
// @Success      201  {object}  models.Task
// @Failure      400  {object}  map[string]string
// @Router       /tasks [post]
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	user := middlewares.CurrentUser(r)
	task, err := h.Tasks.Create(r.Context(), user.ID, req.Description, req.Completed)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, task)
}

// GetTaskByID godoc
// @Summary      Get one of the caller's tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Task ID"
// @Success      200  {object}  models.Task
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	user := middlewares.CurrentUser(r)
	task, err := h.Tasks.Get(r.Context(), user.ID, id)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, task)
}

// UpdateTask godoc
// @Summary      Update description or completed on one of the caller's tasks
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string             true  "Task ID"
// @Param        task  body  updateTaskRequest  true  "Fields to change"
// @Success      201  {object}  models.Task
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
	if err := decodePatch(r, models.TaskUpdateFields, &req); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	user := middlewares.CurrentUser(r)
	task, err := h.Tasks.Update(r.Context(), user.ID, id, models.TaskPatch{
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, task)
}

// DeleteTask godoc
// @Summary      Delete one of the caller's tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Task ID"
// @Success      200  {object}  models.Task
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	user := middlewares.CurrentUser(r)
	task, err := h.Tasks.Delete(r.Context(), user.ID, id)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, task)
}
