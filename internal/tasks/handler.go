package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/workshopstudio/taskapi/internal/types"
)

// Request parameter names
const (
	HeaderUserID   = "X-User-Id"
	QueryUserID    = "userId"
	PathTaskID     = "taskId"
	TasksPath      = "/tasks"
	taskIDPrefix   = "task-"
	maxTitleLength = 200
)

// Error messages
const (
	ErrMsgUserIDRequired   = "userId is required"
	ErrMsgInvalidReqBody   = "Invalid request body"
	ErrMsgTaskNotFound     = "Task not found"
	ErrMsgRouteNotFound    = "Route not found"
	ErrMsgMethodNotAllowed = "Method not allowed"
	ErrMsgInternal         = "Internal server error"
	ErrMsgTitleTooLong     = "title must be at most 200 characters"
)

// CreateTaskRequest is the body of POST /tasks
type CreateTaskRequest struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Priority    types.TaskPriority `json:"priority"`
	DueDate     *time.Time         `json:"dueDate"`
	Tags        []string           `json:"tags"`
}

// UpdateTaskRequest is the body of PUT /tasks/{taskId}. Nil fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	Status      *types.TaskStatus   `json:"status"`
	Priority    *types.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"dueDate"`
	Tags        []string            `json:"tags"`
}

// ListTasksResponse is the body of GET /tasks
type ListTasksResponse struct {
	Tasks []types.Task `json:"tasks"`
	Count int          `json:"count"`
}

// Handler serves the task API behind an API Gateway proxy integration.
type Handler struct {
	store    Store
	notifier *Notifier
	log      logrus.FieldLogger
	now      func() time.Time
	newID    func() string
}

// HandlerOption configures a Handler
type HandlerOption func(*Handler)

// WithNotifier sets the notifier used for change events and archiving
func WithNotifier(n *Notifier) HandlerOption {
	return func(h *Handler) {
		h.notifier = n
	}
}

// WithLogger sets the logger
func WithLogger(l logrus.FieldLogger) HandlerOption {
	return func(h *Handler) {
		h.log = l
	}
}

// WithClock sets the time source used for timestamps
func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.now = now
	}
}

// WithIDGenerator sets the task id generator
func WithIDGenerator(newID func() string) HandlerOption {
	return func(h *Handler) {
		h.newID = newID
	}
}

// NewHandler creates a handler over the given store
func NewHandler(store Store, opts ...HandlerOption) *Handler {
	h := &Handler{
		store: store,
		log:   logrus.StandardLogger(),
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return taskIDPrefix + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle routes a proxy request to the matching operation. Errors are
// reported through the response; the returned error is always nil so API
// Gateway never sees a function failure.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if req.HTTPMethod == http.MethodOptions {
		return Respond(http.StatusOK, nil), nil
	}

	taskID, ok := routeTaskID(req)
	if !ok {
		return RespondError(http.StatusNotFound, ErrMsgRouteNotFound), nil
	}

	userID := requestUserID(req)
	if userID == "" {
		return RespondError(http.StatusBadRequest, ErrMsgUserIDRequired), nil
	}

	log := h.log.WithFields(logrus.Fields{
		"method":    req.HTTPMethod,
		"path":      req.Path,
		"requestId": req.RequestContext.RequestID,
		"userId":    userID,
	})

	switch {
	case taskID == "" && req.HTTPMethod == http.MethodGet:
		return h.list(ctx, log, userID), nil
	case taskID == "" && req.HTTPMethod == http.MethodPost:
		return h.create(ctx, log, userID, req.Body), nil
	case taskID != "" && req.HTTPMethod == http.MethodGet:
		return h.get(ctx, log, userID, taskID), nil
	case taskID != "" && req.HTTPMethod == http.MethodPut:
		return h.update(ctx, log, userID, taskID, req.Body), nil
	case taskID != "" && req.HTTPMethod == http.MethodDelete:
		return h.delete(ctx, log, userID, taskID), nil
	default:
		return RespondError(http.StatusMethodNotAllowed, ErrMsgMethodNotAllowed), nil
	}
}

func (h *Handler) list(ctx context.Context, log logrus.FieldLogger, userID string) events.APIGatewayProxyResponse {
	tasks, err := h.store.ListByUser(ctx, userID)
	if err != nil {
		return h.storeError(log, err)
	}
	return Respond(http.StatusOK, ListTasksResponse{Tasks: tasks, Count: len(tasks)})
}

func (h *Handler) get(ctx context.Context, log logrus.FieldLogger, userID, taskID string) events.APIGatewayProxyResponse {
	task, err := h.store.Get(ctx, userID, taskID)
	if err != nil {
		return h.storeError(log, err)
	}
	return Respond(http.StatusOK, task)
}

func (h *Handler) create(ctx context.Context, log logrus.FieldLogger, userID, body string) events.APIGatewayProxyResponse {
	var req CreateTaskRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return RespondError(http.StatusBadRequest, ErrMsgInvalidReqBody)
	}

	now := h.now()
	task := types.Task{
		TaskID:      h.newID(),
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      types.TaskStatusTodo,
		Priority:    req.Priority,
		Tags:        req.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Priority == "" {
		task.Priority = types.TaskPriorityMedium
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate.UTC()
	}
	if resp, ok := validate(&task); !ok {
		return resp
	}

	if err := h.store.Create(ctx, &task); err != nil {
		return h.storeError(log, err)
	}
	log.WithField("taskId", task.TaskID).Info("Task created")
	h.notify(ctx, log, EventTaskCreated, task)
	return Respond(http.StatusCreated, task)
}

func (h *Handler) update(ctx context.Context, log logrus.FieldLogger, userID, taskID, body string) events.APIGatewayProxyResponse {
	var req UpdateTaskRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return RespondError(http.StatusBadRequest, ErrMsgInvalidReqBody)
	}

	task, err := h.store.Get(ctx, userID, taskID)
	if err != nil {
		return h.storeError(log, err)
	}
	if req.Title != nil {
		task.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate.UTC()
	}
	if req.Tags != nil {
		task.Tags = req.Tags
	}
	task.UpdatedAt = h.now()
	if resp, ok := validate(task); !ok {
		return resp
	}

	if err := h.store.Update(ctx, task); err != nil {
		return h.storeError(log, err)
	}
	log.WithField("taskId", task.TaskID).Info("Task updated")
	h.notify(ctx, log, EventTaskUpdated, *task)
	return Respond(http.StatusOK, task)
}

func (h *Handler) delete(ctx context.Context, log logrus.FieldLogger, userID, taskID string) events.APIGatewayProxyResponse {
	task, err := h.store.Get(ctx, userID, taskID)
	if err != nil {
		return h.storeError(log, err)
	}
	if err := h.store.Delete(ctx, userID, taskID); err != nil {
		return h.storeError(log, err)
	}
	log.WithField("taskId", taskID).Info("Task deleted")
	if h.notifier != nil {
		if err := h.notifier.Archive(ctx, *task); err != nil {
			log.WithError(err).Warn("Failed to archive task")
		}
	}
	h.notify(ctx, log, EventTaskDeleted, *task)
	return Respond(http.StatusNoContent, nil)
}

// notify reports a change; failures are logged and never fail the request.
func (h *Handler) notify(ctx context.Context, log logrus.FieldLogger, eventType string, task types.Task) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.TaskChanged(ctx, eventType, task); err != nil {
		log.WithError(err).Warn("Failed to publish task event")
	}
}

func (h *Handler) storeError(log logrus.FieldLogger, err error) events.APIGatewayProxyResponse {
	switch {
	case errors.Is(err, ErrNotFound):
		return RespondError(http.StatusNotFound, ErrMsgTaskNotFound)
	case errors.Is(err, ErrAlreadyExists):
		return RespondError(http.StatusConflict, err.Error())
	default:
		log.WithError(err).Error("Task store failure")
		return RespondError(http.StatusInternalServerError, ErrMsgInternal)
	}
}

func validate(task *types.Task) (events.APIGatewayProxyResponse, bool) {
	if err := task.Validate(); err != nil {
		return RespondError(http.StatusBadRequest, err.Error()), false
	}
	if len(task.Title) > maxTitleLength {
		return RespondError(http.StatusBadRequest, ErrMsgTitleTooLong), false
	}
	return events.APIGatewayProxyResponse{}, true
}

// routeTaskID extracts the task id from the request. It reports false when
// the path is outside the task API.
func routeTaskID(req events.APIGatewayProxyRequest) (string, bool) {
	if id, ok := req.PathParameters[PathTaskID]; ok {
		return id, true
	}
	path := strings.TrimSuffix(req.Path, "/")
	if path == TasksPath {
		return "", true
	}
	rest, found := strings.CutPrefix(path, TasksPath+"/")
	if !found || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

func requestUserID(req events.APIGatewayProxyRequest) string {
	for k, v := range req.Headers {
		if strings.EqualFold(k, HeaderUserID) && v != "" {
			return v
		}
	}
	return req.QueryStringParameters[QueryUserID]
}
