package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskdesk/backend/api/transport"
	"github.com/taskdesk/backend/domain"
	"github.com/taskdesk/backend/pkg/httpcontext"
	taskflowUC "github.com/taskdesk/backend/usecase/taskflow"
)

type TaskHandler struct {
	baseHandler
	uc *taskflowUC.UseCase
}

func NewTaskHandler(uc *taskflowUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List tasks scoped by role
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) ListTasks(ctx *fasthttp.RequestCtx) {
	requesterID := h.identityID(ctx)
	if requesterID == "" {
		return
	}

	page, limit := pageParams(ctx)
	status := string(ctx.QueryArgs().Peek("status"))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	views, total, err := h.uc.List(stdCtx, requesterID, status, limit, (page-1)*limit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondPage(ctx, views, transport.NewPagination(page, limit, total))
}

// @Summary List tasks assigned to the requester
// @Tags tasks
// @Router /api/v1/tasks/assigned [get]
func (h *TaskHandler) ListAssigned(ctx *fasthttp.RequestCtx) {
	requesterID := h.identityID(ctx)
	if requesterID == "" {
		return
	}

	page, limit := pageParams(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	views, total, err := h.uc.ListAssigned(stdCtx, requesterID, limit, (page-1)*limit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondPage(ctx, views, transport.NewPagination(page, limit, total))
}

// @Summary List tasks created by the requester
// @Tags tasks
// @Router /api/v1/tasks/created [get]
func (h *TaskHandler) ListCreated(ctx *fasthttp.RequestCtx) {
	requesterID := h.identityID(ctx)
	if requesterID == "" {
		return
	}

	page, limit := pageParams(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	views, total, err := h.uc.ListCreated(stdCtx, requesterID, limit, (page-1)*limit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondPage(ctx, views, transport.NewPagination(page, limit, total))
}

// @Summary Get a task by id
// @Tags tasks
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
	requesterID := h.identityID(ctx)
	if requesterID == "" {
		return
	}
	taskID, _ := ctx.UserValue("id").(string)
	if taskID == "" {
		h.respondInvalid(ctx, "missing task id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	view, err := h.uc.Get(stdCtx, requesterID, taskID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, view)
}

// @Summary Create a task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	requesterID := h.identityID(ctx)
	if requesterID == "" {
		return
	}

	var req transport.TaskCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}
	if err := transport.Validate(req); err != nil {
		h.respondInvalid(ctx, err.Error())
		return
	}

	due, ok := parseDueDate(req.DueDate)
	if !ok {
		h.respondInvalid(ctx, "unparseable due date")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	view, err := h.uc.Create(stdCtx, requesterID, taskflowUC.CreateRequest{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		Priority:    domain.TaskPriority(req.Priority),
		DueDate:     due,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, view)
}

// @Summary Update a task
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	requesterID := h.identityID(ctx)
	if requesterID == "" {
		return
	}
	taskID, _ := ctx.UserValue("id").(string)
	if taskID == "" {
		h.respondInvalid(ctx, "missing task id")
		return
	}

	var req transport.TaskUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}
	if err := transport.Validate(req); err != nil {
		h.respondInvalid(ctx, err.Error())
		return
	}

	update := taskflowUC.UpdateRequest{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		Comment:     req.Comment,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		update.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		update.Priority = &priority
	}
	if req.DueDate != nil {
		due, ok := parseDueDate(*req.DueDate)
		if !ok || due == nil {
			h.respondInvalid(ctx, "unparseable due date")
			return
		}
		update.DueDate = due
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	view, _, err := h.uc.Update(stdCtx, requesterID, taskID, update)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, view)
}

// @Summary Delete a task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	requesterID := h.identityID(ctx)
	if requesterID == "" {
		return
	}
	taskID, _ := ctx.UserValue("id").(string)
	if taskID == "" {
		h.respondInvalid(ctx, "missing task id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, requesterID, taskID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// parseDueDate accepts RFC3339 timestamps or plain dates. An empty
// string is a valid absence.
func parseDueDate(raw string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return &parsed, true
	}
	if parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
		return &parsed, true
	}
	return nil, false
}

func pageParams(ctx *fasthttp.RequestCtx) (page, limit int) {
	page = parseInt(string(ctx.QueryArgs().Peek("page")), 1)
	if page < 1 {
		page = 1
	}
	limit = parseInt(string(ctx.QueryArgs().Peek("limit")), 10)
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
