package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskdesk/backend/api/transport"
	"github.com/taskdesk/backend/pkg/httpcontext"
	activityUC "github.com/taskdesk/backend/usecase/activity"
)

type ActivityHandler struct {
	baseHandler
	uc *activityUC.UseCase
}

func NewActivityHandler(uc *activityUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List audit entries for one task, newest first
// @Tags activity
// @Router /api/v1/tasks/{id}/activity [get]
func (h *ActivityHandler) ListForTask(ctx *fasthttp.RequestCtx) {
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

	entries, err := h.uc.ListForTask(stdCtx, taskID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, entries)
}

// @Summary Global audit feed, paged newest first
// @Tags activity
// @Router /api/v1/activity [get]
func (h *ActivityHandler) List(ctx *fasthttp.RequestCtx) {
	requesterID := h.identityID(ctx)
	if requesterID == "" {
		return
	}

	page := parseInt(string(ctx.QueryArgs().Peek("page")), 1)
	if page < 1 {
		page = 1
	}
	limit := parseInt(string(ctx.QueryArgs().Peek("limit")), 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	entries, total, err := h.uc.List(stdCtx, limit, (page-1)*limit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondPage(ctx, entries, transport.NewPagination(page, limit, total))
}
