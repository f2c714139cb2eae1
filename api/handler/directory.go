package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskdesk/backend/api/transport"
	"github.com/taskdesk/backend/pkg/httpcontext"
	directoryUC "github.com/taskdesk/backend/usecase/directory"
)

type DirectoryHandler struct {
	baseHandler
	uc *directoryUC.UseCase
}

func NewDirectoryHandler(uc *directoryUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Get the requester's own identity
// @Tags directory
// @Router /api/v1/profile [get]
func (h *DirectoryHandler) GetProfile(ctx *fasthttp.RequestCtx) {
	requesterID := h.identityID(ctx)
	if requesterID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	identity, err := h.uc.GetIdentity(stdCtx, requesterID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, identity)
}

// @Summary Update the requester's own name/email
// @Tags directory
// @Router /api/v1/profile [put]
func (h *DirectoryHandler) UpdateProfile(ctx *fasthttp.RequestCtx) {
	requesterID := h.identityID(ctx)
	if requesterID == "" {
		return
	}

	var req transport.ProfileUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}
	if err := transport.Validate(req); err != nil {
		h.respondInvalid(ctx, err.Error())
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	identity, err := h.uc.UpdateProfile(stdCtx, requesterID, req.Name, req.Email)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, identity)
}

// @Summary List assignable identities (managers only)
// @Tags directory
// @Router /api/v1/users [get]
func (h *DirectoryHandler) ListAssignable(ctx *fasthttp.RequestCtx) {
	requesterID := h.identityID(ctx)
	if requesterID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	identities, err := h.uc.ListAssignable(stdCtx, requesterID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, identities)
}
