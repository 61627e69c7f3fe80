package handler

import (
	"strconv"

	"github.com/robavelii/FusionForms/internal/adapter/http/dto"
	"github.com/robavelii/FusionForms/internal/adapter/http/middleware"
	"github.com/robavelii/FusionForms/internal/core/ports"
	"github.com/robavelii/FusionForms/pkg/apperror"
	"github.com/robavelii/FusionForms/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WebhookHandler handles webhook subscription management.
type WebhookHandler struct {
	webhookSvc ports.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(webhookSvc ports.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookSvc: webhookSvc}
}

// Create handles POST /api/v1/forms/:id/webhooks.
func (h *WebhookHandler) Create(c *gin.Context) {
	formID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrFormNotFound())
		return
	}

	var req dto.CreateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	hook, err := h.webhookSvc.Create(c.Request.Context(), middleware.Actor(c), ports.CreateWebhookParams{
		FormID: formID,
		Name:   req.Name,
		URL:    req.URL,
		Secret: req.Secret,
		Events: req.Events,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewWebhookResponse(hook))
}

// ListByForm handles GET /api/v1/forms/:id/webhooks.
func (h *WebhookHandler) ListByForm(c *gin.Context) {
	formID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrFormNotFound())
		return
	}

	hooks, err := h.webhookSvc.ListByForm(c.Request.Context(), formID, middleware.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.WebhookResponse, 0, len(hooks))
	for i := range hooks {
		items = append(items, dto.NewWebhookResponse(&hooks[i]))
	}
	response.OK(c, items)
}

// Delete handles DELETE /api/v1/webhooks/:id.
func (h *WebhookHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrWebhookNotFound())
		return
	}

	if err := h.webhookSvc.Delete(c.Request.Context(), id, middleware.Actor(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"deleted": true})
}

// Test handles POST /api/v1/webhooks/:id/test — a synchronous one-shot
// delivery so integrators can verify their receiver and signature check.
func (h *WebhookHandler) Test(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrWebhookNotFound())
		return
	}

	result, err := h.webhookSvc.Test(c.Request.Context(), id, middleware.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.TestDeliveryResponse{
		ResponseCode: result.ResponseCode,
		ResponseBody: result.ResponseBody,
	})
}

// Logs handles GET /api/v1/webhooks/:id/logs.
func (h *WebhookHandler) Logs(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrWebhookNotFound())
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	logs, err := h.webhookSvc.Logs(c.Request.Context(), id, middleware.Actor(c), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.WebhookLogResponse, 0, len(logs))
	for i := range logs {
		items = append(items, dto.NewWebhookLogResponse(&logs[i]))
	}
	response.OK(c, items)
}
