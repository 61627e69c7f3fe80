package handler

import (
	"github.com/robavelii/FusionForms/internal/adapter/http/dto"
	"github.com/robavelii/FusionForms/internal/adapter/http/middleware"
	"github.com/robavelii/FusionForms/internal/core/ports"
	"github.com/robavelii/FusionForms/pkg/apperror"
	"github.com/robavelii/FusionForms/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FormHandler handles form management and the public form read surface.
type FormHandler struct {
	formSvc ports.FormService
}

// NewFormHandler creates a new FormHandler.
func NewFormHandler(formSvc ports.FormService) *FormHandler {
	return &FormHandler{formSvc: formSvc}
}

// Create handles POST /api/v1/forms.
func (h *FormHandler) Create(c *gin.Context) {
	actor := middleware.Actor(c)
	if actor.ID == uuid.Nil {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CreateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	form, err := h.formSvc.Create(c.Request.Context(), actor.ID, ports.CreateFormParams{
		Title:       req.Title,
		Description: req.Description,
		Schema:      req.Schema,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewFormResponse(form))
}

// List handles GET /api/v1/forms.
func (h *FormHandler) List(c *gin.Context) {
	forms, err := h.formSvc.ListByOwner(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.FormResponse, 0, len(forms))
	for i := range forms {
		items = append(items, dto.NewFormResponse(&forms[i]))
	}
	response.OK(c, items)
}

// Get handles GET /api/v1/forms/:id.
func (h *FormHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrFormNotFound())
		return
	}

	form, err := h.formSvc.Get(c.Request.Context(), id, middleware.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewFormResponse(form))
}

// Publish handles POST /api/v1/forms/:id/publish.
func (h *FormHandler) Publish(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrFormNotFound())
		return
	}

	form, err := h.formSvc.Publish(c.Request.Context(), id, middleware.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewFormResponse(form))
}

// Analytics handles GET /api/v1/forms/:id/analytics.
func (h *FormHandler) Analytics(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrFormNotFound())
		return
	}

	analytics, err := h.formSvc.Analytics(c.Request.Context(), id, middleware.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewAnalyticsResponse(analytics))
}

// GetPublished handles GET /api/v1/public/forms/:id — the anonymous read
// used by form renderers. Drafts are indistinguishable from missing forms.
func (h *FormHandler) GetPublished(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrFormNotFound())
		return
	}

	form, err := h.formSvc.GetPublished(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewFormResponse(form))
}

// TrackView handles POST /api/v1/public/forms/:id/view.
func (h *FormHandler) TrackView(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrFormNotFound())
		return
	}

	if err := h.formSvc.TrackView(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"tracked": true})
}
