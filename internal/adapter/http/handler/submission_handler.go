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

// SubmissionHandler handles submission ingestion and dashboard reads.
type SubmissionHandler struct {
	submissionSvc ports.SubmissionService
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(submissionSvc ports.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionSvc: submissionSvc}
}

// SubmitPublic handles POST /api/v1/public/forms/:id/submissions — the
// anonymous ingestion entry point. Only published forms accept here.
func (h *SubmissionHandler) SubmitPublic(c *gin.Context) {
	h.submit(c, true)
}

// Submit handles POST /api/v1/forms/:id/submissions — the authenticated
// variant, which also accepts drafts (owner previews).
func (h *SubmissionHandler) Submit(c *gin.Context) {
	h.submit(c, false)
}

func (h *SubmissionHandler) submit(c *gin.Context, requirePublished bool) {
	formID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrFormNotFound())
		return
	}

	var req dto.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	sub, err := h.submissionSvc.Submit(c.Request.Context(), ports.SubmitRequest{
		FormID:           formID,
		Data:             req.Data,
		RecaptchaToken:   req.RecaptchaToken,
		IPAddress:        c.ClientIP(),
		UserAgent:        c.Request.UserAgent(),
		RequirePublished: requirePublished,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Submitted(c, sub.ID)
}

// ListByForm handles GET /api/v1/forms/:id/submissions.
func (h *SubmissionHandler) ListByForm(c *gin.Context) {
	formID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrFormNotFound())
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	subs, err := h.submissionSvc.ListByForm(c.Request.Context(), formID, middleware.Actor(c), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.SubmissionResponse, 0, len(subs))
	for i := range subs {
		items = append(items, dto.NewSubmissionResponse(&subs[i]))
	}
	response.OK(c, items)
}

// Get handles GET /api/v1/submissions/:id.
func (h *SubmissionHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrNotFound("Submission"))
		return
	}

	sub, err := h.submissionSvc.Get(c.Request.Context(), id, middleware.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewSubmissionResponse(sub))
}
