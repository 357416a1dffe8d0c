package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formforge/formbuilder-service/internal/ratelimit"
	"github.com/formforge/formbuilder-service/internal/services"
	"github.com/formforge/formbuilder-service/internal/utils"
)

type SubmissionHandler struct {
	BaseHandler
	submissionService services.SubmissionService
	limiter           ratelimit.Limiter
}

func NewSubmissionHandler(
	submissionService services.SubmissionService,
	limiter ratelimit.Limiter,
	logger utils.Logger,
) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler:       NewBaseHandler(logger),
		submissionService: submissionService,
		limiter:           limiter,
	}
}

// SubmitResponse accepts a respondent's answers for an active form. The
// whole submission is rejected when any single answer fails validation.
// @Summary Submit form response
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path uint true "Form ID"
// @Param submission body services.SubmitRequest true "Submitted answers"
// @Success 201 {object} services.SubmitResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /forms/{id}/submit [post]
func (h *SubmissionHandler) SubmitResponse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if !h.limiter.Allow(c.ClientIP()) {
		c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Message: "Too many submissions, slow down",
		})
		return
	}

	var req services.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting response", "form_id", id, "answers_count", len(req.Answers))

	meta := services.SubmitMeta{
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}

	result, err := h.submissionService.Submit(c.Request.Context(), id, &req, meta)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}
