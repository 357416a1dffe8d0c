package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formforge/formbuilder-service/internal/models"
	"github.com/formforge/formbuilder-service/internal/repositories"
	"github.com/formforge/formbuilder-service/internal/services"
	"github.com/formforge/formbuilder-service/internal/utils"
)

type FormHandler struct {
	BaseHandler
	formService services.FormService
}

func NewFormHandler(formService services.FormService, logger utils.Logger) *FormHandler {
	return &FormHandler{
		BaseHandler: NewBaseHandler(logger),
		formService: formService,
	}
}

// CreateForm creates a new form
// @Summary Create form
// @Description Creates a new form with its question list
// @Tags forms
// @Accept json
// @Produce json
// @Param form body services.CreateFormRequest true "Form data"
// @Success 201 {object} models.Form
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /forms [post]
func (h *FormHandler) CreateForm(c *gin.Context) {
	var req services.CreateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	form, err := h.formService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, form)
}

// GetForm retrieves a form by ID for its owner, answer keys included
// @Summary Get form
// @Tags forms
// @Produce json
// @Param id path uint true "Form ID"
// @Success 200 {object} models.Form
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id} [get]
func (h *FormHandler) GetForm(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	form, err := h.formService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, form)
}

// GetPublicForm retrieves an active form for a respondent. Answer keys
// are stripped before the form leaves the service.
// @Summary Get form for filling out
// @Tags forms
// @Produce json
// @Param id path uint true "Form ID"
// @Success 200 {object} models.Form
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /forms/{id}/view [get]
func (h *FormHandler) GetPublicForm(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	form, err := h.formService.GetForRespondent(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, form)
}

// ListForms lists the caller's forms
// @Summary List forms
// @Tags forms
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} SuccessResponse
// @Router /forms [get]
func (h *FormHandler) ListForms(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	filters := repositories.FormFilters{
		Limit:     h.parseIntQuery(c, "limit", 20),
		Offset:    h.parseIntQuery(c, "offset", 0),
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	if mode := c.Query("mode"); mode != "" {
		m := models.FormMode(mode)
		filters.Mode = &m
	}
	if active := c.Query("is_active"); active != "" {
		isActive := active == "true"
		filters.IsActive = &isActive
	}

	forms, total, err := h.formService.GetByCreator(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"forms": forms,
		"total": total,
	})
}

// UpdateForm updates a form. Published forms reject edits until closed.
// @Summary Update form
// @Tags forms
// @Accept json
// @Produce json
// @Param id path uint true "Form ID"
// @Param form body services.UpdateFormRequest true "Form update data"
// @Success 200 {object} models.Form
// @Failure 409 {object} ErrorResponse
// @Router /forms/{id} [put]
func (h *FormHandler) UpdateForm(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	form, err := h.formService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, form)
}

// PublishForm opens a form for responses
// @Summary Publish form
// @Tags forms
// @Produce json
// @Param id path uint true "Form ID"
// @Success 200 {object} SuccessResponse
// @Router /forms/{id}/publish [post]
func (h *FormHandler) PublishForm(c *gin.Context) {
	h.setFormActive(c, true)
}

// CloseForm stops a form from accepting responses
// @Summary Close form
// @Tags forms
// @Produce json
// @Param id path uint true "Form ID"
// @Success 200 {object} SuccessResponse
// @Router /forms/{id}/close [post]
func (h *FormHandler) CloseForm(c *gin.Context) {
	h.setFormActive(c, false)
}

func (h *FormHandler) setFormActive(c *gin.Context, active bool) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var err error
	var message string
	if active {
		err = h.formService.Publish(c.Request.Context(), id, userID)
		message = "Form published"
	} else {
		err = h.formService.Close(c.Request.Context(), id, userID)
		message = "Form closed"
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}
