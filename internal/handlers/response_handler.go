package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/formforge/formbuilder-service/internal/repositories"
	"github.com/formforge/formbuilder-service/internal/services"
	"github.com/formforge/formbuilder-service/internal/utils"
)

type ResponseHandler struct {
	BaseHandler
	responseService services.ResponseService
	exportService   services.ExportService
}

func NewResponseHandler(
	responseService services.ResponseService,
	exportService services.ExportService,
	logger utils.Logger,
) *ResponseHandler {
	return &ResponseHandler{
		BaseHandler:     NewBaseHandler(logger),
		responseService: responseService,
		exportService:   exportService,
	}
}

// ListResponses lists a form's responses for its owner
// @Summary List form responses
// @Tags responses
// @Produce json
// @Param id path uint true "Form ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id}/responses [get]
func (h *ResponseHandler) ListResponses(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	filters := repositories.ResponseFilters{
		Limit:  h.parseIntQuery(c, "limit", 20),
		Offset: h.parseIntQuery(c, "offset", 0),
	}
	if from := c.Query("date_from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid date_from",
				Details: err.Error(),
			})
			return
		}
		filters.DateFrom = &t
	}
	if to := c.Query("date_to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid date_to",
				Details: err.Error(),
			})
			return
		}
		filters.DateTo = &t
	}

	responses, total, err := h.responseService.ListByForm(c.Request.Context(), id, userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"responses": responses,
		"total":     total,
	})
}

// GetFormStats returns response aggregates for a form
// @Summary Get form statistics
// @Tags responses
// @Produce json
// @Param id path uint true "Form ID"
// @Success 200 {object} services.FormStatsResult
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id}/stats [get]
func (h *ResponseHandler) GetFormStats(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	stats, err := h.responseService.GetFormStats(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportResponses streams the form's responses as a spreadsheet. The
// format query selects xlsx (default) or csv.
// @Summary Export form responses
// @Tags responses
// @Produce application/octet-stream
// @Param id path uint true "Form ID"
// @Param format query string false "xlsx or csv"
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id}/export [get]
func (h *ResponseHandler) ExportResponses(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	format := c.DefaultQuery("format", "xlsx")

	var (
		data        []byte
		contentType string
		err         error
	)
	switch format {
	case "xlsx":
		data, err = h.exportService.ExportXLSX(c.Request.Context(), id, userID)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "csv":
		data, err = h.exportService.ExportCSV(c.Request.Context(), id, userID)
		contentType = "text/csv"
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid format",
			Details: "supported formats: xlsx, csv",
		})
		return
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("form-%d-responses.%s", id, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

// DeleteResponse removes a single response
// @Summary Delete response
// @Tags responses
// @Produce json
// @Param id path uint true "Response ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /responses/{id} [delete]
func (h *ResponseHandler) DeleteResponse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.responseService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Response deleted"})
}
