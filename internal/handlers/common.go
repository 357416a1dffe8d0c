package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/formforge/formbuilder-service/internal/services"
	"github.com/formforge/formbuilder-service/internal/utils"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides logging and shared error mapping for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"remote_addr", c.ClientIP(),
		"request_id", c.GetHeader("X-Request-ID"),
		"user_id", h.extractUserID(c),
	}
	fields = append(fields, additionalFields...)
	h.logger.Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"request_id", c.GetHeader("X-Request-ID"),
		"user_id", h.extractUserID(c),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)
	h.logger.LogError(err, message, fields...)
}

func (h *BaseHandler) extractUserID(c *gin.Context) interface{} {
	if userID, exists := c.Get("user_id"); exists {
		return userID
	}
	return nil
}

// requireUserID returns the authenticated user id or writes a 401.
func (h *BaseHandler) requireUserID(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return "", false
	}
	return userID, true
}

func (h *BaseHandler) parseIDParam(c *gin.Context, param string) uint {
	idStr := c.Param(param)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: err.Error(),
		})
		return 0
	}
	return uint(id)
}

func (h *BaseHandler) parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := c.Query(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// handleServiceError translates service errors into HTTP responses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var answerError *services.AnswerError
	if errors.As(err, &answerError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Invalid answer",
			Details: answerError,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrAnswersRequired):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: err.Error(),
		})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrFormNotOwned), errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
		})
	case errors.Is(err, services.ErrAnonymousDisabled):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrFormInactive):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: err.Error(),
		})
	case services.IsConflict(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: err.Error(),
		})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
