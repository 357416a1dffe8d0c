package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/formforge/formbuilder-service/internal/ratelimit"
	"github.com/formforge/formbuilder-service/internal/services"
	"github.com/formforge/formbuilder-service/internal/utils"
)

type HandlerManager struct {
	formHandler       *FormHandler
	submissionHandler *SubmissionHandler
	responseHandler   *ResponseHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	limiter ratelimit.Limiter,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		formHandler:       NewFormHandler(serviceManager.Form(), logger),
		submissionHandler: NewSubmissionHandler(serviceManager.Submission(), limiter, logger),
		responseHandler:   NewResponseHandler(serviceManager.Response(), serviceManager.Export(), logger),
	}
}

// SetupRoutes sets up all API routes. Respondent routes are public;
// everything touching form definitions or collected responses requires
// an authenticated author.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "formbuilder-service",
		})
	})

	v1 := router.Group("/api/v1")
	{
		// Public respondent routes
		v1.GET("/forms/:id/view", hm.formHandler.GetPublicForm)
		v1.POST("/forms/:id/submit", hm.submissionHandler.SubmitResponse)

		// Author routes
		forms := v1.Group("/forms", authMiddleware)
		{
			forms.POST("", hm.formHandler.CreateForm)
			forms.GET("", hm.formHandler.ListForms)
			forms.GET("/:id", hm.formHandler.GetForm)
			forms.PUT("/:id", hm.formHandler.UpdateForm)
			forms.POST("/:id/publish", hm.formHandler.PublishForm)
			forms.POST("/:id/close", hm.formHandler.CloseForm)

			forms.GET("/:id/responses", hm.responseHandler.ListResponses)
			forms.GET("/:id/stats", hm.responseHandler.GetFormStats)
			forms.GET("/:id/export", hm.responseHandler.ExportResponses)
		}

		responses := v1.Group("/responses", authMiddleware)
		{
			responses.DELETE("/:id", hm.responseHandler.DeleteResponse)
		}
	}
}
