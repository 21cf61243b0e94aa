package router

import (
	"venueplanner/core/middleware"
	"venueplanner/modules/recurring/controller"

	"github.com/labstack/echo/v4"
)

// RecurringRouter handles recurring template routes
type RecurringRouter struct {
	RecurringController *controller.RecurringController
}

// NewRecurringRouter creates a new router
func NewRecurringRouter(recurringController *controller.RecurringController) *RecurringRouter {
	return &RecurringRouter{
		RecurringController: recurringController,
	}
}

// Setup registers recurring template routes
func (r *RecurringRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	privateRoutes := v1.Group("/private")

	templateRoutes := privateRoutes.Group("/recurring-templates", mw.AuthMiddleware())

	templateRoutes.POST("", r.RecurringController.CreateTemplate)
	templateRoutes.GET("", r.RecurringController.ListTemplates)
	templateRoutes.GET("/:id", r.RecurringController.GetTemplate)
	templateRoutes.PUT("/:id", r.RecurringController.UpdateTemplate)
	templateRoutes.POST("/:id/pause", r.RecurringController.Pause)
	templateRoutes.POST("/:id/resume", r.RecurringController.Resume)
	templateRoutes.DELETE("/:id", r.RecurringController.DeleteTemplate)
}
