package router

import (
	"venueplanner/core/middleware"
	"venueplanner/modules/event/controller"

	"github.com/labstack/echo/v4"
)

// EventRouter handles event routes
type EventRouter struct {
	EventController *controller.EventController
}

// NewEventRouter creates a new router
func NewEventRouter(eventController *controller.EventController) *EventRouter {
	return &EventRouter{
		EventController: eventController,
	}
}

// Setup registers event routes
func (r *EventRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	privateRoutes := v1.Group("/private")

	eventRoutes := privateRoutes.Group("/events", mw.AuthMiddleware())

	eventRoutes.POST("", r.EventController.CreateEvent)
	eventRoutes.GET("", r.EventController.GetMyEvents)
	eventRoutes.GET("/:id", r.EventController.GetEvent)

	// Lifecycle actions
	eventRoutes.POST("/:id/invitations", r.EventController.SendInvitations)
	eventRoutes.POST("/:id/respond", r.EventController.RespondInvitation)
	eventRoutes.POST("/:id/cancel", r.EventController.CancelEvent)
}
