package router

import (
	"venueplanner/core/middleware"
	"venueplanner/modules/waitlist/controller"

	"github.com/labstack/echo/v4"
)

// WaitlistRouter handles waitlist routes
type WaitlistRouter struct {
	WaitlistController *controller.WaitlistController
}

// NewWaitlistRouter creates a new router
func NewWaitlistRouter(waitlistController *controller.WaitlistController) *WaitlistRouter {
	return &WaitlistRouter{
		WaitlistController: waitlistController,
	}
}

// Setup registers waitlist routes
func (r *WaitlistRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	privateRoutes := v1.Group("/private")

	eventRoutes := privateRoutes.Group("/events", mw.AuthMiddleware())

	eventRoutes.POST("/:id/waitlist", r.WaitlistController.Join)
	eventRoutes.GET("/:id/waitlist", r.WaitlistController.List)
	eventRoutes.POST("/:id/waitlist/:entryId/promote", r.WaitlistController.Promote)
	eventRoutes.POST("/:id/waitlist/:entryId/expire", r.WaitlistController.Expire)
}
