package router

import (
	"venueplanner/core/middleware"
	"venueplanner/modules/notification/controller"

	"github.com/labstack/echo/v4"
)

// NotificationRouter handles notification routes
type NotificationRouter struct {
	NotificationController *controller.NotificationController
}

// NewNotificationRouter creates a new router
func NewNotificationRouter(notificationController *controller.NotificationController) *NotificationRouter {
	return &NotificationRouter{
		NotificationController: notificationController,
	}
}

// Setup registers notification routes
func (r *NotificationRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	privateRoutes := v1.Group("/private")

	notificationRoutes := privateRoutes.Group("/notifications", mw.AuthMiddleware())

	notificationRoutes.GET("", r.NotificationController.GetMyNotifications)
	notificationRoutes.POST("/read", r.NotificationController.MarkAsRead)
	notificationRoutes.POST("/read-all", r.NotificationController.MarkAllAsRead)
	notificationRoutes.GET("/unread-count", r.NotificationController.CountUnread)
}
