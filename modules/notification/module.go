package notification

import (
	"venueplanner/core/cache"
	"venueplanner/core/database"
	"venueplanner/core/middleware"
	eventRepository "venueplanner/modules/event/repository"
	"venueplanner/modules/notification/controller"
	"venueplanner/modules/notification/repository"
	"venueplanner/modules/notification/router"
	"venueplanner/modules/notification/service"

	"github.com/labstack/echo/v4"
)

// Init initializes the notification module and returns the service so it can
// be registered as an event status listener
func Init(e *echo.Echo, db database.IDatabase, mw *middleware.Middleware, c cache.Cache) *service.NotificationService {
	repo := repository.NewNotificationRepository(db)
	eventRepo := eventRepository.NewEventRepository(db)
	svc := service.NewNotificationService(repo, eventRepo, c)
	ctrl := controller.NewNotificationController(svc)
	rtr := router.NewNotificationRouter(ctrl)

	rtr.Setup(e, mw)

	return svc
}
