package event

import (
	"venueplanner/core/database"
	"venueplanner/core/middleware"
	"venueplanner/modules/event/controller"
	"venueplanner/modules/event/repository"
	"venueplanner/modules/event/router"
	"venueplanner/modules/event/service"

	"github.com/labstack/echo/v4"
)

// Init initializes the event module and returns the service for use by other modules
func Init(e *echo.Echo, db database.IDatabase, mw *middleware.Middleware) *service.EventService {
	repo := repository.NewEventRepository(db)
	svc := service.NewEventService(repo)
	ctrl := controller.NewEventController(svc)
	rtr := router.NewEventRouter(ctrl)

	rtr.Setup(e, mw)

	return svc
}
