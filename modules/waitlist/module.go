package waitlist

import (
	"venueplanner/core/database"
	"venueplanner/core/middleware"
	eventRepository "venueplanner/modules/event/repository"
	"venueplanner/modules/waitlist/controller"
	"venueplanner/modules/waitlist/repository"
	"venueplanner/modules/waitlist/router"
	"venueplanner/modules/waitlist/service"

	"github.com/labstack/echo/v4"
)

// Init initializes the waitlist module and returns the service so the event
// module can register it as a status listener
func Init(e *echo.Echo, db database.IDatabase, mw *middleware.Middleware) *service.WaitlistService {
	repo := repository.NewWaitlistRepository(db)
	eventRepo := eventRepository.NewEventRepository(db)
	svc := service.NewWaitlistService(repo, eventRepo)
	ctrl := controller.NewWaitlistController(svc)
	rtr := router.NewWaitlistRouter(ctrl)

	rtr.Setup(e, mw)

	return svc
}
