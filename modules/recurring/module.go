package recurring

import (
	"venueplanner/core/database"
	"venueplanner/core/middleware"
	eventService "venueplanner/modules/event/service"
	"venueplanner/modules/recurring/controller"
	"venueplanner/modules/recurring/repository"
	"venueplanner/modules/recurring/router"
	"venueplanner/modules/recurring/service"

	"github.com/labstack/echo/v4"
)

// Init initializes the recurring module and returns the service so the worker
// can register its materialize handler
func Init(e *echo.Echo, db database.IDatabase, mw *middleware.Middleware, events eventService.EventServiceInterface) *service.RecurringService {
	repo := repository.NewRecurringRepository(db)
	svc := service.NewRecurringService(repo, events)
	ctrl := controller.NewRecurringController(svc)
	rtr := router.NewRecurringRouter(ctrl)

	rtr.Setup(e, mw)

	return svc
}
