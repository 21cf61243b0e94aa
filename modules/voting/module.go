package voting

import (
	"venueplanner/core/database"
	"venueplanner/core/middleware"
	eventRepository "venueplanner/modules/event/repository"
	eventService "venueplanner/modules/event/service"
	"venueplanner/modules/voting/controller"
	"venueplanner/modules/voting/repository"
	"venueplanner/modules/voting/router"
	"venueplanner/modules/voting/service"

	"github.com/labstack/echo/v4"
)

// Init initializes the voting module and returns the service for use by other modules
func Init(e *echo.Echo, db database.IDatabase, mw *middleware.Middleware, events eventService.EventServiceInterface) *service.VotingService {
	repo := repository.NewVotingRepository(db)
	eventRepo := eventRepository.NewEventRepository(db)
	svc := service.NewVotingService(repo, eventRepo, events)
	ctrl := controller.NewVotingController(svc)
	rtr := router.NewVotingRouter(ctrl)

	rtr.Setup(e, mw)

	return svc
}
