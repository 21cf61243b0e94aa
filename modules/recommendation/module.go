package recommendation

import (
	"venueplanner/core/cache"
	"venueplanner/core/config"
	"venueplanner/core/database"
	"venueplanner/core/middleware"
	"venueplanner/core/queue"
	eventRepository "venueplanner/modules/event/repository"
	eventService "venueplanner/modules/event/service"
	"venueplanner/modules/recommendation/client"
	"venueplanner/modules/recommendation/controller"
	"venueplanner/modules/recommendation/router"
	"venueplanner/modules/recommendation/service"
	votingRepository "venueplanner/modules/voting/repository"

	"github.com/labstack/echo/v4"
)

// Init initializes the recommendation module and returns the service so the
// worker can register its task handler
func Init(
	e *echo.Echo,
	db database.IDatabase,
	mw *middleware.Middleware,
	cfg *config.Config,
	c cache.Cache,
	q queue.IQueue,
	events eventService.EventServiceInterface,
) *service.RecommendationService {
	aiClient := client.NewAIClient(cfg)
	eventRepo := eventRepository.NewEventRepository(db)
	votingRepo := votingRepository.NewVotingRepository(db)
	svc := service.NewRecommendationService(aiClient, c, q, eventRepo, events, votingRepo)
	ctrl := controller.NewRecommendationController(svc)
	rtr := router.NewRecommendationRouter(ctrl)

	rtr.Setup(e, mw)

	return svc
}
