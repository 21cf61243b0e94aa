package scheduler

import (
	"venueplanner/core/config"
	"venueplanner/core/database"
	eventRepository "venueplanner/modules/event/repository"
	eventService "venueplanner/modules/event/service"
	"venueplanner/modules/scheduler/service"
	votingService "venueplanner/modules/voting/service"
)

// Init wires the deadline scheduler. It has no HTTP surface; the worker
// registers its sweep handler.
func Init(
	db database.IDatabase,
	cfg *config.Config,
	events eventService.EventServiceInterface,
	voting votingService.VotingServiceInterface,
) *service.DeadlineScheduler {
	eventRepo := eventRepository.NewEventRepository(db)
	return service.NewDeadlineScheduler(cfg, eventRepo, events, voting)
}
