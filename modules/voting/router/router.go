package router

import (
	"venueplanner/core/middleware"
	"venueplanner/modules/voting/controller"

	"github.com/labstack/echo/v4"
)

// VotingRouter handles voting routes
type VotingRouter struct {
	VotingController *controller.VotingController
}

// NewVotingRouter creates a new router
func NewVotingRouter(votingController *controller.VotingController) *VotingRouter {
	return &VotingRouter{
		VotingController: votingController,
	}
}

// Setup registers voting routes
func (r *VotingRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	privateRoutes := v1.Group("/private")

	eventRoutes := privateRoutes.Group("/events", mw.AuthMiddleware())

	eventRoutes.GET("/:id/options", r.VotingController.ListOptions)
	eventRoutes.POST("/:id/votes", r.VotingController.CastVote)
	eventRoutes.GET("/:id/votes/statistics", r.VotingController.GetStatistics)
	eventRoutes.POST("/:id/finalize", r.VotingController.Finalize)
}
