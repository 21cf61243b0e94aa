package router

import (
	"venueplanner/core/middleware"
	"venueplanner/modules/recommendation/controller"

	"github.com/labstack/echo/v4"
)

// RecommendationRouter handles recommendation routes
type RecommendationRouter struct {
	RecommendationController *controller.RecommendationController
}

// NewRecommendationRouter creates a new router
func NewRecommendationRouter(recommendationController *controller.RecommendationController) *RecommendationRouter {
	return &RecommendationRouter{
		RecommendationController: recommendationController,
	}
}

// Setup registers recommendation routes
func (r *RecommendationRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	privateRoutes := v1.Group("/private")

	eventRoutes := privateRoutes.Group("/events", mw.AuthMiddleware())

	eventRoutes.POST("/:id/recommendations", r.RecommendationController.Trigger)
	eventRoutes.GET("/:id/recommendations/progress", r.RecommendationController.GetProgress)
}
