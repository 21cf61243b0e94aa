package controller

import (
	"venueplanner/core/constants"
	"venueplanner/core/controller"
	"venueplanner/core/errors"
	"venueplanner/core/utils"
	"venueplanner/modules/recommendation/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RecommendationController handles recommendation HTTP requests
type RecommendationController struct {
	controller.BaseController
	RecommendationService service.RecommendationServiceInterface
}

// NewRecommendationController creates a new controller
func NewRecommendationController(svc service.RecommendationServiceInterface) *RecommendationController {
	return &RecommendationController{
		BaseController:        controller.NewBaseController(),
		RecommendationService: svc,
	}
}

func (c *RecommendationController) getUserIDFromContext(ctx echo.Context) (uuid.UUID, error) {
	tokenData := ctx.Get(constants.ContextTokenData)
	if tokenData == nil {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "User not authenticated", nil)
	}
	claims, ok := tokenData.(*utils.TokenClaims)
	if !ok {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid token data", nil)
	}
	return claims.UserID, nil
}

// Trigger handles POST /events/:id/recommendations
// @Summary Start venue analysis for an event
// @Description Requires quorum of accepted participants; moves the event into the analysis phase
// @Tags Recommendations
// @Security BearerAuth
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} dto.TriggerResponse
// @Failure 422 {object} errors.AppError
// @Router /private/events/{id}/recommendations [post]
func (c *RecommendationController) Trigger(ctx echo.Context) error {
	organizerID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid event ID")
	}

	result, appErr := c.RecommendationService.Trigger(ctx.Request().Context(), eventID, organizerID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Analysis started")
}

// GetProgress handles GET /events/:id/recommendations/progress
// @Summary Analysis progress for an event
// @Tags Recommendations
// @Security BearerAuth
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} dto.ProgressRecord
// @Router /private/events/{id}/recommendations/progress [get]
func (c *RecommendationController) GetProgress(ctx echo.Context) error {
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid event ID")
	}

	result, appErr := c.RecommendationService.GetProgress(ctx.Request().Context(), eventID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Success")
}
