package controller

import (
	"venueplanner/core/constants"
	"venueplanner/core/controller"
	"venueplanner/core/errors"
	"venueplanner/core/utils"
	"venueplanner/modules/voting/dto"
	"venueplanner/modules/voting/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// VotingController handles voting HTTP requests
type VotingController struct {
	controller.BaseController
	VotingService service.VotingServiceInterface
}

// NewVotingController creates a new controller
func NewVotingController(svc service.VotingServiceInterface) *VotingController {
	return &VotingController{
		BaseController: controller.NewBaseController(),
		VotingService:  svc,
	}
}

func (c *VotingController) getUserIDFromContext(ctx echo.Context) (uuid.UUID, error) {
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

// ListOptions handles GET /events/:id/options
// @Summary List venue options
// @Tags Voting
// @Security BearerAuth
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {array} dto.VenueOptionResponse
// @Router /private/events/{id}/options [get]
func (c *VotingController) ListOptions(ctx echo.Context) error {
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid event ID")
	}

	result, appErr := c.VotingService.ListOptions(ctx.Request().Context(), eventID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Success")
}

// CastVote handles POST /events/:id/votes
// @Summary Cast or update a vote
// @Description Rate one venue option; casting again updates the previous rating
// @Tags Voting
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param request body dto.CastVoteRequest true "Vote"
// @Success 200 {object} map[string]string
// @Failure 422 {object} errors.AppError
// @Router /private/events/{id}/votes [post]
func (c *VotingController) CastVote(ctx echo.Context) error {
	voterID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid event ID")
	}

	var req dto.CastVoteRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	appErr := c.VotingService.CastVote(ctx.Request().Context(), eventID, voterID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Vote recorded")
}

// GetStatistics handles GET /events/:id/votes/statistics
// @Summary Vote statistics
// @Tags Voting
// @Security BearerAuth
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} dto.VoteStatisticsResponse
// @Router /private/events/{id}/votes/statistics [get]
func (c *VotingController) GetStatistics(ctx echo.Context) error {
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid event ID")
	}

	result, appErr := c.VotingService.GetStatistics(ctx.Request().Context(), eventID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Success")
}

// Finalize handles POST /events/:id/finalize
// @Summary Finalize the venue
// @Tags Voting
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param request body dto.FinalizeRequest true "Chosen option"
// @Success 200 {object} map[string]string
// @Failure 422 {object} errors.AppError
// @Router /private/events/{id}/finalize [post]
func (c *VotingController) Finalize(ctx echo.Context) error {
	organizerID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid event ID")
	}

	var req dto.FinalizeRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	optionID, err := uuid.Parse(req.OptionID)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid option ID")
	}

	appErr := c.VotingService.Finalize(ctx.Request().Context(), eventID, organizerID, optionID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Event finalized")
}
