package controller

import (
	"venueplanner/core/constants"
	"venueplanner/core/controller"
	"venueplanner/core/errors"
	"venueplanner/core/utils"
	"venueplanner/modules/waitlist/dto"
	"venueplanner/modules/waitlist/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// WaitlistController handles waitlist HTTP requests
type WaitlistController struct {
	controller.BaseController
	WaitlistService service.WaitlistServiceInterface
}

// NewWaitlistController creates a new controller
func NewWaitlistController(svc service.WaitlistServiceInterface) *WaitlistController {
	return &WaitlistController{
		BaseController:  controller.NewBaseController(),
		WaitlistService: svc,
	}
}

func (c *WaitlistController) getUserIDFromContext(ctx echo.Context) (uuid.UUID, error) {
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

// Join handles POST /events/:id/waitlist
// @Summary Join the waitlist of a full event
// @Tags Waitlist
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param request body dto.JoinWaitlistRequest true "Waitlist entry"
// @Success 200 {object} dto.WaitlistEntryResponse
// @Failure 409 {object} errors.AppError
// @Router /private/events/{id}/waitlist [post]
func (c *WaitlistController) Join(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid event ID")
	}

	var req dto.JoinWaitlistRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	result, appErr := c.WaitlistService.Join(ctx.Request().Context(), eventID, userID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Joined waitlist")
}

// List handles GET /events/:id/waitlist
// @Summary List the waiting queue in promotion order
// @Tags Waitlist
// @Security BearerAuth
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {array} dto.WaitlistEntryResponse
// @Router /private/events/{id}/waitlist [get]
func (c *WaitlistController) List(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid event ID")
	}

	result, appErr := c.WaitlistService.List(ctx.Request().Context(), eventID, userID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Success")
}

// Promote handles POST /events/:id/waitlist/:entryId/promote
// @Summary Promote a waitlist entry into the participant list
// @Tags Waitlist
// @Security BearerAuth
// @Produce json
// @Param id path string true "Event ID"
// @Param entryId path string true "Waitlist entry ID"
// @Success 200 {object} dto.WaitlistEntryResponse
// @Failure 409 {object} errors.AppError
// @Router /private/events/{id}/waitlist/{entryId}/promote [post]
func (c *WaitlistController) Promote(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid event ID")
	}

	entryID, err := uuid.Parse(ctx.Param("entryId"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid waitlist entry ID")
	}

	result, appErr := c.WaitlistService.Promote(ctx.Request().Context(), eventID, userID, entryID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Promoted")
}

// Expire handles POST /events/:id/waitlist/:entryId/expire
// @Summary Remove a waiting entry from the queue
// @Tags Waitlist
// @Security BearerAuth
// @Produce json
// @Param id path string true "Event ID"
// @Param entryId path string true "Waitlist entry ID"
// @Success 200 {object} map[string]string
// @Failure 409 {object} errors.AppError
// @Router /private/events/{id}/waitlist/{entryId}/expire [post]
func (c *WaitlistController) Expire(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid event ID")
	}

	entryID, err := uuid.Parse(ctx.Param("entryId"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid waitlist entry ID")
	}

	if appErr := c.WaitlistService.ExpireEntry(ctx.Request().Context(), eventID, userID, entryID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Expired")
}
