package controller

import (
	"venueplanner/core/constants"
	"venueplanner/core/controller"
	"venueplanner/core/errors"
	"venueplanner/core/utils"
	"venueplanner/modules/recurring/dto"
	"venueplanner/modules/recurring/entity"
	"venueplanner/modules/recurring/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RecurringController handles recurring template HTTP requests
type RecurringController struct {
	controller.BaseController
	RecurringService service.RecurringServiceInterface
}

// NewRecurringController creates a new controller
func NewRecurringController(svc service.RecurringServiceInterface) *RecurringController {
	return &RecurringController{
		BaseController:   controller.NewBaseController(),
		RecurringService: svc,
	}
}

func (c *RecurringController) getUserIDFromContext(ctx echo.Context) (uuid.UUID, error) {
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

// CreateTemplate handles POST /recurring-templates
// @Summary Create a recurring event template
// @Tags Recurring
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateTemplateRequest true "Template"
// @Success 200 {object} dto.TemplateResponse
// @Router /private/recurring-templates [post]
func (c *RecurringController) CreateTemplate(ctx echo.Context) error {
	organizerID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.CreateTemplateRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	result, appErr := c.RecurringService.CreateTemplate(ctx.Request().Context(), organizerID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Template created")
}

// ListTemplates handles GET /recurring-templates
// @Summary List my recurring templates
// @Tags Recurring
// @Security BearerAuth
// @Produce json
// @Success 200 {array} dto.TemplateResponse
// @Router /private/recurring-templates [get]
func (c *RecurringController) ListTemplates(ctx echo.Context) error {
	organizerID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	result, appErr := c.RecurringService.ListTemplates(ctx.Request().Context(), organizerID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Success")
}

// GetTemplate handles GET /recurring-templates/:id
// @Summary Get one recurring template
// @Tags Recurring
// @Security BearerAuth
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} dto.TemplateResponse
// @Router /private/recurring-templates/{id} [get]
func (c *RecurringController) GetTemplate(ctx echo.Context) error {
	organizerID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	templateID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid template ID")
	}

	result, appErr := c.RecurringService.GetTemplate(ctx.Request().Context(), templateID, organizerID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Success")
}

// UpdateTemplate handles PUT /recurring-templates/:id
// @Summary Update a recurring template
// @Tags Recurring
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param request body dto.UpdateTemplateRequest true "Template"
// @Success 200 {object} dto.TemplateResponse
// @Router /private/recurring-templates/{id} [put]
func (c *RecurringController) UpdateTemplate(ctx echo.Context) error {
	organizerID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	templateID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid template ID")
	}

	var req dto.UpdateTemplateRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	result, appErr := c.RecurringService.UpdateTemplate(ctx.Request().Context(), templateID, organizerID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Template updated")
}

// Pause handles POST /recurring-templates/:id/pause
// @Summary Pause generation for a template
// @Tags Recurring
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Success 200 {object} map[string]string
// @Router /private/recurring-templates/{id}/pause [post]
func (c *RecurringController) Pause(ctx echo.Context) error {
	return c.setStatus(ctx, entity.TemplateStatusPaused, "Template paused")
}

// Resume handles POST /recurring-templates/:id/resume
// @Summary Resume generation for a template
// @Tags Recurring
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Success 200 {object} map[string]string
// @Router /private/recurring-templates/{id}/resume [post]
func (c *RecurringController) Resume(ctx echo.Context) error {
	return c.setStatus(ctx, entity.TemplateStatusActive, "Template resumed")
}

func (c *RecurringController) setStatus(ctx echo.Context, status entity.TemplateStatus, message string) error {
	organizerID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	templateID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid template ID")
	}

	if appErr := c.RecurringService.SetStatus(ctx.Request().Context(), templateID, organizerID, status); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, message)
}

// DeleteTemplate handles DELETE /recurring-templates/:id
// @Summary Delete a recurring template
// @Description Generated events are kept
// @Tags Recurring
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Success 200 {object} map[string]string
// @Router /private/recurring-templates/{id} [delete]
func (c *RecurringController) DeleteTemplate(ctx echo.Context) error {
	organizerID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	templateID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid template ID")
	}

	if appErr := c.RecurringService.DeleteTemplate(ctx.Request().Context(), templateID, organizerID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Template deleted")
}
